package grid

import (
	"context"
	"testing"
)

func newBatchForTest() (*BatchSaver, *Store, *mutationRecorder) {
	store := NewStore()
	rec := newMutationRecorder()
	exec := NewExecutor(store, rec.fn, nil)
	return NewBatchSaver(store, exec), store, rec
}

func TestSaveAllEmptyIsNoop(t *testing.T) {
	batch, _, rec := newBatchForTest()

	called := false
	batch.OnAllSaved = func() { called = true }

	if err := batch.SaveAll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.callCount() != 0 {
		t.Errorf("expected zero network calls, got %d", rec.callCount())
	}
	if called {
		t.Error("OnAllSaved must not fire for an empty batch")
	}
}

func TestSaveAllSequentialInsertionOrder(t *testing.T) {
	batch, store, rec := newBatchForTest()

	store.Add(testChange(1, 1, "2025-W07", 10))
	store.Add(testChange(2, 1, "2025-W07", 20))
	store.Add(testChange(3, 1, "2025-W07", 30))

	if err := batch.SaveAll(context.Background()); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}

	want := []string{"r1-p1-2025-W07", "r2-p1-2025-W07", "r3-p1-2025-W07"}
	got := rec.callKeys()
	if len(got) != len(want) {
		t.Fatalf("expected %d saves, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("save %d: expected %s, got %s", i, want[i], got[i])
		}
	}
	if store.HasUnsavedChanges() {
		t.Error("expected pending map cleared after full success")
	}
}

func TestSaveAllRunsCallbackBeforeClearing(t *testing.T) {
	batch, store, _ := newBatchForTest()

	store.Add(testChange(1, 1, "2025-W07", 10))
	store.Add(testChange(2, 1, "2025-W07", 20))

	// инвалидация кэша должна видеть ещё не очищенные правки,
	// иначе значения на миг откатятся к устаревшим
	pendingAtCallback := -1
	batch.OnAllSaved = func() { pendingAtCallback = store.Len() }

	if err := batch.SaveAll(context.Background()); err != nil {
		t.Fatalf("SaveAll failed: %v", err)
	}
	if pendingAtCallback != 2 {
		t.Errorf("expected callback before clearing (2 pending), saw %d", pendingAtCallback)
	}
	if store.Len() != 0 {
		t.Errorf("expected empty store after SaveAll, got %d", store.Len())
	}
}

// Задокументированная политика обрыва: первая неудача останавливает
// остаток пакета. Первая ячейка сохранена и снята, вторая failed и
// всё ещё pending, третья не отправлялась вовсе.
func TestSaveAllAbortsOnFirstFailure(t *testing.T) {
	batch, store, rec := newBatchForTest()

	a := store.Add(testChange(1, 1, "2025-W07", 10))
	b := store.Add(testChange(2, 1, "2025-W07", 20))
	c := store.Add(testChange(3, 1, "2025-W07", 30))

	rec.failCell(b.CellKey, true)

	callbackFired := false
	batch.OnAllSaved = func() { callbackFired = true }

	err := batch.SaveAll(context.Background())
	if err == nil {
		t.Fatal("expected an error from the aborted batch")
	}

	got := rec.callKeys()
	if len(got) != 2 || got[0] != a.CellKey || got[1] != b.CellKey {
		t.Fatalf("expected attempts [%s %s], got %v", a.CellKey, b.CellKey, got)
	}

	// первая: сохранена и очищена из pending
	if _, ok := store.Get(a.CellKey); ok {
		t.Error("first cell must be cleared of pending state")
	}
	if store.Status(a.CellKey) != StatusSaved {
		t.Errorf("first cell must be saved, got %v", store.Status(a.CellKey))
	}

	// вторая: failed и по-прежнему pending
	if store.Status(b.CellKey) != StatusFailed {
		t.Errorf("second cell must be failed, got %v", store.Status(b.CellKey))
	}
	if _, ok := store.Get(b.CellKey); !ok {
		t.Error("second cell must keep its pending entry")
	}

	// третья: не отправлялась, осталась pending
	if store.Status(c.CellKey) != StatusPending {
		t.Errorf("third cell must stay pending, got %v", store.Status(c.CellKey))
	}

	if callbackFired {
		t.Error("OnAllSaved must not fire for an aborted batch")
	}
}

func TestDiscardAllThenSaveAllMakesNoCalls(t *testing.T) {
	batch, store, rec := newBatchForTest()

	store.Add(testChange(1, 1, "2025-W07", 10))
	store.Add(testChange(2, 1, "2025-W07", 20))

	batch.DiscardAll()
	batch.DiscardAll() // идемпотентно

	if err := batch.SaveAll(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.callCount() != 0 {
		t.Errorf("expected zero network calls after discard, got %d", rec.callCount())
	}
}

func TestDiscardSpecific(t *testing.T) {
	batch, store, _ := newBatchForTest()

	a := store.Add(testChange(1, 1, "2025-W07", 10))
	b := store.Add(testChange(2, 1, "2025-W07", 20))

	batch.DiscardSpecific([]string{a.CellKey})

	if _, ok := store.Get(a.CellKey); ok {
		t.Error("discarded cell must be gone")
	}
	if _, ok := store.Get(b.CellKey); !ok {
		t.Error("other cells must be untouched")
	}
}

func TestSaveSpecificOnlyGivenCells(t *testing.T) {
	batch, store, rec := newBatchForTest()

	a := store.Add(testChange(1, 1, "2025-W07", 10))
	b := store.Add(testChange(2, 1, "2025-W07", 20))

	if err := batch.SaveSpecific(context.Background(), []string{a.CellKey, "missing-key"}); err != nil {
		t.Fatalf("SaveSpecific failed: %v", err)
	}

	if rec.callCount() != 1 {
		t.Fatalf("expected one save, got %d", rec.callCount())
	}
	if _, ok := store.Get(a.CellKey); ok {
		t.Error("saved cell must be removed from pending")
	}
	if _, ok := store.Get(b.CellKey); !ok {
		t.Error("unselected cell must stay pending")
	}
}

// Retry повторяет ровно failed-ячейки; pending, до которых очередь не
// дошла, retry не трогает.
func TestRetryFailedScope(t *testing.T) {
	batch, store, rec := newBatchForTest()

	a := store.Add(testChange(1, 1, "2025-W07", 10))
	b := store.Add(testChange(2, 1, "2025-W07", 20))

	rec.failCell(a.CellKey, true)
	if err := batch.SaveSpecific(context.Background(), []string{a.CellKey}); err == nil {
		t.Fatal("expected the first attempt to fail")
	}
	if store.Status(a.CellKey) != StatusFailed {
		t.Fatalf("setup: expected failed cell, got %v", store.Status(a.CellKey))
	}

	rec.failCell(a.CellKey, false)
	if err := batch.RetryFailed(context.Background()); err != nil {
		t.Fatalf("retry failed: %v", err)
	}

	keys := rec.callKeys()
	if len(keys) != 2 || keys[0] != a.CellKey || keys[1] != a.CellKey {
		t.Fatalf("expected two attempts on %s only, got %v", a.CellKey, keys)
	}

	if store.Status(b.CellKey) != StatusPending {
		t.Errorf("pending cell must be untouched by retry, got %v", store.Status(b.CellKey))
	}
	if _, ok := store.Get(b.CellKey); !ok {
		t.Error("pending cell entry must survive retry")
	}
}

func TestRetryFailedEmptyIsNoop(t *testing.T) {
	batch, store, rec := newBatchForTest()

	store.Add(testChange(1, 1, "2025-W07", 10))

	if err := batch.RetryFailed(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.callCount() != 0 {
		t.Errorf("retry without failed cells must not dispatch, got %d", rec.callCount())
	}
}
