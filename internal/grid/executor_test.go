package grid

import (
	"context"
	"testing"
	"time"
)

func TestExecutorDerivesCellKey(t *testing.T) {
	store := NewStore()
	rec := newMutationRecorder()
	exec := NewExecutor(store, rec.fn, nil)

	ch := store.Add(PendingChange{ResourceID: 5, ProjectID: 2, WeekKey: "2025-W07", Hours: 4})
	ch.CellKey = "" // ключ обязан восстановиться из переменных

	if err := exec.Save(context.Background(), ch, true, nil); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	last, ok := rec.lastCall()
	if !ok || last.CellKey != "r5-p2-2025-W07" {
		t.Errorf("expected derived key r5-p2-2025-W07, got %+v", last)
	}
}

func TestExecutorMissingWeekKey(t *testing.T) {
	store := NewStore()
	rec := newMutationRecorder()
	exec := NewExecutor(store, rec.fn, nil)

	err := exec.Save(context.Background(), PendingChange{ResourceID: 5, Hours: 4}, true, nil)
	if err == nil {
		t.Fatal("expected a contract error for missing week key")
	}
	if rec.callCount() != 0 {
		t.Errorf("contract error must fail before dispatch, got %d calls", rec.callCount())
	}
}

func TestExecutorTimeout(t *testing.T) {
	store := NewStore()

	// зависшая мутация: отвечает только отменой контекста
	hung := func(ctx context.Context, vars MutationVariables) error {
		<-ctx.Done()
		return ctx.Err()
	}

	exec := NewExecutor(store, hung, nil)
	exec.SetTimeout(20 * time.Millisecond)

	ch := store.Add(testChange(1, 1, "2025-W07", 10))

	start := time.Now()
	err := exec.Save(context.Background(), ch, true, nil)
	if err == nil {
		t.Fatal("expected a timeout failure")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout did not bound the call, took %v", elapsed)
	}

	// зависшее сохранение не оставляет ячейку в saving навсегда
	if store.Status(ch.CellKey) != StatusFailed {
		t.Errorf("expected failed after timeout, got %v", store.Status(ch.CellKey))
	}
	if _, ok := store.Get(ch.CellKey); !ok {
		t.Error("timed-out save must keep the pending entry")
	}
}

func TestExecutorDoesNotForwardOldValue(t *testing.T) {
	store := NewStore()
	rec := newMutationRecorder()
	exec := NewExecutor(store, rec.fn, nil)

	ch := store.Add(PendingChange{
		ResourceID:  1,
		ProjectID:   2,
		WeekKey:     "2025-W07",
		Hours:       6,
		OldValue:    4,
		HasOldValue: true,
	})

	if err := exec.Save(context.Background(), ch, true, nil); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	last, _ := rec.lastCall()
	if last.Hours != 6 || last.Extra != nil {
		t.Errorf("expected only the new value on the wire, got %+v", last)
	}
}
