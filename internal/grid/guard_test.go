package grid

import (
	"context"
	"testing"
)

func newGuardForTest() (*Guard, *Store, *mutationRecorder) {
	store := NewStore()
	rec := newMutationRecorder()
	exec := NewExecutor(store, rec.fn, nil)
	batch := NewBatchSaver(store, exec)
	return NewGuard(store, batch), store, rec
}

func TestGuardNoChangesAlwaysProceeds(t *testing.T) {
	guard, _, rec := newGuardForTest()

	for _, d := range []Decision{DecisionSave, DecisionDiscard, DecisionCancel} {
		proceed, err := guard.Resolve(context.Background(), d)
		if err != nil || !proceed {
			t.Errorf("decision %s: expected to proceed without changes, got (%v, %v)", d, proceed, err)
		}
	}
	if rec.callCount() != 0 {
		t.Errorf("expected no network calls, got %d", rec.callCount())
	}
}

func TestGuardSaveAndContinue(t *testing.T) {
	guard, store, rec := newGuardForTest()

	store.Add(testChange(1, 1, "2025-W07", 10))

	proceed, err := guard.Resolve(context.Background(), DecisionSave)
	if err != nil || !proceed {
		t.Fatalf("expected save to proceed, got (%v, %v)", proceed, err)
	}
	if rec.callCount() != 1 {
		t.Errorf("expected one save, got %d", rec.callCount())
	}
	if guard.HasUnsavedChanges() {
		t.Error("expected no unsaved changes after save-and-continue")
	}
}

func TestGuardSaveFailureBlocksNavigation(t *testing.T) {
	guard, store, rec := newGuardForTest()

	ch := store.Add(testChange(1, 1, "2025-W07", 10))
	rec.failCell(ch.CellKey, true)

	proceed, err := guard.Resolve(context.Background(), DecisionSave)
	if proceed {
		t.Fatal("failed save must block navigation")
	}
	if err == nil {
		t.Fatal("expected the save error to surface")
	}
	if !guard.HasUnsavedChanges() {
		t.Error("pending changes must survive a failed save")
	}
}

func TestGuardDiscardAndContinue(t *testing.T) {
	guard, store, rec := newGuardForTest()

	store.Add(testChange(1, 1, "2025-W07", 10))

	proceed, err := guard.Resolve(context.Background(), DecisionDiscard)
	if err != nil || !proceed {
		t.Fatalf("expected discard to proceed, got (%v, %v)", proceed, err)
	}
	if rec.callCount() != 0 {
		t.Errorf("discard must not touch the network, got %d calls", rec.callCount())
	}
	if store.HasUnsavedChanges() {
		t.Error("expected store cleared after discard")
	}
}

func TestGuardCancelKeepsEverything(t *testing.T) {
	guard, store, rec := newGuardForTest()

	ch := store.Add(testChange(1, 1, "2025-W07", 10))

	proceed, err := guard.Resolve(context.Background(), DecisionCancel)
	if proceed || err != nil {
		t.Fatalf("cancel must block without error, got (%v, %v)", proceed, err)
	}
	if rec.callCount() != 0 {
		t.Errorf("cancel must not touch the network, got %d calls", rec.callCount())
	}
	if _, ok := store.Get(ch.CellKey); !ok {
		t.Error("cancel must not change pending state")
	}
}

func TestGuardUnknownDecision(t *testing.T) {
	guard, store, _ := newGuardForTest()

	store.Add(testChange(1, 1, "2025-W07", 10))

	proceed, err := guard.Resolve(context.Background(), Decision("maybe"))
	if proceed || err == nil {
		t.Errorf("unknown decision must block with an error, got (%v, %v)", proceed, err)
	}
}
