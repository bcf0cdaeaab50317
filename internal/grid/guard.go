package grid

import (
	"context"
	"fmt"
)

// Decision — как оператор разрешает уход со страницы при несохранённых
// правках.
type Decision string

const (
	DecisionSave    Decision = "save"    // сохранить и уйти
	DecisionDiscard Decision = "discard" // выбросить и уйти
	DecisionCancel  Decision = "cancel"  // остаться
)

// Guard блокирует навигацию, пока в store есть несохранённые правки.
type Guard struct {
	store *Store
	batch *BatchSaver
}

func NewGuard(store *Store, batch *BatchSaver) *Guard {
	return &Guard{store: store, batch: batch}
}

func (g *Guard) HasUnsavedChanges() bool {
	return g.store.HasUnsavedChanges()
}

// Resolve возвращает, можно ли продолжать навигацию. Сохранение
// пропускает только при полном успехе: если сохранение упало, навигация
// снова заблокирована. Discard всегда пропускает, Cancel никогда и ничего
// не меняет.
func (g *Guard) Resolve(ctx context.Context, d Decision) (bool, error) {
	if !g.store.HasUnsavedChanges() {
		return true, nil
	}

	switch d {
	case DecisionSave:
		if err := g.batch.SaveAll(ctx); err != nil {
			return false, err
		}
		return true, nil
	case DecisionDiscard:
		g.batch.DiscardAll()
		return true, nil
	case DecisionCancel:
		return false, nil
	default:
		return false, fmt.Errorf("unknown guard decision %q", d)
	}
}
