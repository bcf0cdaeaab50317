package grid

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"resplan/internal/metrics"
)

// BatchSaver — явная политика сохранения: накопленные правки уходят только
// по команде оператора. Полный прогон строго последовательный: параллельные
// записи в пересекающиеся агрегаты ёмкости одного ресурса — это гонка
// read-modify-write, серверных транзакций контракт мутации не обещает.
type BatchSaver struct {
	store *Store
	exec  *Executor

	// OnAllSaved дёргается после успешного прогона всех правок и до
	// очистки ожидающих: сначала инвалидация кэша, потом очистка, иначе
	// значения на миг откатываются к устаревшим.
	OnAllSaved func()
}

func NewBatchSaver(store *Store, exec *Executor) *BatchSaver {
	return &BatchSaver{store: store, exec: exec}
}

// SaveAll сохраняет все ожидающие правки в порядке вставки, по одной.
// Первая же неудача обрывает остаток: уже сохранённые ячейки не
// откатываются, упавшая остаётся failed и pending, дальнейшие не
// отправляются вовсе.
func (b *BatchSaver) SaveAll(ctx context.Context) error {
	changes := b.store.Snapshot()
	if len(changes) == 0 {
		return nil
	}

	var saved []PendingChange
	for _, ch := range changes {
		if err := b.exec.Save(ctx, ch, false, nil); err != nil {
			// успевшие сохраниться ячейки не откатываются: их правки
			// снимаются, упавшая остаётся pending+failed
			for _, ok := range saved {
				b.store.RemoveIfRev(ok.CellKey, ok.Rev)
			}
			metrics.GridBatchAborts.Inc()
			return fmt.Errorf("batch save aborted: %w", err)
		}
		saved = append(saved, ch)
	}

	if b.OnAllSaved != nil {
		b.OnAllSaved()
	}

	// удаляем только то, что сохранили и что не успели отредактировать
	// заново во время прогона; маркеры saved живут свой TTL
	for _, ch := range changes {
		b.store.RemoveIfRev(ch.CellKey, ch.Rev)
	}
	return nil
}

// SaveSpecific сохраняет выбранное подмножество параллельно. Набор
// выбирает оператор, он мал и независим, поэтому строгая
// последовательность тут не нужна.
func (b *BatchSaver) SaveSpecific(ctx context.Context, cellKeys []string) error {
	var g errgroup.Group
	for _, key := range cellKeys {
		change, ok := b.store.Get(key)
		if !ok {
			continue
		}
		g.Go(func() error {
			return b.exec.Save(ctx, change, true, nil)
		})
	}
	return g.Wait()
}

// DiscardAll сбрасывает все правки и маркеры без сети. Идемпотентно.
func (b *BatchSaver) DiscardAll() {
	b.store.Clear()
}

// DiscardSpecific сбрасывает выбранные ячейки. Идемпотентно.
func (b *BatchSaver) DiscardSpecific(cellKeys []string) {
	for _, key := range cellKeys {
		b.store.Discard(key)
	}
}

// RetryFailed повторяет ровно те ячейки, что сейчас failed.
// Ячейки в pending, до которых очередь ещё не дошла, не трогаются.
func (b *BatchSaver) RetryFailed(ctx context.Context) error {
	keys := b.store.FailedKeys()
	if len(keys) == 0 {
		return nil
	}
	metrics.GridRetries.Inc()
	return b.SaveSpecific(ctx, keys)
}
