package grid

import (
	"context"
	"fmt"
	"time"

	"resplan/internal/metrics"
)

// DefaultSaveTimeout ограничивает один сетевой вызов: зависшая мутация
// не должна держать ячейку в saving бесконечно.
const DefaultSaveTimeout = 15 * time.Second

// MutationVariables — то, что реально уходит во внешнее хранилище.
// OldValue сюда не попадает никогда: это бухгалтерия клиента.
type MutationVariables struct {
	CellKey    string
	ResourceID uint
	ProjectID  uint
	WeekKey    string
	Hours      float64
	Extra      map[string]any
}

// MutationFunc сохраняет значение одной ячейки. Контракт внешний:
// кто и как пишет в БД, грид не знает.
type MutationFunc func(ctx context.Context, vars MutationVariables) error

// NotifyFunc — абстрактный тост/уведомление об ошибке.
type NotifyFunc func(title, message, severity string)

// Executor оборачивает внешнюю мутацию: до вызова помечает ячейку
// saving, по результату — saved или failed, неудачу отдаёт в notify.
type Executor struct {
	store   *Store
	mutate  MutationFunc
	notify  NotifyFunc
	timeout time.Duration
}

func NewExecutor(store *Store, mutate MutationFunc, notify NotifyFunc) *Executor {
	if notify == nil {
		notify = func(string, string, string) {}
	}
	return &Executor{
		store:   store,
		mutate:  mutate,
		notify:  notify,
		timeout: DefaultSaveTimeout,
	}
}

func (e *Executor) SetTimeout(d time.Duration) {
	if d > 0 {
		e.timeout = d
	}
}

// Save отправляет одну правку. removeOnSuccess=true — режим автосейва:
// успешная запись убирается из ожидающих сразу. В пакетном режиме запись
// остаётся до конца пакета.
//
// Если за время вызова ячейку успели отредактировать ещё раз, результат
// считается устаревшим: свежая правка остаётся pending и уедет своим
// собственным сохранением.
func (e *Executor) Save(ctx context.Context, change PendingChange, removeOnSuccess bool, extra map[string]any) error {
	if change.WeekKey == "" {
		return fmt.Errorf("cell %s: week key is required", change.CellKey)
	}
	if change.CellKey == "" {
		change.CellKey = CellKey(change.ResourceID, change.ProjectID, change.WeekKey)
	}

	e.store.MarkSaving(change.CellKey)

	vars := MutationVariables{
		CellKey:    change.CellKey,
		ResourceID: change.ResourceID,
		ProjectID:  change.ProjectID,
		WeekKey:    change.WeekKey,
		Hours:      change.Hours,
		Extra:      extra,
	}

	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	if err := e.mutate(ctx, vars); err != nil {
		e.store.ConfirmFailed(change.CellKey, change.Rev)
		metrics.GridSaves.WithLabelValues("error").Inc()
		e.notify("Ошибка сохранения",
			fmt.Sprintf("ячейка %s: %v", change.CellKey, err), "error")
		return fmt.Errorf("save cell %s: %w", change.CellKey, err)
	}

	e.store.ConfirmSaved(change.CellKey, change.Rev, removeOnSuccess)
	metrics.GridSaves.WithLabelValues("ok").Inc()
	return nil
}
