package grid

import (
	"context"
	"sync"
	"time"
)

// DefaultDebounce — окно тишины после последней правки ячейки.
const DefaultDebounce = 1000 * time.Millisecond

// AutoSaver — политика отложенного автосохранения: на каждую ячейку свой
// таймер, каждая новая правка перезапускает только его. Быстрый набор
// схлопывается в один сетевой вызов с последним значением; ячейки друг
// друга не блокируют.
type AutoSaver struct {
	store  *Store
	exec   *Executor
	window time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer

	ctx    context.Context
	cancel context.CancelFunc
}

func NewAutoSaver(store *Store, exec *Executor, window time.Duration) *AutoSaver {
	if window <= 0 {
		window = DefaultDebounce
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &AutoSaver{
		store:  store,
		exec:   exec,
		window: window,
		timers: make(map[string]*time.Timer),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Edit записывает правку и взводит (или перевзводит) таймер её ячейки.
func (a *AutoSaver) Edit(change PendingChange) PendingChange {
	stored := a.store.Add(change)

	a.mu.Lock()
	defer a.mu.Unlock()
	if t, ok := a.timers[stored.CellKey]; ok {
		t.Stop()
	}
	key := stored.CellKey
	a.timers[key] = time.AfterFunc(a.window, func() {
		a.flush(key)
	})
	return stored
}

// таймер истёк: если правка всё ещё на месте — отправляем текущее значение
func (a *AutoSaver) flush(cellKey string) {
	a.mu.Lock()
	delete(a.timers, cellKey)
	a.mu.Unlock()

	change, ok := a.store.Get(cellKey)
	if !ok {
		return
	}
	// ошибка уже записана в статус и ушла в notify
	_ = a.exec.Save(a.ctx, change, true, nil)
}

// SaveImmediately — принудительный сброс без ожидания таймера (blur).
func (a *AutoSaver) SaveImmediately(ctx context.Context, cellKey string, extra map[string]any) error {
	a.mu.Lock()
	if t, ok := a.timers[cellKey]; ok {
		t.Stop()
		delete(a.timers, cellKey)
	}
	a.mu.Unlock()

	change, ok := a.store.Get(cellKey)
	if !ok {
		return nil
	}
	return a.exec.Save(ctx, change, true, extra)
}

// Stop снимает все таймеры и запрещает новые отправки из них.
func (a *AutoSaver) Stop() {
	a.cancel()

	a.mu.Lock()
	defer a.mu.Unlock()
	for key, t := range a.timers {
		t.Stop()
		delete(a.timers, key)
	}
}
