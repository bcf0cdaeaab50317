package grid

import (
	"sync"
	"time"
)

// DefaultSavedTTL — сколько ячейка подсвечивается как "сохранено",
// потом маркер сам сбрасывается в idle.
const DefaultSavedTTL = 2 * time.Second

// Store — единственный владелец ожидающих правок и статусов ячеек.
// Все изменения идут через его методы, снаружи мутировать нечего.
// Порядок вставки сохраняется: пакетное сохранение идёт именно в нём.
type Store struct {
	mu       sync.Mutex
	changes  map[string]PendingChange
	order    []string // ключи в порядке первой вставки
	statuses map[string]Status
	timers   map[string]*time.Timer // авто-сброс маркера "сохранено"

	savedTTL time.Duration
	nextRev  uint64
}

func NewStore() *Store {
	return &Store{
		changes:  make(map[string]PendingChange),
		statuses: make(map[string]Status),
		timers:   make(map[string]*time.Timer),
		savedTTL: DefaultSavedTTL,
	}
}

// Add добавляет или перезаписывает правку ячейки. Свежая правка
// отменяет прежний исход: маркеры saved/failed снимаются.
// Возвращает сохранённую копию с проставленным Rev.
func (s *Store) Add(change PendingChange) PendingChange {
	if change.CellKey == "" {
		change.CellKey = CellKey(change.ResourceID, change.ProjectID, change.WeekKey)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextRev++
	change.Rev = s.nextRev

	if _, exists := s.changes[change.CellKey]; !exists {
		s.order = append(s.order, change.CellKey)
	}
	s.changes[change.CellKey] = change

	switch s.statuses[change.CellKey] {
	case StatusSaved, StatusFailed:
		delete(s.statuses, change.CellKey)
		s.stopTimerLocked(change.CellKey)
	}

	return change
}

func (s *Store) Get(cellKey string) (PendingChange, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch, ok := s.changes[cellKey]
	return ch, ok
}

// Snapshot — все ожидающие правки в порядке вставки.
func (s *Store) Snapshot() []PendingChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]PendingChange, 0, len(s.changes))
	for _, key := range s.order {
		if ch, ok := s.changes[key]; ok {
			out = append(out, ch)
		}
	}
	return out
}

func (s *Store) Keys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.order))
	for _, key := range s.order {
		if _, ok := s.changes[key]; ok {
			out = append(out, key)
		}
	}
	return out
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.changes)
}

func (s *Store) HasUnsavedChanges() bool {
	return s.Len() > 0
}

// FailedKeys — ячейки со статусом failed, у которых правка ещё на месте
// (при неудаче правка не удаляется, иначе нечего было бы ретраить).
func (s *Store) FailedKeys() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, key := range s.order {
		if s.statuses[key] != StatusFailed {
			continue
		}
		if _, ok := s.changes[key]; ok {
			out = append(out, key)
		}
	}
	return out
}

// Status — авторитетное состояние ячейки.
func (s *Store) Status(cellKey string) Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.statusLocked(cellKey)
}

func (s *Store) statusLocked(cellKey string) Status {
	if st, ok := s.statuses[cellKey]; ok {
		return st
	}
	if _, ok := s.changes[cellKey]; ok {
		return StatusPending
	}
	return StatusIdle
}

// State — проекция для рендера, без мутаций.
func (s *Store) State(cellKey string) CellState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := CellState{Status: s.statusLocked(cellKey)}
	st.IsSaving = st.Status == StatusSaving
	st.IsSaved = st.Status == StatusSaved
	st.IsFailed = st.Status == StatusFailed

	if ch, ok := s.changes[cellKey]; ok {
		st.HasPendingChange = true
		st.PendingValue = ch.Hours
	}
	return st
}

// MarkSaving помечает ячейку как уходящую в сеть.
func (s *Store) MarkSaving(cellKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.statuses[cellKey] = StatusSaving
	s.stopTimerLocked(cellKey)
}

// ConfirmSaved фиксирует успешное сохранение, если за время вызова
// не пришла более свежая правка той же ячейки (иначе ячейка просто
// возвращается в pending и её очередь ещё впереди).
func (s *Store) ConfirmSaved(cellKey string, rev uint64, remove bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.changes[cellKey]
	if !ok || ch.Rev != rev {
		// правка успела смениться, сохранённое значение уже устарело
		if s.statuses[cellKey] == StatusSaving {
			delete(s.statuses, cellKey)
		}
		return
	}

	if remove {
		s.removeLocked(cellKey)
	}

	s.statuses[cellKey] = StatusSaved
	s.stopTimerLocked(cellKey)
	s.timers[cellKey] = time.AfterFunc(s.savedTTL, func() {
		s.expireSaved(cellKey)
	})
}

// ConfirmFailed фиксирует неудачу, тоже только если правка не сменилась.
func (s *Store) ConfirmFailed(cellKey string, rev uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.changes[cellKey]
	if !ok || ch.Rev != rev {
		if s.statuses[cellKey] == StatusSaving {
			delete(s.statuses, cellKey)
		}
		return
	}
	s.statuses[cellKey] = StatusFailed
}

// RemoveIfRev удаляет правку, если она не менялась с момента снапшота.
func (s *Store) RemoveIfRev(cellKey string, rev uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch, ok := s.changes[cellKey]
	if !ok || ch.Rev != rev {
		return false
	}
	s.removeLocked(cellKey)
	return true
}

// Discard убирает правку вместе со всеми маркерами, без сети.
func (s *Store) Discard(cellKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.removeLocked(cellKey)
	delete(s.statuses, cellKey)
	s.stopTimerLocked(cellKey)
}

// Clear сбрасывает всё: правки, статусы, таймеры.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.changes = make(map[string]PendingChange)
	s.order = nil
	s.statuses = make(map[string]Status)
	for key, t := range s.timers {
		t.Stop()
		delete(s.timers, key)
	}
}

func (s *Store) removeLocked(cellKey string) {
	delete(s.changes, cellKey)
	for i, key := range s.order {
		if key == cellKey {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Store) stopTimerLocked(cellKey string) {
	if t, ok := s.timers[cellKey]; ok {
		t.Stop()
		delete(s.timers, cellKey)
	}
}

func (s *Store) expireSaved(cellKey string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.statuses[cellKey] == StatusSaved {
		delete(s.statuses, cellKey)
	}
	delete(s.timers, cellKey)
}

// SetSavedTTL — для тестов и тюнинга; на живом store не дёргать.
func (s *Store) SetSavedTTL(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.savedTTL = d
}
