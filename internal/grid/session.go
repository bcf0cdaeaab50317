package grid

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Mode string

const (
	ModeAutosave Mode = "autosave" // правки уезжают сами после окна тишины
	ModeBatch    Mode = "batch"    // правки копятся до явной команды
)

const DefaultSessionTTL = 30 * time.Minute

var ErrSessionNotFound = errors.New("grid session not found")

// Session — серверное состояние одного открытого грида одного оператора.
// Store и политики сохранения живут только внутри сессии: это и есть
// "один хозяин" для всего разделяемого изменяемого состояния.
type Session struct {
	ID     string
	UserID uint
	Mode   Mode

	Store *Store
	Auto  *AutoSaver // nil в batch-режиме
	Batch *BatchSaver
	Guard *Guard

	mu       sync.Mutex
	lastUsed time.Time
}

func (s *Session) Touch() {
	s.mu.Lock()
	s.lastUsed = time.Now()
	s.mu.Unlock()
}

func (s *Session) idleSince(now time.Time) time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastUsed)
}

// Edit — одна правка ячейки: в autosave-режиме с перевзводом таймера,
// в batch-режиме просто в очередь.
func (s *Session) Edit(change PendingChange) PendingChange {
	s.Touch()
	if s.Mode == ModeAutosave {
		return s.Auto.Edit(change)
	}
	return s.Store.Add(change)
}

func (s *Session) stop() {
	if s.Auto != nil {
		s.Auto.Stop()
	}
	s.Store.Clear()
}

// ManagerConfig — зависимости и тюнинг для всех сессий.
type ManagerConfig struct {
	Mutate      MutationFunc
	Notify      NotifyFunc
	Debounce    time.Duration
	SaveTimeout time.Duration
	SessionTTL  time.Duration

	// OnAllSaved вызывается после успешного пакетного сохранения сессии
	// (инвалидация кэшей, аудит).
	OnAllSaved func(s *Session)
}

// Manager владеет всеми открытыми сессиями редактирования.
type Manager struct {
	cfg ManagerConfig

	mu       sync.Mutex
	sessions map[string]*Session

	done chan struct{}
	once sync.Once
}

func NewManager(cfg ManagerConfig) *Manager {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = DefaultSessionTTL
	}
	m := &Manager{
		cfg:      cfg,
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}
	go m.sweep()
	return m
}

// Open создаёт сессию редактирования для пользователя.
func (m *Manager) Open(userID uint, mode Mode) *Session {
	store := NewStore()
	exec := NewExecutor(store, m.cfg.Mutate, m.cfg.Notify)
	if m.cfg.SaveTimeout > 0 {
		exec.SetTimeout(m.cfg.SaveTimeout)
	}

	s := &Session{
		ID:       uuid.NewString(),
		UserID:   userID,
		Mode:     mode,
		Store:    store,
		Batch:    NewBatchSaver(store, exec),
		lastUsed: time.Now(),
	}
	if mode == ModeAutosave {
		s.Auto = NewAutoSaver(store, exec, m.cfg.Debounce)
	}
	s.Guard = NewGuard(store, s.Batch)

	if m.cfg.OnAllSaved != nil {
		s.Batch.OnAllSaved = func() { m.cfg.OnAllSaved(s) }
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()
	return s
}

// Get отдаёт сессию только её владельцу; чужие и несуществующие
// неотличимы.
func (m *Manager) Get(id string, userID uint) (*Session, error) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	m.mu.Unlock()

	if !ok || s.UserID != userID {
		return nil, ErrSessionNotFound
	}
	s.Touch()
	return s, nil
}

// Close закрывает сессию через guard. Сессия удаляется, только если
// guard разрешил уход (save удался либо discard).
func (m *Manager) Close(ctx context.Context, id string, userID uint, d Decision) (bool, error) {
	s, err := m.Get(id, userID)
	if err != nil {
		return false, err
	}

	proceed, err := s.Guard.Resolve(ctx, d)
	if !proceed {
		return false, err
	}

	m.drop(id)
	return true, nil
}

func (m *Manager) drop(id string) {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if ok {
		s.stop()
	}
}

// Shutdown останавливает уборщик и все сессии.
func (m *Manager) Shutdown() {
	m.once.Do(func() { close(m.done) })

	m.mu.Lock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	m.mu.Unlock()

	for _, id := range ids {
		m.drop(id)
	}
}

// фоновая уборка простаивающих сессий
func (m *Manager) sweep() {
	interval := m.cfg.SessionTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case now := <-ticker.C:
			m.expireIdle(now)
		}
	}
}

func (m *Manager) expireIdle(now time.Time) {
	m.mu.Lock()
	var expired []string
	for id, s := range m.sessions {
		if s.idleSince(now) > m.cfg.SessionTTL {
			expired = append(expired, id)
		}
	}
	m.mu.Unlock()

	for _, id := range expired {
		m.drop(id)
	}
}
