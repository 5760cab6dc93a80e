package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// DefaultMemoryTTL matches the RedisStore default.
const DefaultMemoryTTL = 24 * time.Hour

// ErrLocked is returned when a lock cannot be taken before the context ends.
var ErrLocked = errors.New("session: state is locked")

// Store keeps one State per identity key.
//
// Lock serializes every event for a key: the caller holds the returned unlock
// function for the whole read-modify-write and calls it exactly once. Get
// does not take the lock, so a reader may observe an in-progress search
// (Loading set) but never a half-applied transition.
type Store interface {
	Get(ctx context.Context, key string) (State, bool, error)
	Put(ctx context.Context, key string, s State) error
	Delete(ctx context.Context, key string) error
	Lock(ctx context.Context, key string) (unlock func(), err error)
}

// Key is the store key of an identity. Signed-in users are keyed by user ID
// so every device shares one state; anonymous visitors by their cookie.
func Key(userID, visitorID string) string {
	if userID != "" {
		return "user:" + userID
	}
	return "visitor:" + visitorID
}

// MemoryStore is a process-local Store.
//
// Like RedisStore, a state expires ttl after it was last written. Expired
// states are swept at most once per ttl from Put.
type MemoryStore struct {
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	states    map[string]memoryEntry
	locks     map[string]*keyLock
	lastSweep time.Time
}

type memoryEntry struct {
	state     State
	expiresAt time.Time
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

// NewMemoryStore creates a store whose states live for DefaultMemoryTTL.
func NewMemoryStore() *MemoryStore {
	return NewMemoryStoreTTL(DefaultMemoryTTL)
}

// NewMemoryStoreTTL creates a store whose states live for ttl after their
// last write. A non-positive ttl uses DefaultMemoryTTL.
func NewMemoryStoreTTL(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultMemoryTTL
	}
	return &MemoryStore{
		ttl:    ttl,
		now:    time.Now,
		states: make(map[string]memoryEntry),
		locks:  make(map[string]*keyLock),
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) (State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.states[key]
	if !ok {
		return State{}, false, nil
	}
	if !m.now().Before(e.expiresAt) {
		delete(m.states, key)
		return State{}, false, nil
	}
	return e.state.Clone(), true, nil
}

func (m *MemoryStore) Put(_ context.Context, key string, s State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if now.Sub(m.lastSweep) > m.ttl {
		for k, e := range m.states {
			if !now.Before(e.expiresAt) {
				delete(m.states, k)
			}
		}
		m.lastSweep = now
	}

	m.states[key] = memoryEntry{state: s.Clone(), expiresAt: now.Add(m.ttl)}
	return nil
}

// Len returns the number of states held, expired or not.
func (m *MemoryStore) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.states)
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.states, key)
	return nil
}

// Lock waits for the key's lock or for ctx to end.
func (m *MemoryStore) Lock(ctx context.Context, key string) (func(), error) {
	m.mu.Lock()
	l, ok := m.locks[key]
	if !ok {
		l = &keyLock{ch: make(chan struct{}, 1)}
		m.locks[key] = l
	}
	l.refs++
	m.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
	case <-ctx.Done():
		m.release(key, l)
		return nil, errors.Join(ErrLocked, ctx.Err())
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-l.ch
			m.release(key, l)
		})
	}, nil
}

func (m *MemoryStore) release(key string, l *keyLock) {
	m.mu.Lock()
	defer m.mu.Unlock()

	l.refs--
	if l.refs == 0 {
		delete(m.locks, key)
	}
}
