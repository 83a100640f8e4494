// Package session keeps the per-terminal catalog cache and cart.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"restaurant-pos/cart"
	"restaurant-pos/catalog"
)

var ErrSessionNotFound = errors.New("session not found")

// Session bundles one terminal's catalog view and cart.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	lastSeen time.Time
	catalog  *catalog.Catalog
	cart     *cart.Cart
}

// State is what a session exposes while locked.
type State struct {
	Catalog *catalog.Catalog
	Cart    *cart.Cart
}

// Snapshot is the JSON view of a session.
type Snapshot struct {
	ID    string          `json:"id"`
	Query string          `json:"query"`
	Lines []cart.Line     `json:"lines"`
	Total decimal.Decimal `json:"total"`
}

// With runs fn while holding the session lock.
func (s *Session) With(fn func(st *State) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSeen = time.Now()
	return fn(&State{Catalog: s.catalog, Cart: s.cart})
}

// Snapshot captures the cart and query.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{
		ID:    s.ID,
		Query: s.catalog.Query(),
		Lines: s.cart.Lines(),
		Total: s.cart.Total(),
	}
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Store holds live sessions by id.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*Session)}
}

// Create opens a new empty session.
func (st *Store) Create() *Session {
	now := time.Now()
	s := &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		lastSeen:  now,
		catalog:   catalog.New(),
		cart:      cart.New(),
	}

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()

	log.Printf("🛒 Session: created id=%s", s.ID)
	return s
}

// Get returns the session or ErrSessionNotFound.
func (st *Store) Get(id string) (*Session, error) {
	st.mu.RLock()
	s, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Delete discards a session.
func (st *Store) Delete(id string) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	if _, ok := st.sessions[id]; !ok {
		return ErrSessionNotFound
	}
	delete(st.sessions, id)
	log.Printf("🗑️  Session: deleted id=%s", id)
	return nil
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// PurgeIdle drops sessions untouched for longer than ttl and returns how many went.
func (st *Store) PurgeIdle(ttl time.Duration) int {
	cutoff := time.Now().Add(-ttl)

	st.mu.Lock()
	defer st.mu.Unlock()
	purged := 0
	for id, s := range st.sessions {
		if s.idleSince().Before(cutoff) {
			delete(st.sessions, id)
			purged++
		}
	}
	if purged > 0 {
		log.Printf("🧹 Session: purged %d idle sessions", purged)
	}
	return purged
}

// RunJanitor purges idle sessions every interval until ctx is done.
func (st *Store) RunJanitor(ctx context.Context, interval, ttl time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.PurgeIdle(ttl)
		}
	}
}
