// Package proposals tracks generated-but-unconfirmed rounds. Proposals are
// held in memory only: a restart drops any pending proposal, which is an
// accepted limitation — regenerating one is cheap. Stale proposals expire
// so a forgotten /new does not gate a chat forever.
package proposals

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/korjavin/donutbot/pkg/models"
)

// DefaultTTL is how long a proposal stays confirmable.
const DefaultTTL = time.Hour

// Proposal is a pending round awaiting confirmation.
type Proposal struct {
	ID        string
	Donut     models.Donut
	CreatedAt time.Time
}

// Manager manages pending proposals per chat.
type Manager struct {
	proposals map[int64]Proposal
	ttl       time.Duration
	mu        sync.Mutex
}

// New creates a new proposal manager. A non-positive ttl falls back to
// DefaultTTL.
func New(ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{
		proposals: make(map[int64]Proposal),
		ttl:       ttl,
	}
}

// Set stores a proposal for a chat, unconditionally replacing any pending
// one, and returns it with a fresh ID.
func (m *Manager) Set(chatID int64, donut models.Donut) Proposal {
	p := Proposal{
		ID:        uuid.NewString(),
		Donut:     donut,
		CreatedAt: time.Now(),
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.proposals[chatID] = p
	return p
}

// Get returns the pending proposal for a chat, if any. Expired proposals
// are dropped and reported as absent.
func (m *Manager) Get(chatID int64) (Proposal, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.proposals[chatID]
	if !ok {
		return Proposal{}, false
	}
	if time.Since(p.CreatedAt) > m.ttl {
		delete(m.proposals, chatID)
		return Proposal{}, false
	}
	return p, true
}

// Clear removes the pending proposal for a chat.
func (m *Manager) Clear(chatID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.proposals, chatID)
}
