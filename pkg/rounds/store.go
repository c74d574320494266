package rounds

import (
	"errors"
	"fmt"
	"time"

	"github.com/korjavin/donutbot/pkg/logger"
	"github.com/korjavin/donutbot/pkg/models"
	"github.com/korjavin/donutbot/pkg/proposals"
	"github.com/korjavin/donutbot/pkg/storage"
)

// ErrNoProposedRound is returned by Promote when a chat has no pending
// (unexpired) proposal.
var ErrNoProposedRound = errors.New("rounds: no proposed round")

// KeyPrefix is the storage prefix for round state records.
const KeyPrefix = "rounds:"

// Key returns the storage key for a chat's round state.
func Key(chatID int64) string {
	return fmt.Sprintf("%s%d", KeyPrefix, chatID)
}

// Store tracks round state per chat: current and previous rounds are
// persisted as one whole-record replacement each, the proposed round is
// held in memory only.
type Store struct {
	store     *storage.Store
	proposals *proposals.Manager
	logger    *logger.Logger
}

// NewStore creates a round store on top of persistent storage and an
// in-memory proposal manager.
func NewStore(store *storage.Store, props *proposals.Manager) *Store {
	return &Store{
		store:     store,
		proposals: props,
		logger:    logger.New(""),
	}
}

// Get returns the persisted round state for a chat. An absent,
// unparseable or unknown-version record comes back as empty state so the
// bot stays usable across schema changes.
func (s *Store) Get(chatID int64) (models.RoundState, error) {
	var state models.RoundState
	err := s.store.Get(Key(chatID), &state)
	if err != nil {
		if err != storage.ErrNotFound {
			return models.RoundState{}, fmt.Errorf("failed to read round state: %w", err)
		}
		state = models.RoundState{}
	}
	if state.Version > models.RoundStateVersion {
		s.logger.Warn("Round state for chat %d has unknown version %d, treating as empty", chatID, state.Version)
		state = models.RoundState{}
	}
	state.ChatID = chatID
	return state, nil
}

// SetProposed records a donut as the chat's pending proposal,
// unconditionally replacing any existing one.
func (s *Store) SetProposed(chatID int64, donut models.Donut) proposals.Proposal {
	return s.proposals.Set(chatID, donut)
}

// Proposed returns the chat's pending proposal, if any.
func (s *Store) Proposed(chatID int64) (proposals.Proposal, bool) {
	return s.proposals.Get(chatID)
}

// Promote moves the pending proposal to current, shifting current to
// previous, and persists the result. The proposal is only cleared after
// the write succeeds, so a persistence failure leaves it confirmable.
func (s *Store) Promote(chatID int64) (models.Donut, error) {
	p, ok := s.proposals.Get(chatID)
	if !ok {
		return nil, ErrNoProposedRound
	}

	state, err := s.Get(chatID)
	if err != nil {
		return nil, err
	}

	state.Version = models.RoundStateVersion
	state.Previous = state.Current
	state.Current = p.Donut
	state.UpdatedAt = time.Now()

	if err := s.store.Set(Key(chatID), state); err != nil {
		return nil, fmt.Errorf("failed to persist round state: %w", err)
	}

	s.proposals.Clear(chatID)
	s.logger.Info("Promoted proposal %s to current round for chat %d (%d groups)", p.ID, chatID, len(p.Donut))
	return p.Donut, nil
}
