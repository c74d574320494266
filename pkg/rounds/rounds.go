package rounds

import (
	"errors"
	"math/rand"
	"time"

	"github.com/korjavin/donutbot/pkg/logger"
	"github.com/korjavin/donutbot/pkg/models"
	"github.com/korjavin/donutbot/pkg/partition"
	"github.com/korjavin/donutbot/pkg/proposals"
	"github.com/korjavin/donutbot/pkg/venue"
)

// ErrEmptyRoster is returned when a round is requested for a chat with no
// registered participants.
var ErrEmptyRoster = errors.New("rounds: roster is empty")

// Service drives the propose/confirm workflow for donut rounds.
type Service struct {
	store  *Store
	venue  venue.Materializer
	rng    *rand.Rand
	logger *logger.Logger
}

// New creates a round service with time-seeded randomness.
func New(store *Store, materializer venue.Materializer) *Service {
	return NewWithRand(store, materializer, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewWithRand creates a round service with caller-supplied randomness so
// tests can make generation deterministic.
func NewWithRand(store *Store, materializer venue.Materializer, rng *rand.Rand) *Service {
	return &Service{
		store:  store,
		venue:  materializer,
		rng:    rng,
		logger: logger.New(""),
	}
}

// Propose generates a fresh round for the chat, avoiding the previous
// round's subgroups where possible, and records it as the pending
// proposal. Any existing proposal is replaced.
func (s *Service) Propose(chatID int64, members []models.Participant, groupSize int) (proposals.Proposal, error) {
	if len(members) == 0 {
		return proposals.Proposal{}, ErrEmptyRoster
	}

	state, err := s.store.Get(chatID)
	if err != nil {
		return proposals.Proposal{}, err
	}

	donut := Generate(s.rng, members, groupSize, state.Current)
	p := s.store.SetProposed(chatID, donut)
	s.logger.Info("Proposed round %s for chat %d: %d members in %d groups", p.ID, chatID, donut.Size(), len(donut))
	return p, nil
}

// Proposed returns the chat's pending proposal, if any.
func (s *Service) Proposed(chatID int64) (proposals.Proposal, bool) {
	return s.store.Proposed(chatID)
}

// Confirm promotes the pending proposal to the current round and
// materializes each of its subgroups. Materialization failures are
// reported per subgroup and never revert the promotion.
func (s *Service) Confirm(chatID int64) (models.Donut, []models.VenueResult, error) {
	donut, err := s.store.Promote(chatID)
	if err != nil {
		return nil, nil, err
	}

	results := venue.Dispatch(s.venue, chatID, donut)
	for _, r := range results {
		if r.Err != nil {
			s.logger.Error("Failed to materialize a group of %d in chat %d: %v", len(r.Group), chatID, r.Err)
		}
	}
	return donut, results, nil
}

// Current returns the chat's committed current round, which may be empty.
func (s *Service) Current(chatID int64) (models.Donut, error) {
	state, err := s.store.Get(chatID)
	if err != nil {
		return nil, err
	}
	return state.Current, nil
}

// Previous returns the chat's previous round, which may be empty.
func (s *Service) Previous(chatID int64) (models.Donut, error) {
	state, err := s.store.Get(chatID)
	if err != nil {
		return nil, err
	}
	return state.Previous, nil
}

// Sample generates a round without recording it anywhere.
func (s *Service) Sample(members []models.Participant, groupSize int) models.Donut {
	return partition.Partition(s.rng, members, groupSize)
}

// OverlapTest generates two independent rounds and reports whether they
// share a subgroup. Debugging aid for the overlap detector.
func (s *Service) OverlapTest(members []models.Participant, groupSize int) (models.Donut, models.Donut, bool) {
	a := partition.Partition(s.rng, members, groupSize)
	b := partition.Partition(s.rng, members, groupSize)
	return a, b, partition.Overlaps(a, b)
}
