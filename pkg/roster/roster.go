// Package roster keeps the per-chat donut membership. Telegram bots cannot
// list a chat's members, so people opt in with /join and out with /leave;
// the roster is the participant source for every generated round.
package roster

import (
	"fmt"
	"sort"
	"time"

	"github.com/korjavin/donutbot/pkg/logger"
	"github.com/korjavin/donutbot/pkg/models"
	"github.com/korjavin/donutbot/pkg/storage"
)

// KeyPrefix is the storage prefix for roster records, used by the
// scheduler to discover active chats.
const KeyPrefix = "roster:"

// Key returns the storage key for a chat's roster.
func Key(chatID int64) string {
	return fmt.Sprintf("%s%d", KeyPrefix, chatID)
}

// Service provides roster management functionality
type Service struct {
	store  *storage.Store
	logger *logger.Logger
}

// New creates a new roster service
func New(store *storage.Store) *Service {
	return &Service{
		store:  store,
		logger: logger.New(""),
	}
}

// getRoster retrieves the roster for a chat, creating an empty one when
// none exists yet.
func (s *Service) getRoster(chatID int64) (*models.Roster, error) {
	var roster models.Roster
	err := s.store.Get(Key(chatID), &roster)
	if err != nil {
		if err != storage.ErrNotFound {
			return nil, fmt.Errorf("failed to get roster: %w", err)
		}
		roster = models.Roster{
			ChatID:  chatID,
			Members: make(map[string]models.Participant),
		}
	}
	if roster.Members == nil {
		roster.Members = make(map[string]models.Participant)
	}
	return &roster, nil
}

// Join adds a participant to a chat's roster. Joining again updates the
// stored display name.
func (s *Service) Join(chatID int64, p models.Participant) error {
	roster, err := s.getRoster(chatID)
	if err != nil {
		return err
	}

	roster.Members[p.ID] = p
	roster.LastUpdated = time.Now()

	if err := s.store.Set(Key(chatID), roster); err != nil {
		return fmt.Errorf("failed to save roster: %w", err)
	}
	s.logger.Info("Participant %s joined roster of chat %d", p.ID, chatID)
	return nil
}

// Leave removes a participant from a chat's roster. Leaving when not a
// member is a no-op.
func (s *Service) Leave(chatID int64, participantID string) error {
	roster, err := s.getRoster(chatID)
	if err != nil {
		return err
	}

	if _, ok := roster.Members[participantID]; !ok {
		return nil
	}
	delete(roster.Members, participantID)
	roster.LastUpdated = time.Now()

	if err := s.store.Set(Key(chatID), roster); err != nil {
		return fmt.Errorf("failed to save roster: %w", err)
	}
	s.logger.Info("Participant %s left roster of chat %d", participantID, chatID)
	return nil
}

// Members returns the chat's participants, re-read from storage on every
// call and sorted by ID for stable presentation.
func (s *Service) Members(chatID int64) ([]models.Participant, error) {
	roster, err := s.getRoster(chatID)
	if err != nil {
		return nil, err
	}

	members := make([]models.Participant, 0, len(roster.Members))
	for _, p := range roster.Members {
		members = append(members, p)
	}
	sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
	return members, nil
}
