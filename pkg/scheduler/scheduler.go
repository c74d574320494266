package scheduler

import (
	"strconv"
	"strings"
	"time"

	"github.com/korjavin/donutbot/pkg/logger"
	"github.com/korjavin/donutbot/pkg/messages"
	"github.com/korjavin/donutbot/pkg/rounds"
	"github.com/korjavin/donutbot/pkg/roster"
	"github.com/korjavin/donutbot/pkg/storage"
	"github.com/korjavin/donutbot/pkg/telegram"
)

// Service proposes rounds on a schedule
type Service struct {
	store          *storage.Store
	bot            *telegram.Bot
	rosterService  *roster.Service
	roundService   *rounds.Service
	messageService *messages.Service
	logger         *logger.Logger
	weekday        time.Weekday
	hour           int
	groupSize      int
	lastProposed   map[int64]string // chatID -> date of last auto-proposal
	stopChan       chan struct{}
}

// New creates a new scheduler service
func New(
	store *storage.Store,
	bot *telegram.Bot,
	rosterService *roster.Service,
	roundService *rounds.Service,
	messageService *messages.Service,
	weekday time.Weekday,
	hour int,
	groupSize int,
) *Service {
	return &Service{
		store:          store,
		bot:            bot,
		rosterService:  rosterService,
		roundService:   roundService,
		messageService: messageService,
		logger:         logger.New("scheduler"),
		weekday:        weekday,
		hour:           hour,
		groupSize:      groupSize,
		lastProposed:   make(map[int64]string),
		stopChan:       make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Service) Start() {
	s.logger.Info("Starting round scheduler (%s at %02d:00)", s.weekday, s.hour)
	go s.run()
}

// Stop stops the scheduler
func (s *Service) Stop() {
	s.logger.Info("Stopping round scheduler")
	close(s.stopChan)
}

func (s *Service) run() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			if now.Weekday() == s.weekday && now.Hour() == s.hour && now.Minute() < 5 {
				s.proposeDueRounds(now)
			}
		case <-s.stopChan:
			return
		}
	}
}

// proposeDueRounds proposes a round for every chat with a roster that has
// not had one proposed today.
func (s *Service) proposeDueRounds(now time.Time) {
	today := now.Format("2006-01-02")

	keys, err := s.store.List(roster.KeyPrefix)
	if err != nil {
		s.logger.Error("Failed to list rosters: %v", err)
		return
	}

	for _, key := range keys {
		chatID, err := strconv.ParseInt(strings.TrimPrefix(key, roster.KeyPrefix), 10, 64)
		if err != nil {
			s.logger.Error("Skipping malformed roster key %s: %v", key, err)
			continue
		}

		if s.lastProposed[chatID] == today {
			continue
		}

		members, err := s.rosterService.Members(chatID)
		if err != nil {
			s.logger.Error("Failed to load roster for chat %d: %v", chatID, err)
			continue
		}
		if len(members) < 2 {
			continue
		}

		p, err := s.roundService.Propose(chatID, members, s.groupSize)
		if err != nil {
			s.logger.Error("Failed to propose scheduled round for chat %d: %v", chatID, err)
			continue
		}
		s.lastProposed[chatID] = today
		s.logger.Info("Proposed scheduled round %s for chat %d", p.ID, chatID)

		if _, err := s.bot.SendMessage(chatID, s.messageService.ProposalAnnouncement(p.Donut)); err != nil {
			s.logger.Error("Failed to announce scheduled round for chat %d: %v", chatID, err)
		}
	}
}
