package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/korjavin/donutbot/pkg/config"
	"github.com/korjavin/donutbot/pkg/logger"
	"github.com/korjavin/donutbot/pkg/messages"
	"github.com/korjavin/donutbot/pkg/models"
	"github.com/korjavin/donutbot/pkg/openai"
	"github.com/korjavin/donutbot/pkg/proposals"
	"github.com/korjavin/donutbot/pkg/rounds"
	"github.com/korjavin/donutbot/pkg/roster"
	"github.com/korjavin/donutbot/pkg/scheduler"
	"github.com/korjavin/donutbot/pkg/storage"
	"github.com/korjavin/donutbot/pkg/telegram"
	"github.com/korjavin/donutbot/pkg/venue"
)

// participantFrom builds a roster participant from a Telegram user. The
// numeric user ID is the stable identity; the username or first name is
// presentation only.
func participantFrom(user *tgbotapi.User) models.Participant {
	display := user.UserName
	if display == "" {
		display = user.FirstName
	}
	return models.Participant{
		ID:          strconv.FormatInt(user.ID, 10),
		DisplayName: display,
	}
}

// parseGroupSize parses an optional group size command argument.
func parseGroupSize(args string, fallback int) (int, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(args)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("group size must be a positive number")
	}
	return n, nil
}

func main() {
	// Initialize logger
	log := logger.Global
	log.Info("Starting DonutBot...")

	// Load configuration
	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Error("Failed to load configuration: %v", err)
		os.Exit(1)
	}

	// Initialize storage
	store, err := storage.New(cfg.DataDir)
	if err != nil {
		log.Error("Failed to initialize storage: %v", err)
		os.Exit(1)
	}
	defer store.Close()

	// Start BadgerDB garbage collection
	store.StartGCRoutine(10 * time.Minute)

	// Initialize OpenAI client when configured; the bot runs without it
	var openaiClient *openai.Client
	if cfg.OpenAIAPIKey != "" {
		openaiClient = openai.New(cfg.OpenAIAPIKey, cfg.OpenAIAPIBase, cfg.OpenAIModel)
	} else {
		log.Info("No OPENAI_API_KEY set, using static messages")
	}

	// Initialize Telegram bot
	bot, err := telegram.New(cfg.BotToken)
	if err != nil {
		log.Error("Failed to initialize Telegram bot: %v", err)
		os.Exit(1)
	}

	// Initialize services
	messageService := messages.New(openaiClient)
	rosterService := roster.New(store)
	roundStore := rounds.NewStore(store, proposals.New(cfg.ProposalTTL))
	roundService := rounds.New(roundStore, venue.NewTelegram(bot, messageService))
	schedulerService := scheduler.New(store, bot, rosterService, roundService, messageService,
		cfg.ScheduleWeekday, cfg.ScheduleHour, cfg.DefaultGroupSize)

	// rosterMembers loads the roster and reports problems to the chat.
	rosterMembers := func(chatID int64) ([]models.Participant, bool) {
		members, err := rosterService.Members(chatID)
		if err != nil {
			log.Error("Failed to load roster for chat %d: %v", chatID, err)
			bot.SendMessage(chatID, messageService.GenerateErrorMessage("load the member list"))
			return nil, false
		}
		return members, true
	}

	// Setup command handlers
	commandHandlers := map[string]telegram.CommandHandler{
		"start": func(message *tgbotapi.Message) {
			bot.SendMessage(message.Chat.ID, messageService.GenerateWelcomeMessage())
		},
		"join": func(message *tgbotapi.Message) {
			p := participantFrom(message.From)
			if err := rosterService.Join(message.Chat.ID, p); err != nil {
				log.Error("Failed to join roster: %v", err)
				bot.SendMessage(message.Chat.ID, messageService.GenerateErrorMessage("add you to the donut"))
				return
			}
			bot.SendMessage(message.Chat.ID, fmt.Sprintf("🍩 %s is in the donut!", p.Label()))
		},
		"leave": func(message *tgbotapi.Message) {
			p := participantFrom(message.From)
			if err := rosterService.Leave(message.Chat.ID, p.ID); err != nil {
				log.Error("Failed to leave roster: %v", err)
				bot.SendMessage(message.Chat.ID, messageService.GenerateErrorMessage("remove you from the donut"))
				return
			}
			bot.SendMessage(message.Chat.ID, fmt.Sprintf("%s left the donut.", p.Label()))
		},
		"members": func(message *tgbotapi.Message) {
			members, ok := rosterMembers(message.Chat.ID)
			if !ok {
				return
			}
			if len(members) == 0 {
				bot.SendMessage(message.Chat.ID, "No members in the donut yet. Use /join to get in.")
				return
			}
			bot.SendMessage(message.Chat.ID, "Members in the donut:\n"+messages.FormatMembers(members))
		},
		"new": func(message *tgbotapi.Message) {
			chatID := message.Chat.ID
			size, err := parseGroupSize(message.CommandArguments(), cfg.DefaultGroupSize)
			if err != nil {
				bot.SendMessage(chatID, err.Error())
				return
			}
			members, ok := rosterMembers(chatID)
			if !ok {
				return
			}
			p, err := roundService.Propose(chatID, members, size)
			if err != nil {
				if errors.Is(err, rounds.ErrEmptyRoster) {
					bot.SendMessage(chatID, "No members in the donut yet. Use /join to get in.")
					return
				}
				log.Error("Failed to propose round: %v", err)
				bot.SendMessage(chatID, messageService.GenerateErrorMessage("generate a round"))
				return
			}
			bot.SendMessage(chatID, messageService.ProposalAnnouncement(p.Donut))
		},
		"confirm": func(message *tgbotapi.Message) {
			chatID := message.Chat.ID
			donut, results, err := roundService.Confirm(chatID)
			if err != nil {
				if errors.Is(err, rounds.ErrNoProposedRound) {
					bot.SendMessage(chatID, "Nothing to confirm. Use /new to propose a round first.")
					return
				}
				log.Error("Failed to confirm round: %v", err)
				bot.SendMessage(chatID, messageService.GenerateErrorMessage("confirm the round"))
				return
			}
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
				}
			}
			if failed > 0 {
				// The round stays committed; only some announcements failed.
				bot.SendMessage(chatID, fmt.Sprintf("Round confirmed with %d groups, but %d announcement(s) failed.", len(donut), failed))
				return
			}
			bot.SendMessage(chatID, fmt.Sprintf("✅ Round confirmed, %d groups are off to meet!", len(donut)))
		},
		"current": func(message *tgbotapi.Message) {
			donut, err := roundService.Current(message.Chat.ID)
			if err != nil {
				log.Error("Failed to load current round: %v", err)
				bot.SendMessage(message.Chat.ID, messageService.GenerateErrorMessage("load the current round"))
				return
			}
			if len(donut) == 0 {
				bot.SendMessage(message.Chat.ID, "No confirmed round yet. Use /new and /confirm.")
				return
			}
			bot.SendMessage(message.Chat.ID, "Current round:\n"+messages.FormatDonut(donut))
		},
		"previous": func(message *tgbotapi.Message) {
			donut, err := roundService.Previous(message.Chat.ID)
			if err != nil {
				log.Error("Failed to load previous round: %v", err)
				bot.SendMessage(message.Chat.ID, messageService.GenerateErrorMessage("load the previous round"))
				return
			}
			if len(donut) == 0 {
				bot.SendMessage(message.Chat.ID, "No previous round recorded.")
				return
			}
			bot.SendMessage(message.Chat.ID, "Previous round:\n"+messages.FormatDonut(donut))
		},
		"sample": func(message *tgbotapi.Message) {
			chatID := message.Chat.ID
			size, err := parseGroupSize(message.CommandArguments(), cfg.DefaultGroupSize)
			if err != nil {
				bot.SendMessage(chatID, err.Error())
				return
			}
			members, ok := rosterMembers(chatID)
			if !ok {
				return
			}
			donut := roundService.Sample(members, size)
			if len(donut) == 0 {
				bot.SendMessage(chatID, "No members in the donut yet. Use /join to get in.")
				return
			}
			bot.SendMessage(chatID, "Sample round (not saved):\n"+messages.FormatDonut(donut))
		},
		"overlap": func(message *tgbotapi.Message) {
			chatID := message.Chat.ID
			size, err := parseGroupSize(message.CommandArguments(), cfg.DefaultGroupSize)
			if err != nil {
				bot.SendMessage(chatID, err.Error())
				return
			}
			members, ok := rosterMembers(chatID)
			if !ok {
				return
			}
			a, b, overlapping := roundService.OverlapTest(members, size)
			bot.SendMessage(chatID, fmt.Sprintf("Round A:\n%s\nRound B:\n%s\nOverlapping: %t",
				messages.FormatDonut(a), messages.FormatDonut(b), overlapping))
		},
	}

	// Start the weekly round scheduler
	schedulerService.Start()

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		log.Info("Shutting down...")
		schedulerService.Stop()
		store.Close()
		os.Exit(0)
	}()

	// Start the bot
	log.Info("Bot is now running. Press CTRL-C to exit.")
	if err := bot.Start(commandHandlers, nil); err != nil {
		log.Error("Error running bot: %v", err)
		os.Exit(1)
	}
}
