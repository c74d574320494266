package messages

import (
	"strings"

	"github.com/korjavin/donutbot/pkg/logger"
	"github.com/korjavin/donutbot/pkg/models"
	"github.com/korjavin/donutbot/pkg/openai"
)

// Service provides message formatting and generation. The OpenAI client is
// optional; without it every generator uses its static fallback.
type Service struct {
	openaiClient *openai.Client
	logger       *logger.Logger
}

// New creates a new message service
func New(openaiClient *openai.Client) *Service {
	return &Service{
		openaiClient: openaiClient,
		logger:       logger.New(""),
	}
}

// FormatDonut renders a donut as a bullet list, one line per subgroup.
func FormatDonut(d models.Donut) string {
	var sb strings.Builder
	for _, group := range d {
		sb.WriteString(" - ")
		names := make([]string, len(group))
		for i, p := range group {
			names[i] = p.Label()
		}
		sb.WriteString(strings.Join(names, ", "))
		sb.WriteString("\n")
	}
	return sb.String()
}

// FormatMembers renders a member list, one line per participant.
func FormatMembers(members []models.Participant) string {
	var sb strings.Builder
	for _, p := range members {
		sb.WriteString(" - ")
		sb.WriteString(p.Label())
		sb.WriteString("\n")
	}
	return sb.String()
}

// Mentions renders a subgroup's members as a mention line.
func Mentions(group models.Group) string {
	names := make([]string, len(group))
	for i, p := range group {
		names[i] = "@" + strings.TrimPrefix(p.Label(), "@")
	}
	return strings.Join(names, " ")
}

// GenerateWelcomeMessage generates a welcome message
func (s *Service) GenerateWelcomeMessage() string {
	if s.openaiClient != nil {
		msg, err := s.openaiClient.GenerateChatMessage("welcome", map[string]interface{}{
			"purpose": "Pair chat members into small random groups for regular meetups",
		})
		if err == nil {
			return msg
		}
		s.logger.Error("Failed to generate welcome message: %v", err)
	}
	return "👋 I'm DonutBot! I pair chat members into small random groups for regular meetups. Use /join to get in the rotation."
}

// GenerateIcebreaker returns an icebreaker question for a subgroup, with a
// static fallback when no LLM is configured or the call fails.
func (s *Service) GenerateIcebreaker() string {
	if s.openaiClient != nil {
		msg, err := s.openaiClient.GenerateIcebreaker()
		if err == nil {
			return msg
		}
		s.logger.Error("Failed to generate icebreaker: %v", err)
	}
	return "What's the best thing that happened to you this week?"
}

// GroupAnnouncement builds the message materializing one subgroup: a
// mention line plus an icebreaker to get the conversation going.
func (s *Service) GroupAnnouncement(group models.Group) string {
	return "🍩 Donut time! " + Mentions(group) + " — you're a group this round. Find a time to meet!\n\nIcebreaker: " + s.GenerateIcebreaker()
}

// GenerateErrorMessage generates an error message
func (s *Service) GenerateErrorMessage(context string) string {
	if s.openaiClient != nil {
		msg, err := s.openaiClient.GenerateChatMessage("error", map[string]interface{}{
			"context": context,
		})
		if err == nil {
			return msg
		}
		s.logger.Error("Failed to generate error message: %v", err)
	}
	return "😢 Sorry, I couldn't " + context + ". Please try again later."
}

// ProposalAnnouncement builds the message shown when a round is proposed.
func (s *Service) ProposalAnnouncement(d models.Donut) string {
	return "🍩 Here's the proposed donut round:\n" + FormatDonut(d) + "\nSend /confirm to lock it in, or /new to reshuffle."
}
