package openai

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/korjavin/donutbot/pkg/logger"
	"github.com/sashabaranov/go-openai"
)

// Client represents an OpenAI API client used for generating chat copy.
// It is optional: the bot runs without one and falls back to static
// messages.
type Client struct {
	client *openai.Client
	model  string
	logger *logger.Logger
}

// New creates a new OpenAI client
func New(apiKey, apiBase, model string) *Client {
	config := openai.DefaultConfig(apiKey)
	if apiBase != "" {
		config.BaseURL = apiBase
	}

	client := openai.NewClientWithConfig(config)
	return &Client{
		client: client,
		model:  model,
		logger: logger.New(""),
	}
}

// GenerateIcebreaker produces one short icebreaker question for a donut
// group to open their meetup with.
func (c *Client) GenerateIcebreaker() (string, error) {
	prompt := `
You are a friendly community bot that pairs people up for casual "donut"
meetups. Generate ONE short, fun icebreaker question the group can open
their conversation with. Keep it under 20 words, no preamble, no quotes.
`
	return c.complete(prompt)
}

// GenerateChatMessage generates a playful chat message of the given kind.
// The context map is rendered into the prompt as key: value lines.
func (c *Client) GenerateChatMessage(kind string, contextData map[string]interface{}) (string, error) {
	var sb strings.Builder
	for k, v := range contextData {
		fmt.Fprintf(&sb, "%s: %v\n", k, v)
	}

	prompt := fmt.Sprintf(`
You are DonutBot, a friendly bot that schedules random small-group meetups
("donuts") in a group chat. Write a short, warm message of kind %q for the
chat. Use the following context:
%s
Keep it under 3 sentences. Reply with the message only, no quotes.
`, kind, sb.String())

	return c.complete(prompt)
}

func (c *Client) complete(prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: c.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			Temperature: 0.9,
		},
	)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
