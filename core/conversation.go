// Package core provides the conversation loop for gptcore: it keeps the
// transcript, calls the completion provider once per turn and accumulates a
// running cost estimate from the reported token counts.
package core

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/nox-hq/gptcore/assist"
)

// DefaultTemperature favors deterministic replies.
const DefaultTemperature = 0.1

// Input returns the next user prompt. An empty prompt ends the session.
type Input func() (string, error)

// Output receives the trimmed reply of a completed turn and its usage.
type Output func(reply string, usage UsageInfo)

// Conversation drives request/response turns against a Provider. The
// transcript and running price are owned by the Conversation and live for
// one session. A Conversation is not safe for concurrent use.
type Conversation struct {
	provider    assist.Provider
	model       string
	temperature float64
	pricing     Pricing
	logger      *slog.Logger
	sessionID   string

	messages []assist.Message
	price    float64
	turns    int
}

// Option configures a Conversation.
type Option func(*Conversation)

// WithModel sets the model identifier sent with every request.
func WithModel(model string) Option {
	return func(c *Conversation) { c.model = model }
}

// WithTemperature sets the sampling temperature sent with every request.
func WithTemperature(t float64) Option {
	return func(c *Conversation) { c.temperature = t }
}

// WithPricing sets the per-token rates used for the running price.
func WithPricing(p Pricing) Option {
	return func(c *Conversation) { c.pricing = p }
}

// WithLogger sets a custom logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Conversation) { c.logger = l }
}

// WithSessionID overrides the generated session identifier used in logs.
func WithSessionID(id string) Option {
	return func(c *Conversation) { c.sessionID = id }
}

// New creates a Conversation that sends its transcript to provider.
// Defaults: assist.DefaultModel, DefaultTemperature, DefaultPricing(),
// slog.Default() and a random session ID.
func New(provider assist.Provider, opts ...Option) *Conversation {
	c := &Conversation{
		provider:    provider,
		model:       assist.DefaultModel,
		temperature: DefaultTemperature,
		pricing:     DefaultPricing(),
		logger:      slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	if c.sessionID == "" {
		c.sessionID = uuid.NewString()
	}
	c.logger = c.logger.With("session", c.sessionID)
	return c
}

// Run reads prompts from input until it returns an empty prompt, completing
// one turn per prompt and handing each reply to output.
//
// A completion failure ends the session: the error is returned and the
// unanswered user message stays in the transcript. Errors from input are
// returned unchanged.
func (c *Conversation) Run(ctx context.Context, input Input, output Output) error {
	for {
		prompt, err := input()
		if err != nil {
			return err
		}
		if prompt == "" {
			c.logger.Debug("session ended", "turns", c.turns, "price", c.price)
			return nil
		}

		reply, usage, err := c.Turn(ctx, prompt)
		if err != nil {
			return err
		}
		output(reply, usage)
	}
}

// Turn appends prompt as a user message, sends the whole transcript to the
// provider and appends the reply exactly as received. The returned reply is
// trimmed of surrounding whitespace; the transcript copy is not.
//
// On failure nothing is rolled back: the user message remains as the last
// transcript entry and the running price is unchanged.
func (c *Conversation) Turn(ctx context.Context, prompt string) (string, UsageInfo, error) {
	c.messages = append(c.messages, assist.Message{Role: assist.RoleUser, Content: prompt})

	resp, err := c.provider.Complete(ctx, assist.Request{
		Model:       c.model,
		Messages:    c.Transcript(),
		Temperature: c.temperature,
	})
	if err != nil {
		c.logger.Warn("completion failed", "turn", c.turns+1, "error", err)
		return "", UsageInfo{}, fmt.Errorf("completing turn %d: %w", c.turns+1, err)
	}

	c.messages = append(c.messages, resp.Message)
	c.price += c.pricing.Cost(resp.PromptTokens, resp.CompletionTokens)
	c.turns++

	usage := UsageInfo{
		PromptTokens:     resp.PromptTokens,
		CompletionTokens: resp.CompletionTokens,
		Price:            c.price,
	}
	c.logger.Debug("turn completed",
		"turn", c.turns,
		"prompt_tokens", usage.PromptTokens,
		"completion_tokens", usage.CompletionTokens,
		"price", usage.Price,
	)

	return strings.TrimSpace(resp.Message.Content), usage, nil
}

// Transcript returns a copy of the messages exchanged so far.
func (c *Conversation) Transcript() []assist.Message {
	out := make([]assist.Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// Price returns the session-cumulative cost estimate in USD.
func (c *Conversation) Price() float64 { return c.price }

// Turns returns the number of completed turns.
func (c *Conversation) Turns() int { return c.turns }

// SessionID returns the identifier attached to this conversation's logs.
func (c *Conversation) SessionID() string { return c.sessionID }

// Model returns the model identifier sent with every request.
func (c *Conversation) Model() string { return c.model }
