// Package anthropic adapts the Anthropic Messages API to the role-tagged
// segment sequence the orchestrator and classifier speak. System segments
// become system blocks; user and assistant segments become messages in
// order.
package anthropic

import (
	"context"
	"fmt"

	sdk "github.com/anthropics/anthropic-sdk-go"

	"github.com/loomworks/aide/core"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "claude-sonnet-4-20250514"

// Client is a synchronous chat client over the Anthropic SDK.
type Client struct {
	client    *sdk.Client
	model     string
	maxTokens int64
}

// Option configures the client.
type Option func(*Client)

// WithModel overrides the model identifier.
func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxTokens overrides the response token cap.
func WithMaxTokens(maxTokens int64) Option {
	return func(c *Client) {
		if maxTokens > 0 {
			c.maxTokens = maxTokens
		}
	}
}

// New wraps an SDK client. The SDK reads ANTHROPIC_API_KEY from the
// environment when the caller constructs it without options.
func New(client *sdk.Client, opts ...Option) *Client {
	c := &Client{
		client:    client,
		model:     DefaultModel,
		maxTokens: 4096,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Chat sends the segments and returns the concatenated text reply.
// Transport failures come back as plain errors; the orchestrator maps
// them onto its own taxonomy.
func (c *Client) Chat(ctx context.Context, segments []core.Segment) (string, error) {
	var system []sdk.TextBlockParam
	var messages []sdk.MessageParam

	for _, seg := range segments {
		switch seg.Role {
		case core.RoleSystem:
			system = append(system, sdk.TextBlockParam{Text: seg.Content})
		case core.RoleAssistant:
			messages = append(messages, sdk.NewAssistantMessage(sdk.NewTextBlock(seg.Content)))
		default:
			messages = append(messages, sdk.NewUserMessage(sdk.NewTextBlock(seg.Content)))
		}
	}

	resp, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		Messages:  messages,
		System:    system,
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	var text string
	for _, block := range resp.Content {
		if block.Type == "text" {
			text += block.Text
		}
	}
	return text, nil
}
