// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package llm wraps the OpenAI-compatible generative backend used for query
// planning, relevance judgement, fact extraction, and image description.
package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/company-researcher/pkg/types"
)

// ErrNotConfigured is returned when no API key is available. Top-level
// entry points surface this as their "not configured" condition.
var ErrNotConfigured = errors.New("generative backend not configured: missing API key")

const (
	defaultModel       = "gpt-4o-mini"
	defaultVisionModel = "gpt-4o"
	visionMaxTokens    = 100
)

// Client is the generative backend contract the pipeline depends on.
// Tests supply a mock; production uses OpenAIClient.
type Client interface {
	// Complete sends a system+user prompt pair and returns plain text.
	Complete(ctx context.Context, system, user string) (string, error)

	// CompleteJSON is Complete in structured-output mode: the backend is
	// instructed to return a single JSON object.
	CompleteJSON(ctx context.Context, system, user string) (string, error)

	// Describe asks the vision-capable model to describe one image.
	Describe(ctx context.Context, imageURL, instruction string) (string, error)
}

// OpenAIClient implements Client against an OpenAI-compatible API.
type OpenAIClient struct {
	api         *openai.Client
	model       string
	visionModel string
	maxRetries  int
}

// New builds an OpenAIClient from cfg. It fails with ErrNotConfigured when
// the API key is absent; key format is not validated.
func New(cfg types.AIConfig) (*OpenAIClient, error) {
	if cfg.APIKey == "" {
		return nil, ErrNotConfigured
	}

	transport := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		transport.BaseURL = cfg.BaseURL
	}

	model := cfg.Model
	if model == "" {
		model = defaultModel
	}
	visionModel := cfg.VisionModel
	if visionModel == "" {
		visionModel = defaultVisionModel
	}
	maxRetries := cfg.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 3
	}

	return &OpenAIClient{
		api:         openai.NewClientWithConfig(transport),
		model:       model,
		visionModel: visionModel,
		maxRetries:  maxRetries,
	}, nil
}

// Complete implements Client.
func (c *OpenAIClient) Complete(ctx context.Context, system, user string) (string, error) {
	return c.chat(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
}

// CompleteJSON implements Client.
func (c *OpenAIClient) CompleteJSON(ctx context.Context, system, user string) (string, error) {
	return c.chat(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
}

// Describe implements Client using the vision model.
func (c *OpenAIClient) Describe(ctx context.Context, imageURL, instruction string) (string, error) {
	return c.chat(ctx, openai.ChatCompletionRequest{
		Model:     c.visionModel,
		MaxTokens: visionMaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: instruction},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: imageURL},
					},
				},
			},
		},
	})
}

// backoffBase controls the base duration for exponential backoff. Tests
// override this to avoid real sleeps.
var backoffBase = time.Second

// chat executes one chat completion with retries on transport failure.
func (c *OpenAIClient) chat(ctx context.Context, req openai.ChatCompletionRequest) (string, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(2, float64(attempt-1))) * backoffBase
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(backoff):
			}
		}

		resp, err := c.api.CreateChatCompletion(ctx, req)
		if err != nil {
			lastErr = err
			continue
		}
		if len(resp.Choices) == 0 {
			lastErr = fmt.Errorf("backend returned no choices")
			continue
		}
		return resp.Choices[0].Message.Content, nil
	}
	return "", fmt.Errorf("after %d retries: %w", c.maxRetries, lastErr)
}
