package ai

import (
	"context"
	"errors"

	openai "github.com/sashabaranov/go-openai"
	log "github.com/sirupsen/logrus"

	"sitegen_server/internal/types"
)

var errEmptyCompletion = errors.New("completion API returned an empty response")

// GenerateSite sends the prompt pair once and returns the raw model text.
// There are no retries; any failure comes back as *UpstreamError.
func (g *Generator) GenerateSite(ctx context.Context, spec types.PromptSpec) (string, error) {
	key, err := lookupKey(g.credentialName, g.credential)
	if err != nil {
		return "", err
	}

	config := openai.DefaultConfig(key)
	config.BaseURL = g.baseURL
	config.HTTPClient = g.httpClient
	client := openai.NewClientWithConfig(config)

	resp, err := client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: g.model,
			Messages: []openai.ChatCompletionMessage{
				{Role: openai.ChatMessageRoleSystem, Content: spec.SystemInstruction},
				{Role: openai.ChatMessageRoleUser, Content: spec.UserInstruction},
			},
			MaxTokens:   spec.MaxTokens,
			Temperature: spec.Temperature,
		},
	)
	if err != nil {
		return "", &UpstreamError{Err: err}
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		log.WithField("usage", resp.Usage).Warn("completion returned no content")
		return "", &UpstreamError{Err: errEmptyCompletion}
	}

	log.WithFields(log.Fields{
		"model":             g.model,
		"prompt_tokens":     resp.Usage.PromptTokens,
		"completion_tokens": resp.Usage.CompletionTokens,
	}).Debug("completion received")

	return resp.Choices[0].Message.Content, nil
}
