package ai

import (
	"context"
	"net/http"

	openaisdk "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"sitegen_server/internal/types"
)

// SDKGenerator implements Client with the official openai-go SDK.
type SDKGenerator struct {
	credentialName string
	credential     func() string
	baseURL        string
	model          string
	httpClient     *http.Client
}

func NewSDKGenerator(s Settings) *SDKGenerator {
	return &SDKGenerator{
		credentialName: s.CredentialName,
		credential:     s.Credential,
		baseURL:        s.BaseURL,
		model:          s.Model,
		httpClient:     &http.Client{Timeout: s.Timeout},
	}
}

func (g *SDKGenerator) Ready() error {
	_, err := lookupKey(g.credentialName, g.credential)
	return err
}

func (g *SDKGenerator) Model() string { return g.model }

func (g *SDKGenerator) GenerateSite(ctx context.Context, spec types.PromptSpec) (string, error) {
	key, err := lookupKey(g.credentialName, g.credential)
	if err != nil {
		return "", err
	}

	opts := []option.RequestOption{
		option.WithAPIKey(key),
		option.WithHTTPClient(g.httpClient),
		option.WithMaxRetries(0),
	}
	if g.baseURL != "" {
		opts = append(opts, option.WithBaseURL(g.baseURL))
	}
	client := openaisdk.NewClient(opts...)

	resp, err := client.Chat.Completions.New(ctx, openaisdk.ChatCompletionNewParams{
		Model: openaisdk.ChatModel(g.model),
		Messages: []openaisdk.ChatCompletionMessageParamUnion{
			openaisdk.SystemMessage(spec.SystemInstruction),
			openaisdk.UserMessage(spec.UserInstruction),
		},
		Temperature: openaisdk.Float(float64(spec.Temperature)),
		MaxTokens:   openaisdk.Int(int64(spec.MaxTokens)),
	})
	if err != nil {
		return "", &UpstreamError{Err: err}
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &UpstreamError{Err: errEmptyCompletion}
	}
	return resp.Choices[0].Message.Content, nil
}
