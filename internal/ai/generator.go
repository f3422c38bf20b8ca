package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"sitegen_server/internal/types"
)

const (
	ProviderGroq             = "groq"
	ProviderOpenAICompatible = "openai-compatible"
	ProviderOpenAI           = "openai"

	GroqBaseURL      = "https://api.groq.com/openai/v1"
	GroqDefaultModel = "compound-beta"

	OpenAIDefaultModel = "gpt-4o-mini"

	DefaultCredentialName = "GROQ_API_KEY"
	DefaultTimeout        = 60 * time.Second
)

// Client is a single-shot site generator backed by a completion API.
type Client interface {
	// Ready reports a *ConfigurationError when the credential is missing.
	Ready() error
	GenerateSite(ctx context.Context, spec types.PromptSpec) (string, error)
}

// Settings configure a Client.
type Settings struct {
	Provider       string
	BaseURL        string
	Model          string
	CredentialName string
	// Credential is called on every request so a key can be provisioned
	// without a restart.
	Credential func() string
	Timeout    time.Duration
}

// Generator talks to Groq or any other OpenAI-compatible endpoint through
// go-openai.
type Generator struct {
	credentialName string
	credential     func() string
	baseURL        string
	model          string
	httpClient     *http.Client
}

// New picks the implementation for s.Provider.
func New(s Settings) (Client, error) {
	if s.Credential == nil {
		return nil, fmt.Errorf("credential lookup is required")
	}
	if s.CredentialName == "" {
		s.CredentialName = DefaultCredentialName
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}

	switch strings.ToLower(s.Provider) {
	case "", ProviderGroq:
		if s.BaseURL == "" {
			s.BaseURL = GroqBaseURL
		}
		if s.Model == "" {
			s.Model = GroqDefaultModel
		}
		return NewGenerator(s), nil
	case ProviderOpenAICompatible:
		// Generic OpenAI-compatible gateways have no sensible default URL.
		if s.BaseURL == "" {
			return nil, fmt.Errorf("llm provider %s requires a base URL", s.Provider)
		}
		if s.Model == "" {
			return nil, fmt.Errorf("llm provider %s requires a model", s.Provider)
		}
		return NewGenerator(s), nil
	case ProviderOpenAI:
		if s.Model == "" {
			s.Model = OpenAIDefaultModel
		}
		return NewSDKGenerator(s), nil
	default:
		return nil, fmt.Errorf("llm provider %s not supported", s.Provider)
	}
}

func NewGenerator(s Settings) *Generator {
	return &Generator{
		credentialName: s.CredentialName,
		credential:     s.Credential,
		baseURL:        s.BaseURL,
		model:          s.Model,
		httpClient:     &http.Client{Timeout: s.Timeout},
	}
}

// Ready checks the credential without calling the API.
func (g *Generator) Ready() error {
	_, err := lookupKey(g.credentialName, g.credential)
	return err
}

// Model returns the model name sent with each request.
func (g *Generator) Model() string { return g.model }

func lookupKey(name string, lookup func() string) (string, error) {
	key := strings.TrimSpace(lookup())
	if key == "" {
		return "", &ConfigurationError{Name: name}
	}
	return key, nil
}
