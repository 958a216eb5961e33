package prompt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"viralvideos/internal/infra"
)

const (
	azureChatAPIVersion   = "2024-02-15-preview"
	azureDefaultTimeout   = 60 * time.Second
	azureMaxTokens        = 1000
	azureTemperature      = 0.7
	azureTopP             = 0.95
	maxErrorSnippetLength = 512
)

// AzureOptions configures the Azure OpenAI chat enhancer.
type AzureOptions struct {
	Settings   SettingsProvider
	HTTPClient *http.Client
	Logger     *infra.Logger
	// Fallback serves Ideas when the chat call cannot. Defaults to StaticEnhancer.
	Fallback   Enhancer
	OnFallback func(reason string, err error)
}

// AzureChat talks to an Azure OpenAI chat completions deployment.
type AzureChat struct {
	settings   SettingsProvider
	client     *http.Client
	logger     *infra.Logger
	fallback   Enhancer
	onFallback func(reason string, err error)
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content *string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// fallbackError carries the short reason reported to OnFallback.
type fallbackError struct {
	reason string
	err    error
}

func (e *fallbackError) Error() string {
	if e.err == nil {
		return e.reason
	}
	return e.reason + ": " + e.err.Error()
}

func (e *fallbackError) Unwrap() error { return e.err }

func NewAzureChat(opts AzureOptions) (*AzureChat, error) {
	if opts.Settings == nil {
		return nil, errors.New("prompt: settings provider is required")
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: azureDefaultTimeout}
	}
	logger := opts.Logger
	if logger == nil {
		l := zerolog.New(io.Discard)
		logger = &l
	}
	fallback := opts.Fallback
	if fallback == nil {
		fallback = NewStaticEnhancer()
	}
	return &AzureChat{
		settings:   opts.Settings,
		client:     client,
		logger:     logger,
		fallback:   fallback,
		onFallback: opts.OnFallback,
	}, nil
}

// Configured reports whether chat settings are complete.
func (a *AzureChat) Configured(ctx context.Context) bool {
	s, err := a.settings.ChatSettings(ctx)
	return err == nil && s.IsConfigured()
}

// Enhance rewrites idea for short-form virality. Any failure returns the
// original idea unchanged.
func (a *AzureChat) Enhance(ctx context.Context, idea, locale string) (string, error) {
	if strings.TrimSpace(idea) == "" {
		return idea, nil
	}
	text, err := a.complete(ctx, buildEnhancePrompt(idea, locale))
	if err != nil {
		a.emitFallback(err)
		return idea, nil
	}
	enhanced := extractEnhancedIdea(text)
	if enhanced == "" {
		a.emitFallback(&fallbackError{reason: "empty_extraction"})
		return idea, nil
	}
	return enhanced, nil
}

// Ideas expands req.Idea into four section prompts, using the fallback
// enhancer when the chat call fails or nothing parses.
func (a *AzureChat) Ideas(ctx context.Context, req IdeasRequest) ([]Idea, error) {
	text, err := a.complete(ctx, buildIdeasPrompt(req))
	if err != nil {
		a.emitFallback(err)
		return a.fallback.Ideas(ctx, req)
	}
	ideas := parseIdeas(text)
	if len(ideas) == 0 {
		a.emitFallback(&fallbackError{reason: "parse_ideas", err: errors.New("no Title/Content pairs in response")})
		return a.fallback.Ideas(ctx, req)
	}
	return ideas, nil
}

func (a *AzureChat) complete(ctx context.Context, userPrompt string) (string, error) {
	settings, err := a.settings.ChatSettings(ctx)
	if err != nil {
		return "", &fallbackError{reason: "load_settings", err: err}
	}
	if !settings.IsConfigured() {
		return "", &fallbackError{reason: "not_configured", err: ErrNotConfigured}
	}

	payload := chatRequest{
		Messages:    []chatMessage{{Role: "user", Content: userPrompt}},
		MaxTokens:   azureMaxTokens,
		Temperature: azureTemperature,
		TopP:        azureTopP,
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", &fallbackError{reason: "encode_request", err: err}
	}
	endpoint := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		strings.TrimRight(strings.TrimSpace(settings.Endpoint), "/"),
		url.PathEscape(strings.TrimSpace(settings.Deployment)),
		azureChatAPIVersion,
	)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", &fallbackError{reason: "build_request", err: err}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("api-key", strings.TrimSpace(settings.APIKey))

	resp, err := a.client.Do(httpReq)
	if err != nil {
		return "", &fallbackError{reason: "http_request", err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorSnippetLength))
		return "", &fallbackError{
			reason: fmt.Sprintf("http_%d", resp.StatusCode),
			err:    fmt.Errorf("azure llm status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet))),
		}
	}
	var out chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", &fallbackError{reason: "decode_response", err: err}
	}
	if len(out.Choices) == 0 || out.Choices[0].Message.Content == nil {
		return "", &fallbackError{reason: "unexpected_format", err: errors.New("response has no choices[0].message.content")}
	}
	text := strings.TrimSpace(*out.Choices[0].Message.Content)
	if text == "" {
		return "", &fallbackError{reason: "empty_response", err: errors.New("empty completion")}
	}
	return text, nil
}

func (a *AzureChat) emitFallback(err error) {
	reason := "unknown"
	var fe *fallbackError
	if errors.As(err, &fe) {
		reason = fe.reason
	}
	a.logger.Warn().Err(err).Str("reason", reason).Msg("prompt: using fallback")
	if a.onFallback != nil {
		a.onFallback(reason, errors.Unwrap(err))
	}
}

var _ Enhancer = (*AzureChat)(nil)
