package prompt

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

type staticSettings Settings

func (s staticSettings) ChatSettings(context.Context) (Settings, error) {
	return Settings(s), nil
}

var configured = staticSettings{Endpoint: "https://llm.example.com/", APIKey: "chat-key", Deployment: "gpt-4o"}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func completion(text string) string {
	raw, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": text}}},
	})
	return string(raw)
}

func TestAzureChatEnhanceRequestShape(t *testing.T) {
	t.Parallel()
	var captured *http.Request
	var body chatRequest
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		captured = r
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		return jsonResponse(http.StatusOK, completion("Sure!\nEnhanced idea: A cat DJ drops a beat at sunrise")), nil
	})}
	chat, err := NewAzureChat(AzureOptions{Settings: configured, HTTPClient: client})
	if err != nil {
		t.Fatalf("NewAzureChat returned error: %v", err)
	}

	got, err := chat.Enhance(context.Background(), "cat playing music", "en")
	if err != nil {
		t.Fatalf("Enhance returned error: %v", err)
	}
	if got != "A cat DJ drops a beat at sunrise" {
		t.Fatalf("Enhance() = %q", got)
	}
	wantURL := "https://llm.example.com/openai/deployments/gpt-4o/chat/completions?api-version=2024-02-15-preview"
	if captured.URL.String() != wantURL {
		t.Fatalf("url = %q, want %q", captured.URL.String(), wantURL)
	}
	if captured.Header.Get("api-key") != "chat-key" {
		t.Fatalf("api-key header = %q", captured.Header.Get("api-key"))
	}
	if body.MaxTokens != 1000 || body.Temperature != 0.7 || body.TopP != 0.95 {
		t.Fatalf("sampling params = %+v", body)
	}
	if len(body.Messages) != 1 || body.Messages[0].Role != "user" || !strings.Contains(body.Messages[0].Content, "Original idea: cat playing music") {
		t.Fatalf("messages = %+v", body.Messages)
	}
}

func TestAzureChatEnhanceFallsBackToOriginal(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		settings SettingsProvider
		rt       roundTripFunc
		reason   string
	}{
		{
			name:     "not configured",
			settings: staticSettings{Endpoint: "https://llm.example.com"},
			reason:   "not_configured",
		},
		{
			name:     "transport error",
			settings: configured,
			rt: func(*http.Request) (*http.Response, error) {
				return nil, errors.New("boom")
			},
			reason: "http_request",
		},
		{
			name:     "server error",
			settings: configured,
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusTooManyRequests, `{"error":"slow down"}`), nil
			},
			reason: "http_429",
		},
		{
			name:     "no choices",
			settings: configured,
			rt: func(*http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{"choices":[]}`), nil
			},
			reason: "unexpected_format",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			var calls int
			rt := tc.rt
			client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
				calls++
				if rt == nil {
					return nil, errors.New("unexpected call")
				}
				return rt(r)
			})}
			var gotReason string
			chat, err := NewAzureChat(AzureOptions{
				Settings:   tc.settings,
				HTTPClient: client,
				OnFallback: func(reason string, err error) { gotReason = reason },
			})
			if err != nil {
				t.Fatalf("NewAzureChat returned error: %v", err)
			}
			got, err := chat.Enhance(context.Background(), "original idea", "en")
			if err != nil {
				t.Fatalf("Enhance returned error: %v", err)
			}
			if got != "original idea" {
				t.Fatalf("Enhance() = %q, want original idea", got)
			}
			if gotReason != tc.reason {
				t.Fatalf("fallback reason = %q, want %q", gotReason, tc.reason)
			}
			if tc.rt == nil && calls != 0 {
				t.Fatalf("expected no http calls, got %d", calls)
			}
		})
	}
}

func TestAzureChatEnhanceBlankIdea(t *testing.T) {
	t.Parallel()
	chat, err := NewAzureChat(AzureOptions{Settings: configured, HTTPClient: &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		t.Fatal("no request expected for a blank idea")
		return nil, nil
	})}})
	if err != nil {
		t.Fatalf("NewAzureChat returned error: %v", err)
	}
	if got, _ := chat.Enhance(context.Background(), "  ", "en"); got != "  " {
		t.Fatalf("Enhance() = %q, want input unchanged", got)
	}
}

func TestAzureChatIdeas(t *testing.T) {
	t.Parallel()
	response := "Prompts:\n1. Title: opening hook\nContent: Open on a close-up of the cat's paws hitting the keys.\n\n" +
		"2. Title: Main Content\nContent: Cut between the cat and the crowd.\n" +
		"3. **Title:** Engagement Boost\n**Content:** Ask viewers to name the song.\n" +
		"4. Title: Call to Action\nFollow for part two."
	var prompt string
	client := &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
		var body chatRequest
		_ = json.NewDecoder(r.Body).Decode(&body)
		prompt = body.Messages[0].Content
		return jsonResponse(http.StatusOK, completion(response)), nil
	})}
	chat, err := NewAzureChat(AzureOptions{Settings: configured, HTTPClient: client})
	if err != nil {
		t.Fatalf("NewAzureChat returned error: %v", err)
	}

	ideas, err := chat.Ideas(context.Background(), IdeasRequest{Idea: "cat DJ", Enhanced: true, Locale: "id-ID"})
	if err != nil {
		t.Fatalf("Ideas returned error: %v", err)
	}
	if !strings.Contains(prompt, "(This idea has been AI-enhanced)") {
		t.Fatalf("prompt missing enhanced marker: %q", prompt)
	}
	if !strings.Contains(prompt, "Write the response in Indonesian.") {
		t.Fatalf("prompt missing language instruction: %q", prompt)
	}
	want := []Idea{
		{Title: "Opening Hook", Content: "Open on a close-up of the cat's paws hitting the keys.", Category: CategoryHook},
		{Title: "Main Content", Content: "Cut between the cat and the crowd.", Category: CategoryContent},
		{Title: "Engagement Boost", Content: "Ask viewers to name the song.", Category: CategoryEngagement},
		{Title: "Call To Action", Content: "Follow for part two.", Category: CategoryCTA},
	}
	if len(ideas) != len(want) {
		t.Fatalf("ideas = %+v", ideas)
	}
	for i := range want {
		if ideas[i] != want[i] {
			t.Fatalf("ideas[%d] = %+v, want %+v", i, ideas[i], want[i])
		}
	}
}

func TestAzureChatIdeasFallback(t *testing.T) {
	t.Parallel()
	client := &http.Client{Transport: roundTripFunc(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, completion("I cannot help with that.")), nil
	})}
	var reason string
	chat, err := NewAzureChat(AzureOptions{Settings: configured, HTTPClient: client, OnFallback: func(r string, _ error) { reason = r }})
	if err != nil {
		t.Fatalf("NewAzureChat returned error: %v", err)
	}
	ideas, err := chat.Ideas(context.Background(), IdeasRequest{Idea: "skateboarding dog"})
	if err != nil {
		t.Fatalf("Ideas returned error: %v", err)
	}
	if reason != "parse_ideas" {
		t.Fatalf("reason = %q, want parse_ideas", reason)
	}
	if len(ideas) != 4 || ideas[0].Title != "Opening Hook" || ideas[3].Category != CategoryCTA {
		t.Fatalf("ideas = %+v", ideas)
	}
	if !strings.HasSuffix(ideas[0].Content, ": skateboarding dog") {
		t.Fatalf("hook content = %q", ideas[0].Content)
	}
}
