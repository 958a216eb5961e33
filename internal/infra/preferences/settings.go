package preferences

import (
	"context"
	"fmt"
	"strings"

	"viralvideos/internal/providers/prompt"
	"viralvideos/internal/providers/video"
)

// Defaults hold the environment-provided values used when a preference is unset.
type Defaults struct {
	SoraEndpoint   string
	SoraAPIKey     string
	SoraDeployment string
	ChatEndpoint   string
	ChatAPIKey     string
	ChatDeployment string
}

// Settings resolves provider settings from stored preferences, falling back
// to Defaults. Values are read on every call so edits apply to the next run.
type Settings struct {
	store    *Store
	defaults Defaults
}

func NewSettings(store *Store, defaults Defaults) *Settings {
	return &Settings{store: store, defaults: defaults}
}

func (s *Settings) SoraSettings(ctx context.Context) (video.Settings, error) {
	values, err := s.resolve(ctx)
	if err != nil {
		return video.Settings{}, err
	}
	return video.Settings{
		Endpoint:   values[KeySoraEndpoint],
		APIKey:     values[KeySoraAPIKey],
		Deployment: values[KeySoraDeployment],
	}, nil
}

func (s *Settings) ChatSettings(ctx context.Context) (prompt.Settings, error) {
	values, err := s.resolve(ctx)
	if err != nil {
		return prompt.Settings{}, err
	}
	return prompt.Settings{
		Endpoint:   values[KeyAzureLlmEndpoint],
		APIKey:     values[KeyAzureLlmAPIKey],
		Deployment: values[KeyAzureLlmDeployment],
	}, nil
}

// Save stores each provided key. Blank values clear the stored override.
// Unknown keys are rejected before anything is written.
func (s *Settings) Save(ctx context.Context, values map[string]string) error {
	for key := range values {
		if !IsKnownKey(key) {
			return fmt.Errorf("preferences: save %q: %w", key, ErrUnknownKey)
		}
	}
	for _, key := range Keys {
		value, ok := values[key]
		if !ok {
			continue
		}
		if err := s.store.Set(ctx, key, value); err != nil {
			return err
		}
	}
	return nil
}

// Clear removes every stored override.
func (s *Settings) Clear(ctx context.Context) error {
	for _, key := range Keys {
		if err := s.store.Remove(ctx, key); err != nil {
			return err
		}
	}
	return nil
}

// Masked returns the effective values with API keys redacted.
func (s *Settings) Masked(ctx context.Context) (map[string]string, error) {
	values, err := s.resolve(ctx)
	if err != nil {
		return nil, err
	}
	values[KeySoraAPIKey] = MaskSecret(values[KeySoraAPIKey])
	values[KeyAzureLlmAPIKey] = MaskSecret(values[KeyAzureLlmAPIKey])
	return values, nil
}

func (s *Settings) resolve(ctx context.Context) (map[string]string, error) {
	stored, err := s.store.All(ctx)
	if err != nil {
		return nil, err
	}
	defaults := map[string]string{
		KeySoraEndpoint:       s.defaults.SoraEndpoint,
		KeySoraAPIKey:         s.defaults.SoraAPIKey,
		KeySoraDeployment:     s.defaults.SoraDeployment,
		KeyAzureLlmEndpoint:   s.defaults.ChatEndpoint,
		KeyAzureLlmAPIKey:     s.defaults.ChatAPIKey,
		KeyAzureLlmDeployment: s.defaults.ChatDeployment,
	}
	out := make(map[string]string, len(Keys))
	for _, key := range Keys {
		if v := strings.TrimSpace(stored[key]); v != "" {
			out[key] = v
			continue
		}
		out[key] = strings.TrimSpace(defaults[key])
	}
	return out, nil
}

// MaskSecret keeps the last four characters of a secret.
func MaskSecret(secret string) string {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", 8) + secret[len(secret)-4:]
}

var (
	_ video.SettingsProvider  = (*Settings)(nil)
	_ prompt.SettingsProvider = (*Settings)(nil)
)
