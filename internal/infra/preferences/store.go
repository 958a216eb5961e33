package preferences

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"viralvideos/internal/infra"
	"viralvideos/internal/sqlinline"
)

// Keys persisted by the settings page.
const (
	KeySoraEndpoint       = "SoraEndpoint"
	KeySoraAPIKey         = "SoraApiKey"
	KeySoraDeployment     = "SoraDeployment"
	KeyAzureLlmEndpoint   = "AzureLlmEndpoint"
	KeyAzureLlmAPIKey     = "AzureLlmApiKey"
	KeyAzureLlmDeployment = "AzureLlmDeployment"
)

// Keys lists every preference the service understands.
var Keys = []string{
	KeySoraEndpoint,
	KeySoraAPIKey,
	KeySoraDeployment,
	KeyAzureLlmEndpoint,
	KeyAzureLlmAPIKey,
	KeyAzureLlmDeployment,
}

var ErrUnknownKey = errors.New("unknown preference key")

// Store is a string key/value table of user preferences.
type Store struct {
	sql infra.SQLExecutor
}

func NewStore(sql infra.SQLExecutor) *Store {
	return &Store{sql: sql}
}

// Get returns the stored value for key, or "" when unset.
func (s *Store) Get(ctx context.Context, key string) (string, error) {
	row := s.sql.QueryRow(ctx, sqlinline.QSelectPreference, key)
	var value string
	if err := row.Scan(&value); err != nil {
		if infra.IsNoRows(err) {
			return "", nil
		}
		return "", fmt.Errorf("preferences: get %s: %w", key, err)
	}
	return strings.TrimSpace(value), nil
}

// Set stores value under key. A blank value removes the key.
func (s *Store) Set(ctx context.Context, key, value string) error {
	if !IsKnownKey(key) {
		return fmt.Errorf("preferences: set %q: %w", key, ErrUnknownKey)
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return s.Remove(ctx, key)
	}
	if _, err := s.sql.Exec(ctx, sqlinline.QUpsertPreference, key, value); err != nil {
		return fmt.Errorf("preferences: set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if _, err := s.sql.Exec(ctx, sqlinline.QDeletePreference, key); err != nil {
		return fmt.Errorf("preferences: remove %s: %w", key, err)
	}
	return nil
}

// All returns every stored preference.
func (s *Store) All(ctx context.Context) (map[string]string, error) {
	rows, err := s.sql.Query(ctx, sqlinline.QListPreferences)
	if err != nil {
		return nil, fmt.Errorf("preferences: list: %w", err)
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("preferences: scan: %w", err)
		}
		out[key] = strings.TrimSpace(value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("preferences: list: %w", err)
	}
	return out, nil
}

func IsKnownKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}
