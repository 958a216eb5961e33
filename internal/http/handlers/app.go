package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"viralvideos/internal/domain"
	"viralvideos/internal/infra"
	"viralvideos/internal/providers/prompt"
	"viralvideos/internal/storage"
)

const maxBodyBytes = 1 << 20

// SettingsStore reads and edits the provider preferences.
type SettingsStore interface {
	Masked(ctx context.Context) (map[string]string, error)
	Save(ctx context.Context, values map[string]string) error
	Clear(ctx context.Context) error
}

type App struct {
	Logger   infra.Logger
	Videos   domain.VideoRequestRepository
	Settings SettingsStore
	Enhancer prompt.Enhancer
	Store    *storage.FileStore
}

func NewApp(logger infra.Logger, videos domain.VideoRequestRepository, settings SettingsStore, enhancer prompt.Enhancer, store *storage.FileStore) *App {
	if enhancer == nil {
		enhancer = prompt.NewStaticEnhancer()
	}
	return &App{
		Logger:   logger,
		Videos:   videos,
		Settings: settings,
		Enhancer: enhancer,
		Store:    store,
	}
}

type errorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, errCode, message string) {
	a.json(w, code, errorBody{Error: errCode, Message: message})
}

// decode reads a JSON body into v, rejecting unknown fields and oversize bodies.
func (a *App) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			a.error(w, http.StatusRequestEntityTooLarge, "too_large", "request body is too large")
			return false
		}
		if errors.Is(err, io.EOF) {
			a.error(w, http.StatusBadRequest, "bad_request", "request body is required")
			return false
		}
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return false
	}
	return true
}

// log returns the request-scoped logger set by the access log middleware.
func (a *App) log(r *http.Request) *zerolog.Logger {
	l := zerolog.Ctx(r.Context())
	if l.GetLevel() == zerolog.Disabled {
		return &a.Logger
	}
	return l
}
