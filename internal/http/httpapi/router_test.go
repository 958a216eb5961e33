package httpapi

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"viralvideos/internal/domain"
	"viralvideos/internal/http/handlers"
	"viralvideos/internal/infra"
	"viralvideos/internal/infra/preferences"
	"viralvideos/internal/providers/prompt"
	"viralvideos/internal/storage"
)

type fakeVideos struct {
	mu    sync.Mutex
	items map[string]*domain.VideoRequest
	order []string
	err   error
}

func newFakeVideos() *fakeVideos {
	return &fakeVideos{items: map[string]*domain.VideoRequest{}}
}

func (f *fakeVideos) Enqueue(ctx context.Context, req *domain.VideoRequest) error {
	if f.err != nil {
		return f.err
	}
	if err := req.Validate(); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	req.ID = "0b6c1e4a-7f2d-4c1b-9e3a-5d8f2a6c4b10"
	req.Status = domain.VideoRequestQueued
	req.Progress = "Queued"
	req.CreatedAt = time.Date(2024, 8, 12, 9, 0, 0, 0, time.UTC)
	f.items[req.ID] = req
	f.order = append(f.order, req.ID)
	return nil
}

func (f *fakeVideos) ClaimNext(ctx context.Context) (*domain.VideoRequest, error) {
	return nil, domain.ErrNotFound
}
func (f *fakeVideos) UpdateProgress(ctx context.Context, id, progress string) error { return nil }
func (f *fakeVideos) MarkSucceeded(ctx context.Context, id string, result domain.VideoResult) error {
	return nil
}
func (f *fakeVideos) MarkFailed(ctx context.Context, id, kind, message string) error { return nil }
func (f *fakeVideos) RequeueRunning(ctx context.Context) (int64, error)             { return 0, nil }

func (f *fakeVideos) Get(ctx context.Context, id string) (*domain.VideoRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.items[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return req, nil
}

func (f *fakeVideos) ListRecent(ctx context.Context, limit, offset int) ([]domain.VideoRequest, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.VideoRequest
	for _, id := range f.order {
		out = append(out, *f.items[id])
	}
	return out, nil
}

type fakeSettings struct {
	values  map[string]string
	saved   map[string]string
	cleared bool
}

func (f *fakeSettings) Masked(ctx context.Context) (map[string]string, error) {
	return f.values, nil
}

func (f *fakeSettings) Save(ctx context.Context, values map[string]string) error {
	for k := range values {
		if !preferences.IsKnownKey(k) {
			return preferences.ErrUnknownKey
		}
	}
	f.saved = values
	return nil
}

func (f *fakeSettings) Clear(ctx context.Context) error {
	f.cleared = true
	return nil
}

type upperEnhancer struct{ *prompt.StaticEnhancer }

func (upperEnhancer) Enhance(_ context.Context, idea, _ string) (string, error) {
	return strings.ToUpper(idea), nil
}

type harness struct {
	handler  http.Handler
	videos   *fakeVideos
	settings *fakeSettings
	store    *storage.FileStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	h := &harness{
		videos: newFakeVideos(),
		settings: &fakeSettings{values: map[string]string{
			preferences.KeySoraEndpoint:   "https://example.openai.azure.com",
			preferences.KeySoraAPIKey:     "********abcd",
			preferences.KeySoraDeployment: "sora",
		}},
		store: store,
	}
	app := handlers.NewApp(*infra.NopLogger(), h.videos, h.settings, upperEnhancer{prompt.NewStaticEnhancer()}, store)
	h.handler = NewRouter(app, Options{
		Logger:          *infra.NopLogger(),
		AllowedOrigins:  []string{"*"},
		RateLimitPerMin: 2,
		DefaultLocale:   "en",
	})
	return h
}

func (h *harness) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decodeJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodGet, "/v1/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	body := decodeJSON(t, rec)
	assert.Equal(t, "ok", body["status"])
	assert.Equal(t, "ok", body["output_dir"])
}

func TestHealthReportsMissingOutputDir(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, os.RemoveAll(h.store.BasePath()))

	rec := h.do(http.MethodGet, "/v1/healthz", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, "degraded", body["status"])
	assert.Equal(t, "unavailable", body["output_dir"])
}

func TestVideoCreateQueuesRequest(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodPost, "/v1/videos",
		`{"prompt":"  a cat surfing ","width":854,"height":480,"seconds":5}`,
		"Accept-Language", "id-ID")

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	body := decodeJSON(t, rec)
	assert.Equal(t, "QUEUED", body["status"])
	assert.Equal(t, "a cat surfing", body["prompt"])
	assert.Equal(t, "id", body["locale"])
	assert.Equal(t, true, body["supported_size"])
	assert.Equal(t, "/v1/videos/"+body["id"].(string), rec.Header().Get("Location"))
}

func TestVideoCreateEnhancesPrompt(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodPost, "/v1/videos", `{"prompt":"a cat","width":480,"height":480,"seconds":5,"enhance":true}`)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	assert.Equal(t, "A CAT", decodeJSON(t, rec)["prompt"])
}

func TestVideoCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		code int
	}{
		{name: "blank prompt", body: `{"prompt":" ","width":480,"height":480,"seconds":5}`, code: http.StatusBadRequest},
		{name: "zero size", body: `{"prompt":"x","width":0,"height":480,"seconds":5}`, code: http.StatusBadRequest},
		{name: "unknown field", body: `{"prompt":"x","width":480,"height":480,"seconds":5,"quality":"hd"}`, code: http.StatusBadRequest},
		{name: "empty body", body: ``, code: http.StatusBadRequest},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := newHarness(t)
			rec := h.do(http.MethodPost, "/v1/videos", tc.body)
			assert.Equal(t, tc.code, rec.Code, rec.Body.String())
			assert.Empty(t, h.videos.order)
		})
	}
}

func TestVideoCreateRateLimited(t *testing.T) {
	h := newHarness(t)
	body := `{"prompt":"x","width":480,"height":480,"seconds":5}`
	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusAccepted, h.do(http.MethodPost, "/v1/videos", body).Code)
	}
	rec := h.do(http.MethodPost, "/v1/videos", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestVideoGetAndList(t *testing.T) {
	h := newHarness(t)
	created := decodeJSON(t, h.do(http.MethodPost, "/v1/videos", `{"prompt":"x","width":480,"height":480,"seconds":5}`))
	id := created["id"].(string)

	rec := h.do(http.MethodGet, "/v1/videos/"+id, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, id, decodeJSON(t, rec)["id"])

	rec = h.do(http.MethodGet, "/v1/videos", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeJSON(t, rec)["items"], 1)

	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/v1/videos/missing", "").Code)
}

func TestVideoListRepositoryError(t *testing.T) {
	h := newHarness(t)
	h.videos.err = errors.New("db down")
	rec := h.do(http.MethodGet, "/v1/videos", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal", decodeJSON(t, rec)["error"])
}

func TestVideoContent(t *testing.T) {
	h := newHarness(t)
	w, path, err := h.store.Create(context.Background(), "sora_12Aug2024_090000_a_cat.mp4")
	require.NoError(t, err)
	_, err = w.Write([]byte("mp4-bytes"))
	require.NoError(t, err)
	require.NoError(t, w.Close())

	done := &domain.VideoRequest{ID: "done", Status: domain.VideoRequestSucceeded, OutputPath: path}
	pending := &domain.VideoRequest{ID: "pending", Status: domain.VideoRequestRunning}
	outside := &domain.VideoRequest{ID: "outside", Status: domain.VideoRequestSucceeded, OutputPath: filepath.Join(os.TempDir(), "elsewhere.mp4")}
	h.videos.items["done"] = done
	h.videos.items["pending"] = pending
	h.videos.items["outside"] = outside

	rec := h.do(http.MethodGet, "/v1/videos/done/content", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "mp4-bytes", rec.Body.String())
	assert.Equal(t, "video/mp4", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "sora_12Aug2024_090000_a_cat.mp4")

	assert.Equal(t, http.StatusConflict, h.do(http.MethodGet, "/v1/videos/pending/content", "").Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/v1/videos/outside/content", "").Code)

	require.NoError(t, os.Remove(path))
	assert.Equal(t, http.StatusGone, h.do(http.MethodGet, "/v1/videos/done/content", "").Code)
}

func TestVideoArchive(t *testing.T) {
	h := newHarness(t)
	for _, name := range []string{"one", "two"} {
		w, path, err := h.store.Create(context.Background(), "sora_"+name+".mp4")
		require.NoError(t, err)
		_, err = w.Write([]byte(name))
		require.NoError(t, err)
		require.NoError(t, w.Close())
		h.videos.items[name] = &domain.VideoRequest{ID: name, Status: domain.VideoRequestSucceeded, OutputPath: path}
	}
	h.videos.items["queued"] = &domain.VideoRequest{ID: "queued", Status: domain.VideoRequestQueued}

	rec := h.do(http.MethodGet, "/v1/videos/archive?ids=one,two,one", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/zip", rec.Header().Get("Content-Type"))
	zr, err := zip.NewReader(bytes.NewReader(rec.Body.Bytes()), int64(rec.Body.Len()))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)
	assert.Equal(t, "sora_one.mp4", zr.File[0].Name)

	assert.Equal(t, http.StatusConflict, h.do(http.MethodGet, "/v1/videos/archive?ids=one,queued", "").Code)
	assert.Equal(t, http.StatusNotFound, h.do(http.MethodGet, "/v1/videos/archive?ids=nope", "").Code)
	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodGet, "/v1/videos/archive", "").Code)
}

func TestVideoSizes(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodGet, "/v1/videos/sizes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeJSON(t, rec)["items"], 6)
}

func TestSettingsRoutes(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodGet, "/v1/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, true, body["sora_configured"])
	assert.Equal(t, false, body["chat_configured"])

	rec = h.do(http.MethodPut, "/v1/settings", `{"SoraDeployment":"sora-2"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, map[string]string{"SoraDeployment": "sora-2"}, h.settings.saved)

	rec = h.do(http.MethodPut, "/v1/settings", `{"Theme":"dark"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodDelete, "/v1/settings", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, h.settings.cleared)
}

func TestPromptRoutes(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/v1/prompts/enhance", `{"idea":"morning routine"}`, "X-Locale", "id")
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeJSON(t, rec)
	assert.Equal(t, "MORNING ROUTINE", body["enhanced"])
	assert.Equal(t, "id", body["locale"])

	rec = h.do(http.MethodPost, "/v1/prompts/ideas", `{"idea":"morning routine"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeJSON(t, rec)["items"], 4)

	assert.Equal(t, http.StatusBadRequest, h.do(http.MethodPost, "/v1/prompts/enhance", `{"idea":""}`).Code)
}

func TestCORSPreflight(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodOptions, "/v1/videos", "",
		"Origin", "https://app.example",
		"Access-Control-Request-Method", "POST")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "POST", rec.Header().Get("Access-Control-Allow-Methods"))
}
