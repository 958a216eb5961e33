package handlers

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"viralvideos/internal/domain"
	"viralvideos/internal/middleware"
	"viralvideos/internal/providers/video"
)

const defaultListLimit = 20

type createVideoRequest struct {
	Prompt  string `json:"prompt"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Seconds int    `json:"seconds"`
	Model   string `json:"model"`
	// Enhance rewrites the prompt through the text-completion peer before queueing.
	Enhance bool `json:"enhance"`
}

type videoRequestResponse struct {
	ID           string    `json:"id"`
	Prompt       string    `json:"prompt"`
	Width        int       `json:"width"`
	Height       int       `json:"height"`
	Seconds      int       `json:"seconds"`
	Model        string    `json:"model,omitempty"`
	Locale       string    `json:"locale"`
	Status       string    `json:"status"`
	Progress     string    `json:"progress"`
	Filename     string    `json:"filename,omitempty"`
	Bytes        int64     `json:"bytes,omitempty"`
	ErrorKind    string    `json:"error_kind,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty"`
	Supported    bool      `json:"supported_size"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (a *App) VideoSizes(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{"items": video.SupportedSizes})
}

// VideoCreate validates and queues a generation; the worker picks it up.
func (a *App) VideoCreate(w http.ResponseWriter, r *http.Request) {
	var body createVideoRequest
	if !a.decode(w, r, &body) {
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	req := &domain.VideoRequest{
		Prompt:  strings.TrimSpace(body.Prompt),
		Width:   body.Width,
		Height:  body.Height,
		Seconds: body.Seconds,
		Model:   strings.TrimSpace(body.Model),
		Locale:  locale,
	}
	if err := req.Validate(); err != nil {
		a.error(w, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}
	if body.Enhance {
		enhanced, err := a.Enhancer.Enhance(r.Context(), req.Prompt, locale)
		if err == nil && strings.TrimSpace(enhanced) != "" {
			req.Prompt = strings.TrimSpace(enhanced)
		}
	}
	if !video.IsSupportedSize(req.Width, req.Height) {
		a.log(r).Warn().Int("width", req.Width).Int("height", req.Height).Msg("videos: unsupported size queued")
	}
	if err := a.Videos.Enqueue(r.Context(), req); err != nil {
		if errors.Is(err, domain.ErrInvalidInput) {
			a.error(w, http.StatusBadRequest, "invalid_request", err.Error())
			return
		}
		a.log(r).Error().Err(err).Msg("videos: enqueue failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to queue video")
		return
	}
	w.Header().Set("Location", "/v1/videos/"+req.ID)
	a.json(w, http.StatusAccepted, toVideoResponse(req))
}

func (a *App) VideoList(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit <= 0 {
		limit = defaultListLimit
	}
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	list, err := a.Videos.ListRecent(r.Context(), limit, offset)
	if err != nil {
		a.log(r).Error().Err(err).Msg("videos: list failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load videos")
		return
	}
	items := make([]videoRequestResponse, 0, len(list))
	for i := range list {
		items = append(items, toVideoResponse(&list[i]))
	}
	a.json(w, http.StatusOK, map[string]any{"items": items})
}

func (a *App) VideoGet(w http.ResponseWriter, r *http.Request) {
	req, ok := a.loadVideo(w, r)
	if !ok {
		return
	}
	a.json(w, http.StatusOK, toVideoResponse(req))
}

// VideoContent streams the saved mp4 of a finished request.
func (a *App) VideoContent(w http.ResponseWriter, r *http.Request) {
	req, ok := a.loadVideo(w, r)
	if !ok {
		return
	}
	if req.Status != domain.VideoRequestSucceeded || req.OutputPath == "" {
		a.error(w, http.StatusConflict, "not_ready", domain.ErrNotFinished.Error())
		return
	}
	f, err := a.Store.Open(req.OutputPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			a.error(w, http.StatusGone, "gone", "video file no longer exists")
			return
		}
		a.log(r).Error().Err(err).Str("path", req.OutputPath).Msg("videos: open content failed")
		a.error(w, http.StatusNotFound, "not_found", "video file unavailable")
		return
	}
	defer func() {
		_ = f.Close()
	}()
	info, err := f.Stat()
	if err != nil {
		a.error(w, http.StatusInternalServerError, "internal", "failed to read video")
		return
	}
	name := filepath.Base(req.OutputPath)
	w.Header().Set("Content-Type", "video/mp4")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	http.ServeContent(w, r, name, info.ModTime(), f)
}

func (a *App) loadVideo(w http.ResponseWriter, r *http.Request) (*domain.VideoRequest, bool) {
	id := chi.URLParam(r, "id")
	req, err := a.Videos.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			a.error(w, http.StatusNotFound, "not_found", "video request not found")
			return nil, false
		}
		a.log(r).Error().Err(err).Str("id", id).Msg("videos: load failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load video request")
		return nil, false
	}
	return req, true
}

func toVideoResponse(req *domain.VideoRequest) videoRequestResponse {
	out := videoRequestResponse{
		ID:           req.ID,
		Prompt:       req.Prompt,
		Width:        req.Width,
		Height:       req.Height,
		Seconds:      req.Seconds,
		Model:        req.Model,
		Locale:       req.Locale,
		Status:       string(req.Status),
		Progress:     req.Progress,
		Bytes:        req.Bytes,
		ErrorKind:    req.ErrorKind,
		ErrorMessage: req.ErrorMessage,
		Supported:    video.IsSupportedSize(req.Width, req.Height),
		CreatedAt:    req.CreatedAt,
		UpdatedAt:    req.UpdatedAt,
	}
	if req.OutputPath != "" {
		out.Filename = filepath.Base(req.OutputPath)
	}
	return out
}
