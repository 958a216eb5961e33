package handlers

import (
	"net/http"
	"strings"

	"viralvideos/internal/middleware"
	"viralvideos/internal/providers/prompt"
)

type promptEnhanceRequest struct {
	Idea string `json:"idea"`
}

type promptEnhanceResponse struct {
	Idea     string `json:"idea"`
	Enhanced string `json:"enhanced"`
	Locale   string `json:"locale"`
}

type promptIdeasRequest struct {
	Idea     string `json:"idea"`
	Enhanced bool   `json:"enhanced"`
}

func (a *App) PromptEnhance(w http.ResponseWriter, r *http.Request) {
	var req promptEnhanceRequest
	if !a.decode(w, r, &req) {
		return
	}
	idea := strings.TrimSpace(req.Idea)
	if idea == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "idea is required")
		return
	}
	locale := middleware.LocaleFromContext(r.Context())
	enhanced, err := a.Enhancer.Enhance(r.Context(), idea, locale)
	if err != nil {
		a.log(r).Error().Err(err).Msg("prompts: enhance failed")
		a.error(w, http.StatusInternalServerError, "internal", "enhancer failed")
		return
	}
	a.json(w, http.StatusOK, promptEnhanceResponse{Idea: idea, Enhanced: enhanced, Locale: locale})
}

func (a *App) PromptIdeas(w http.ResponseWriter, r *http.Request) {
	var req promptIdeasRequest
	if !a.decode(w, r, &req) {
		return
	}
	idea := strings.TrimSpace(req.Idea)
	if idea == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "idea is required")
		return
	}
	ideas, err := a.Enhancer.Ideas(r.Context(), prompt.IdeasRequest{
		Idea:     idea,
		Enhanced: req.Enhanced,
		Locale:   middleware.LocaleFromContext(r.Context()),
	})
	if err != nil {
		a.log(r).Error().Err(err).Msg("prompts: ideas failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to build ideas")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": ideas})
}
