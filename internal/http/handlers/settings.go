package handlers

import (
	"errors"
	"net/http"
	"strings"

	"viralvideos/internal/infra/preferences"
)

type settingsResponse struct {
	Settings       map[string]string `json:"settings"`
	SoraConfigured bool              `json:"sora_configured"`
	ChatConfigured bool              `json:"chat_configured"`
}

func (a *App) SettingsGet(w http.ResponseWriter, r *http.Request) {
	a.writeSettings(w, r)
}

// SettingsUpdate stores the provided keys. Blank values clear an override.
func (a *App) SettingsUpdate(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if !a.decode(w, r, &req) {
		return
	}
	if err := a.Settings.Save(r.Context(), req); err != nil {
		if errors.Is(err, preferences.ErrUnknownKey) {
			a.error(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		a.log(r).Error().Err(err).Msg("settings: save failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to save settings")
		return
	}
	a.writeSettings(w, r)
}

func (a *App) SettingsClear(w http.ResponseWriter, r *http.Request) {
	if err := a.Settings.Clear(r.Context()); err != nil {
		a.log(r).Error().Err(err).Msg("settings: clear failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to clear settings")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *App) writeSettings(w http.ResponseWriter, r *http.Request) {
	values, err := a.Settings.Masked(r.Context())
	if err != nil {
		a.log(r).Error().Err(err).Msg("settings: load failed")
		a.error(w, http.StatusInternalServerError, "internal", "failed to load settings")
		return
	}
	a.json(w, http.StatusOK, settingsResponse{
		Settings: values,
		SoraConfigured: allSet(values,
			preferences.KeySoraEndpoint, preferences.KeySoraAPIKey, preferences.KeySoraDeployment),
		ChatConfigured: allSet(values,
			preferences.KeyAzureLlmEndpoint, preferences.KeyAzureLlmAPIKey, preferences.KeyAzureLlmDeployment),
	})
}

func allSet(values map[string]string, keys ...string) bool {
	for _, k := range keys {
		if strings.TrimSpace(values[k]) == "" {
			return false
		}
	}
	return true
}
