package handlers

import (
	"net/http"
	"os"
)

type healthResponse struct {
	Status    string `json:"status"`
	OutputDir string `json:"output_dir"`
}

// Health reports whether the video output directory is reachable. A missing
// or unreadable directory answers 503.
func (a *App) Health(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok", OutputDir: "ok"}
	if a.Store == nil {
		resp.OutputDir = "not_configured"
	} else if info, err := os.Stat(a.Store.BasePath()); err != nil || !info.IsDir() {
		a.log(r).Warn().Err(err).Str("dir", a.Store.BasePath()).Msg("health: output directory unavailable")
		resp.Status = "degraded"
		resp.OutputDir = "unavailable"
		a.json(w, http.StatusServiceUnavailable, resp)
		return
	}
	a.json(w, http.StatusOK, resp)
}
