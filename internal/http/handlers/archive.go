package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"viralvideos/internal/domain"
	"viralvideos/pkg/zip"
)

const maxArchiveItems = 20

// VideoArchive streams several finished videos as one zip: ?ids=a,b,c.
func (a *App) VideoArchive(w http.ResponseWriter, r *http.Request) {
	ids := splitIDs(r.URL.Query().Get("ids"))
	if len(ids) == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "ids is required")
		return
	}
	if len(ids) > maxArchiveItems {
		a.error(w, http.StatusBadRequest, "bad_request", fmt.Sprintf("at most %d videos per archive", maxArchiveItems))
		return
	}

	entries := make([]zip.Entry, 0, len(ids))
	for _, id := range ids {
		req, err := a.Videos.Get(r.Context(), id)
		if err != nil {
			if errors.Is(err, domain.ErrNotFound) {
				a.error(w, http.StatusNotFound, "not_found", "video request "+id+" not found")
				return
			}
			a.log(r).Error().Err(err).Str("id", id).Msg("videos: archive lookup failed")
			a.error(w, http.StatusInternalServerError, "internal", "failed to load video request")
			return
		}
		if req.Status != domain.VideoRequestSucceeded || req.OutputPath == "" {
			a.error(w, http.StatusConflict, "not_ready", "video request "+id+" has not finished")
			return
		}
		if _, err := a.Store.Contains(req.OutputPath); err != nil {
			a.error(w, http.StatusNotFound, "not_found", "video file unavailable")
			return
		}
		path := req.OutputPath
		entries = append(entries, zip.Entry{
			Filename: filepath.Base(path),
			Modified: req.UpdatedAt,
			Open:     func() (io.ReadCloser, error) { return a.Store.Open(path) },
		})
	}

	name := "viralvideos_" + time.Now().UTC().Format("20060102_150405") + ".zip"
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.WriteHeader(http.StatusOK)
	if err := zip.Write(w, entries); err != nil {
		a.log(r).Error().Err(err).Int("videos", len(entries)).Msg("videos: archive stream failed")
	}
}

func splitIDs(raw string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, part := range strings.Split(raw, ",") {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
