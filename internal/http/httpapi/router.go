package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"viralvideos/internal/http/handlers"
	"viralvideos/internal/infra"
	"viralvideos/internal/middleware"
)

// Options configures the middleware stack.
type Options struct {
	Logger          infra.Logger
	AllowedOrigins  []string
	RateLimitPerMin int
	DefaultLocale   string
	CountryLookup   middleware.CountryLookup
}

func NewRouter(app *handlers.App, opts Options) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.RealIP,
		middleware.Logger(opts.Logger),
		chimw.Recoverer,
		middleware.CORS(opts.AllowedOrigins),
		middleware.I18N(opts.DefaultLocale, opts.CountryLookup),
	)

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/settings", func(r chi.Router) {
		r.Get("/", app.SettingsGet)
		r.Put("/", app.SettingsUpdate)
		r.Delete("/", app.SettingsClear)
	})

	limited := middleware.RateLimit(opts.RateLimitPerMin, time.Minute)

	r.Route("/v1/prompts", func(r chi.Router) {
		r.Use(limited)
		r.Post("/enhance", app.PromptEnhance)
		r.Post("/ideas", app.PromptIdeas)
	})

	r.Route("/v1/videos", func(r chi.Router) {
		r.Get("/sizes", app.VideoSizes)
		r.Get("/archive", app.VideoArchive)
		r.Get("/", app.VideoList)
		r.With(limited).Post("/", app.VideoCreate)
		r.Get("/{id}", app.VideoGet)
		r.Get("/{id}/content", app.VideoContent)
	})

	return r
}
