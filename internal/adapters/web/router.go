package web

import (
	"context"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/andrescamacho/colony-go/internal/application/colony/dtos"
)

// StatusFunc reports the colony status for /healthz and /status
type StatusFunc func(ctx context.Context) (dtos.StatusDTO, error)

// RouterOptions selects what the HTTP surface exposes. Nil fields drop
// their routes.
type RouterOptions struct {
	Status      StatusFunc
	Registry    *prometheus.Registry
	MetricsPath string
	Events      http.Handler
	EventsPath  string
	Logger      *log.Logger
}

// NewRouter builds the daemon's HTTP surface
func NewRouter(opts RouterOptions) *chi.Mux {
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	if opts.EventsPath == "" {
		opts.EventsPath = "/events"
	}
	h := &handler{status: opts.Status, logger: opts.Logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(requestLogger(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))

	// the websocket stream outlives any request timeout
	if opts.Events != nil {
		r.Handle(opts.EventsPath, opts.Events)
	}
	if opts.Registry != nil {
		r.Handle(opts.MetricsPath, promhttp.HandlerFor(opts.Registry, promhttp.HandlerOpts{Registry: opts.Registry}))
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(10 * time.Second))
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Get("/healthz", h.health)
		r.Get("/status", h.statusReport)
	})

	return r
}
