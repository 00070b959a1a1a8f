package web

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	"github.com/andrescamacho/colony-go/internal/domain/shared"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  int    `json:"code"`
}

type handler struct {
	status StatusFunc
	logger *log.Logger
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "healthy"}
	if h.status != nil {
		st, err := h.status(r.Context())
		if err != nil {
			h.renderError(w, r, http.StatusServiceUnavailable, "simulation unavailable", err)
			return
		}
		resp["lifecycle"] = st.Lifecycle
		if st.Lifecycle != string(shared.LifecycleStatusRunning) {
			resp["status"] = "degraded"
			render.Status(r, http.StatusServiceUnavailable)
			render.JSON(w, r, resp)
			return
		}
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

func (h *handler) statusReport(w http.ResponseWriter, r *http.Request) {
	if h.status == nil {
		h.renderError(w, r, http.StatusNotFound, "status not available", nil)
		return
	}
	st, err := h.status(r.Context())
	if err != nil {
		h.renderError(w, r, http.StatusServiceUnavailable, "simulation unavailable", err)
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, st)
}

func (h *handler) renderError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	if err != nil && h.logger != nil {
		h.logger.Error("http request failed", "error", err, "path", r.URL.Path, "status", status)
	}
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: message, Code: status})
}

func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logger == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
