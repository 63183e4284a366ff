package audit

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/rhino-platform/rhino-access/internal/platform/httpx"
)

// Middleware is a chi-compatible HTTP middleware.
type Middleware = func(http.Handler) http.Handler

// Handler serves the audit trail read endpoint.
type Handler struct {
	logger          *slog.Logger
	service         *Service
	requireViewLogs Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, requireViewLogs Middleware) *Handler {
	return &Handler{logger: logger, service: service, requireViewLogs: requireViewLogs}
}

// MountRoutes registers audit routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		if h.requireViewLogs != nil {
			r.Use(h.requireViewLogs)
		}
		r.Get("/audit", h.listRecent)
	})
}

func (h *Handler) listRecent(w http.ResponseWriter, r *http.Request) {
	filter := Filter{Query: r.URL.Query().Get("filter")}
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "limit must be an integer")
			return
		}
		filter.Limit = n
	}
	entries, err := h.service.Recent(r.Context(), filter)
	if err != nil {
		h.logger.Error("list audit entries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if entries == nil {
		entries = []Entry{}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": entries})
}
