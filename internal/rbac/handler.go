package rbac

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rhino-platform/rhino-access/internal/catalog"
	"github.com/rhino-platform/rhino-access/internal/platform/httpx"
)

// Handler serves the authorization query endpoints consumed by the
// platform applications.
type Handler struct {
	logger   *slog.Logger
	resolver *Resolver
	rbac     Middleware
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, resolver *Resolver, rbac Middleware) *Handler {
	return &Handler{logger: logger, resolver: resolver, rbac: rbac}
}

type roleResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	DisplayName    string `json:"display_name"`
	HierarchyLevel int    `json:"hierarchy_level"`
}

type effectiveResponse struct {
	Role                 roleResponse `json:"role"`
	EffectivePermissions []string     `json:"effective_permissions"`
	Super                bool         `json:"super,omitempty"`
}

// MountRoutes registers authorization query routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAuthenticated)
		r.Get("/permissions/effective", h.effective)
		r.Get("/permissions/check", h.check)
	})
}

func (h *Handler) effective(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "user_id is required")
		return
	}
	res, err := h.resolver.Resolve(r.Context(), userID)
	if err != nil {
		h.logger.Error("resolve effective permissions", slog.String("user_id", userID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	perms := res.PermissionIDs
	if perms == nil {
		perms = []string{}
	}
	httpx.JSON(w, http.StatusOK, effectiveResponse{
		Role: roleResponse{
			ID:             res.Role.ID,
			Name:           res.Role.Name,
			DisplayName:    res.Role.DisplayName,
			HierarchyLevel: res.Role.HierarchyLevel,
		},
		EffectivePermissions: perms,
		Super:                res.Super,
	})
}

func (h *Handler) check(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	userID := q.Get("user_id")
	app := q.Get("app")
	action := q.Get("action")
	if userID == "" || app == "" || action == "" {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "user_id, app, and action are required")
		return
	}
	allowed, err := h.resolver.HasPermission(r.Context(), userID, catalog.App(app), action, q.Get("resource"))
	if err != nil {
		h.logger.Error("permission check", slog.String("user_id", userID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, allowed)
}
