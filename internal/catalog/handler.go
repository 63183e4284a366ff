package catalog

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rhino-platform/rhino-access/internal/platform/httpx"
	"github.com/rhino-platform/rhino-access/internal/shared"
)

// Middleware is a chi-compatible HTTP middleware.
type Middleware = func(http.Handler) http.Handler

// Handler serves read-only catalog endpoints.
type Handler struct {
	logger             *slog.Logger
	service            *Service
	requireAuth        Middleware
	requireManageUsers Middleware
}

// NewHandler builds Handler instance. requireAuth gates every catalog
// route; requireManageUsers additionally guards the admin-only summary
// endpoints.
func NewHandler(logger *slog.Logger, service *Service, requireAuth, requireManageUsers Middleware) *Handler {
	return &Handler{logger: logger, service: service, requireAuth: requireAuth, requireManageUsers: requireManageUsers}
}

type roleResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	DisplayName    string `json:"display_name"`
	Description    string `json:"description,omitempty"`
	HierarchyLevel int    `json:"hierarchy_level"`
	IsSystem       bool   `json:"is_system"`
}

type permissionResponse struct {
	ID          string `json:"id"`
	App         App    `json:"app"`
	Action      string `json:"action"`
	Resource    string `json:"resource,omitempty"`
	DisplayName string `json:"display_name"`
	Description string `json:"description,omitempty"`
}

// MountRoutes registers catalog routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		if h.requireAuth != nil {
			r.Use(h.requireAuth)
		}
		r.Get("/roles", h.listRoles)
		r.Get("/permissions", h.listPermissions)
		r.Group(func(r chi.Router) {
			if h.requireManageUsers != nil {
				r.Use(h.requireManageUsers)
			}
			r.Get("/roles/{roleID}/permissions", h.listRolePermissions)
			r.Get("/apps", h.listApps)
		})
	})
}

func (h *Handler) listRoles(w http.ResponseWriter, r *http.Request) {
	roles := h.service.Roles()
	out := make([]roleResponse, 0, len(roles))
	for _, role := range roles {
		out = append(out, roleResponse{
			ID:             role.ID,
			Name:           role.Name,
			DisplayName:    role.DisplayName,
			Description:    role.Description,
			HierarchyLevel: role.HierarchyLevel,
			IsSystem:       role.IsSystem,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": out})
}

func (h *Handler) listPermissions(w http.ResponseWriter, r *http.Request) {
	perms := h.service.Permissions()
	out := make([]permissionResponse, 0, len(perms))
	for _, perm := range perms {
		out = append(out, permissionResponse{
			ID:          perm.ID,
			App:         perm.App,
			Action:      perm.Action,
			Resource:    perm.Resource,
			DisplayName: perm.DisplayName,
			Description: perm.Description,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": out})
}

func (h *Handler) listRolePermissions(w http.ResponseWriter, r *http.Request) {
	roleID := chi.URLParam(r, "roleID")
	ids, ok := h.service.RolePermissionIDs(roleID)
	if !ok {
		httpx.RespondError(w, fmt.Errorf("%w: unknown role", shared.ErrInvalidReference))
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": ids})
}

func (h *Handler) listApps(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.AppSummaries(r.Context())
	if err != nil {
		h.logger.Error("list apps", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": summaries})
}
