package users

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rhino-platform/rhino-access/internal/catalog"
	"github.com/rhino-platform/rhino-access/internal/platform/httpx"
	"github.com/rhino-platform/rhino-access/internal/rbac"
	"github.com/rhino-platform/rhino-access/internal/shared"
)

// Handler manages user administration endpoints.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	rbacSvc   *rbac.Service
	rbacMW    rbac.Middleware
	validator *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, rbacSvc *rbac.Service, rbacMW rbac.Middleware) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		rbacSvc:   rbacSvc,
		rbacMW:    rbacMW,
		validator: validator.New(),
	}
}

type userResponse struct {
	ID              string    `json:"id"`
	Email           string    `json:"email"`
	IsActive        bool      `json:"is_active"`
	RoleID          string    `json:"role_id"`
	RoleName        string    `json:"role_name"`
	RoleDisplayName string    `json:"role_display_name"`
	HierarchyLevel  int       `json:"hierarchy_level"`
	AssignedAt      time.Time `json:"assigned_at"`
	CreatedAt       time.Time `json:"created_at"`
}

type userDetailResponse struct {
	userResponse
	RolePermissionIDs []string `json:"role_permission_ids"`
}

type overrideResponse struct {
	PermissionID string `json:"permission_id"`
	Granted      bool   `json:"granted"`
}

type updateRoleRequest struct {
	RoleID string `json:"role_id" validate:"required,uuid4"`
}

type updatePermissionsRequest struct {
	Grants  []string `json:"grants" validate:"dive,uuid4"`
	Revokes []string `json:"revokes" validate:"dive,uuid4"`
}

type inviteRequest struct {
	Email  string `json:"email" validate:"required,email"`
	RoleID string `json:"role_id" validate:"required,uuid4"`
}

// MountRoutes registers user administration routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbacMW.RequirePermission(catalog.AppAccess, "manage_users"))
		r.Get("/users", h.listUsers)
		r.Post("/users/invite", h.inviteUser)
		r.Get("/users/{userID}", h.getUser)
		r.Put("/users/{userID}/role", h.updateRole)
		r.Delete("/users/{userID}", h.deleteUser)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbacMW.RequirePermission(catalog.AppAccess, "manage_permissions"))
		r.Get("/users/{userID}/permissions", h.listOverrides)
		r.Put("/users/{userID}/permissions", h.updateOverrides)
	})
}

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.List(r.Context())
	if err != nil {
		h.logger.Error("list users", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": out})
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.Get(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	ids := detail.RolePermissionIDs
	if ids == nil {
		ids = []string{}
	}
	httpx.JSON(w, http.StatusOK, userDetailResponse{
		userResponse:      toUserResponse(detail.UserWithRole),
		RolePermissionIDs: ids,
	})
}

func (h *Handler) inviteUser(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	var req inviteRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	userID, err := h.service.Invite(r.Context(), principal.UserID, req.Email, req.RoleID)
	if err != nil {
		h.logger.Warn("invite user", slog.String("email", req.Email), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"success": true, "user_id": userID})
}

func (h *Handler) updateRole(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	targetID := chi.URLParam(r, "userID")
	var req updateRoleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if _, err := h.service.Get(r.Context(), targetID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.rbacSvc.AssignRole(r.Context(), principal.UserID, targetID, req.RoleID); err != nil {
		h.logger.Warn("update role", slog.String("target", targetID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	targetID := chi.URLParam(r, "userID")
	if err := h.service.Delete(r.Context(), principal.UserID, targetID); err != nil {
		h.logger.Warn("delete user", slog.String("target", targetID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *Handler) listOverrides(w http.ResponseWriter, r *http.Request) {
	overrides, err := h.rbacSvc.Overrides(r.Context(), chi.URLParam(r, "userID"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]overrideResponse, 0, len(overrides))
	for _, o := range overrides {
		out = append(out, overrideResponse{PermissionID: o.PermissionID, Granted: o.Granted})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"data": out})
}

func (h *Handler) updateOverrides(w http.ResponseWriter, r *http.Request) {
	principal, _ := shared.PrincipalFromContext(r.Context())
	targetID := chi.URLParam(r, "userID")
	var req updatePermissionsRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if _, err := h.service.Get(r.Context(), targetID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.rbacSvc.ReplaceOverrides(r.Context(), principal.UserID, targetID, req.Grants, req.Revokes); err != nil {
		h.logger.Warn("update overrides", slog.String("target", targetID), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

func toUserResponse(u UserWithRole) userResponse {
	return userResponse{
		ID:              u.ID,
		Email:           u.Email,
		IsActive:        u.IsActive,
		RoleID:          u.RoleID,
		RoleName:        u.Role.Name,
		RoleDisplayName: u.Role.DisplayName,
		HierarchyLevel:  u.Role.HierarchyLevel,
		AssignedAt:      u.AssignedAt,
		CreatedAt:       u.CreatedAt,
	}
}
