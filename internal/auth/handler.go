package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/rhino-platform/rhino-access/internal/catalog"
	"github.com/rhino-platform/rhino-access/internal/platform/httpx"
	"github.com/rhino-platform/rhino-access/internal/rbac"
	"github.com/rhino-platform/rhino-access/internal/shared"
)

// Handler wires HTTP endpoints for login, logout, and the caller's own
// permission view.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	sessions  *shared.SessionManager
	resolver  *rbac.Resolver
	snapshot  *catalog.Snapshot
	validator *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service, sessions *shared.SessionManager, resolver *rbac.Resolver, snapshot *catalog.Snapshot) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		sessions:  sessions,
		resolver:  resolver,
		snapshot:  snapshot,
		validator: validator.New(),
	}
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type permissionView struct {
	ID          string      `json:"id"`
	App         catalog.App `json:"app"`
	Action      string      `json:"action"`
	Resource    string      `json:"resource,omitempty"`
	DisplayName string      `json:"display_name"`
}

// MountRoutes registers auth routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/login", h.handleLogin)
	r.Post("/logout", h.handleLogout)
	r.Get("/me/permissions", h.handleMePermissions)
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid Input", "malformed JSON body")
		return
	}
	if err := h.validator.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	account, err := h.service.Authenticate(r.Context(), strings.ToLower(strings.TrimSpace(req.Email)), req.Password)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	sess := shared.SessionFromContext(r.Context())
	if sess == nil {
		h.logger.Error("session missing during login")
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	sess.SetUser(account.ID, account.Email)
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true, "user_id": account.ID})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if sess := shared.SessionFromContext(r.Context()); sess != nil {
		h.sessions.Destroy(sess)
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"success": true})
}

// handleMePermissions returns the caller's role and resolved permission
// definitions, the payload the platform front-ends poll for gating.
func (h *Handler) handleMePermissions(w http.ResponseWriter, r *http.Request) {
	principal, ok := shared.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	res, err := h.resolver.Resolve(r.Context(), principal.UserID)
	if err != nil {
		h.logger.Error("resolve own permissions", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]permissionView, 0, len(res.PermissionIDs))
	for _, id := range res.PermissionIDs {
		if perm, found := h.snapshot.Permission(id); found {
			views = append(views, permissionView{
				ID:          perm.ID,
				App:         perm.App,
				Action:      perm.Action,
				Resource:    perm.Resource,
				DisplayName: perm.DisplayName,
			})
		}
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"user": map[string]string{"id": principal.UserID, "email": principal.Email},
		"role": map[string]any{
			"id":              res.Role.ID,
			"name":            res.Role.Name,
			"display_name":    res.Role.DisplayName,
			"hierarchy_level": res.Role.HierarchyLevel,
		},
		"super":       res.Super,
		"permissions": views,
	})
}
