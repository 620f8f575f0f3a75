package rbac

import (
	"log/slog"
	"net/http"

	"github.com/templatecore/core/internal/auth"
	"github.com/templatecore/core/internal/platform/httpx"
	"github.com/templatecore/core/internal/shared"
)

// PermissionsBasePath is where the permission endpoints are mounted.
const PermissionsBasePath = "/api/permissao"

// PermissionsHandler exposes permission CRUD and the caller's effective set.
type PermissionsHandler struct {
	logger  *slog.Logger
	service *Service
}

// NewPermissionsHandler builds PermissionsHandler instance.
func NewPermissionsHandler(logger *slog.Logger, service *Service) *PermissionsHandler {
	return &PermissionsHandler{logger: logger, service: service}
}

// Routes declares the permission endpoints.
func (h *PermissionsHandler) Routes() httpx.RouteTable {
	return httpx.RouteTable{
		BasePaths: []string{PermissionsBasePath},
		Operations: []httpx.RouteOperation{
			{Method: http.MethodGet, Paths: []string{"/get/{id}"}, Handler: h.get},
			{Method: http.MethodPost, Paths: []string{"/find"}, Handler: h.find},
			{Method: http.MethodPost, Paths: []string{"/save"}, Handler: h.save},
			{Method: http.MethodPut, Paths: []string{"/update"}, Handler: h.update},
			{Method: http.MethodDelete, Paths: []string{"/delete/{id}"}, Handler: h.delete},
			{Method: http.MethodGet, Paths: []string{"/me"}, Handler: h.me},
		},
	}
}

func (h *PermissionsHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	p, err := h.service.GetPermission(r.Context(), id)
	if err != nil {
		httpx.RespondFailure(w, h.logger, "get permission", err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *PermissionsHandler) find(w http.ResponseWriter, r *http.Request) {
	req, ok := shared.DecodePage(w, r)
	if !ok {
		return
	}
	page, err := h.service.FindPermissions(r.Context(), req)
	if err != nil {
		httpx.RespondFailure(w, h.logger, "find permissions", err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *PermissionsHandler) save(w http.ResponseWriter, r *http.Request) {
	var in PermissionInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid permission payload")
		return
	}
	p, err := h.service.SavePermission(r.Context(), in)
	if err != nil {
		httpx.RespondFailure(w, h.logger, "save permission", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, p)
}

func (h *PermissionsHandler) update(w http.ResponseWriter, r *http.Request) {
	var in PermissionInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid permission payload")
		return
	}
	p, err := h.service.UpdatePermission(r.Context(), in)
	if err != nil {
		httpx.RespondFailure(w, h.logger, "update permission", err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *PermissionsHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.DeletePermission(r.Context(), id); err != nil {
		httpx.RespondFailure(w, h.logger, "delete permission", err)
		return
	}
	httpx.NoContent(w)
}

func (h *PermissionsHandler) me(w http.ResponseWriter, r *http.Request) {
	principal, ok := auth.PrincipalFromContext(r.Context())
	if !ok {
		httpx.Reject(w)
		return
	}
	endpoints, err := h.service.EffectiveEndpoints(r.Context(), principal.User.ID)
	if err != nil {
		httpx.RespondFailure(w, h.logger, "effective endpoints", err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"userId":      principal.User.ID,
		"authorities": principal.Authorities,
		"endpoints":   endpoints,
	})
}
