package roles

import (
	"log/slog"
	"net/http"

	"github.com/templatecore/core/internal/platform/httpx"
	"github.com/templatecore/core/internal/shared"
)

// BasePath is where the role endpoints are mounted.
const BasePath = "/api/role"

// Handler manages role management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// Routes declares the role endpoints.
func (h *Handler) Routes() httpx.RouteTable {
	return httpx.RouteTable{
		BasePaths: []string{BasePath},
		Operations: []httpx.RouteOperation{
			{Method: http.MethodGet, Paths: []string{"/get/{id}"}, Handler: h.get},
			{Method: http.MethodPost, Paths: []string{"/find"}, Handler: h.find},
			{Method: http.MethodPost, Paths: []string{"/save"}, Handler: h.save},
			{Method: http.MethodPut, Paths: []string{"/update"}, Handler: h.update},
			{Method: http.MethodDelete, Paths: []string{"/delete/{id}"}, Handler: h.delete},
		},
	}
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	role, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondFailure(w, h.logger, "get role", err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) find(w http.ResponseWriter, r *http.Request) {
	req, ok := shared.DecodePage(w, r)
	if !ok {
		return
	}
	page, err := h.service.Find(r.Context(), req)
	if err != nil {
		httpx.RespondFailure(w, h.logger, "find roles", err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	var in RoleInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid role payload")
		return
	}
	role, err := h.service.Save(r.Context(), in)
	if err != nil {
		httpx.RespondFailure(w, h.logger, "save role", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, role)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var in RoleInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid role payload")
		return
	}
	role, err := h.service.Update(r.Context(), in)
	if err != nil {
		httpx.RespondFailure(w, h.logger, "update role", err)
		return
	}
	httpx.JSON(w, http.StatusOK, role)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondFailure(w, h.logger, "delete role", err)
		return
	}
	httpx.NoContent(w)
}
