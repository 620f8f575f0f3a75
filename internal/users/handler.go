package users

import (
	"log/slog"
	"net/http"

	"github.com/templatecore/core/internal/platform/httpx"
	"github.com/templatecore/core/internal/shared"
)

// BasePath is where the user endpoints are mounted.
const BasePath = "/api/user"

// Handler manages user management endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// Routes declares the user endpoints.
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
	user, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondFailure(w, h.logger, "get user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) find(w http.ResponseWriter, r *http.Request) {
	req, ok := shared.DecodePage(w, r)
	if !ok {
		return
	}
	page, err := h.service.Find(r.Context(), req)
	if err != nil {
		httpx.RespondFailure(w, h.logger, "find users", err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) save(w http.ResponseWriter, r *http.Request) {
	var in SaveInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user payload")
		return
	}
	user, err := h.service.Save(r.Context(), in)
	if err != nil {
		httpx.RespondFailure(w, h.logger, "save user", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, user)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	var in SaveInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid user payload")
		return
	}
	user, err := h.service.Update(r.Context(), in)
	if err != nil {
		httpx.RespondFailure(w, h.logger, "update user", err)
		return
	}
	httpx.JSON(w, http.StatusOK, user)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondFailure(w, h.logger, "delete user", err)
		return
	}
	httpx.NoContent(w)
}
