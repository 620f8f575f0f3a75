package authorities

import (
	"log/slog"
	"net/http"

	"github.com/templatecore/core/internal/platform/httpx"
	"github.com/templatecore/core/internal/shared"
)

// BasePath is where the authority endpoints are mounted.
const BasePath = "/api/authority"

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// Routes declares the authority endpoints. Lookup by id lives directly
// under the base path.
func (h *Handler) Routes() httpx.RouteTable {
	return httpx.RouteTable{
		BasePaths: []string{BasePath},
		Operations: []httpx.RouteOperation{
			{Method: http.MethodGet, Paths: []string{"/{id}"}, Handler: h.Show},
			{Method: http.MethodPost, Paths: []string{"/find"}, Handler: h.List},
			{Method: http.MethodPost, Paths: []string{"/save"}, Handler: h.Create},
			{Method: http.MethodPut, Paths: []string{"/update"}, Handler: h.Update},
			{Method: http.MethodDelete, Paths: []string{"/delete/{id}"}, Handler: h.Delete},
		},
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	req, ok := shared.DecodePage(w, r)
	if !ok {
		return
	}
	page, err := h.service.List(r.Context(), req)
	if err != nil {
		httpx.RespondFailure(w, h.logger, "list authorities", err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	authority, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondFailure(w, h.logger, "get authority", err)
		return
	}
	httpx.JSON(w, http.StatusOK, authority)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in Authority
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid authority payload")
		return
	}
	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		httpx.RespondFailure(w, h.logger, "create authority", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in Authority
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid authority payload")
		return
	}
	updated, err := h.service.Update(r.Context(), in)
	if err != nil {
		httpx.RespondFailure(w, h.logger, "update authority", err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.RespondFailure(w, h.logger, "delete authority", err)
		return
	}
	httpx.NoContent(w)
}
