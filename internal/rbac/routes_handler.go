package rbac

import (
	"log/slog"
	"net/http"

	"github.com/templatecore/core/internal/platform/httpx"
	"github.com/templatecore/core/internal/shared"
)

// RoutesBasePath is where the route endpoints are mounted.
const RoutesBasePath = "/api/rota"

// RoutesHandler exposes route CRUD.
type RoutesHandler struct {
	logger  *slog.Logger
	service *Service
}

// NewRoutesHandler builds RoutesHandler instance.
func NewRoutesHandler(logger *slog.Logger, service *Service) *RoutesHandler {
	return &RoutesHandler{logger: logger, service: service}
}

// Routes declares the route endpoints.
func (h *RoutesHandler) Routes() httpx.RouteTable {
	return httpx.RouteTable{
		BasePaths: []string{RoutesBasePath},
		Operations: []httpx.RouteOperation{
			{Method: http.MethodGet, Paths: []string{"/get/{id}"}, Handler: h.get},
			{Method: http.MethodPost, Paths: []string{"/find"}, Handler: h.find},
			{Method: http.MethodPost, Paths: []string{"/save"}, Handler: h.save},
			{Method: http.MethodPut, Paths: []string{"/update"}, Handler: h.update},
			{Method: http.MethodDelete, Paths: []string{"/delete/{id}"}, Handler: h.delete},
		},
	}
}

func (h *RoutesHandler) get(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	route, err := h.service.GetRoute(r.Context(), id)
	if err != nil {
		httpx.RespondFailure(w, h.logger, "get route", err)
		return
	}
	httpx.JSON(w, http.StatusOK, route)
}

func (h *RoutesHandler) find(w http.ResponseWriter, r *http.Request) {
	req, ok := shared.DecodePage(w, r)
	if !ok {
		return
	}
	page, err := h.service.FindRoutes(r.Context(), req)
	if err != nil {
		httpx.RespondFailure(w, h.logger, "find routes", err)
		return
	}
	httpx.JSON(w, http.StatusOK, page)
}

func (h *RoutesHandler) save(w http.ResponseWriter, r *http.Request) {
	var in RouteInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid route payload")
		return
	}
	route, err := h.service.SaveRoute(r.Context(), in)
	if err != nil {
		httpx.RespondFailure(w, h.logger, "save route", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, route)
}

func (h *RoutesHandler) update(w http.ResponseWriter, r *http.Request) {
	var in RouteInput
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid route payload")
		return
	}
	route, err := h.service.UpdateRoute(r.Context(), in)
	if err != nil {
		httpx.RespondFailure(w, h.logger, "update route", err)
		return
	}
	httpx.JSON(w, http.StatusOK, route)
}

func (h *RoutesHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := httpx.IDParam(r, "id")
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if err := h.service.DeleteRoute(r.Context(), id); err != nil {
		httpx.RespondFailure(w, h.logger, "delete route", err)
		return
	}
	httpx.NoContent(w)
}
