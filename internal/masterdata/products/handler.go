package products

import (
	"log/slog"
	"net/http"

	"github.com/templatecore/core/internal/platform/httpx"
	"github.com/templatecore/core/internal/shared"
)

// BasePath is where the product endpoints are mounted.
const BasePath = "/api/produto"

type Handler struct {
	logger  *slog.Logger
	service *Service
}

func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

func (h *Handler) Routes() httpx.RouteTable {
	return httpx.RouteTable{
		BasePaths: []string{BasePath},
		Operations: []httpx.RouteOperation{
			{Method: http.MethodGet, Paths: []string{"/get/{id}"}, Handler: h.Show},
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
		httpx.RespondFailure(w, h.logger, "list products", err)
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
	product, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondFailure(w, h.logger, "get product", err)
		return
	}
	httpx.JSON(w, http.StatusOK, product)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var form ProductForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product payload")
		return
	}
	created, err := h.service.Create(r.Context(), form)
	if err != nil {
		httpx.RespondFailure(w, h.logger, "create product", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var form ProductForm
	if err := httpx.DecodeJSON(r, &form); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product payload")
		return
	}
	updated, err := h.service.Update(r.Context(), form)
	if err != nil {
		httpx.RespondFailure(w, h.logger, "update product", err)
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
		httpx.RespondFailure(w, h.logger, "delete product", err)
		return
	}
	httpx.NoContent(w)
}
