package personaldata

import (
	"log/slog"
	"net/http"

	"github.com/templatecore/core/internal/platform/httpx"
	"github.com/templatecore/core/internal/shared"
)

// BasePath is where the personal data endpoints are mounted.
const BasePath = "/api/dados_pessoais"

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
		httpx.RespondFailure(w, h.logger, "list personal data", err)
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
	data, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondFailure(w, h.logger, "get personal data", err)
		return
	}
	httpx.JSON(w, http.StatusOK, data)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var in PersonalData
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid personal data payload")
		return
	}
	created, err := h.service.Create(r.Context(), in)
	if err != nil {
		httpx.RespondFailure(w, h.logger, "create personal data", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var in PersonalData
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid personal data payload")
		return
	}
	updated, err := h.service.Update(r.Context(), in)
	if err != nil {
		httpx.RespondFailure(w, h.logger, "update personal data", err)
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
		httpx.RespondFailure(w, h.logger, "delete personal data", err)
		return
	}
	httpx.NoContent(w)
}
