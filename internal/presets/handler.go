package presets

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dentalog/dentalog/internal/platform/httpx"
	"github.com/dentalog/dentalog/internal/records"
	"github.com/dentalog/dentalog/internal/shared"
)

// Handler wires HTTP endpoints for filter presets.
type Handler struct {
	logger  *slog.Logger
	service *Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers preset routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/presets", h.list)
	r.Post("/presets", h.create)
	r.Get("/presets/{id}/state", h.load)
	r.Put("/presets/{id}", h.rename)
	r.Delete("/presets/{id}", h.delete)
}

type savePayload struct {
	Name     string `json:"name"`
	Search   string `json:"search"`
	DateFrom string `json:"date_from"`
	DateTo   string `json:"date_to"`
}

type renamePayload struct {
	Name string `json:"name"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := shared.UserID(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	items, err := h.service.List(r.Context(), ownerID)
	if err != nil {
		h.logger.Error("list presets", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, items)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := shared.UserID(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var payload savePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	state := records.FilterState{Search: payload.Search, DateFrom: payload.DateFrom, DateTo: payload.DateTo}
	created, err := h.service.Save(r.Context(), ownerID, payload.Name, state)
	if err != nil {
		if errors.Is(err, httpx.ErrValidation) {
			httpx.ValidationProblem(w, map[string]string{"name": ErrEmptyName.Error()})
			return
		}
		h.logger.Error("save preset", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) load(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := shared.UserID(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	state, err := h.service.Load(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, "load preset", err)
		return
	}
	httpx.JSON(w, http.StatusOK, state)
}

func (h *Handler) rename(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := shared.UserID(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var payload renamePayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	renamed, err := h.service.Rename(r.Context(), ownerID, chi.URLParam(r, "id"), payload.Name)
	if err != nil {
		if errors.Is(err, httpx.ErrValidation) {
			httpx.ValidationProblem(w, map[string]string{"name": ErrEmptyName.Error()})
			return
		}
		h.respondServiceError(w, "rename preset", err)
		return
	}
	httpx.JSON(w, http.StatusOK, renamed)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := shared.UserID(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	if err := h.service.Delete(r.Context(), ownerID, chi.URLParam(r, "id")); err != nil {
		h.respondServiceError(w, "delete preset", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
