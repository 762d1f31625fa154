package records

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/dentalog/dentalog/internal/platform/httpx"
	"github.com/dentalog/dentalog/internal/shared"
)

// Handler wires HTTP endpoints for clinic records.
type Handler struct {
	logger    *slog.Logger
	service   *Service
	validator *validator.Validate
	now       func() time.Time
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{
		logger:    logger,
		service:   service,
		validator: validator.New(),
		now:       time.Now,
	}
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// MountRoutes registers record routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/records", h.list)
	r.Post("/records", h.create)
	r.Get("/records/summary", h.summary)
	r.Get("/records/{id}", h.get)
	r.Put("/records/{id}", h.update)
	r.Delete("/records/{id}", h.delete)
	r.Get("/filters/quick-range", h.quickRange)
}

type recordPayload struct {
	Name              string           `json:"name" validate:"required"`
	Surname           string           `json:"surname" validate:"required"`
	Mobile            string           `json:"mobile" validate:"max=32"`
	Date              string           `json:"date" validate:"required,datetime=2006-01-02"`
	Money             float64          `json:"money" validate:"gte=0"`
	Keramika          int              `json:"keramika" validate:"gte=0"`
	Tsirkoni          int              `json:"tsirkoni" validate:"gte=0"`
	Balka             int              `json:"balka" validate:"gte=0"`
	Plastmassi        int              `json:"plastmassi" validate:"gte=0"`
	Shabloni          int              `json:"shabloni" validate:"gte=0"`
	CisferiPlastmassi int              `json:"cisferi_plastmassi" validate:"gte=0"`
	CustomMaterials   []CustomMaterial `json:"custom_materials" validate:"dive"`
	Notes             string           `json:"notes"`
}

func (p recordPayload) toRecord(id string) Record {
	return Record{
		ID:                id,
		Name:              p.Name,
		Surname:           p.Surname,
		Mobile:            p.Mobile,
		Date:              p.Date,
		Money:             p.Money,
		Keramika:          p.Keramika,
		Tsirkoni:          p.Tsirkoni,
		Balka:             p.Balka,
		Plastmassi:        p.Plastmassi,
		Shabloni:          p.Shabloni,
		CisferiPlastmassi: p.CisferiPlastmassi,
		CustomMaterials:   p.CustomMaterials,
		Notes:             p.Notes,
	}
}

// FilterStateFromQuery reads the filter fields shared by the list, summary
// and export endpoints.
func FilterStateFromQuery(r *http.Request) FilterState {
	q := r.URL.Query()
	return FilterState{
		Search:   q.Get("search"),
		DateFrom: q.Get("date_from"),
		DateTo:   q.Get("date_to"),
	}
}

type listResponse struct {
	Records []Record      `json:"records"`
	Summary SummaryTotals `json:"summary"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := shared.UserID(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	state := FilterStateFromQuery(r)
	recs, totals, err := h.service.List(r.Context(), ownerID, state)
	if err != nil {
		h.logger.Error("list records", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listResponse{Records: recs, Summary: totals})
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := shared.UserID(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	totals, err := h.service.Summary(r.Context(), ownerID, FilterStateFromQuery(r))
	if err != nil {
		h.logger.Error("summarize records", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, totals)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := shared.UserID(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	rec, err := h.service.Get(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, "get record", err)
		return
	}
	httpx.JSON(w, http.StatusOK, rec)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := shared.UserID(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var payload recordPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if fields := h.validatePayload(payload); len(fields) > 0 {
		httpx.ValidationProblem(w, fields)
		return
	}
	created, err := h.service.Create(r.Context(), ownerID, payload.toRecord(""))
	if err != nil {
		h.respondServiceError(w, "create record", err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := shared.UserID(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	var payload recordPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if fields := h.validatePayload(payload); len(fields) > 0 {
		httpx.ValidationProblem(w, fields)
		return
	}
	updated, err := h.service.Update(r.Context(), ownerID, payload.toRecord(chi.URLParam(r, "id")))
	if err != nil {
		h.respondServiceError(w, "update record", err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) delete(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := shared.UserID(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	if err := h.service.Delete(r.Context(), ownerID, chi.URLParam(r, "id")); err != nil {
		h.respondServiceError(w, "delete record", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type quickRangeResponse struct {
	DateFrom       string `json:"date_from"`
	DateTo         string `json:"date_to"`
	ClearSelection bool   `json:"clear_selection"`
}

func (h *Handler) quickRange(w http.ResponseWriter, r *http.Request) {
	kind, ok := ParseQuickRange(r.URL.Query().Get("kind"))
	if !ok {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "kind must be one of today, week, month, clear")
		return
	}
	from, to := ResolveQuickRange(kind, h.now())
	httpx.JSON(w, http.StatusOK, quickRangeResponse{
		DateFrom: from,
		DateTo:   to,
		// The resolver itself is pure; dropping the active selection on
		// clear is the caller's side effect, so the response spells it out.
		ClearSelection: kind == QuickRangeClear,
	})
}

func (h *Handler) validatePayload(payload recordPayload) map[string]string {
	err := h.validator.Struct(payload)
	if err == nil {
		return nil
	}
	fields := make(map[string]string)
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fieldErr := range verrs {
			fields[fieldErr.Field()] = fieldErr.Tag()
		}
	} else {
		fields["payload"] = "invalid"
	}
	return fields
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
