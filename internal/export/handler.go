package export

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dentalog/dentalog/internal/i18n"
	"github.com/dentalog/dentalog/internal/platform/httpx"
	"github.com/dentalog/dentalog/internal/records"
	"github.com/dentalog/dentalog/internal/shared"
)

// Handler wires the download endpoints. Exports run synchronously, so a
// guard rejects a second identical export while the first is still rendering.
type Handler struct {
	logger      *slog.Logger
	service     *records.Service
	exporter    *PDFExporter
	clinicName  string
	managerName string
	now         func() time.Time

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *records.Service, exporter *PDFExporter, clinicName, managerName string) *Handler {
	return &Handler{
		logger:      logger,
		service:     service,
		exporter:    exporter,
		clinicName:  clinicName,
		managerName: managerName,
		now:         time.Now,
		inFlight:    make(map[string]struct{}),
	}
}

// WithNow overrides the handler clock for testing.
func (h *Handler) WithNow(fn func() time.Time) {
	if fn != nil {
		h.now = fn
	}
}

// MountRoutes registers export routes on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/export/records.csv", h.exportCSV)
	r.Get("/export/records.pdf", h.exportReport)
	r.Get("/export/records/{id}.pdf", h.exportReceipt)
	r.Get("/export/records/{id}/share", h.shareText)
}

// acquire claims an export slot for a target, returning false when the same
// target is already being rendered for this owner.
func (h *Handler) acquire(ownerID int64, target string) bool {
	key := fmt.Sprintf("%d:%s", ownerID, target)
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, busy := h.inFlight[key]; busy {
		return false
	}
	h.inFlight[key] = struct{}{}
	return true
}

func (h *Handler) release(ownerID int64, target string) {
	key := fmt.Sprintf("%d:%s", ownerID, target)
	h.mu.Lock()
	delete(h.inFlight, key)
	h.mu.Unlock()
}

// loadExportSet resolves which records an export covers: the explicit
// selection when an ids query parameter is present, the filtered list
// otherwise.
func (h *Handler) loadExportSet(r *http.Request, ownerID int64) ([]records.Record, error) {
	if raw := r.URL.Query().Get("ids"); raw != "" {
		return h.service.SelectByIDs(r.Context(), ownerID, strings.Split(raw, ","))
	}
	recs, _, err := h.service.List(r.Context(), ownerID, records.FilterStateFromQuery(r))
	return recs, err
}

func (h *Handler) exportCSV(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := shared.UserID(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	if !h.acquire(ownerID, "records.csv") {
		httpx.Problem(w, http.StatusConflict, "Export In Progress", "an identical export is already running")
		return
	}
	defer h.release(ownerID, "records.csv")

	recs, err := h.loadExportSet(r, ownerID)
	if err != nil {
		h.logger.Error("export csv", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", CSVFilename(h.now())))
	if err := WriteRecordsCSV(w, recs); err != nil {
		h.logger.Error("stream csv", slog.Any("error", err))
	}
}

func (h *Handler) exportReport(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := shared.UserID(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	if !h.acquire(ownerID, "records.pdf") {
		httpx.Problem(w, http.StatusConflict, "Export In Progress", "an identical export is already running")
		return
	}
	defer h.release(ownerID, "records.pdf")

	lang := i18n.ParseLang(r.URL.Query().Get("lang"))
	recs, err := h.loadExportSet(r, ownerID)
	if err != nil {
		h.logger.Error("export report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	pdf, err := h.exporter.Render(r.Context(), buildReportHTML(recs, lang, h.clinicName, h.managerName), true)
	if err != nil {
		h.logger.Error("render report pdf", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Export Failed", "pdf rendering is unavailable")
		return
	}
	h.servePDF(w, ReportFilename(h.now()), pdf)
}

func (h *Handler) exportReceipt(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := shared.UserID(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	id := chi.URLParam(r, "id")
	if !h.acquire(ownerID, "receipt:"+id) {
		httpx.Problem(w, http.StatusConflict, "Export In Progress", "an identical export is already running")
		return
	}
	defer h.release(ownerID, "receipt:"+id)

	lang := i18n.ParseLang(r.URL.Query().Get("lang"))
	rec, err := h.service.Get(r.Context(), ownerID, id)
	if err != nil {
		h.respondServiceError(w, "load receipt record", err)
		return
	}

	pdf, err := h.exporter.Render(r.Context(), buildReceiptHTML(*rec, lang, h.clinicName, h.managerName), false)
	if err != nil {
		h.logger.Error("render receipt pdf", slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Export Failed", "pdf rendering is unavailable")
		return
	}
	h.servePDF(w, ReceiptFilename(*rec), pdf)
}

type shareResponse struct {
	Text string `json:"text"`
}

func (h *Handler) shareText(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := shared.UserID(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	lang := i18n.ParseLang(r.URL.Query().Get("lang"))
	rec, err := h.service.Get(r.Context(), ownerID, chi.URLParam(r, "id"))
	if err != nil {
		h.respondServiceError(w, "load share record", err)
		return
	}
	httpx.JSON(w, http.StatusOK, shareResponse{Text: ShareText(*rec, lang)})
}

func (h *Handler) servePDF(w http.ResponseWriter, filename string, pdf []byte) {
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	if _, err := w.Write(pdf); err != nil {
		h.logger.Error("write pdf response", slog.Any("error", err))
	}
}

func (h *Handler) respondServiceError(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, shared.ErrNotFound) {
		httpx.RespondError(w, httpx.ErrNotFound)
		return
	}
	h.logger.Error(op, slog.Any("error", err))
	httpx.RespondError(w, err)
}
