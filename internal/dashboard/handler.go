// Package dashboard serves the single aggregate payload the records screen
// boots from: the visible record set with its summary, the saved filter
// presets and the owner's view settings, loaded concurrently.
package dashboard

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/dentalog/dentalog/internal/platform/httpx"
	"github.com/dentalog/dentalog/internal/presets"
	"github.com/dentalog/dentalog/internal/records"
	"github.com/dentalog/dentalog/internal/settings"
	"github.com/dentalog/dentalog/internal/shared"
)

const requestTimeout = 2 * time.Second

// Handler wires the dashboard endpoint.
type Handler struct {
	logger   *slog.Logger
	records  *records.Service
	presets  *presets.Service
	settings *settings.Service
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, recordSvc *records.Service, presetSvc *presets.Service, settingSvc *settings.Service) *Handler {
	return &Handler{
		logger:   logger,
		records:  recordSvc,
		presets:  presetSvc,
		settings: settingSvc,
	}
}

// MountRoutes registers the dashboard route on the provided router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/dashboard", h.dashboard)
}

type dashboardResponse struct {
	Records  []records.Record      `json:"records"`
	Summary  records.SummaryTotals `json:"summary"`
	Presets  []presets.Preset      `json:"presets"`
	Settings settings.Settings     `json:"settings"`
}

func (h *Handler) dashboard(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := shared.UserID(r.Context())
	if !ok {
		httpx.RespondError(w, httpx.ErrUnauthorized)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	state := records.FilterStateFromQuery(r)
	var payload dashboardResponse

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		recs, totals, err := h.records.List(ctx, ownerID, state)
		if err != nil {
			return err
		}
		payload.Records = recs
		payload.Summary = totals
		return nil
	})
	g.Go(func() error {
		list, err := h.presets.List(ctx, ownerID)
		if err != nil {
			return err
		}
		payload.Presets = list
		return nil
	})
	g.Go(func() error {
		current, err := h.settings.Get(ctx, ownerID)
		if err != nil {
			return err
		}
		payload.Settings = *current
		return nil
	})
	if err := g.Wait(); err != nil {
		h.logger.Error("load dashboard", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	if payload.Records == nil {
		payload.Records = []records.Record{}
	}
	if payload.Presets == nil {
		payload.Presets = []presets.Preset{}
	}
	httpx.JSON(w, http.StatusOK, payload)
}
