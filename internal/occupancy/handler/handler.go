package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gatepass/internal/kiosk"
	"gatepass/internal/occupancy/models"
	"gatepass/internal/occupancy/service"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/httputil"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/requestcontext"
)

// Engine defines the occupancy operations the handler needs.
type Engine interface {
	Scan(ctx context.Context, code, kioskZone string, mode models.Mode, eventID id.EventID, method models.Method) (service.ScanResult, error)
	Log(ctx context.Context, attendeeID id.AttendeeID) ([]models.LogEntry, error)
}

// Handler wires kiosk scan endpoints to the transition engine.
type Handler struct {
	engine   Engine
	settings *kiosk.Cache
	logger   *slog.Logger
}

// New constructs an occupancy handler.
func New(engine Engine, settings *kiosk.Cache, logger *slog.Logger) *Handler {
	return &Handler{engine: engine, settings: settings, logger: logger}
}

// Register mounts the kiosk-facing endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/scan", h.HandleScan)
}

// RegisterAdmin mounts the staff-only endpoints; the caller wraps them in
// auth middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/occupancy/{attendeeID}/log", h.HandleLog)
}

// HandleScan handles POST /scan.
func (h *Handler) HandleScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ScanRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	settings, err := h.settings.Get(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			err = dErrors.New(dErrors.CodeUnavailable, "no event is live for scanning")
		} else {
			err = dErrors.Wrap(err, dErrors.CodeUnavailable, "kiosk settings unavailable")
		}
		h.logger.ErrorContext(ctx, "kiosk settings lookup failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	zone := req.Zone
	if zone == "" {
		zone = settings.DefaultZone
	}
	mode := req.parsedMode
	if mode == "" {
		mode = settings.DefaultMode
	}

	result, err := h.engine.Scan(ctx, req.Code, zone, mode, settings.ActiveEventID, models.MethodKiosk)
	if err != nil {
		h.logger.WarnContext(ctx, "scan rejected",
			"request_id", requestID,
			"zone", zone,
			"mode", string(mode),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromScan(result))
}

// HandleLog handles GET /occupancy/{attendeeID}/log.
func (h *Handler) HandleLog(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	attendeeID, err := id.ParseAttendeeID(chi.URLParam(r, "attendeeID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	entries, err := h.engine.Log(ctx, attendeeID)
	if err != nil {
		h.logger.ErrorContext(ctx, "transition log lookup failed",
			"request_id", requestID,
			"attendee_id", attendeeID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromLog(entries))
}
