// Package handler exposes staff endpoints for reading and changing kiosk
// settings.
package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gatepass/internal/kiosk"
	"gatepass/internal/occupancy/models"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/httputil"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/requestcontext"
)

// Handler wires kiosk settings endpoints to the settings store and cache.
type Handler struct {
	store  kiosk.Store
	cache  *kiosk.Cache
	logger *slog.Logger
}

func New(store kiosk.Store, cache *kiosk.Cache, logger *slog.Logger) *Handler {
	return &Handler{store: store, cache: cache, logger: logger}
}

// RegisterAdmin mounts the settings endpoints; the caller wraps them in auth
// middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/kiosk/settings", h.HandleGet)
	r.Put("/kiosk/settings", h.HandlePut)
}

// SettingsRequest is the HTTP request body for PUT /kiosk/settings.
type SettingsRequest struct {
	ActiveEventID string `json:"active_event_id"`
	DefaultMode   string `json:"default_mode"`
	DefaultZone   string `json:"default_zone"`

	parsedEventID id.EventID
	parsedMode    models.Mode
}

func (r *SettingsRequest) Validate() error {
	eventID, err := id.ParseEventID(r.ActiveEventID)
	if err != nil {
		return err
	}
	mode, err := models.ParseMode(r.DefaultMode)
	if err != nil {
		return err
	}
	if r.DefaultZone == "" {
		return dErrors.New(dErrors.CodeBadRequest, "default_zone is required")
	}
	r.parsedEventID = eventID
	r.parsedMode = mode
	return nil
}

// SettingsResponse is the HTTP representation of kiosk settings.
type SettingsResponse struct {
	ActiveEventID string `json:"active_event_id"`
	DefaultMode   string `json:"default_mode"`
	DefaultZone   string `json:"default_zone"`
}

func fromSettings(s kiosk.Settings) SettingsResponse {
	return SettingsResponse{
		ActiveEventID: s.ActiveEventID.String(),
		DefaultMode:   string(s.DefaultMode),
		DefaultZone:   s.DefaultZone,
	}
}

// HandleGet handles GET /kiosk/settings.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	settings, err := h.store.Load(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "kiosk settings have not been configured"))
			return
		}
		h.logger.ErrorContext(ctx, "kiosk settings load failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "kiosk settings unavailable"))
		return
	}

	httputil.WriteJSON(w, http.StatusOK, fromSettings(settings))
}

// HandlePut handles PUT /kiosk/settings. The cache is refreshed so the new
// settings apply to the next scan rather than after the TTL.
func (h *Handler) HandlePut(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[SettingsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	settings := kiosk.Settings{
		ActiveEventID: req.parsedEventID,
		DefaultMode:   req.parsedMode,
		DefaultZone:   req.DefaultZone,
	}
	if err := h.store.Save(ctx, settings); err != nil {
		h.logger.ErrorContext(ctx, "kiosk settings save failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "kiosk settings unavailable"))
		return
	}

	if _, err := h.cache.Refresh(ctx); err != nil {
		h.logger.WarnContext(ctx, "kiosk settings cache refresh failed",
			"request_id", requestID,
			"error", err,
		)
	}

	h.logger.InfoContext(ctx, "kiosk settings updated",
		"request_id", requestID,
		"actor_id", requestcontext.StaffID(ctx),
		"active_event_id", req.ActiveEventID,
		"default_mode", req.DefaultMode,
		"default_zone", req.DefaultZone,
	)

	httputil.WriteJSON(w, http.StatusOK, fromSettings(settings))
}
