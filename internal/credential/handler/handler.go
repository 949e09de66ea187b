package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gatepass/internal/credential/models"
	"gatepass/internal/credential/service"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/httputil"
	"gatepass/pkg/requestcontext"
)

// Service defines the credential operations the handler needs.
type Service interface {
	Issue(ctx context.Context, attendeeID id.AttendeeID, eventID id.EventID) (models.Credential, error)
	Validate(ctx context.Context, token string) (service.ValidationResult, error)
	Claim(ctx context.Context, attendeeID id.AttendeeID, badgeType string) (models.Credential, error)
	Reissue(ctx context.Context, attendeeID id.AttendeeID) (models.Credential, error)
}

// Handler wires credential endpoints to the credential service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a credential handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the attendee-facing endpoints.
func (h *Handler) Register(r chi.Router) {
	r.Post("/credentials/issue", h.HandleIssue)
	r.Post("/credentials/validate", h.HandleValidate)
}

// RegisterAdmin mounts the staff-only endpoints; the caller wraps them in
// auth middleware.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Post("/credentials/claim", h.HandleClaim)
	r.Post("/credentials/reissue", h.HandleReissue)
}

// HandleIssue handles POST /credentials/issue.
func (h *Handler) HandleIssue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[IssueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	cred, err := h.service.Issue(ctx, req.parsedAttendeeID, req.parsedEventID)
	if err != nil {
		h.logger.ErrorContext(ctx, "credential issue failed",
			"request_id", requestID,
			"attendee_id", req.AttendeeID,
			"event_id", req.EventID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, IssueResponse{
		Token:     cred.Token,
		ExpiresAt: cred.ExpiresAt,
	})
}

// HandleValidate handles POST /credentials/validate. NotFound and expiry both
// surface to the attendee as the same generic failure; the distinction is not
// actionable for them.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ValidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Validate(ctx, req.Token)
	if err != nil {
		h.logger.WarnContext(ctx, "credential validation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromValidation(result))
}

// HandleClaim handles POST /credentials/claim.
func (h *Handler) HandleClaim(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ClaimRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	cred, err := h.service.Claim(ctx, req.parsedAttendeeID, req.BadgeType)
	if err != nil {
		h.logger.ErrorContext(ctx, "badge claim failed",
			"request_id", requestID,
			"attendee_id", req.AttendeeID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ClaimResponse{
		BadgeCode: BadgeCode(cred),
		Status:    string(cred.Status),
		BadgeType: cred.BadgeType,
	})
}

// HandleReissue handles POST /credentials/reissue.
func (h *Handler) HandleReissue(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ReissueRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	cred, err := h.service.Reissue(ctx, req.parsedAttendeeID)
	if err != nil {
		h.logger.ErrorContext(ctx, "credential reissue failed",
			"request_id", requestID,
			"attendee_id", req.AttendeeID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, ReissueResponse{
		NewToken:  cred.Token,
		ExpiresAt: cred.ExpiresAt,
	})
}
