// Package service implements the credential lifecycle: issuance on payment
// confirmation, validation with self-healing redirects, badge claims, and
// administrative reissue.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"gatepass/internal/credential/metrics"
	"gatepass/internal/credential/models"
	"gatepass/internal/credential/store"
	"gatepass/internal/notify"
	"gatepass/internal/registration"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/audit"
	"gatepass/pkg/platform/audit/publisher"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/requestcontext"
)

// ValidationResult is the outcome of presenting a token.
type ValidationResult struct {
	Valid            bool
	RedirectRequired bool
	// Token is the credential the caller should use from now on. Equal to
	// the presented token when no redirect happened.
	Token      string
	Credential models.Credential
	// Attendee is the registration snapshot. Nil on redirects: the caller
	// must re-present the new token before seeing attendee data.
	Attendee *registration.Attendee
}

// Service drives the credential lifecycle. The dispatcher is injected at
// construction; there is no lazily built global provider.
type Service struct {
	store         store.Store
	resolver      *registration.Resolver
	dispatcher    notify.Dispatcher
	auditor       *publisher.Publisher
	metrics       *metrics.Metrics
	logger        *slog.Logger
	accessBaseURL string
	tracer        trace.Tracer
}

func New(
	st store.Store,
	resolver *registration.Resolver,
	dispatcher notify.Dispatcher,
	auditor *publisher.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
	accessBaseURL string,
) *Service {
	return &Service{
		store:         st,
		resolver:      resolver,
		dispatcher:    dispatcher,
		auditor:       auditor,
		metrics:       m,
		logger:        logger,
		accessBaseURL: accessBaseURL,
		tracer:        otel.Tracer("gatepass/credential"),
	}
}

// Issue creates a new ACTIVE credential for the attendee, expiring any prior
// ACTIVE one in the same atomic store operation. The access link is handed to
// the dispatcher after the credential is durable; delivery failure is logged
// and audited but never rolls issuance back.
func (s *Service) Issue(ctx context.Context, attendeeID id.AttendeeID, eventID id.EventID) (models.Credential, error) {
	ctx, span := s.tracer.Start(ctx, "credential.Issue")
	defer span.End()

	attendee, err := s.resolver.Lookup(ctx, attendeeID)
	if err != nil {
		return models.Credential{}, err
	}
	if attendee.EventID != eventID {
		return models.Credential{}, dErrors.New(dErrors.CodeWrongEvent, attendee.DisplayName+" is registered for a different event")
	}
	if !attendee.Paid() {
		return models.Credential{}, dErrors.New(dErrors.CodeNotPaid, attendee.DisplayName+" has no confirmed payment")
	}

	event, err := s.resolver.Event(ctx, eventID)
	if err != nil {
		return models.Credential{}, err
	}

	now := requestcontext.Now(ctx)
	cred := models.Credential{
		Token:      models.NewToken(),
		AttendeeID: attendeeID,
		EventID:    eventID,
		Status:     models.StatusActive,
		BadgeType:  attendee.BadgeType,
		CreatedAt:  now,
		ExpiresAt:  models.ExpiryFor(now, event.EndsAt),
	}

	cred, err = s.store.Replace(ctx, cred)
	if err != nil {
		return models.Credential{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to persist credential")
	}

	s.metrics.Issued.Inc()
	s.emit(ctx, audit.Event{
		Timestamp:  now,
		AttendeeID: attendeeID,
		EventID:    eventID,
		Action:     string(audit.EventCredentialIssued),
	})

	s.dispatch(ctx, attendee, cred)
	return cred, nil
}

// Validate resolves a presented token. Expired or superseded tokens heal
// themselves: the caller gets redirectRequired plus the token to use instead
// of a dead link.
func (s *Service) Validate(ctx context.Context, rawToken string) (ValidationResult, error) {
	ctx, span := s.tracer.Start(ctx, "credential.Validate")
	defer span.End()

	token := registration.NormalizeCode(rawToken)
	cred, err := s.store.FindByToken(ctx, token)
	if errors.Is(err, sentinel.ErrNotFound) {
		return ValidationResult{}, dErrors.New(dErrors.CodeNotFound, "credential not found")
	}
	if err != nil {
		return ValidationResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "credential lookup failed")
	}

	now := requestcontext.Now(ctx)

	// A superseded token redirects to the attendee's current credential
	// when one exists. Stale links in old emails keep working this way.
	if cred.Status == models.StatusExpired {
		current, err := s.store.FindCurrent(ctx, cred.AttendeeID)
		if err == nil && !current.ExpiredAt(now) {
			s.metrics.Redirects.Inc()
			s.emit(ctx, audit.Event{
				Timestamp:  now,
				AttendeeID: cred.AttendeeID,
				EventID:    cred.EventID,
				Action:     string(audit.EventValidationRedirect),
			})
			return ValidationResult{RedirectRequired: true, Token: current.Token, Credential: current}, nil
		}
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return ValidationResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "credential lookup failed")
		}
		return s.autoRenew(ctx, cred)
	}

	// Past expiry: transparently reissue so the caller is never handed a
	// dead link.
	if cred.ExpiredAt(now) {
		return s.autoRenew(ctx, cred)
	}

	attendee, err := s.resolver.Lookup(ctx, cred.AttendeeID)
	if err != nil {
		return ValidationResult{}, err
	}

	return ValidationResult{
		Valid:      true,
		Token:      cred.Token,
		Credential: cred,
		Attendee:   &attendee,
	}, nil
}

// Claim marks the attendee's current credential ISSUED when the physical
// badge is printed. Idempotent: a second claim updates badge type and issue
// time, nothing errors.
func (s *Service) Claim(ctx context.Context, attendeeID id.AttendeeID, badgeType string) (models.Credential, error) {
	ctx, span := s.tracer.Start(ctx, "credential.Claim")
	defer span.End()

	now := requestcontext.Now(ctx)
	cred, err := s.store.MarkIssued(ctx, attendeeID, badgeType, now)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Credential{}, dErrors.New(dErrors.CodeNotFound, "attendee holds no current credential")
	}
	if err != nil {
		return models.Credential{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to record claim")
	}

	s.metrics.Claimed.Inc()
	s.emit(ctx, audit.Event{
		Timestamp:  now,
		AttendeeID: attendeeID,
		EventID:    cred.EventID,
		Action:     string(audit.EventCredentialClaimed),
		ActorID:    requestcontext.StaffID(ctx),
	})
	return cred, nil
}

// Reissue is the administrative re-trigger of Issue, re-invoking dispatch.
func (s *Service) Reissue(ctx context.Context, attendeeID id.AttendeeID) (models.Credential, error) {
	ctx, span := s.tracer.Start(ctx, "credential.Reissue")
	defer span.End()

	attendee, err := s.resolver.Lookup(ctx, attendeeID)
	if err != nil {
		return models.Credential{}, err
	}

	cred, err := s.Issue(ctx, attendeeID, attendee.EventID)
	if err != nil {
		return models.Credential{}, err
	}

	s.emit(ctx, audit.Event{
		Timestamp:  requestcontext.Now(ctx),
		AttendeeID: attendeeID,
		EventID:    attendee.EventID,
		Action:     string(audit.EventCredentialReissued),
		ActorID:    requestcontext.StaffID(ctx),
	})
	return cred, nil
}

// autoRenew expires the presented credential and issues a fresh one for the
// same attendee, answering with a redirect.
func (s *Service) autoRenew(ctx context.Context, stale models.Credential) (ValidationResult, error) {
	now := requestcontext.Now(ctx)

	// Issue's Replace only expires ACTIVE rows. An ISSUED stale credential
	// must be expired here too, or every later hit on the same link would
	// renew again instead of redirecting to the replacement.
	if stale.Status != models.StatusExpired {
		if err := s.store.MarkExpired(ctx, stale.Token, now); err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return ValidationResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to expire stale credential")
		}
	}

	cred, err := s.Issue(ctx, stale.AttendeeID, stale.EventID)
	if err != nil {
		return ValidationResult{}, err
	}

	s.metrics.AutoRenewed.Inc()
	s.emit(ctx, audit.Event{
		Timestamp:  now,
		AttendeeID: stale.AttendeeID,
		EventID:    stale.EventID,
		Action:     string(audit.EventCredentialRenewed),
	})

	return ValidationResult{RedirectRequired: true, Token: cred.Token, Credential: cred}, nil
}

// dispatch fires the access link at the messaging collaborator. Failures are
// recorded and swallowed: the credential is valid even if delivery failed,
// and the attendee can always request a reissue.
func (s *Service) dispatch(ctx context.Context, attendee registration.Attendee, cred models.Credential) {
	msg := notify.Message{
		AccessURL: s.accessBaseURL + "/" + cred.Token,
		Recipient: attendee.Contact,
		Variables: map[string]string{
			"display_name": attendee.DisplayName,
		},
	}
	if err := s.dispatcher.Send(ctx, msg); err != nil {
		s.metrics.DispatchFailures.Inc()
		s.logger.ErrorContext(ctx, "access link dispatch failed",
			"request_id", requestcontext.RequestID(ctx),
			"attendee_id", cred.AttendeeID,
			"error", err,
		)
		s.emit(ctx, audit.Event{
			Timestamp:  requestcontext.Now(ctx),
			AttendeeID: cred.AttendeeID,
			EventID:    cred.EventID,
			Action:     string(audit.EventDispatchFailed),
			Reason:     err.Error(),
		})
	}
}

func (s *Service) emit(ctx context.Context, event audit.Event) {
	event.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditor.Emit(ctx, event); err != nil {
		s.logger.ErrorContext(ctx, "audit emit failed",
			"action", event.Action,
			"error", err,
		)
	}
}
