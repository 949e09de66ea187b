// Package service implements the zone transition engine: one scan in, at
// most one committed state transition out. Every call either commits a whole
// transition with its log entries or commits nothing.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"gatepass/internal/occupancy/metrics"
	"gatepass/internal/occupancy/models"
	"gatepass/internal/occupancy/store"
	"gatepass/internal/registration"
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/audit"
	"gatepass/pkg/platform/audit/publisher"
	"gatepass/pkg/platform/sentinel"
	"gatepass/pkg/requestcontext"
)

// ScanResult reports the committed transition.
type ScanResult struct {
	Action models.Action
	Zone   string
	// PreviousZone is set on SWITCH: the zone that was exited.
	PreviousZone string
	// RecognizedMinutes credited by this scan (EXIT and SWITCH only).
	RecognizedMinutes int
	Attendee          registration.Attendee
}

// Engine applies kiosk scans to occupancy records.
type Engine struct {
	store    store.Store
	resolver *registration.Resolver
	auditor  *publisher.Publisher
	metrics  *metrics.Metrics
	logger   *slog.Logger
	tracer   trace.Tracer
}

func NewEngine(
	st store.Store,
	resolver *registration.Resolver,
	auditor *publisher.Publisher,
	m *metrics.Metrics,
	logger *slog.Logger,
) *Engine {
	return &Engine{
		store:    st,
		resolver: resolver,
		auditor:  auditor,
		metrics:  m,
		logger:   logger,
		tracer:   otel.Tracer("gatepass/occupancy"),
	}
}

// Scan interprets a scanned code against the kiosk's mode and zone and
// applies exactly one transition. Precondition failures and guard violations
// reject with no state change.
func (e *Engine) Scan(ctx context.Context, code, kioskZone string, mode models.Mode, eventID id.EventID, method models.Method) (ScanResult, error) {
	ctx, span := e.tracer.Start(ctx, "occupancy.Scan")
	defer span.End()

	if kioskZone == "" {
		return ScanResult{}, dErrors.New(dErrors.CodeBadRequest, "kiosk zone is required")
	}

	attendee, err := e.resolver.ResolveCode(ctx, code, eventID)
	if err != nil {
		e.reject(ctx, code, kioskZone, mode, err)
		return ScanResult{}, err
	}

	rec, expected, err := e.currentRecord(ctx, attendee.ID, eventID)
	if err != nil {
		return ScanResult{}, err
	}

	now := requestcontext.Now(ctx)

	var (
		next    models.Record
		entries []models.LogEntry
		result  ScanResult
	)

	switch mode {
	case models.ModeEnterOnly:
		switch {
		case !rec.Inside():
			next, entries, result = e.enter(rec, kioskZone, now, method)
		case rec.CurrentZone == kioskZone:
			err = dErrors.New(dErrors.CodeAlreadyInside, attendee.DisplayName+" is already inside "+kioskZone)
		default:
			next, entries, result = e.switchZone(rec, kioskZone, now, method)
		}

	case models.ModeExitOnly:
		if rec.Inside() {
			next, entries, result = e.exit(rec, now, method)
		} else {
			err = dErrors.New(dErrors.CodeNotEntered, attendee.DisplayName+" has not entered any zone")
		}

	case models.ModeAuto:
		switch {
		case !rec.Inside():
			next, entries, result = e.enter(rec, kioskZone, now, method)
		case rec.CurrentZone == kioskZone:
			next, entries, result = e.exit(rec, now, method)
		default:
			next, entries, result = e.switchZone(rec, kioskZone, now, method)
		}

	default:
		err = dErrors.New(dErrors.CodeBadRequest, "unknown kiosk mode")
	}

	if err != nil {
		e.reject(ctx, code, kioskZone, mode, err)
		return ScanResult{}, err
	}

	if err := e.store.Apply(ctx, expected, next, entries); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			e.metrics.Conflicts.Inc()
			return ScanResult{}, dErrors.New(dErrors.CodeConflict, "a concurrent scan changed this attendee's state; rescan")
		}
		e.logger.ErrorContext(ctx, "transition commit failed",
			"request_id", requestcontext.RequestID(ctx),
			"attendee_id", attendee.ID,
			"zone", kioskZone,
			"mode", string(mode),
			"error", err,
		)
		return ScanResult{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "occupancy store unavailable")
	}

	result.Attendee = attendee
	e.committed(ctx, attendee, mode, entries, result)
	return result, nil
}

// Log returns the attendee's transition history.
func (e *Engine) Log(ctx context.Context, attendeeID id.AttendeeID) ([]models.LogEntry, error) {
	entries, err := e.store.ListLog(ctx, attendeeID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "transition log unavailable")
	}
	return entries, nil
}

// currentRecord loads the occupancy record, mapping absence onto the fresh
// OUTSIDE record plus a nil expectation for the conditional insert.
func (e *Engine) currentRecord(ctx context.Context, attendeeID id.AttendeeID, eventID id.EventID) (models.Record, *models.Record, error) {
	rec, err := e.store.Get(ctx, attendeeID, eventID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return models.Fresh(attendeeID, eventID), nil, nil
	}
	if err != nil {
		return models.Record{}, nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "occupancy store unavailable")
	}
	expected := rec
	return rec, &expected, nil
}

func (e *Engine) enter(rec models.Record, zone string, now time.Time, method models.Method) (models.Record, []models.LogEntry, ScanResult) {
	next := rec
	next.Status = models.StatusInside
	next.CurrentZone = zone
	next.LastCheckIn = now

	entry := models.LogEntry{
		AttendeeID: rec.AttendeeID,
		ZoneID:     zone,
		Type:       models.TransitionEnter,
		Timestamp:  now,
		Method:     method,
	}
	return next, []models.LogEntry{entry}, ScanResult{Action: models.ActionEnter, Zone: zone}
}

func (e *Engine) exit(rec models.Record, now time.Time, method models.Method) (models.Record, []models.LogEntry, ScanResult) {
	minutes := models.RecognizedMinutes(now, rec.LastCheckIn)

	next := rec
	next.Status = models.StatusOutside
	next.CurrentZone = ""
	next.TotalMinutes += minutes

	entry := models.LogEntry{
		AttendeeID:        rec.AttendeeID,
		ZoneID:            rec.CurrentZone,
		Type:              models.TransitionExit,
		Timestamp:         now,
		Method:            method,
		RecognizedMinutes: minutes,
	}
	return next, []models.LogEntry{entry}, ScanResult{
		Action:            models.ActionExit,
		Zone:              rec.CurrentZone,
		RecognizedMinutes: minutes,
	}
}

// switchZone exits the current zone and enters the new one as one logical
// transition: both log entries ride the same conditional update.
func (e *Engine) switchZone(rec models.Record, zone string, now time.Time, method models.Method) (models.Record, []models.LogEntry, ScanResult) {
	minutes := models.RecognizedMinutes(now, rec.LastCheckIn)

	next := rec
	next.Status = models.StatusInside
	next.CurrentZone = zone
	next.LastCheckIn = now
	next.TotalMinutes += minutes

	entries := []models.LogEntry{
		{
			AttendeeID:        rec.AttendeeID,
			ZoneID:            rec.CurrentZone,
			Type:              models.TransitionExit,
			Timestamp:         now,
			Method:            method,
			RecognizedMinutes: minutes,
		},
		{
			AttendeeID: rec.AttendeeID,
			ZoneID:     zone,
			Type:       models.TransitionEnter,
			Timestamp:  now,
			Method:     method,
		},
	}
	return next, entries, ScanResult{
		Action:            models.ActionSwitch,
		Zone:              zone,
		PreviousZone:      rec.CurrentZone,
		RecognizedMinutes: minutes,
	}
}

func (e *Engine) committed(ctx context.Context, attendee registration.Attendee, mode models.Mode, entries []models.LogEntry, result ScanResult) {
	e.metrics.Transitions.WithLabelValues(string(result.Action)).Inc()
	if result.RecognizedMinutes > 0 {
		e.metrics.DwellMins.Add(float64(result.RecognizedMinutes))
	}

	for _, entry := range entries {
		action := audit.EventZoneEntered
		if entry.Type == models.TransitionExit {
			action = audit.EventZoneExited
		}
		e.emit(ctx, audit.Event{
			Timestamp:         entry.Timestamp,
			AttendeeID:        attendee.ID,
			EventID:           attendee.EventID,
			Action:            string(action),
			Zone:              entry.ZoneID,
			Mode:              string(mode),
			RecognizedMinutes: entry.RecognizedMinutes,
		})
	}
}

func (e *Engine) reject(ctx context.Context, code, zone string, mode models.Mode, cause error) {
	reason := string(dErrors.CodeOf(cause))
	e.metrics.Rejections.WithLabelValues(reason).Inc()
	e.emit(ctx, audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Action:    string(audit.EventScanRejected),
		Zone:      zone,
		Mode:      string(mode),
		Reason:    reason,
		CodeHash:  audit.HashCode(code),
	})
}

func (e *Engine) emit(ctx context.Context, event audit.Event) {
	event.RequestID = requestcontext.RequestID(ctx)
	if err := e.auditor.Emit(ctx, event); err != nil {
		e.logger.ErrorContext(ctx, "audit emit failed",
			"action", event.Action,
			"error", err,
		)
	}
}
