package registration

import (
	"context"
	"errors"
	"strings"

	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
	"gatepass/pkg/platform/sentinel"
)

// codePrefixes are the printable prefixes badge codes carry in the wild.
// Kiosk scanners and the credential access page both pass raw codes here, so
// parsing rules stay in one place and cannot diverge.
var codePrefixes = []string{"GPR-", "GP-"}

// Resolver normalizes free-form scanned strings into registration snapshots.
// Lookup tries the standard collection first, then the externally imported
// one; callers receive a tagged Attendee either way.
type Resolver struct {
	store  Store
	events EventStore
}

func NewResolver(store Store, events EventStore) *Resolver {
	return &Resolver{store: store, events: events}
}

// NormalizeCode strips a known badge-code prefix and surrounding whitespace.
func NormalizeCode(code string) string {
	code = strings.TrimSpace(code)
	for _, prefix := range codePrefixes {
		if strings.HasPrefix(code, prefix) {
			return code[len(prefix):]
		}
	}
	return code
}

// ResolveCode maps a scanned code to a paid registration for the given event.
// Precondition failures produce no state change anywhere: the caller gets
// InvalidCode, NotPaid, or WrongEvent and nothing else happens.
func (r *Resolver) ResolveCode(ctx context.Context, code string, eventID id.EventID) (Attendee, error) {
	attendeeID, err := id.ParseAttendeeID(NormalizeCode(code))
	if err != nil {
		return Attendee{}, dErrors.New(dErrors.CodeInvalidCode, "code does not identify a registration")
	}
	return r.Resolve(ctx, attendeeID, eventID)
}

// Resolve looks up an attendee by ID and enforces the paid-for-this-event
// precondition. Unknown attendees surface as InvalidCode here because the
// caller is holding a scanned code, not a trusted ID.
func (r *Resolver) Resolve(ctx context.Context, attendeeID id.AttendeeID, eventID id.EventID) (Attendee, error) {
	attendee, err := r.lookup(ctx, attendeeID)
	if dErrors.HasCode(err, dErrors.CodeNotFound) {
		return Attendee{}, dErrors.New(dErrors.CodeInvalidCode, "no registration matches the code")
	}
	if err != nil {
		return Attendee{}, err
	}
	if attendee.EventID != eventID {
		return Attendee{}, dErrors.New(dErrors.CodeWrongEvent, attendee.DisplayName+" is registered for a different event")
	}
	if !attendee.Paid() {
		return Attendee{}, dErrors.New(dErrors.CodeNotPaid, attendee.DisplayName+" has no confirmed payment")
	}
	return attendee, nil
}

// Lookup finds an attendee without event or payment checks. Used by the
// credential service, which owns its own failure semantics.
func (r *Resolver) Lookup(ctx context.Context, attendeeID id.AttendeeID) (Attendee, error) {
	return r.lookup(ctx, attendeeID)
}

// Event returns event metadata for expiry computation.
func (r *Resolver) Event(ctx context.Context, eventID id.EventID) (Event, error) {
	event, err := r.events.FindEvent(ctx, eventID)
	if errors.Is(err, sentinel.ErrNotFound) {
		return Event{}, dErrors.New(dErrors.CodeNotFound, "event not found")
	}
	if err != nil {
		return Event{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "event lookup failed")
	}
	return event, nil
}

func (r *Resolver) lookup(ctx context.Context, attendeeID id.AttendeeID) (Attendee, error) {
	for _, kind := range []AttendeeKind{KindStandard, KindExternal} {
		attendee, err := r.store.FindAttendee(ctx, kind, attendeeID)
		if err == nil {
			return attendee, nil
		}
		if !errors.Is(err, sentinel.ErrNotFound) {
			return Attendee{}, dErrors.Wrap(err, dErrors.CodeUnavailable, "registration lookup failed")
		}
	}
	return Attendee{}, dErrors.New(dErrors.CodeNotFound, "attendee not found")
}
