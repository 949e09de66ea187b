// Package models defines the occupancy record, the transition log, and the
// kiosk scan vocabulary.
package models

import (
	"time"

	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
)

// Status is the attendee's physical presence state.
type Status string

const (
	StatusOutside Status = "OUTSIDE"
	StatusInside  Status = "INSIDE"
)

// Record tracks one attendee's occupancy for one event. CurrentZone is
// non-empty iff Status is INSIDE. LastCheckIn is the most recent entry
// timestamp; the zero value means the attendee never entered. TotalMinutes
// only ever grows.
type Record struct {
	AttendeeID   id.AttendeeID
	EventID      id.EventID
	Status       Status
	CurrentZone  string
	LastCheckIn  time.Time
	TotalMinutes int
}

// Fresh returns the never-entered record for an attendee.
func Fresh(attendeeID id.AttendeeID, eventID id.EventID) Record {
	return Record{
		AttendeeID: attendeeID,
		EventID:    eventID,
		Status:     StatusOutside,
	}
}

// Inside reports whether the attendee is currently in a zone.
func (r Record) Inside() bool { return r.Status == StatusInside }

// TransitionType labels a log entry.
type TransitionType string

const (
	TransitionEnter TransitionType = "ENTER"
	TransitionExit  TransitionType = "EXIT"
)

// Method records how a transition was triggered.
type Method string

const (
	MethodKiosk  Method = "kiosk"
	MethodManual Method = "manual"
)

// LogEntry is one immutable transition record. EXIT entries carry the dwell
// minutes recognized for that stay.
type LogEntry struct {
	AttendeeID        id.AttendeeID
	ZoneID            string
	Type              TransitionType
	Timestamp         time.Time
	Method            Method
	RecognizedMinutes int
}

// Mode is a kiosk's configured transition behavior.
type Mode string

const (
	ModeEnterOnly Mode = "ENTER_ONLY"
	ModeExitOnly  Mode = "EXIT_ONLY"
	ModeAuto      Mode = "AUTO"
)

// ParseMode validates a mode string from a scan request.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeEnterOnly, ModeExitOnly, ModeAuto:
		return Mode(s), nil
	default:
		return "", dErrors.New(dErrors.CodeBadRequest, "unknown kiosk mode: "+s)
	}
}

// Action is the committed outcome of a scan.
type Action string

const (
	ActionEnter  Action = "ENTER"
	ActionExit   Action = "EXIT"
	ActionSwitch Action = "SWITCH"
)

// RecognizedMinutes computes the dwell minutes for a stay ending now. A zero
// lastCheckIn is a data anomaly; it counts as zero elapsed rather than
// corrupting the accumulated total.
func RecognizedMinutes(now, lastCheckIn time.Time) int {
	if lastCheckIn.IsZero() || now.Before(lastCheckIn) {
		return 0
	}
	return int(now.Sub(lastCheckIn) / time.Minute)
}
