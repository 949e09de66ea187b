package handler

import (
	id "gatepass/pkg/domain"
	dErrors "gatepass/pkg/domain-errors"
)

// IssueRequest is the HTTP request body for POST /credentials/issue.
type IssueRequest struct {
	AttendeeID string `json:"attendee_id"`
	EventID    string `json:"event_id"`

	parsedAttendeeID id.AttendeeID
	parsedEventID    id.EventID
}

func (r *IssueRequest) Validate() error {
	attendeeID, err := id.ParseAttendeeID(r.AttendeeID)
	if err != nil {
		return err
	}
	eventID, err := id.ParseEventID(r.EventID)
	if err != nil {
		return err
	}
	r.parsedAttendeeID = attendeeID
	r.parsedEventID = eventID
	return nil
}

// ValidateRequest is the HTTP request body for POST /credentials/validate.
type ValidateRequest struct {
	Token string `json:"token"`
}

func (r *ValidateRequest) Validate() error {
	if r.Token == "" {
		return dErrors.New(dErrors.CodeBadRequest, "token is required")
	}
	return nil
}

// ClaimRequest is the HTTP request body for POST /credentials/claim.
type ClaimRequest struct {
	AttendeeID string `json:"attendee_id"`
	BadgeType  string `json:"badge_type"`

	parsedAttendeeID id.AttendeeID
}

func (r *ClaimRequest) Validate() error {
	attendeeID, err := id.ParseAttendeeID(r.AttendeeID)
	if err != nil {
		return err
	}
	r.parsedAttendeeID = attendeeID
	if r.BadgeType == "" {
		r.BadgeType = "attendee"
	}
	return nil
}

// ReissueRequest is the HTTP request body for POST /credentials/reissue.
type ReissueRequest struct {
	AttendeeID string `json:"attendee_id"`

	parsedAttendeeID id.AttendeeID
}

func (r *ReissueRequest) Validate() error {
	attendeeID, err := id.ParseAttendeeID(r.AttendeeID)
	if err != nil {
		return err
	}
	r.parsedAttendeeID = attendeeID
	return nil
}
