package handler

import (
	"time"

	"gatepass/internal/occupancy/models"
	"gatepass/internal/occupancy/service"
)

// ScanResponse is the HTTP response for POST /scan.
type ScanResponse struct {
	Action            string `json:"action"`
	Zone              string `json:"zone"`
	PreviousZone      string `json:"previous_zone,omitempty"`
	AttendeeName      string `json:"attendee_name"`
	Organization      string `json:"organization,omitempty"`
	RecognizedMinutes int    `json:"recognized_minutes"`
}

// FromScan converts an engine result to an HTTP response.
func FromScan(result service.ScanResult) ScanResponse {
	return ScanResponse{
		Action:            string(result.Action),
		Zone:              result.Zone,
		PreviousZone:      result.PreviousZone,
		AttendeeName:      result.Attendee.DisplayName,
		Organization:      result.Attendee.Organization,
		RecognizedMinutes: result.RecognizedMinutes,
	}
}

// LogEntryResponse is one transition in GET /occupancy/{attendee_id}/log.
type LogEntryResponse struct {
	Zone              string    `json:"zone"`
	Type              string    `json:"type"`
	Timestamp         time.Time `json:"timestamp"`
	Method            string    `json:"method"`
	RecognizedMinutes int       `json:"recognized_minutes,omitempty"`
}

// LogResponse is the HTTP response for GET /occupancy/{attendee_id}/log.
type LogResponse struct {
	Entries []LogEntryResponse `json:"entries"`
}

// FromLog converts transition log entries to an HTTP response.
func FromLog(entries []models.LogEntry) LogResponse {
	out := LogResponse{Entries: make([]LogEntryResponse, 0, len(entries))}
	for _, e := range entries {
		out.Entries = append(out.Entries, LogEntryResponse{
			Zone:              e.ZoneID,
			Type:              string(e.Type),
			Timestamp:         e.Timestamp,
			Method:            string(e.Method),
			RecognizedMinutes: e.RecognizedMinutes,
		})
	}
	return out
}
