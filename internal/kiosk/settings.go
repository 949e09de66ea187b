// Package kiosk holds the operator-controlled scan settings: which event is
// live and how kiosks interpret scans by default. Settings change rarely and
// are read on every scan, so callers go through the TTL cache.
package kiosk

import (
	"context"

	"gatepass/internal/occupancy/models"
	id "gatepass/pkg/domain"
)

// Settings is the deployment-wide kiosk configuration.
type Settings struct {
	// ActiveEventID is the event scans are resolved against.
	ActiveEventID id.EventID `json:"active_event_id"`
	// DefaultMode applies when a scan request does not name a mode.
	DefaultMode models.Mode `json:"default_mode"`
	// DefaultZone applies when a scan request does not name a zone.
	DefaultZone string `json:"default_zone"`
}

// Store persists kiosk settings.
type Store interface {
	// Load returns the current settings, or sentinel.ErrNotFound when none
	// have been saved.
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, settings Settings) error
}
