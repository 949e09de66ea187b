package handler

import (
	"gatepass/internal/occupancy/models"
	dErrors "gatepass/pkg/domain-errors"
)

// ScanRequest is the HTTP request body for POST /scan. Zone and mode fall
// back to the kiosk settings when omitted.
type ScanRequest struct {
	Code string `json:"code"`
	Zone string `json:"zone"`
	Mode string `json:"mode"`

	parsedMode models.Mode
}

func (r *ScanRequest) Validate() error {
	if r.Code == "" {
		return dErrors.New(dErrors.CodeBadRequest, "code is required")
	}
	if r.Mode != "" {
		mode, err := models.ParseMode(r.Mode)
		if err != nil {
			return err
		}
		r.parsedMode = mode
	}
	return nil
}
