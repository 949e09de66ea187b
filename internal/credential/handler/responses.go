package handler

import (
	"time"

	"gatepass/internal/credential/models"
	"gatepass/internal/credential/service"
)

// IssueResponse is the HTTP response for POST /credentials/issue.
type IssueResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// AttendeeResponse is the registration snapshot returned with a valid token.
type AttendeeResponse struct {
	DisplayName  string `json:"display_name"`
	Organization string `json:"organization,omitempty"`
	BadgeType    string `json:"badge_type,omitempty"`
}

// ValidateResponse is the HTTP response for POST /credentials/validate.
type ValidateResponse struct {
	Valid            bool              `json:"valid"`
	RedirectRequired bool              `json:"redirect_required,omitempty"`
	NewToken         string            `json:"new_token,omitempty"`
	Status           string            `json:"status,omitempty"`
	ExpiresAt        *time.Time        `json:"expires_at,omitempty"`
	Attendee         *AttendeeResponse `json:"attendee,omitempty"`
}

// ClaimResponse is the HTTP response for POST /credentials/claim.
type ClaimResponse struct {
	BadgeCode string `json:"badge_code"`
	Status    string `json:"status"`
	BadgeType string `json:"badge_type,omitempty"`
}

// ReissueResponse is the HTTP response for POST /credentials/reissue.
type ReissueResponse struct {
	NewToken  string    `json:"new_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// FromValidation converts a service result to an HTTP response. Redirects
// deliberately omit the attendee snapshot.
func FromValidation(result service.ValidationResult) *ValidateResponse {
	resp := &ValidateResponse{
		Valid:            result.Valid,
		RedirectRequired: result.RedirectRequired,
	}
	if result.RedirectRequired {
		resp.NewToken = result.Token
		return resp
	}
	expiresAt := result.Credential.ExpiresAt
	resp.Status = string(result.Credential.Status)
	resp.ExpiresAt = &expiresAt
	if result.Attendee != nil {
		resp.Attendee = &AttendeeResponse{
			DisplayName:  result.Attendee.DisplayName,
			Organization: result.Attendee.Organization,
			BadgeType:    result.Attendee.BadgeType,
		}
	}
	return resp
}

// BadgeCode renders the printable badge code for a credential's attendee.
func BadgeCode(cred models.Credential) string {
	return "GPR-" + cred.AttendeeID.String()
}
