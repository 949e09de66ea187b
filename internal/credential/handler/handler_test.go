package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gatepass/internal/credential/metrics"
	"gatepass/internal/credential/service"
	"gatepass/internal/credential/store"
	"gatepass/internal/notify"
	"gatepass/internal/platform/logger"
	"gatepass/internal/registration"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/audit/publisher"
	auditmemory "gatepass/pkg/platform/audit/store/memory"
)

var testMetrics = metrics.New()

type fixture struct {
	router     chi.Router
	store      *store.InMemoryStore
	attendeeID id.AttendeeID
	eventID    id.EventID
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	eventID := id.EventID(uuid.New())
	attendeeID := id.AttendeeID(uuid.New())

	regs := registration.NewInMemoryStore()
	regs.PutEvent(registration.Event{ID: eventID, Name: "GopherFest"})
	regs.PutAttendee(registration.Attendee{
		ID:          attendeeID,
		EventID:     eventID,
		Kind:        registration.KindStandard,
		DisplayName: "Ada Lovelace",
		Contact:     "ada@example.com",
		BadgeType:   "attendee",
		Payment:     registration.PaymentConfirmed,
	})

	creds := store.NewInMemoryStore()
	log := logger.New("error")
	svc := service.New(
		creds,
		registration.NewResolver(regs, regs),
		notify.NewInMemoryDispatcher(),
		publisher.NewPublisher(auditmemory.NewInMemoryStore()),
		testMetrics,
		log,
		"https://badge.example.com/b",
	)

	h := New(svc, log)
	router := chi.NewRouter()
	h.Register(router)
	h.RegisterAdmin(router)

	return &fixture{
		router:     router,
		store:      creds,
		attendeeID: attendeeID,
		eventID:    eventID,
	}
}

func (f *fixture) post(t *testing.T, path string, payload map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) issue(t *testing.T) IssueResponse {
	t.Helper()
	rec := f.post(t, "/credentials/issue", map[string]string{
		"attendee_id": f.attendeeID.String(),
		"event_id":    f.eventID.String(),
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201 issuing, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp IssueResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode issue response: %v", err)
	}
	return resp
}

func TestIssueAndValidate(t *testing.T) {
	f := newFixture(t)

	issued := f.issue(t)
	if issued.Token == "" {
		t.Fatalf("expected a token in the issue response")
	}
	if !issued.ExpiresAt.After(time.Now()) {
		t.Fatalf("expected a future expiry, got %v", issued.ExpiresAt)
	}

	rec := f.post(t, "/credentials/validate", map[string]string{"token": issued.Token})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 validating, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ValidateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode validate response: %v", err)
	}
	if !resp.Valid || resp.RedirectRequired {
		t.Fatalf("expected a valid non-redirect result, got %+v", resp)
	}
	if resp.Attendee == nil || resp.Attendee.DisplayName != "Ada Lovelace" {
		t.Fatalf("expected attendee snapshot, got %+v", resp.Attendee)
	}
}

func TestValidateSupersededTokenRedirects(t *testing.T) {
	f := newFixture(t)

	first := f.issue(t)
	second := f.issue(t)

	rec := f.post(t, "/credentials/validate", map[string]string{"token": first.Token})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 validating superseded token, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ValidateResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode validate response: %v", err)
	}
	if !resp.RedirectRequired || resp.NewToken != second.Token {
		t.Fatalf("expected redirect to the newer token, got %+v", resp)
	}
	if resp.Attendee != nil {
		t.Fatalf("redirect responses must not carry the attendee snapshot")
	}
}

func TestValidateUnknownToken(t *testing.T) {
	f := newFixture(t)

	rec := f.post(t, "/credentials/validate", map[string]string{"token": uuid.NewString()})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown token, got %d", rec.Code)
	}
}

func TestClaimAndReissue(t *testing.T) {
	f := newFixture(t)
	f.issue(t)

	rec := f.post(t, "/credentials/claim", map[string]string{
		"attendee_id": f.attendeeID.String(),
		"badge_type":  "speaker",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 claiming, got %d: %s", rec.Code, rec.Body.String())
	}

	var claim ClaimResponse
	if err := json.NewDecoder(rec.Body).Decode(&claim); err != nil {
		t.Fatalf("failed to decode claim response: %v", err)
	}
	if claim.BadgeCode != "GPR-"+f.attendeeID.String() {
		t.Fatalf("expected printable badge code, got %q", claim.BadgeCode)
	}
	if claim.BadgeType != "speaker" {
		t.Fatalf("expected claimed badge type, got %q", claim.BadgeType)
	}

	rec = f.post(t, "/credentials/reissue", map[string]string{
		"attendee_id": f.attendeeID.String(),
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 reissuing, got %d: %s", rec.Code, rec.Body.String())
	}

	var reissue ReissueResponse
	if err := json.NewDecoder(rec.Body).Decode(&reissue); err != nil {
		t.Fatalf("failed to decode reissue response: %v", err)
	}
	if reissue.NewToken == "" {
		t.Fatalf("expected a new token after reissue")
	}
	if f.store.ActiveCount(f.attendeeID) != 1 {
		t.Fatalf("expected exactly one current credential after reissue")
	}
}

func TestIssueRejectsMalformedIDs(t *testing.T) {
	f := newFixture(t)

	rec := f.post(t, "/credentials/issue", map[string]string{
		"attendee_id": "not-a-uuid",
		"event_id":    f.eventID.String(),
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for a malformed attendee id, got %d", rec.Code)
	}
}

func TestIssueUnknownAttendee(t *testing.T) {
	f := newFixture(t)

	rec := f.post(t, "/credentials/issue", map[string]string{
		"attendee_id": uuid.NewString(),
		"event_id":    f.eventID.String(),
	})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown attendee, got %d", rec.Code)
	}
}
