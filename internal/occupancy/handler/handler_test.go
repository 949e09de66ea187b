package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"gatepass/internal/kiosk"
	"gatepass/internal/occupancy/metrics"
	"gatepass/internal/occupancy/models"
	"gatepass/internal/occupancy/service"
	"gatepass/internal/occupancy/store"
	"gatepass/internal/platform/logger"
	"gatepass/internal/registration"
	id "gatepass/pkg/domain"
	"gatepass/pkg/platform/audit/publisher"
	auditmemory "gatepass/pkg/platform/audit/store/memory"
)

var testMetrics = metrics.New()

type fixture struct {
	router     chi.Router
	attendeeID id.AttendeeID
	code       string
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	eventID := id.EventID(uuid.New())
	attendeeID := id.AttendeeID(uuid.New())

	regs := registration.NewInMemoryStore()
	regs.PutEvent(registration.Event{ID: eventID, Name: "GopherFest"})
	regs.PutAttendee(registration.Attendee{
		ID:           attendeeID,
		EventID:      eventID,
		Kind:         registration.KindStandard,
		DisplayName:  "Ada Lovelace",
		Organization: "Analytical Engines Ltd",
		Payment:      registration.PaymentConfirmed,
	})

	settings := kiosk.NewInMemoryStore()
	if err := settings.Save(context.Background(), kiosk.Settings{
		ActiveEventID: eventID,
		DefaultMode:   models.ModeAuto,
		DefaultZone:   "main-hall",
	}); err != nil {
		t.Fatalf("failed to seed kiosk settings: %v", err)
	}

	log := logger.New("error")
	engine := service.NewEngine(
		store.NewInMemoryStore(),
		registration.NewResolver(regs, regs),
		publisher.NewPublisher(auditmemory.NewInMemoryStore()),
		testMetrics,
		log,
	)

	h := New(engine, kiosk.NewCache(settings, 0), log)
	router := chi.NewRouter()
	h.Register(router)
	h.RegisterAdmin(router)

	return &fixture{
		router:     router,
		attendeeID: attendeeID,
		code:       "GPR-" + attendeeID.String(),
	}
}

func (f *fixture) scan(t *testing.T, payload map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(payload)
	req := httptest.NewRequest(http.MethodPost, "/scan", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func TestScanEnterAndExit(t *testing.T) {
	f := newFixture(t)

	rec := f.scan(t, map[string]string{"code": f.code, "zone": "hall-a", "mode": "ENTER_ONLY"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 entering, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ScanResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode scan response: %v", err)
	}
	if resp.Action != "ENTER" || resp.Zone != "hall-a" {
		t.Fatalf("expected ENTER into hall-a, got %+v", resp)
	}
	if resp.AttendeeName != "Ada Lovelace" {
		t.Fatalf("expected attendee name in response, got %+v", resp)
	}

	rec = f.scan(t, map[string]string{"code": f.code, "zone": "hall-a", "mode": "EXIT_ONLY"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 exiting, got %d: %s", rec.Code, rec.Body.String())
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode scan response: %v", err)
	}
	if resp.Action != "EXIT" {
		t.Fatalf("expected EXIT, got %+v", resp)
	}
}

func TestScanDefaultsFromKioskSettings(t *testing.T) {
	f := newFixture(t)

	rec := f.scan(t, map[string]string{"code": f.code})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with defaulted zone and mode, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp ScanResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode scan response: %v", err)
	}
	if resp.Zone != "main-hall" {
		t.Fatalf("expected default zone main-hall, got %+v", resp)
	}
}

func TestScanRejectionStatuses(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name    string
		payload map[string]string
		status  int
		code    string
	}{
		{
			name:    "missing code",
			payload: map[string]string{"zone": "hall-a"},
			status:  http.StatusBadRequest,
			code:    "bad_request",
		},
		{
			name:    "unknown mode",
			payload: map[string]string{"code": f.code, "mode": "SIDEWAYS"},
			status:  http.StatusBadRequest,
			code:    "bad_request",
		},
		{
			name:    "unrecognized badge",
			payload: map[string]string{"code": "GPR-" + uuid.NewString(), "zone": "hall-a"},
			status:  http.StatusUnprocessableEntity,
			code:    "invalid_code",
		},
		{
			name:    "exit before entering",
			payload: map[string]string{"code": f.code, "mode": "EXIT_ONLY"},
			status:  http.StatusConflict,
			code:    "not_entered",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.scan(t, tc.payload)
			if rec.Code != tc.status {
				t.Fatalf("expected %d, got %d: %s", tc.status, rec.Code, rec.Body.String())
			}
			var errResp struct {
				Error string `json:"error"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&errResp); err != nil {
				t.Fatalf("failed to decode error response: %v", err)
			}
			if errResp.Error != tc.code {
				t.Fatalf("expected error code %q, got %q", tc.code, errResp.Error)
			}
		})
	}
}

func TestNoLiveEventReturnsUnavailable(t *testing.T) {
	f := newFixture(t)

	log := logger.New("error")
	regs := registration.NewInMemoryStore()
	engine := service.NewEngine(
		store.NewInMemoryStore(),
		registration.NewResolver(regs, regs),
		publisher.NewPublisher(auditmemory.NewInMemoryStore()),
		testMetrics,
		log,
	)
	h := New(engine, kiosk.NewCache(kiosk.NewInMemoryStore(), 0), log)
	router := chi.NewRouter()
	h.Register(router)
	f.router = router

	rec := f.scan(t, map[string]string{"code": f.code, "zone": "hall-a"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 without kiosk settings, got %d", rec.Code)
	}
}

func TestTransitionLogEndpoint(t *testing.T) {
	f := newFixture(t)

	f.scan(t, map[string]string{"code": f.code, "zone": "hall-a"})
	f.scan(t, map[string]string{"code": f.code, "zone": "hall-a"})

	req := httptest.NewRequest(http.MethodGet, "/occupancy/"+f.attendeeID.String()+"/log", nil)
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from log endpoint, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp LogResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode log response: %v", err)
	}
	if len(resp.Entries) != 2 {
		t.Fatalf("expected an enter and an exit entry, got %d", len(resp.Entries))
	}
	if resp.Entries[0].Type != "ENTER" || resp.Entries[1].Type != "EXIT" {
		t.Fatalf("expected ENTER then EXIT, got %+v", resp.Entries)
	}
}
