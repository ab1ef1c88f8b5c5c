package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/psycare/psycare-go/pkg/logging"
)

func newTestClient(url string) *Client {
	return NewClient(Config{BaseURL: url}, logging.Nop())
}

func TestLoginStripsBearerPrefix(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" || r.Method != http.MethodPost {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"accessToken": "Bearer tok-123",
			"role":        "ROLE_PSYCHOLOGIST",
			"userData":    map[string]any{"firstName": "Ana"},
		})
	}))
	defer ts.Close()

	res, err := newTestClient(ts.URL).Login(context.Background(), LoginRequest{Username: "ana", Password: "pw"})
	if err != nil {
		t.Fatalf("Login error: %v", err)
	}
	if res.Token != "tok-123" {
		t.Fatalf("expected stripped token, got %q", res.Token)
	}
	if res.Role != "ROLE_PSYCHOLOGIST" {
		t.Fatalf("unexpected role: %s", res.Role)
	}
}

func TestLoginUnauthorized(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).Login(context.Background(), LoginRequest{Username: "ana", Password: "nope"})
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Status != http.StatusUnauthorized || apiErr.Message != "Invalid username or password" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
}

func TestUnassignedPatients(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/psychologists/me/patients/unassigned" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Fatalf("unexpected auth header: %q", got)
		}
		if r.Header.Get("X-Request-Id") == "" {
			t.Fatal("missing request id header")
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{"id": "p1", "firstName": "Ion", "lastName": "Pop", "age": 31},
		})
	}))
	defer ts.Close()

	patients, err := newTestClient(ts.URL).UnassignedPatients(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("UnassignedPatients error: %v", err)
	}
	if len(patients) != 1 || patients[0].ID != "p1" || patients[0].Age != 31 {
		t.Fatalf("unexpected patients: %+v", patients)
	}
}

func TestBookSessionConflictMessage(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req BookingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode req: %v", err)
		}
		if req.PatientID != "42" {
			t.Fatalf("expected patientId keyed payload, got %+v", req)
		}
		http.Error(w, "slot taken", http.StatusConflict)
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).BookSession(context.Background(), "tok-1", BookingRequest{
		StartTime: "2024-03-01 10:00:00",
		EndTime:   "2024-03-01 11:00:00",
		PatientID: "42",
	})
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Status != http.StatusConflict || apiErr.Message != "slot taken" {
		t.Fatalf("unexpected error: %+v", apiErr)
	}
}

func TestAssignPatientConfirmation(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/psychologists/me/patients/p7" {
			t.Fatalf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_, _ = w.Write([]byte("Patient assigned successfully"))
	}))
	defer ts.Close()

	msg, err := newTestClient(ts.URL).AssignPatient(context.Background(), "tok-1", "p7")
	if err != nil {
		t.Fatalf("AssignPatient error: %v", err)
	}
	if msg != "Patient assigned successfully" {
		t.Fatalf("unexpected confirmation: %q", msg)
	}
}

func TestTodayMoodAbsent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer ts.Close()

	m, err := newTestClient(ts.URL).TodayMood(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("TodayMood error: %v", err)
	}
	if m != nil {
		t.Fatalf("expected nil mood, got %+v", m)
	}
}

func TestTodayMoodPresent(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Mood{Value: 7})
	}))
	defer ts.Close()

	m, err := newTestClient(ts.URL).TodayMood(context.Background(), "tok-1")
	if err != nil {
		t.Fatalf("TodayMood error: %v", err)
	}
	if m == nil || m.Value != 7 {
		t.Fatalf("unexpected mood: %+v", m)
	}
}

func TestServerErrorMessageCapped(t *testing.T) {
	long := make([]byte, 1000)
	for i := range long {
		long[i] = 'x'
	}
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write(long)
	}))
	defer ts.Close()

	_, err := newTestClient(ts.URL).BookedSessions(context.Background(), "tok-1")
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if len(apiErr.Message) != 300 {
		t.Fatalf("expected capped message, got len %d", len(apiErr.Message))
	}
}
