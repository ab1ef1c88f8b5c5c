// Package api is the typed client for the remote PSYCare REST backend.
// Every method converts transport failures and non-2xx responses into a
// plain error value; callers never see a partial response.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/psycare/psycare-go/internal/observability/metrics"
	"github.com/psycare/psycare-go/pkg/logging"
)

const defaultTimeout = 20 * time.Second

// Error is a non-success response from the backend, carrying the status
// code and whatever message text the body held.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: status %d", e.Status)
	}
	return e.Message
}

// Config holds client construction options.
type Config struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second; 0 disables throttling
	RateBurst int
	Metrics   *metrics.APIMetrics
}

// Client talks to the PSYCare backend. Safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	metrics    *metrics.APIMetrics
	logger     *logging.Logger
}

// NewClient creates a PSYCare API client.
func NewClient(cfg Config, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		burst := cfg.RateBurst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), burst)
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		metrics:    cfg.Metrics,
		logger:     logger,
	}
}

// Login authenticates and returns the cleaned bearer token plus role.
func (c *Client) Login(ctx context.Context, creds LoginRequest) (*LoginResult, error) {
	body, err := c.call(ctx, "login", http.MethodPost, "/auth/login", "", creds)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized {
			return nil, &Error{Status: http.StatusUnauthorized, Message: "Invalid username or password"}
		}
		return nil, err
	}
	var resp loginResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("api: decode login response: %w", err)
	}
	return &LoginResult{
		Token:    strings.TrimPrefix(resp.AccessToken, "Bearer "),
		Role:     resp.Role,
		UserData: resp.UserData,
	}, nil
}

// RegisterPsychologist creates a psychologist account.
func (c *Client) RegisterPsychologist(ctx context.Context, reg Registration) (string, error) {
	return c.text(ctx, "register_psychologist", http.MethodPost, "/auth/register/psychologist", "", reg)
}

// RegisterPatient creates a patient account.
func (c *Client) RegisterPatient(ctx context.Context, reg Registration) (string, error) {
	return c.text(ctx, "register_patient", http.MethodPost, "/auth/register/patient", "", reg)
}

// UnassignedPatients lists patients without a psychologist.
func (c *Client) UnassignedPatients(ctx context.Context, token string) ([]Patient, error) {
	var out []Patient
	err := c.getJSON(ctx, "unassigned_patients", "/psychologists/me/patients/unassigned", token, &out)
	return out, err
}

// AssignedPatients lists patients assigned to the calling psychologist.
func (c *Client) AssignedPatients(ctx context.Context, token string) ([]Patient, error) {
	var out []Patient
	err := c.getJSON(ctx, "assigned_patients", "/psychologists/me/patients/assigned", token, &out)
	return out, err
}

// AssignPatient claims an unassigned patient for the calling psychologist.
func (c *Client) AssignPatient(ctx context.Context, token, patientID string) (string, error) {
	path := "/psychologists/me/patients/" + url.PathEscape(patientID)
	return c.text(ctx, "assign_patient", http.MethodPost, path, token, nil)
}

// BookedSessions lists the psychologist's appointments.
func (c *Client) BookedSessions(ctx context.Context, token string) ([]Session, error) {
	var out []Session
	err := c.getJSON(ctx, "booked_sessions", "/psychologists/me/appointments", token, &out)
	return out, err
}

// BookSession creates an appointment. The backend rejects conflicting
// windows; its message (e.g. "slot taken") comes back inside *Error.
func (c *Client) BookSession(ctx context.Context, token string, req BookingRequest) (string, error) {
	return c.text(ctx, "book_session", http.MethodPost, "/psychologists/me/appointments", token, req)
}

// SharedJournalEntries lists entries patients shared with the caller.
func (c *Client) SharedJournalEntries(ctx context.Context, token string) ([]JournalEntry, error) {
	var out []JournalEntry
	err := c.getJSON(ctx, "shared_journal", "/journal/shared", token, &out)
	return out, err
}

// MyJournals lists the calling patient's own entries.
func (c *Client) MyJournals(ctx context.Context, token string) ([]JournalEntry, error) {
	var out []JournalEntry
	err := c.getJSON(ctx, "my_journals", "/journal", token, &out)
	return out, err
}

// CreateJournal adds a journal entry.
func (c *Client) CreateJournal(ctx context.Context, token string, entry JournalEntry) (string, error) {
	return c.text(ctx, "create_journal", http.MethodPost, "/journal", token, entry)
}

// UpdateJournal replaces an entry's title/text.
func (c *Client) UpdateJournal(ctx context.Context, token, id string, entry JournalEntry) (string, error) {
	return c.text(ctx, "update_journal", http.MethodPut, "/journal/"+url.PathEscape(id), token, entry)
}

// DeleteJournal removes an entry.
func (c *Client) DeleteJournal(ctx context.Context, token, id string) (string, error) {
	return c.text(ctx, "delete_journal", http.MethodDelete, "/journal/"+url.PathEscape(id), token, nil)
}

// ShareJournal shares an entry with the patient's psychologist.
func (c *Client) ShareJournal(ctx context.Context, token, id, psychologistID string) (string, error) {
	body := map[string]string{"psychologistId": psychologistID}
	return c.text(ctx, "share_journal", http.MethodPost, "/journal/"+url.PathEscape(id)+"/share", token, body)
}

// SubmitMood records today's mood check-in.
func (c *Client) SubmitMood(ctx context.Context, token string, value int) (string, error) {
	return c.text(ctx, "submit_mood", http.MethodPost, "/mood", token, Mood{Value: value})
}

// TodayMood returns today's check-in, or nil when none exists yet.
func (c *Client) TodayMood(ctx context.Context, token string) (*Mood, error) {
	body, err := c.call(ctx, "today_mood", http.MethodGet, "/mood/today", token, nil)
	if err != nil {
		var apiErr *Error
		if errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound {
			return nil, nil
		}
		return nil, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var m Mood
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("api: decode mood: %w", err)
	}
	return &m, nil
}

func (c *Client) getJSON(ctx context.Context, name, path, token string, out any) error {
	body, err := c.call(ctx, name, http.MethodGet, path, token, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("api: decode %s response: %w", name, err)
	}
	return nil
}

func (c *Client) text(ctx context.Context, name, method, path, token string, payload any) (string, error) {
	body, err := c.call(ctx, name, method, path, token, payload)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}

// call performs one request, records metrics, and normalizes failures. A
// non-2xx status becomes *Error with the body text as message.
func (c *Client) call(ctx context.Context, name, method, path, token string, payload any) ([]byte, error) {
	started := time.Now()
	body, err := c.roundTrip(ctx, method, path, token, payload)
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.metrics.ObserveRequest(name, status, time.Since(started).Seconds())
	if err != nil {
		c.logger.Warn("api call failed", "endpoint", name, "error", err)
	}
	return body, err
}

func (c *Client) roundTrip(ctx context.Context, method, path, token string, payload any) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("api: rate limit wait: %w", err)
		}
	}

	var reqBody io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("api: marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("api: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("api: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(respBody))
		if len(msg) > 300 {
			msg = msg[:300]
		}
		return nil, &Error{Status: resp.StatusCode, Message: msg}
	}
	return respBody, nil
}
