// Package dashboard implements the psychologist dashboard workflow: panel
// selection, guarded roster/session fetches, patient assignment, and the
// session booking form. State transitions are serialized by a single mutex;
// results that arrive after shutdown or after a newer attempt of the same
// action are dropped.
package dashboard

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/psycare/psycare-go/internal/api"
	"github.com/psycare/psycare-go/internal/observability/metrics"
	"github.com/psycare/psycare-go/internal/session"
	"github.com/psycare/psycare-go/pkg/logging"
)

var dashboardTracer = otel.Tracer("psycare.internal.dashboard")

// Backend is the slice of the remote API the dashboard needs.
type Backend interface {
	UnassignedPatients(ctx context.Context, token string) ([]api.Patient, error)
	AssignedPatients(ctx context.Context, token string) ([]api.Patient, error)
	AssignPatient(ctx context.Context, token, patientID string) (string, error)
	BookedSessions(ctx context.Context, token string) ([]api.Session, error)
	BookSession(ctx context.Context, token string, req api.BookingRequest) (string, error)
	SharedJournalEntries(ctx context.Context, token string) ([]api.JournalEntry, error)
}

// Config holds controller construction options.
type Config struct {
	Backend  Backend
	Sessions *session.Store
	Logger   *logging.Logger
	Metrics  *metrics.APIMetrics

	// OnReauth is invoked when the token guard rejects an action; the host
	// is expected to route the user back to login.
	OnReauth func()

	// Booking form defaults.
	DefaultTime     string
	DefaultDuration int
}

// Controller owns the dashboard view state.
type Controller struct {
	backend  Backend
	sessions *session.Store
	logger   *logging.Logger
	metrics  *metrics.APIMetrics
	onReauth func()

	defaultTime     string
	defaultDuration int

	mu           sync.Mutex
	view         View
	form         FormState
	draft        Draft
	bookingErr   string
	confirmation string

	unassigned       []api.Patient
	assigned         []api.Patient
	sessionsList     []api.Session
	entriesByPatient map[string][]api.JournalEntry
	expanded         map[string]bool
	assigning        map[string]bool

	statuses map[Action]Status
	attempts map[Action]uint64
	closed   bool
}

// New creates a dashboard controller.
func New(cfg Config) *Controller {
	if cfg.Backend == nil {
		panic("dashboard: backend required")
	}
	if cfg.Sessions == nil {
		panic("dashboard: session store required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	defaultTime := cfg.DefaultTime
	if defaultTime == "" {
		defaultTime = "10:00"
	}
	defaultDuration := cfg.DefaultDuration
	if defaultDuration == 0 {
		defaultDuration = 60
	}
	c := &Controller{
		backend:          cfg.Backend,
		sessions:         cfg.Sessions,
		logger:           logger,
		metrics:          cfg.Metrics,
		onReauth:         cfg.OnReauth,
		defaultTime:      defaultTime,
		defaultDuration:  defaultDuration,
		entriesByPatient: make(map[string][]api.JournalEntry),
		expanded:         make(map[string]bool),
		assigning:        make(map[string]bool),
		statuses:         make(map[Action]Status),
		attempts:         make(map[Action]uint64),
	}
	c.draft = c.defaultDraft()
	return c
}

// FindUnassignedPatients fetches the unassigned roster and reveals its panel.
func (c *Controller) FindUnassignedPatients(ctx context.Context) {
	ctx, span := dashboardTracer.Start(ctx, "dashboard.find_unassigned")
	defer span.End()

	token, ok := c.guard()
	if !ok {
		return
	}
	attempt := c.begin(ActionUnassigned)

	patients, err := c.backend.UnassignedPatients(ctx, token)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stale(ActionUnassigned, attempt) {
		return
	}
	if err != nil {
		span.RecordError(err)
		c.statuses[ActionUnassigned] = Status{Phase: PhaseFailure, Err: err.Error()}
		return
	}
	c.unassigned = patients
	c.statuses[ActionUnassigned] = Status{Phase: PhaseSuccess}
	c.showPanelLocked(View{Kind: PanelUnassigned})
}

// FindAssignedPatients fetches the psychologist's roster plus the shared
// journal entries grouped per patient, then reveals the panel. A journal
// fetch failure is logged but does not block the roster.
func (c *Controller) FindAssignedPatients(ctx context.Context) {
	ctx, span := dashboardTracer.Start(ctx, "dashboard.find_assigned")
	defer span.End()

	token, ok := c.guard()
	if !ok {
		return
	}
	attempt := c.begin(ActionAssigned)

	patients, err := c.backend.AssignedPatients(ctx, token)

	var grouped map[string][]api.JournalEntry
	if err == nil {
		entries, entriesErr := c.backend.SharedJournalEntries(ctx, token)
		if entriesErr != nil {
			c.logger.Warn("loading shared journal entries failed", "error", entriesErr)
		} else {
			grouped = make(map[string][]api.JournalEntry, len(entries))
			for _, e := range entries {
				grouped[e.PatientID] = append(grouped[e.PatientID], e)
			}
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stale(ActionAssigned, attempt) {
		return
	}
	if err != nil {
		span.RecordError(err)
		c.statuses[ActionAssigned] = Status{Phase: PhaseFailure, Err: err.Error()}
		return
	}
	c.assigned = patients
	if grouped != nil {
		c.entriesByPatient = grouped
	}
	c.statuses[ActionAssigned] = Status{Phase: PhaseSuccess}
	c.showPanelLocked(View{Kind: PanelAssigned})
}

// ViewSessions fetches booked sessions and reveals their panel.
func (c *Controller) ViewSessions(ctx context.Context) {
	ctx, span := dashboardTracer.Start(ctx, "dashboard.view_sessions")
	defer span.End()

	token, ok := c.guard()
	if !ok {
		return
	}
	attempt := c.begin(ActionSessions)

	sessions, err := c.backend.BookedSessions(ctx, token)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stale(ActionSessions, attempt) {
		return
	}
	if err != nil {
		span.RecordError(err)
		c.statuses[ActionSessions] = Status{Phase: PhaseFailure, Err: err.Error()}
		return
	}
	c.sessionsList = sessions
	c.statuses[ActionSessions] = Status{Phase: PhaseSuccess}
	c.showPanelLocked(View{Kind: PanelSessions})
}

// ShowJournal reveals the journal panel for one patient. Entries were
// loaded together with the assigned roster; no fetch happens here, but the
// guard still applies before revealing shared clinical content.
func (c *Controller) ShowJournal(patientID string) {
	if _, ok := c.guard(); !ok {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.showPanelLocked(View{Kind: PanelJournal, JournalPatientID: patientID})
}

// AssignPatient claims an unassigned patient. The roster entry is marked
// while the call is in flight and the marker is cleared no matter how the
// call ends; on success the entry leaves the unassigned roster.
func (c *Controller) AssignPatient(ctx context.Context, patientID string) {
	ctx, span := dashboardTracer.Start(ctx, "dashboard.assign_patient")
	defer span.End()
	span.SetAttributes(attribute.String("psycare.patient_id", patientID))

	token, ok := c.guard()
	if !ok {
		return
	}

	c.mu.Lock()
	c.statuses[ActionAssign] = Status{Phase: PhaseLoading}
	c.assigning[patientID] = true
	c.mu.Unlock()

	msg, err := c.backend.AssignPatient(ctx, token, patientID)

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.assigning, patientID)
	// Each result touches only its own roster entry, so overlapping
	// assignments of different patients land independently; only shutdown
	// drops a result.
	if c.closed {
		return
	}
	if err != nil {
		span.RecordError(err)
		c.statuses[ActionAssign] = Status{Phase: PhaseFailure, Err: err.Error()}
		return
	}
	kept := c.unassigned[:0]
	for _, p := range c.unassigned {
		if p.ID != patientID {
			kept = append(kept, p)
		}
	}
	c.unassigned = kept
	c.statuses[ActionAssign] = Status{Phase: PhaseSuccess}
	c.confirmation = msg
	c.logger.Info("patient assigned", "patient_id", patientID)
}

// SubmitBooking validates the draft, computes the appointment window, and
// sends exactly one booking request. Local validation failures never reach
// the backend; remote failures keep the draft for correction.
func (c *Controller) SubmitBooking(ctx context.Context) {
	ctx, span := dashboardTracer.Start(ctx, "dashboard.submit_booking")
	defer span.End()

	c.mu.Lock()
	if c.form != FormEditing && c.form != FormError {
		c.mu.Unlock()
		return
	}
	draft := c.draft
	c.mu.Unlock()

	token, ok := c.guard()
	if !ok {
		return
	}

	if msg := validateDraft(draft); msg != "" {
		c.mu.Lock()
		c.form = FormEditing
		c.bookingErr = msg
		c.mu.Unlock()
		return
	}

	window, err := computeDraftWindow(draft)
	if err != nil {
		c.mu.Lock()
		c.form = FormEditing
		c.bookingErr = err.Error()
		c.mu.Unlock()
		return
	}

	c.mu.Lock()
	c.form = FormSubmitting
	c.bookingErr = ""
	c.attempts[ActionBooking]++
	attempt := c.attempts[ActionBooking]
	c.statuses[ActionBooking] = Status{Phase: PhaseLoading}
	c.mu.Unlock()

	msg, err := c.backend.BookSession(ctx, token, api.BookingRequest{
		StartTime: window.Start,
		EndTime:   window.End,
		PatientID: draft.PatientID,
		Notes:     draft.Notes,
	})

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stale(ActionBooking, attempt) {
		return
	}
	if err != nil {
		span.RecordError(err)
		c.form = FormError
		c.bookingErr = err.Error()
		c.statuses[ActionBooking] = Status{Phase: PhaseFailure, Err: err.Error()}
		return
	}
	c.statuses[ActionBooking] = Status{Phase: PhaseSuccess}
	c.confirmation = msg
	c.closeBookingLocked()
	c.logger.Info("session booked", "patient_id", draft.PatientID, "start", window.Start)
}

// ToggleEntry flips the expanded flag of one journal entry.
func (c *Controller) ToggleEntry(entryID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.expanded[entryID] = !c.expanded[entryID]
}

// ClosePanel hides the current panel without opening another. The booking
// form is closed through CancelBooking instead.
func (c *Controller) ClosePanel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.view.Kind == PanelBooking {
		return
	}
	c.view = View{Kind: PanelNone}
}

// Shutdown marks the controller torn down; late results become no-ops.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// CurrentView returns the visible surface.
func (c *Controller) CurrentView() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

// Form returns the booking form state.
func (c *Controller) Form() FormState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// CurrentDraft returns a copy of the booking draft.
func (c *Controller) CurrentDraft() Draft {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft
}

// BookingError returns the booking form's local or remote error message.
func (c *Controller) BookingError() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bookingErr
}

// Confirmation returns the last user-visible confirmation message.
func (c *Controller) Confirmation() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.confirmation
}

// Status returns the scoped status of one action.
func (c *Controller) Status(a Action) Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.statuses[a]
}

// UnassignedRoster returns a copy of the unassigned patients.
func (c *Controller) UnassignedRoster() []api.Patient {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.Patient(nil), c.unassigned...)
}

// AssignedRoster returns a copy of the assigned patients.
func (c *Controller) AssignedRoster() []api.Patient {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.Patient(nil), c.assigned...)
}

// Sessions returns a copy of the booked sessions.
func (c *Controller) Sessions() []api.Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.Session(nil), c.sessionsList...)
}

// EntriesFor returns a copy of the shared journal entries for one patient.
func (c *Controller) EntriesFor(patientID string) []api.JournalEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]api.JournalEntry(nil), c.entriesByPatient[patientID]...)
}

// Expanded reports whether a journal entry is expanded.
func (c *Controller) Expanded(entryID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.expanded[entryID]
}

// Assigning reports whether an assignment for the patient is in flight.
func (c *Controller) Assigning(patientID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.assigning[patientID]
}

// guard checks the credential before a privileged action. On rejection it
// signals re-authentication and the action performs no remote call.
func (c *Controller) guard() (string, bool) {
	token := c.sessions.Token()
	if session.Valid(token) {
		return token, true
	}
	c.metrics.ObserveGuardReject()
	c.logger.Info("session invalid, re-authentication required")
	if c.onReauth != nil {
		c.onReauth()
	}
	return "", false
}

// begin records a new attempt for an action and flips it to loading,
// clearing any previous error.
func (c *Controller) begin(a Action) uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.attempts[a]++
	c.statuses[a] = Status{Phase: PhaseLoading}
	return c.attempts[a]
}

// stale reports whether a result belongs to a superseded attempt or a torn
// down controller. Callers hold the mutex.
func (c *Controller) stale(a Action, attempt uint64) bool {
	return c.closed || c.attempts[a] != attempt
}

// showPanelLocked reveals a panel, closing the booking form if it was open.
// Callers hold the mutex.
func (c *Controller) showPanelLocked(v View) {
	if c.view.Kind == PanelBooking {
		c.closeBookingLocked()
	}
	c.view = v
}
