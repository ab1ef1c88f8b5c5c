// Package patient implements the patient-side workflow: journal entries
// (create, edit, delete, share) and the once-per-day mood check-in.
package patient

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/psycare/psycare-go/internal/api"
	"github.com/psycare/psycare-go/internal/observability/metrics"
	"github.com/psycare/psycare-go/internal/session"
	"github.com/psycare/psycare-go/pkg/logging"
)

// ErrSessionExpired is returned when the token guard rejects an action;
// the caller should route back to login.
var ErrSessionExpired = errors.New("patient: session expired")

// ErrMoodAlreadySubmitted is returned when today's check-in already exists.
var ErrMoodAlreadySubmitted = errors.New("patient: mood already submitted today")

// Backend is the slice of the remote API the patient workflow needs.
type Backend interface {
	MyJournals(ctx context.Context, token string) ([]api.JournalEntry, error)
	CreateJournal(ctx context.Context, token string, entry api.JournalEntry) (string, error)
	UpdateJournal(ctx context.Context, token, id string, entry api.JournalEntry) (string, error)
	DeleteJournal(ctx context.Context, token, id string) (string, error)
	ShareJournal(ctx context.Context, token, id, psychologistID string) (string, error)
	SubmitMood(ctx context.Context, token string, value int) (string, error)
	TodayMood(ctx context.Context, token string) (*api.Mood, error)
}

// Config holds workflow construction options.
type Config struct {
	Backend  Backend
	Sessions *session.Store
	Logger   *logging.Logger
	Metrics  *metrics.APIMetrics
	OnReauth func()
}

// Workflow owns the patient dashboard state.
type Workflow struct {
	backend  Backend
	sessions *session.Store
	logger   *logging.Logger
	metrics  *metrics.APIMetrics
	onReauth func()

	mu        sync.Mutex
	journals  []api.JournalEntry
	editingID string
	title     string
	text      string

	mood           int
	todayMood      *api.Mood
	moodChecked    bool
	moodSubmitting bool
}

// New creates a patient workflow.
func New(cfg Config) *Workflow {
	if cfg.Backend == nil {
		panic("patient: backend required")
	}
	if cfg.Sessions == nil {
		panic("patient: session store required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Workflow{
		backend:  cfg.Backend,
		sessions: cfg.Sessions,
		logger:   logger,
		metrics:  cfg.Metrics,
		onReauth: cfg.OnReauth,
		mood:     5,
	}
}

// Refresh replaces the journal list wholesale and syncs today's mood lock.
func (w *Workflow) Refresh(ctx context.Context) error {
	token, err := w.guard()
	if err != nil {
		return err
	}

	journals, err := w.backend.MyJournals(ctx, token)
	if err != nil {
		return err
	}

	mood, err := w.backend.TodayMood(ctx, token)
	if err != nil {
		w.logger.Warn("loading today's mood failed", "error", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.journals = journals
	if mood != nil {
		w.todayMood = mood
		w.moodChecked = true
	}
	return nil
}

// StartEdit loads an existing entry into the form.
func (w *Workflow) StartEdit(id string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, j := range w.journals {
		if j.ID == id {
			w.editingID = id
			w.title = j.Title
			w.text = j.Text
			return nil
		}
	}
	return fmt.Errorf("patient: no journal entry %q", id)
}

// SetTitle updates only the form title.
func (w *Workflow) SetTitle(title string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.title = title
}

// SetText updates only the form text.
func (w *Workflow) SetText(text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.text = text
}

// Save creates a new entry, or updates the one being edited, then clears
// the form and reloads the list.
func (w *Workflow) Save(ctx context.Context) error {
	token, err := w.guard()
	if err != nil {
		return err
	}

	w.mu.Lock()
	entry := api.JournalEntry{Title: w.title, Text: w.text}
	editingID := w.editingID
	w.mu.Unlock()

	if editingID != "" {
		_, err = w.backend.UpdateJournal(ctx, token, editingID, entry)
	} else {
		_, err = w.backend.CreateJournal(ctx, token, entry)
	}
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.title = ""
	w.text = ""
	w.editingID = ""
	w.mu.Unlock()

	return w.Refresh(ctx)
}

// Delete removes an entry and reloads the list.
func (w *Workflow) Delete(ctx context.Context, id string) error {
	token, err := w.guard()
	if err != nil {
		return err
	}
	if _, err := w.backend.DeleteJournal(ctx, token, id); err != nil {
		return err
	}
	return w.Refresh(ctx)
}

// Share shares an entry with the patient's psychologist.
func (w *Workflow) Share(ctx context.Context, id, psychologistID string) (string, error) {
	token, err := w.guard()
	if err != nil {
		return "", err
	}
	msg, err := w.backend.ShareJournal(ctx, token, id, psychologistID)
	if err != nil {
		return "", err
	}
	w.logger.Info("journal shared", "entry_id", id)
	return msg, nil
}

// SetMood moves the check-in slider. Values outside 1..10 are rejected.
func (w *Workflow) SetMood(value int) error {
	if value < 1 || value > 10 {
		return fmt.Errorf("patient: mood %d out of range", value)
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.mood = value
	return nil
}

// SubmitMood records today's check-in once; further submissions are locked
// locally until the next day. A submission already in flight counts as
// locked, so exactly one request leaves the client.
func (w *Workflow) SubmitMood(ctx context.Context) error {
	w.mu.Lock()
	if w.moodChecked || w.moodSubmitting {
		w.mu.Unlock()
		return ErrMoodAlreadySubmitted
	}
	w.moodSubmitting = true
	value := w.mood
	w.mu.Unlock()

	token, err := w.guard()
	if err != nil {
		w.mu.Lock()
		w.moodSubmitting = false
		w.mu.Unlock()
		return err
	}
	_, err = w.backend.SubmitMood(ctx, token, value)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.moodSubmitting = false
	if err != nil {
		return err
	}
	w.todayMood = &api.Mood{Value: value}
	w.moodChecked = true
	return nil
}

// Journals returns a copy of the loaded entries.
func (w *Workflow) Journals() []api.JournalEntry {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]api.JournalEntry(nil), w.journals...)
}

// Editing returns the ID of the entry being edited, or "".
func (w *Workflow) Editing() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.editingID
}

// Form returns the current title and text.
func (w *Workflow) Form() (title, text string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.title, w.text
}

// MoodChecked reports whether today's check-in is locked, and the recorded
// value when it is.
func (w *Workflow) MoodChecked() (bool, int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.todayMood == nil {
		return w.moodChecked, 0
	}
	return w.moodChecked, w.todayMood.Value
}

func (w *Workflow) guard() (string, error) {
	token := w.sessions.Token()
	if session.Valid(token) {
		return token, nil
	}
	w.metrics.ObserveGuardReject()
	if w.onReauth != nil {
		w.onReauth()
	}
	return "", ErrSessionExpired
}
