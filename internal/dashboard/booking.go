package dashboard

import (
	"fmt"
	"strings"

	"github.com/psycare/psycare-go/internal/schedule"
)

// FormState is the booking form lifecycle.
type FormState int

const (
	FormClosed FormState = iota
	FormEditing
	FormSubmitting
	FormError
)

// Draft is the in-progress, unsaved booking form state.
type Draft struct {
	PatientID       string
	Date            string
	Time            string
	DurationMinutes int
	Notes           string
}

// OpenBooking switches to the booking form, resetting the draft to
// defaults. Any open panel closes.
func (c *Controller) OpenBooking() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.view = View{Kind: PanelBooking}
	c.draft = c.defaultDraft()
	c.form = FormEditing
	c.bookingErr = ""
}

// CancelBooking closes the form, discarding the draft and any error. A
// submission already in flight keeps the form open until it resolves.
func (c *Controller) CancelBooking() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.form == FormSubmitting {
		return
	}
	c.closeBookingLocked()
}

// SetPatientID updates only the draft's patient ID.
func (c *Controller) SetPatientID(id string) { c.editDraft(func(d *Draft) { d.PatientID = id }) }

// SetDate updates only the draft's date ("2006-01-02").
func (c *Controller) SetDate(date string) { c.editDraft(func(d *Draft) { d.Date = date }) }

// SetTime updates only the draft's wall-clock time ("15:04").
func (c *Controller) SetTime(clock string) { c.editDraft(func(d *Draft) { d.Time = clock }) }

// SetNotes updates only the draft's notes.
func (c *Controller) SetNotes(notes string) { c.editDraft(func(d *Draft) { d.Notes = notes }) }

// SetDuration updates the draft's duration; values outside the offered set
// are rejected.
func (c *Controller) SetDuration(minutes int) error {
	if !schedule.ValidDuration(minutes) {
		return fmt.Errorf("dashboard: duration %d not offered", minutes)
	}
	c.editDraft(func(d *Draft) { d.DurationMinutes = minutes })
	return nil
}

func (c *Controller) editDraft(apply func(*Draft)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.form != FormEditing && c.form != FormError {
		return
	}
	apply(&c.draft)
}

func (c *Controller) defaultDraft() Draft {
	return Draft{Time: c.defaultTime, DurationMinutes: c.defaultDuration}
}

func (c *Controller) closeBookingLocked() {
	c.draft = c.defaultDraft()
	c.bookingErr = ""
	c.form = FormClosed
	if c.view.Kind == PanelBooking {
		c.view = View{Kind: PanelNone}
	}
}

func computeDraftWindow(d Draft) (schedule.Window, error) {
	return schedule.ComputeWindow(d.Date, d.Time, d.DurationMinutes)
}

// validateDraft returns the local validation message for a submission, or
// "" when the draft is submittable.
func validateDraft(d Draft) string {
	if strings.TrimSpace(d.PatientID) == "" || strings.TrimSpace(d.Date) == "" || strings.TrimSpace(d.Time) == "" {
		return "Please fill required fields (Patient ID, Date, Time)"
	}
	return ""
}
