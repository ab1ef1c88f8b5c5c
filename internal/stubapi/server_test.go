package stubapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/psycare/psycare-go/internal/api"
	"github.com/psycare/psycare-go/internal/session"
	"github.com/psycare/psycare-go/pkg/logging"
)

func newTestClient(t *testing.T) *api.Client {
	t.Helper()
	srv := httptest.NewServer(New(Config{JWTSecret: "test-secret", Logger: logging.Nop()}).Router())
	t.Cleanup(srv.Close)
	return api.NewClient(api.Config{BaseURL: srv.URL, Timeout: 5 * time.Second}, logging.Nop())
}

func registerAndLogin(t *testing.T, client *api.Client, username, role string) *api.LoginResult {
	t.Helper()
	ctx := context.Background()
	reg := api.Registration{Username: username, Password: "pw", FirstName: "First", LastName: username, Age: 33}

	var err error
	if role == session.RolePsychologist {
		_, err = client.RegisterPsychologist(ctx, reg)
	} else {
		_, err = client.RegisterPatient(ctx, reg)
	}
	require.NoError(t, err)

	result, err := client.Login(ctx, api.LoginRequest{Username: username, Password: "pw"})
	require.NoError(t, err)
	require.Equal(t, role, result.Role)
	require.True(t, session.Valid(result.Token))
	return result
}

func TestLoginRejectsBadPassword(t *testing.T) {
	client := newTestClient(t)
	registerAndLogin(t, client, "alice", session.RolePatient)

	_, err := client.Login(context.Background(), api.LoginRequest{Username: "alice", Password: "wrong"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid username or password")
}

func TestAssignmentMovesPatientBetweenRosters(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	psych := registerAndLogin(t, client, "dr-jung", session.RolePsychologist)
	registerAndLogin(t, client, "bob", session.RolePatient)

	unassigned, err := client.UnassignedPatients(ctx, psych.Token)
	require.NoError(t, err)
	require.Len(t, unassigned, 1)

	msg, err := client.AssignPatient(ctx, psych.Token, unassigned[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Patient assigned successfully", msg)

	unassigned, err = client.UnassignedPatients(ctx, psych.Token)
	require.NoError(t, err)
	assert.Empty(t, unassigned)

	assigned, err := client.AssignedPatients(ctx, psych.Token)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, "bob", assigned[0].LastName)

	// Claiming the same patient twice conflicts.
	_, err = client.AssignPatient(ctx, psych.Token, assigned[0].ID)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
}

func TestBookingRejectsOverlap(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	psych := registerAndLogin(t, client, "dr-freud", session.RolePsychologist)
	registerAndLogin(t, client, "carol", session.RolePatient)

	unassigned, err := client.UnassignedPatients(ctx, psych.Token)
	require.NoError(t, err)
	require.Len(t, unassigned, 1)
	patientID := unassigned[0].ID
	_, err = client.AssignPatient(ctx, psych.Token, patientID)
	require.NoError(t, err)

	book := func(start, end string) error {
		_, err := client.BookSession(ctx, psych.Token, api.BookingRequest{
			StartTime: start, EndTime: end, PatientID: patientID,
		})
		return err
	}

	require.NoError(t, book("2026-09-10 10:00:00", "2026-09-10 11:00:00"))

	err = book("2026-09-10 10:30:00", "2026-09-10 11:30:00")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Contains(t, apiErr.Message, "slot taken")

	// Back-to-back is fine.
	require.NoError(t, book("2026-09-10 11:00:00", "2026-09-10 12:00:00"))

	sessions, err := client.BookedSessions(ctx, psych.Token)
	require.NoError(t, err)
	assert.Len(t, sessions, 2)
	assert.Equal(t, "carol", sessions[0].PatientLastName)
}

func TestJournalLifecycleAndSharing(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	psych := registerAndLogin(t, client, "dr-adler", session.RolePsychologist)
	patient := registerAndLogin(t, client, "dave", session.RolePatient)

	_, err := client.CreateJournal(ctx, patient.Token, api.JournalEntry{Title: "Day one", Text: "rough start"})
	require.NoError(t, err)

	journals, err := client.MyJournals(ctx, patient.Token)
	require.NoError(t, err)
	require.Len(t, journals, 1)
	entryID := journals[0].ID

	_, err = client.UpdateJournal(ctx, patient.Token, entryID, api.JournalEntry{Title: "Day one", Text: "better now"})
	require.NoError(t, err)

	// Not shared yet, so the psychologist sees nothing even after assigning.
	unassigned, err := client.UnassignedPatients(ctx, psych.Token)
	require.NoError(t, err)
	require.Len(t, unassigned, 1)
	_, err = client.AssignPatient(ctx, psych.Token, unassigned[0].ID)
	require.NoError(t, err)

	shared, err := client.SharedJournalEntries(ctx, psych.Token)
	require.NoError(t, err)
	assert.Empty(t, shared)

	_, err = client.ShareJournal(ctx, patient.Token, entryID, "")
	require.NoError(t, err)

	shared, err = client.SharedJournalEntries(ctx, psych.Token)
	require.NoError(t, err)
	require.Len(t, shared, 1)
	assert.Equal(t, "better now", shared[0].Text)
	assert.NotEmpty(t, shared[0].PatientID)

	_, err = client.DeleteJournal(ctx, patient.Token, entryID)
	require.NoError(t, err)
	journals, err = client.MyJournals(ctx, patient.Token)
	require.NoError(t, err)
	assert.Empty(t, journals)
}

func TestMoodOncePerDay(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	patient := registerAndLogin(t, client, "erin", session.RolePatient)

	mood, err := client.TodayMood(ctx, patient.Token)
	require.NoError(t, err)
	assert.Nil(t, mood)

	_, err = client.SubmitMood(ctx, patient.Token, 8)
	require.NoError(t, err)

	mood, err = client.TodayMood(ctx, patient.Token)
	require.NoError(t, err)
	require.NotNil(t, mood)
	assert.Equal(t, 8, mood.Value)

	_, err = client.SubmitMood(ctx, patient.Token, 3)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.Status)
}

func TestRejectsMissingAndForgedTokens(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()

	_, err := client.MyJournals(ctx, "")
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	_, err = client.MyJournals(ctx, "not-a-jwt")
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)
}

func TestRoleSeparation(t *testing.T) {
	client := newTestClient(t)
	ctx := context.Background()
	patient := registerAndLogin(t, client, "frank", session.RolePatient)

	_, err := client.UnassignedPatients(ctx, patient.Token)
	var apiErr *api.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.Status)
}
