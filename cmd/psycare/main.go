// Command psycare is a terminal client for the PSYCare backend. It drives
// the same controllers the UI would: login, the psychologist dashboard
// (rosters, shared journals, sessions, booking) and the patient workflow
// (journals, mood check-in), with a periodic break reminder.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/psycare/psycare-go/internal/api"
	"github.com/psycare/psycare-go/internal/config"
	"github.com/psycare/psycare-go/internal/dashboard"
	"github.com/psycare/psycare-go/internal/observability/metrics"
	"github.com/psycare/psycare-go/internal/patient"
	"github.com/psycare/psycare-go/internal/reminder"
	"github.com/psycare/psycare-go/internal/session"
	"github.com/psycare/psycare-go/pkg/logging"
)

type app struct {
	cfg       *config.Config
	logger    *logging.Logger
	client    *api.Client
	sessions  *session.Store
	dash      *dashboard.Controller
	workflow  *patient.Workflow
	reminders *reminder.Worker
}

func main() {
	// Load .env if present; real env vars win.
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)
	logger.Info("starting psycare client",
		"env", cfg.Env,
		"api_base_url", cfg.APIBaseURL,
	)

	apiMetrics := metrics.NewAPIMetrics(prometheus.DefaultRegisterer)
	client := api.NewClient(api.Config{
		BaseURL:   cfg.APIBaseURL,
		Timeout:   cfg.HTTPTimeout,
		RateLimit: cfg.APIRateLimit,
		RateBurst: cfg.APIRateBurst,
		Metrics:   apiMetrics,
	}, logger)
	sessions := session.NewStore()

	onReauth := func() {
		fmt.Println("Session expired. Please log in again.")
		sessions.Clear()
	}

	a := &app{
		cfg:      cfg,
		logger:   logger,
		client:   client,
		sessions: sessions,
		dash: dashboard.New(dashboard.Config{
			Backend:         client,
			Sessions:        sessions,
			Logger:          logger,
			Metrics:         apiMetrics,
			OnReauth:        onReauth,
			DefaultTime:     cfg.DefaultSessionTime,
			DefaultDuration: cfg.DefaultSessionDuration,
		}),
		workflow: patient.New(patient.Config{
			Backend:  client,
			Sessions: sessions,
			Logger:   logger,
			Metrics:  apiMetrics,
			OnReauth: onReauth,
		}),
	}

	if cfg.BreakReminderEnabled {
		a.reminders = reminder.New(reminder.Config{
			Interval:  cfg.BreakReminderInterval,
			Countdown: cfg.BreakReminderCountdown,
			OnShow:    func() { fmt.Println("\n*** Time for a short break. Look away from the screen. ***") },
			OnDismiss: func() { fmt.Println("*** Break over. ***") },
			Logger:    logger,
		})
		a.reminders.Start()
	}

	a.loop()

	if a.reminders != nil {
		a.reminders.Stop()
	}
	a.dash.Shutdown()
	logger.Info("psycare client stopped")
}

func (a *app) loop() {
	fmt.Println("psycare terminal client — type 'help' for commands")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		cmd, args := fields[0], fields[1:]
		if cmd == "quit" || cmd == "exit" {
			return
		}
		a.dispatch(cmd, args)
	}
}

func (a *app) dispatch(cmd string, args []string) {
	ctx := context.Background()
	switch cmd {
	case "help":
		printHelp()
	case "login":
		a.login(ctx, args)
	case "logout":
		a.sessions.Clear()
		fmt.Println("Logged out.")
	case "register-psychologist", "register-patient":
		a.register(ctx, cmd, args)

	// Psychologist dashboard.
	case "unassigned":
		a.dash.FindUnassignedPatients(ctx)
		a.printDashboard()
	case "assigned":
		a.dash.FindAssignedPatients(ctx)
		a.printDashboard()
	case "sessions":
		a.dash.ViewSessions(ctx)
		a.printDashboard()
	case "assign":
		if len(args) != 1 {
			fmt.Println("usage: assign <patient-id>")
			return
		}
		a.dash.AssignPatient(ctx, args[0])
		a.printDashboard()
	case "journal-of":
		if len(args) != 1 {
			fmt.Println("usage: journal-of <patient-id>")
			return
		}
		a.dash.ShowJournal(args[0])
		a.printDashboard()
	case "close":
		a.dash.ClosePanel()

	// Booking form.
	case "book":
		a.dash.OpenBooking()
		fmt.Println("Booking form open. Use set-patient/set-date/set-time/set-duration/set-notes, then submit.")
	case "set-patient":
		a.dash.SetPatientID(strings.Join(args, " "))
	case "set-date":
		a.dash.SetDate(strings.Join(args, " "))
	case "set-time":
		a.dash.SetTime(strings.Join(args, " "))
	case "set-notes":
		a.dash.SetNotes(strings.Join(args, " "))
	case "set-duration":
		minutes, err := strconv.Atoi(strings.Join(args, ""))
		if err != nil {
			fmt.Println("usage: set-duration <minutes>")
			return
		}
		if err := a.dash.SetDuration(minutes); err != nil {
			fmt.Println(err)
		}
	case "submit":
		a.dash.SubmitBooking(ctx)
		if msg := a.dash.BookingError(); msg != "" {
			fmt.Println("Booking failed:", msg)
		} else if msg := a.dash.Confirmation(); msg != "" {
			fmt.Println(msg)
		}
	case "cancel":
		a.dash.CancelBooking()

	// Patient workflow.
	case "refresh":
		a.run(a.workflow.Refresh(ctx))
		a.printJournals()
	case "journals":
		a.printJournals()
	case "edit":
		if len(args) != 1 {
			fmt.Println("usage: edit <entry-id>")
			return
		}
		a.run(a.workflow.StartEdit(args[0]))
	case "title":
		a.workflow.SetTitle(strings.Join(args, " "))
	case "text":
		a.workflow.SetText(strings.Join(args, " "))
	case "save":
		a.run(a.workflow.Save(ctx))
	case "delete":
		if len(args) != 1 {
			fmt.Println("usage: delete <entry-id>")
			return
		}
		a.run(a.workflow.Delete(ctx, args[0]))
	case "share":
		if len(args) != 1 {
			fmt.Println("usage: share <entry-id>")
			return
		}
		msg, err := a.workflow.Share(ctx, args[0], "")
		if err != nil {
			fmt.Println(err)
			return
		}
		fmt.Println(msg)
	case "mood":
		value, err := strconv.Atoi(strings.Join(args, ""))
		if err != nil {
			fmt.Println("usage: mood <1-10>")
			return
		}
		if err := a.workflow.SetMood(value); err != nil {
			fmt.Println(err)
			return
		}
		a.run(a.workflow.SubmitMood(ctx))

	default:
		fmt.Printf("unknown command %q — type 'help'\n", cmd)
	}
}

func (a *app) login(ctx context.Context, args []string) {
	if len(args) != 2 {
		fmt.Println("usage: login <username> <password>")
		return
	}
	result, err := a.client.Login(ctx, api.LoginRequest{Username: args[0], Password: args[1]})
	if err != nil {
		fmt.Println(err)
		return
	}
	a.sessions.Set(session.Credential{Token: result.Token, Role: result.Role, UserData: result.UserData})
	fmt.Printf("Logged in as %s (%s)\n", args[0], result.Role)
}

func (a *app) register(ctx context.Context, cmd string, args []string) {
	if len(args) < 4 {
		fmt.Printf("usage: %s <username> <password> <first-name> <last-name> [age]\n", cmd)
		return
	}
	reg := api.Registration{Username: args[0], Password: args[1], FirstName: args[2], LastName: args[3]}
	if len(args) > 4 {
		reg.Age, _ = strconv.Atoi(args[4])
	}
	var (
		msg string
		err error
	)
	if cmd == "register-psychologist" {
		msg, err = a.client.RegisterPsychologist(ctx, reg)
	} else {
		msg, err = a.client.RegisterPatient(ctx, reg)
	}
	if err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println(msg)
}

// printDashboard renders whichever panel the controller currently shows.
func (a *app) printDashboard() {
	view := a.dash.CurrentView()
	switch view.Kind {
	case dashboard.PanelUnassigned:
		printPatients("Unassigned patients", a.dash.UnassignedRoster())
	case dashboard.PanelAssigned:
		printPatients("Assigned patients", a.dash.AssignedRoster())
	case dashboard.PanelSessions:
		sessions := a.dash.Sessions()
		fmt.Printf("Booked sessions (%d):\n", len(sessions))
		for _, s := range sessions {
			fmt.Printf("  %s — %s %s  %s .. %s\n", s.ID, s.PatientFirstName, s.PatientLastName, s.StartTime, s.EndTime)
		}
	case dashboard.PanelJournal:
		entries := a.dash.EntriesFor(view.JournalPatientID)
		fmt.Printf("Shared journal for patient %s (%d entries):\n", view.JournalPatientID, len(entries))
		for _, e := range entries {
			fmt.Printf("  %s — %s (%s)\n", e.ID, e.Title, e.Date)
		}
	}
}

func (a *app) printJournals() {
	for _, e := range a.workflow.Journals() {
		marker := " "
		if e.Shared {
			marker = "*"
		}
		fmt.Printf("  %s %s — %s (%s)\n", marker, e.ID, e.Title, e.Date)
	}
	if checked, value := a.workflow.MoodChecked(); checked {
		fmt.Printf("Today's mood: %d/10 (already submitted)\n", value)
	}
}

func (a *app) run(err error) {
	if err != nil {
		fmt.Println(err)
	}
}

func printPatients(title string, patients []api.Patient) {
	fmt.Printf("%s (%d):\n", title, len(patients))
	for _, p := range patients {
		fmt.Printf("  %s — %s %s, age %d\n", p.ID, p.FirstName, p.LastName, p.Age)
	}
}

func printHelp() {
	fmt.Print(`Accounts:
  login <username> <password>        logout
  register-psychologist <u> <p> <first> <last> [age]
  register-patient      <u> <p> <first> <last> [age]

Psychologist dashboard:
  unassigned | assigned | sessions   show a roster or the session list
  assign <patient-id>                claim an unassigned patient
  journal-of <patient-id>            shared journal of an assigned patient
  close                              close the current panel

Booking:
  book                               open the booking form
  set-patient <id>  set-date <yyyy-mm-dd>  set-time <hh:mm>
  set-duration <30|45|60|90|120>  set-notes <text>
  submit | cancel

Patient:
  refresh | journals                 load / list own journal
  edit <entry-id>  title <text>  text <text>  save
  delete <entry-id>  share <entry-id>
  mood <1-10>                        submit today's check-in

quit
`)
}
