// Package stubapi is an in-memory stand-in for the remote PSYCare backend,
// used for local development and client integration tests. It mirrors the
// REST surface the client consumes; it is not the real backend and keeps
// nothing across restarts.
package stubapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/psycare/psycare-go/internal/api"
	"github.com/psycare/psycare-go/internal/session"
	"github.com/psycare/psycare-go/pkg/logging"
)

const stampLayout = "2006-01-02 15:04:05"

// Config holds stub server options.
type Config struct {
	JWTSecret string
	TokenTTL  time.Duration
	Logger    *logging.Logger
}

type user struct {
	ID        string
	Username  string
	Password  string
	Role      string
	FirstName string
	LastName  string
	Age       int
}

type appointment struct {
	ID             string
	PsychologistID string
	PatientID      string
	Start          time.Time
	End            time.Time
	Notes          string
}

type journalEntry struct {
	api.JournalEntry
	OwnerID string
}

// Server holds the in-memory state behind the stub routes.
type Server struct {
	secret []byte
	ttl    time.Duration
	logger *logging.Logger

	mu           sync.Mutex
	users        map[string]*user  // by username
	usersByID    map[string]*user
	assignments  map[string]string // patientID -> psychologistID
	appointments []appointment
	journals     map[string]*journalEntry // by entry ID
	moods        map[string]int           // patientID+date -> value
}

// New creates a stub server.
func New(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	secret := cfg.JWTSecret
	if secret == "" {
		secret = "dev-only-secret"
	}
	return &Server{
		secret:      []byte(secret),
		ttl:         ttl,
		logger:      logger,
		users:       make(map[string]*user),
		usersByID:   make(map[string]*user),
		assignments: make(map[string]string),
		journals:    make(map[string]*journalEntry),
		moods:       make(map[string]int),
	}
}

// Router builds the chi router with the full stub REST surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Post("/auth/register/psychologist", s.register(session.RolePsychologist))
	r.Post("/auth/register/patient", s.register(session.RolePatient))
	r.Post("/auth/login", s.login)

	r.Group(func(r chi.Router) {
		r.Use(s.authenticate)

		r.Route("/psychologists/me", func(r chi.Router) {
			r.Get("/patients/unassigned", s.unassignedPatients)
			r.Get("/patients/assigned", s.assignedPatients)
			r.Post("/patients/{patientID}", s.assignPatient)
			r.Get("/appointments", s.listAppointments)
			r.Post("/appointments", s.createAppointment)
		})

		r.Get("/journal/shared", s.sharedJournal)
		r.Get("/journal", s.listJournal)
		r.Post("/journal", s.createJournal)
		r.Put("/journal/{entryID}", s.updateJournal)
		r.Delete("/journal/{entryID}", s.deleteJournal)
		r.Post("/journal/{entryID}/share", s.shareJournal)

		r.Post("/mood", s.submitMood)
		r.Get("/mood/today", s.todayMood)
	})

	return r
}

type ctxKey string

const userKey ctxKey = "stubapi.user"

func (s *Server) register(role string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var reg api.Registration
		if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
			http.Error(w, "invalid registration payload", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(reg.Username) == "" || strings.TrimSpace(reg.Password) == "" {
			http.Error(w, "username and password are required", http.StatusBadRequest)
			return
		}

		s.mu.Lock()
		defer s.mu.Unlock()
		if _, exists := s.users[reg.Username]; exists {
			http.Error(w, "username already taken", http.StatusConflict)
			return
		}
		u := &user{
			ID:        uuid.NewString(),
			Username:  reg.Username,
			Password:  reg.Password,
			Role:      role,
			FirstName: reg.FirstName,
			LastName:  reg.LastName,
			Age:       reg.Age,
		}
		s.users[reg.Username] = u
		s.usersByID[u.ID] = u
		_, _ = w.Write([]byte("Registration successful"))
	}
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var creds api.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		http.Error(w, "invalid login payload", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	u, ok := s.users[creds.Username]
	s.mu.Unlock()
	if !ok || u.Password != creds.Password {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
		return
	}

	claims := jwt.RegisteredClaims{
		Subject:   u.ID,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(s.ttl)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		http.Error(w, "token signing failed", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{
		"accessToken": "Bearer " + signed,
		"role":        u.Role,
		"userData": map[string]any{
			"id":        u.ID,
			"firstName": u.FirstName,
			"lastName":  u.LastName,
		},
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			http.Error(w, "missing authorization header", http.StatusUnauthorized)
			return
		}
		raw := strings.TrimPrefix(auth, "Bearer ")

		claims := &jwt.RegisteredClaims{}
		tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
			}
			return s.secret, nil
		}, jwt.WithExpirationRequired())
		if err != nil || !tok.Valid {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}

		s.mu.Lock()
		u, ok := s.usersByID[claims.Subject]
		s.mu.Unlock()
		if !ok {
			http.Error(w, "unknown user", http.StatusUnauthorized)
			return
		}

		next.ServeHTTP(w, r.WithContext(contextWithUser(r.Context(), u)))
	})
}

func (s *Server) unassignedPatients(w http.ResponseWriter, r *http.Request) {
	if _, ok := requireUser(w, r, session.RolePsychologist); !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []api.Patient{}
	for _, u := range s.usersByID {
		if u.Role != session.RolePatient {
			continue
		}
		if _, assigned := s.assignments[u.ID]; assigned {
			continue
		}
		out = append(out, api.Patient{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Age: u.Age})
	}
	writeJSON(w, out)
}

func (s *Server) assignedPatients(w http.ResponseWriter, r *http.Request) {
	me, ok := requireUser(w, r, session.RolePsychologist)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []api.Patient{}
	for patientID, psychID := range s.assignments {
		if psychID != me.ID {
			continue
		}
		if u, found := s.usersByID[patientID]; found {
			out = append(out, api.Patient{ID: u.ID, FirstName: u.FirstName, LastName: u.LastName, Age: u.Age})
		}
	}
	writeJSON(w, out)
}

func (s *Server) assignPatient(w http.ResponseWriter, r *http.Request) {
	me, ok := requireUser(w, r, session.RolePsychologist)
	if !ok {
		return
	}
	patientID := chi.URLParam(r, "patientID")

	s.mu.Lock()
	defer s.mu.Unlock()
	u, found := s.usersByID[patientID]
	if !found || u.Role != session.RolePatient {
		http.Error(w, "no such patient", http.StatusNotFound)
		return
	}
	if _, assigned := s.assignments[patientID]; assigned {
		http.Error(w, "patient already assigned", http.StatusConflict)
		return
	}
	s.assignments[patientID] = me.ID
	s.logger.Info("stub: patient assigned", "patient_id", patientID, "psychologist_id", me.ID)
	_, _ = w.Write([]byte("Patient assigned successfully"))
}

func (s *Server) listAppointments(w http.ResponseWriter, r *http.Request) {
	me, ok := requireUser(w, r, session.RolePsychologist)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []api.Session{}
	for _, a := range s.appointments {
		if a.PsychologistID != me.ID {
			continue
		}
		sess := api.Session{
			ID:        a.ID,
			PatientID: a.PatientID,
			StartTime: a.Start.Format(stampLayout),
			EndTime:   a.End.Format(stampLayout),
		}
		if u, found := s.usersByID[a.PatientID]; found {
			sess.PatientFirstName = u.FirstName
			sess.PatientLastName = u.LastName
		}
		out = append(out, sess)
	}
	writeJSON(w, out)
}

func (s *Server) createAppointment(w http.ResponseWriter, r *http.Request) {
	me, ok := requireUser(w, r, session.RolePsychologist)
	if !ok {
		return
	}
	var req api.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid booking payload", http.StatusBadRequest)
		return
	}
	if req.PatientID == "" {
		http.Error(w, "patientId is required", http.StatusBadRequest)
		return
	}
	start, err := time.ParseInLocation(stampLayout, req.StartTime, time.Local)
	if err != nil {
		http.Error(w, "invalid startTime", http.StatusBadRequest)
		return
	}
	end, err := time.ParseInLocation(stampLayout, req.EndTime, time.Local)
	if err != nil || !end.After(start) {
		http.Error(w, "invalid endTime", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.appointments {
		if a.PsychologistID != me.ID {
			continue
		}
		if start.Before(a.End) && a.Start.Before(end) {
			http.Error(w, "slot taken", http.StatusConflict)
			return
		}
	}
	s.appointments = append(s.appointments, appointment{
		ID:             uuid.NewString(),
		PsychologistID: me.ID,
		PatientID:      req.PatientID,
		Start:          start,
		End:            end,
		Notes:          req.Notes,
	})
	_, _ = w.Write([]byte("Session booked successfully"))
}

func (s *Server) sharedJournal(w http.ResponseWriter, r *http.Request) {
	me, ok := requireUser(w, r, session.RolePsychologist)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []api.JournalEntry{}
	for _, e := range s.journals {
		if !e.Shared {
			continue
		}
		if s.assignments[e.OwnerID] != me.ID {
			continue
		}
		entry := e.JournalEntry
		entry.PatientID = e.OwnerID
		out = append(out, entry)
	}
	writeJSON(w, out)
}

func (s *Server) listJournal(w http.ResponseWriter, r *http.Request) {
	me, ok := requireUser(w, r, session.RolePatient)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []api.JournalEntry{}
	for _, e := range s.journals {
		if e.OwnerID == me.ID {
			out = append(out, e.JournalEntry)
		}
	}
	writeJSON(w, out)
}

func (s *Server) createJournal(w http.ResponseWriter, r *http.Request) {
	me, ok := requireUser(w, r, session.RolePatient)
	if !ok {
		return
	}
	var entry api.JournalEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		http.Error(w, "invalid journal payload", http.StatusBadRequest)
		return
	}
	entry.ID = uuid.NewString()
	entry.Date = time.Now().Format("2006-01-02")
	entry.Shared = false

	s.mu.Lock()
	defer s.mu.Unlock()
	s.journals[entry.ID] = &journalEntry{JournalEntry: entry, OwnerID: me.ID}
	_, _ = w.Write([]byte("Journal created"))
}

func (s *Server) updateJournal(w http.ResponseWriter, r *http.Request) {
	me, ok := requireUser(w, r, session.RolePatient)
	if !ok {
		return
	}
	var in api.JournalEntry
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		http.Error(w, "invalid journal payload", http.StatusBadRequest)
		return
	}
	entryID := chi.URLParam(r, "entryID")

	s.mu.Lock()
	defer s.mu.Unlock()
	e, found := s.journals[entryID]
	if !found || e.OwnerID != me.ID {
		http.Error(w, "no such journal entry", http.StatusNotFound)
		return
	}
	e.Title = in.Title
	e.Text = in.Text
	_, _ = w.Write([]byte("Journal updated"))
}

func (s *Server) deleteJournal(w http.ResponseWriter, r *http.Request) {
	me, ok := requireUser(w, r, session.RolePatient)
	if !ok {
		return
	}
	entryID := chi.URLParam(r, "entryID")

	s.mu.Lock()
	defer s.mu.Unlock()
	e, found := s.journals[entryID]
	if !found || e.OwnerID != me.ID {
		http.Error(w, "no such journal entry", http.StatusNotFound)
		return
	}
	delete(s.journals, entryID)
	_, _ = w.Write([]byte("Journal deleted"))
}

func (s *Server) shareJournal(w http.ResponseWriter, r *http.Request) {
	me, ok := requireUser(w, r, session.RolePatient)
	if !ok {
		return
	}
	entryID := chi.URLParam(r, "entryID")

	s.mu.Lock()
	defer s.mu.Unlock()
	e, found := s.journals[entryID]
	if !found || e.OwnerID != me.ID {
		http.Error(w, "no such journal entry", http.StatusNotFound)
		return
	}
	e.Shared = true
	_, _ = w.Write([]byte("Journal shared"))
}

func (s *Server) submitMood(w http.ResponseWriter, r *http.Request) {
	me, ok := requireUser(w, r, session.RolePatient)
	if !ok {
		return
	}
	var m api.Mood
	if err := json.NewDecoder(r.Body).Decode(&m); err != nil {
		http.Error(w, "invalid mood payload", http.StatusBadRequest)
		return
	}
	if m.Value < 1 || m.Value > 10 {
		http.Error(w, "mood value out of range", http.StatusBadRequest)
		return
	}
	key := me.ID + ":" + time.Now().Format("2006-01-02")

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.moods[key]; exists {
		http.Error(w, "mood already submitted today", http.StatusConflict)
		return
	}
	s.moods[key] = m.Value
	_, _ = w.Write([]byte("Mood submitted"))
}

func (s *Server) todayMood(w http.ResponseWriter, r *http.Request) {
	me, ok := requireUser(w, r, session.RolePatient)
	if !ok {
		return
	}
	key := me.ID + ":" + time.Now().Format("2006-01-02")

	s.mu.Lock()
	value, exists := s.moods[key]
	s.mu.Unlock()
	if !exists {
		http.Error(w, "no mood recorded today", http.StatusNotFound)
		return
	}
	writeJSON(w, api.Mood{Value: value})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
