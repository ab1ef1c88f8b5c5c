package session

import "sync"

// Role tags issued by the PSYCare backend at login.
const (
	RolePsychologist = "ROLE_PSYCHOLOGIST"
	RolePatient      = "ROLE_PATIENT"
)

// Credential is the bearer token plus the metadata returned at login.
type Credential struct {
	Token    string
	Role     string
	UserData map[string]any
}

// Store holds the process-wide credential for the lifetime of the client
// session. Login and logout are the only writers; every other component
// reads snapshots and never mutates.
type Store struct {
	mu   sync.RWMutex
	cred *Credential
}

func NewStore() *Store {
	return &Store{}
}

// Set replaces the stored credential. Called at login.
func (s *Store) Set(cred Credential) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = &cred
}

// Clear removes the stored credential. Called at logout.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cred = nil
}

// Get returns a snapshot of the credential, if one is held.
func (s *Store) Get() (Credential, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil {
		return Credential{}, false
	}
	return *s.cred, true
}

// Token returns the raw bearer token, or "" when logged out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cred == nil {
		return ""
	}
	return s.cred.Token
}
