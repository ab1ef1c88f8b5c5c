package api

// Patient is a roster entry as returned by the backend.
type Patient struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Age       int    `json:"age,omitempty"`
}

// Session is a booked appointment. StartTime/EndTime use the backend's
// "YYYY-MM-DD HH:MM:SS" form.
type Session struct {
	ID               string `json:"id"`
	PatientID        string `json:"patientId"`
	PatientFirstName string `json:"patientFirstName"`
	PatientLastName  string `json:"patientLastName"`
	StartTime        string `json:"startTime"`
	EndTime          string `json:"endTime"`
}

// JournalEntry is a patient journal record. PatientID is populated on
// entries fetched through the shared-journal endpoint.
type JournalEntry struct {
	ID        string `json:"id"`
	PatientID string `json:"patientId,omitempty"`
	Title     string `json:"title"`
	Text      string `json:"text"`
	Date      string `json:"date,omitempty"`
	Tags      string `json:"tags,omitempty"`
	Shared    bool   `json:"shared,omitempty"`
}

// Mood is a daily mood check-in on a 1..10 scale.
type Mood struct {
	Value int `json:"value"`
}

// BookingRequest is the create-booking payload. Bookings are keyed by
// patientId; both bounds come from schedule.ComputeWindow.
type BookingRequest struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	PatientID string `json:"patientId"`
	Notes     string `json:"notes,omitempty"`
}

// LoginRequest carries login credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is the parsed login response. Token has any "Bearer " prefix
// already stripped.
type LoginResult struct {
	Token    string
	Role     string
	UserData map[string]any
}

type loginResponse struct {
	AccessToken string         `json:"accessToken"`
	Role        string         `json:"role"`
	UserData    map[string]any `json:"userData"`
}

// Registration is the self-registration payload for either role.
type Registration struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email,omitempty"`
	Age       int    `json:"age,omitempty"`
}
