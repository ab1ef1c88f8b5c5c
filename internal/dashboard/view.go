package dashboard

// PanelKind identifies the single surface visible on the dashboard. The
// booking form is a variant of the same union, so a panel and the booking
// modal can never be open at once.
type PanelKind int

const (
	PanelNone PanelKind = iota
	PanelUnassigned
	PanelAssigned
	PanelJournal
	PanelSessions
	PanelBooking
)

func (k PanelKind) String() string {
	switch k {
	case PanelNone:
		return "none"
	case PanelUnassigned:
		return "unassigned-patients"
	case PanelAssigned:
		return "assigned-patients"
	case PanelJournal:
		return "journal"
	case PanelSessions:
		return "sessions"
	case PanelBooking:
		return "booking"
	default:
		return "unknown"
	}
}

// View is the current visible surface. JournalPatientID is set only for
// PanelJournal.
type View struct {
	Kind             PanelKind
	JournalPatientID string
}
