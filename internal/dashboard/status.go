package dashboard

// Action identifies one asynchronous dashboard operation. Each action owns
// its own status, so a slow or failed fetch never bleeds into another.
type Action int

const (
	ActionUnassigned Action = iota
	ActionAssigned
	ActionSessions
	ActionAssign
	ActionBooking
)

// Phase is the lifecycle of one asynchronous action.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseSuccess
	PhaseFailure
)

// Status is the scoped state of one action. Err is set only in PhaseFailure,
// which rules out the loading-with-error combinations the UI used to allow.
type Status struct {
	Phase Phase
	Err   string
}

func (s Status) Loading() bool { return s.Phase == PhaseLoading }
func (s Status) Failed() bool  { return s.Phase == PhaseFailure }
