package scenario

// State is the phase of a scenario run.
type State int

const (
	StateIdle State = iota
	StateBackedUp
	StateApplying
	StateRunning
	StateRestoring
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBackedUp:
		return "backed-up"
	case StateApplying:
		return "applying"
	case StateRunning:
		return "running"
	case StateRestoring:
		return "restoring"
	default:
		return "unknown"
	}
}
