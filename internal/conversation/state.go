package conversation

// State is the position of a single turn in the pipeline.
type State int

const (
	StateIdle State = iota
	StateResolving
	StateDetecting
	StateTranslating
	StateLogging
	StateDone
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateResolving:
		return "resolving"
	case StateDetecting:
		return "detecting"
	case StateTranslating:
		return "translating"
	case StateLogging:
		return "logging"
	case StateDone:
		return "done"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is allowed.
func (s State) Terminal() bool { return s == StateDone || s == StateFailed }
