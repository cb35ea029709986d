package engine

// State is the phase of a run
type State int

const (
	StateInitializing    State = iota
	StateRunning                // evolving generations
	StateConverged              // best-ever fitness reached the threshold
	StateBudgetExhausted        // max generations reached
	StateCancelled              // context cancelled at a generation boundary
)

func (s State) String() string {
	switch s {
	case StateInitializing:
		return "initializing"
	case StateRunning:
		return "running"
	case StateConverged:
		return "converged"
	case StateBudgetExhausted:
		return "budget_exhausted"
	case StateCancelled:
		return "cancelled"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further generations will run
func (s State) Terminal() bool {
	return s == StateConverged || s == StateBudgetExhausted || s == StateCancelled
}
