package bootstrap

// State is a step of the bootstrap sequence.
type State int

const (
	StateNotStarted State = iota
	StateResolvingConfig
	StateSkippingSecrets
	StateFetchingSecret
	StateMerged
	StateFailed
)

var stateNames = map[State]string{
	StateNotStarted:      "not_started",
	StateResolvingConfig: "resolving_config",
	StateSkippingSecrets: "skipping_secrets",
	StateFetchingSecret:  "fetching_secret",
	StateMerged:          "merged",
	StateFailed:          "failed",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateMerged || s == StateFailed
}

// allowedTransitions lists the legal successors of every non-terminal state.
var allowedTransitions = map[State][]State{
	StateNotStarted:      {StateResolvingConfig},
	StateResolvingConfig: {StateSkippingSecrets, StateFetchingSecret, StateFailed},
	StateSkippingSecrets: {StateMerged, StateFailed},
	StateFetchingSecret:  {StateMerged, StateFailed},
}

func canTransition(from, to State) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
