package engine

// State is a node of the classification state machine.
type State int

// Machine states.
const (
	StateConfirming State = iota
	StateSearching
	StateQuestioning
	StateAwaitingClarification
	StateFinalizing
	StateAwaitingSelection
	StateComplete
)

func (s State) String() string {
	switch s {
	case StateConfirming:
		return "confirming"
	case StateSearching:
		return "searching"
	case StateQuestioning:
		return "questioning"
	case StateAwaitingClarification:
		return "awaiting_clarification"
	case StateFinalizing:
		return "finalizing"
	case StateAwaitingSelection:
		return "awaiting_selection"
	case StateComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Effect tells the driver what to do after a transition.
type Effect int

// Transition effects.
const (
	// EffectContinue runs the next state immediately.
	EffectContinue Effect = iota
	// EffectSuspend returns to the caller until the next user message.
	EffectSuspend
	// EffectDone ends the classification.
	EffectDone
)

// Facts are the observations a state's work produced.
type Facts struct {
	Outcome        Outcome
	HighConfidence int
	Turn           int
	MaxTurns       int
	Selected       bool
}

// QuestionsAllowed reports whether another clarification round may be asked.
func (f Facts) QuestionsAllowed() bool {
	return f.Turn <= f.MaxTurns
}

// Transition is the pure transition function of the state machine.
func Transition(s State, f Facts) (State, Effect) {
	switch s {
	case StateConfirming:
		return StateSearching, EffectContinue
	case StateSearching:
		if f.HighConfidence > 0 {
			return StateFinalizing, EffectContinue
		}
		return StateQuestioning, EffectContinue
	case StateQuestioning:
		if !f.QuestionsAllowed() {
			return StateFinalizing, EffectContinue
		}
		return StateAwaitingClarification, EffectSuspend
	case StateAwaitingClarification:
		return StateSearching, EffectContinue
	case StateFinalizing:
		if f.Outcome.NeedsSelection() {
			return StateAwaitingSelection, EffectSuspend
		}
		return StateComplete, EffectDone
	case StateAwaitingSelection:
		if f.Selected {
			return StateComplete, EffectDone
		}
		return StateAwaitingSelection, EffectSuspend
	case StateComplete:
		return StateConfirming, EffectContinue
	default:
		return StateComplete, EffectDone
	}
}
