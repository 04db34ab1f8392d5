package explanation

import "fmt"

// State is a generation lifecycle state.
type State string

// Generation states. Only Success and FallbackSuccess are returned to callers.
const (
	Pending         State = "pending"
	Retrying        State = "retrying"
	Exhausted       State = "exhausted"
	Success         State = "success"
	FallbackSuccess State = "fallback_success"
)

var transitions = map[State][]State{
	Pending:   {Success, Retrying, Exhausted},
	Retrying:  {Retrying, Success, Exhausted},
	Exhausted: {FallbackSuccess},
}

// Terminal reports whether s may be returned to a caller.
func (s State) Terminal() bool {
	return s == Success || s == FallbackSuccess
}

// CanTransition reports whether from -> to is a legal step.
func CanTransition(from, to State) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Explanation is a grounded answer. Immutable and request-scoped.
type Explanation struct {
	text         string
	groundingIDs []int64
	state        State
	attempts     int
}

// New creates an explanation in a terminal state.
func New(text string, groundingIDs []int64, state State, attempts int) (Explanation, error) {
	if text == "" {
		return Explanation{}, fmt.Errorf("explanation text is required")
	}
	if !state.Terminal() {
		return Explanation{}, fmt.Errorf("state %q is not terminal", state)
	}
	ids := make([]int64, len(groundingIDs))
	copy(ids, groundingIDs)
	return Explanation{text: text, groundingIDs: ids, state: state, attempts: attempts}, nil
}

// Text returns the explanation body.
func (e *Explanation) Text() string { return e.text }

// GroundingIDs returns a copy of the cited locator ids in citation order.
func (e *Explanation) GroundingIDs() []int64 {
	out := make([]int64, len(e.groundingIDs))
	copy(out, e.groundingIDs)
	return out
}

// State returns the terminal state reached.
func (e *Explanation) State() State { return e.state }

// Attempts returns how many backend calls were made.
func (e *Explanation) Attempts() int { return e.attempts }

// IsFallback reports whether the templated fallback produced the text.
func (e *Explanation) IsFallback() bool { return e.state == FallbackSuccess }
