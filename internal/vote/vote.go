// Package vote implements the tally arithmetic shared by questions and
// answers. A record remembers a single vote slot (the last vote applied),
// not one vote per user.
package vote

import "errors"

// Value is a vote direction as stored on a record.
type Value int

const (
	Down Value = -1
	None Value = 0
	Up   Value = 1
)

var ErrInvalidValue = errors.New("Vote must be 1, -1, or 0")

// Parse maps a wire integer onto a Value. Anything outside {-1, 0, 1} is
// rejected here, before it can reach Apply.
func Parse(raw int) (Value, error) {
	switch raw {
	case -1, 0, 1:
		return Value(raw), nil
	}
	return None, ErrInvalidValue
}

// Apply recomputes a record's tally for a requested vote. The delta is
// requested minus the remembered slot, so re-applying the same value is a
// no-op on the tally. Negative totals are valid; nothing is clamped.
func Apply(votes int, userVote, requested Value) (int, Value) {
	return votes + int(requested) - int(userVote), requested
}

// Toggle is the client-side click policy: clicking the direction that is
// already active clears the vote instead of re-affirming it.
func Toggle(current, clicked Value) Value {
	if current == clicked {
		return None
	}
	return clicked
}
