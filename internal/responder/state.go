package responder

import "fmt"

// State is a point on the responder's linear lifecycle. Every state before
// Succeeded may exit straight to teardown.
type State int

const (
	Uninitialized State = iota
	SubsystemReady
	Bound
	Listening
	Connected
	Exchanged
	Succeeded
)

var stateNames = [...]string{
	Uninitialized:  "UNINITIALIZED",
	SubsystemReady: "SUBSYS_READY",
	Bound:          "BOUND",
	Listening:      "LISTENING",
	Connected:      "CONNECTED",
	Exchanged:      "EXCHANGED",
	Succeeded:      "SUCCESS",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// MarshalText renders the state by name in reports.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
