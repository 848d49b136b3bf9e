package session

import (
	"encoding/json"
	"fmt"
)

// Display text for states that carry no payload, and the fixed rejection.
const (
	IdleText          = "Waiting for compute"
	PendingText       = "computing..."
	EmptyInputMessage = "Need dices input."
)

// Kind is the lifecycle state of the result slot.
type Kind int

const (
	Idle Kind = iota
	Pending
	Rejected
	Completed
)

var kindNames = [...]string{"idle", "pending", "rejected", "completed"}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

func (k Kind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Result is the tagged value shown in the result panel.
type Result struct {
	Kind Kind   `json:"kind"`
	Text string `json:"text,omitempty"`
}

// Display returns the text to render for r.
func (r Result) Display() string {
	switch r.Kind {
	case Pending:
		return PendingText
	case Rejected, Completed:
		return r.Text
	}
	return IdleText
}
