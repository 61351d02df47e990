package pennywise

import (
	"encoding/json"
	"fmt"
)

// Mode is the assistant's persona.
type Mode int

const (
	// Coach is the supportive financial coach.
	Coach Mode = iota
	// Roast is the savage persona.
	Roast
)

func (m Mode) String() string {
	switch m {
	case Coach:
		return "coach"
	case Roast:
		return "roast"
	default:
		return "unknown"
	}
}

// Greeting returns the fixed text announced when the session switches to m.
func (m Mode) Greeting() string {
	if m == Roast {
		return "FINANCIAL CRIME DETECTED. Wallet ready for a beating?"
	}
	return "Financial Coach Active. How can I help you save?"
}

// ParseMode parses "coach" or "roast".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "coach":
		return Coach, nil
	case "roast":
		return Roast, nil
	default:
		return 0, fmt.Errorf("unknown mode: %q", s)
	}
}

func (m Mode) MarshalJSON() ([]byte, error) { return json.Marshal(m.String()) }

func (m *Mode) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseMode(s)
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Direction is the way cash moves in the ledger.
type Direction int

const (
	In Direction = iota
	Out
)

func (d Direction) String() string {
	switch d {
	case In:
		return "IN"
	case Out:
		return "OUT"
	default:
		return "unknown"
	}
}

// ParseDirection parses "IN" or "OUT".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "IN":
		return In, nil
	case "OUT":
		return Out, nil
	default:
		return 0, &ValidationError{Field: "type", Reason: fmt.Sprintf("unknown direction %q", s)}
	}
}

func (d Direction) MarshalJSON() ([]byte, error) {
	if d != In && d != Out {
		return nil, fmt.Errorf("cannot marshal direction %d", int(d))
	}
	return json.Marshal(d.String())
}

func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseDirection(s)
	if err != nil {
		return err
	}
	*d = v
	return nil
}
