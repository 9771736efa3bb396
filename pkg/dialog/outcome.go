package dialog

import "fmt"

// Outcome tells what a call to Submit did.
type Outcome int

const (
	// OutcomeNoMatch means the input matched no option and nothing changed.
	OutcomeNoMatch Outcome = iota
	// OutcomeAdvanced means the session moved to the option's target node.
	OutcomeAdvanced
	// OutcomeDangling means the option pointed at a missing node; the
	// diagnostic was appended and the current options were kept.
	OutcomeDangling
)

func (o Outcome) String() string {
	switch o {
	case OutcomeNoMatch:
		return "no_match"
	case OutcomeAdvanced:
		return "advanced"
	case OutcomeDangling:
		return "dangling"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so outcomes travel as strings.
func (o Outcome) MarshalText() ([]byte, error) {
	return []byte(o.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (o *Outcome) UnmarshalText(text []byte) error {
	switch string(text) {
	case "no_match":
		*o = OutcomeNoMatch
	case "advanced":
		*o = OutcomeAdvanced
	case "dangling":
		*o = OutcomeDangling
	default:
		return fmt.Errorf("unknown outcome %q", text)
	}
	return nil
}
