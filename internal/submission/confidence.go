package submission

import "fmt"

// Confidence is the degree of certainty that a remote object has been
// durably accounted for. Levels are totally ordered.
type Confidence int

const (
	Ignored Confidence = iota + 1
	Superseded
	Submitted
)

func (c Confidence) String() string {
	switch c {
	case Ignored:
		return "ignored"
	case Superseded:
		return "superseded"
	case Submitted:
		return "submitted"
	default:
		return fmt.Sprintf("confidence(%d)", int(c))
	}
}

// AtLeast reports whether c dominates other.
func (c Confidence) AtLeast(other Confidence) bool {
	return c >= other
}

func (c Confidence) Valid() bool {
	return c >= Ignored && c <= Submitted
}
