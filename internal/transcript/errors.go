package transcript

import "fmt"

// AdapterError reasons
const (
	ReasonEmptyInput        = "empty_input"
	ReasonMissingWordTiming = "missing_word_timing"
	ReasonInvalidTiming     = "invalid_timing"
	ReasonUnordered         = "unordered_words"
)

// AdapterError reports backend output that cannot be normalised.
// Segment is the offending segment index, or -1.
type AdapterError struct {
	Reason  string
	Segment int
	Err     error
}

func (e *AdapterError) Error() string {
	msg := "adapt transcript: " + e.Reason
	if e.Segment >= 0 {
		msg += fmt.Sprintf(" (segment %d)", e.Segment)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *AdapterError) Unwrap() error { return e.Err }
