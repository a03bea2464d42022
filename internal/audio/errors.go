package audio

import "fmt"

// DecodeError reports malformed or unsupported audio input.
type DecodeError struct {
	Format string // container the decoder attempted, e.g. "wav"
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("decode audio: %v", e.Err)
	}
	return fmt.Sprintf("decode %s audio: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// ValidationError reports an upload rejected before any processing.
type ValidationError struct {
	Field  string // "type" or "size"
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid upload %s %q: %s", e.Field, e.Value, e.Reason)
}
