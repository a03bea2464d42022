package audio

import (
	"fmt"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// MaxUploadBytes is the largest recording accepted for processing (500 MB).
const MaxUploadBytes int64 = 500 * 1024 * 1024

// SupportedTypes lists the MIME types accepted for upload.
var SupportedTypes = []string{"audio/wav", "audio/mp3", "audio/mpeg", "audio/webm", "video/webm"}

// Upload describes a user-selected file before it is read in full.
type Upload struct {
	Name     string
	Size     int64
	MIMEType string // declared type; may be empty
	Head     []byte // leading bytes used for content sniffing; may be empty
}

// Validator checks uploads against a type allow-list and a size limit.
type Validator struct {
	MaxBytes int64
	Allowed  []string
}

// DefaultValidator returns a Validator with the stock limits.
func DefaultValidator() Validator {
	return Validator{MaxBytes: MaxUploadBytes, Allowed: SupportedTypes}
}

// ValidateUpload checks u with the default limits.
func ValidateUpload(u Upload) error {
	return DefaultValidator().Validate(u)
}

// Validate returns a *ValidationError if u must not reach the pipeline.
// The declared MIME type wins when present; otherwise the head bytes are sniffed.
// When both are available the sniffed content must not contradict the declaration.
func (v Validator) Validate(u Upload) error {
	if u.Size < 0 {
		return &ValidationError{Field: "size", Value: fmt.Sprint(u.Size), Reason: "negative size"}
	}
	if v.MaxBytes > 0 && u.Size > v.MaxBytes {
		return &ValidationError{
			Field:  "size",
			Value:  fmt.Sprint(u.Size),
			Reason: fmt.Sprintf("exceeds limit of %d MB", v.MaxBytes/(1024*1024)),
		}
	}

	declared := normaliseMIME(u.MIMEType)
	var sniffed *mimetype.MIME
	if len(u.Head) > 0 {
		sniffed = mimetype.Detect(u.Head)
	}

	if declared == "" {
		if sniffed == nil {
			return &ValidationError{Field: "type", Value: u.Name, Reason: "unknown content type"}
		}
		if !v.allowsDetected(sniffed) {
			return &ValidationError{Field: "type", Value: sniffed.String(), Reason: "unsupported content type"}
		}
		return nil
	}

	if !v.allows(declared) {
		return &ValidationError{Field: "type", Value: declared, Reason: "unsupported content type"}
	}

	// Octet-stream means the sniffer had nothing to say; mp3 without an ID3
	// tag commonly lands there.
	if sniffed != nil && !sniffed.Is("application/octet-stream") && !v.allowsDetected(sniffed) {
		return &ValidationError{
			Field:  "type",
			Value:  sniffed.String(),
			Reason: fmt.Sprintf("content does not match declared type %s", declared),
		}
	}
	return nil
}

func (v Validator) allows(t string) bool {
	for _, a := range v.Allowed {
		if a == t {
			return true
		}
	}
	return false
}

func (v Validator) allowsDetected(m *mimetype.MIME) bool {
	for _, a := range v.Allowed {
		if m.Is(a) {
			return true
		}
	}
	return false
}

// normaliseMIME lower-cases t and strips parameters such as ";codecs=opus".
func normaliseMIME(t string) string {
	t = strings.TrimSpace(t)
	if t == "" {
		return ""
	}
	if mt, _, err := mime.ParseMediaType(t); err == nil {
		return mt
	}
	return strings.ToLower(t)
}

// DetectType sniffs the content type of data, e.g. "audio/wav".
func DetectType(data []byte) string {
	return normaliseMIME(mimetype.Detect(data).String())
}
