package extractor

import "strings"

// Status is the outcome class of an extraction.
type Status string

const (
	StatusOK          Status = "ok"
	StatusUnsupported Status = "unsupported"
	StatusFailed      Status = "failed"
)

// Reason narrows down a non-OK status.
type Reason string

const (
	ReasonNone            Reason = ""
	ReasonUnsupportedType Reason = "unsupported_media_type"
	ReasonDecodeFailure   Reason = "decode_failure"
	ReasonRenderFailure   Reason = "render_failure"
	ReasonOCRFailure      Reason = "ocr_failure"
)

// Result is the explicit outcome of Extract. A scan that contained no text is
// StatusOK with empty Text, never StatusFailed.
type Result struct {
	Status    Status
	Reason    Reason
	Text      string
	Pages     int
	MediaType string
	Err       error
}

func (r Result) OK() bool {
	return r.Status == StatusOK
}

// Blank reports whether a successful extraction produced only whitespace.
func (r Result) Blank() bool {
	return strings.TrimSpace(r.Text) == ""
}

func unsupported(mediaType string) Result {
	return Result{Status: StatusUnsupported, Reason: ReasonUnsupportedType, MediaType: mediaType}
}

func failed(mediaType string, reason Reason, err error) Result {
	return Result{Status: StatusFailed, Reason: reason, MediaType: mediaType, Err: err}
}
