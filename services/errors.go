package services

import "fmt"

// The pipeline returns typed errors so controllers can pick
// mode/destination-specific status codes and messages instead of a
// generic 500.

// CaptureError ends the current capture attempt. Permission denial is
// the only variant callers should degrade on (to upload-from-file).
type CaptureError struct {
	Reason string
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture failed: %s", e.Reason)
}

// ErrPermissionDenied marks camera-permission refusal; compare with
// errors.Is.
var ErrPermissionDenied = &CaptureError{Reason: "camera permission denied"}

// EncodeError means the image could not be decoded or re-encoded.
// Callers must not proceed to analysis.
type EncodeError struct {
	Cause error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("image encode failed: %v", e.Cause)
}

func (e *EncodeError) Unwrap() error { return e.Cause }

// AnalysisError carries the capture mode so the caller can render
// mode-specific messaging. The router never retries.
type AnalysisError struct {
	Mode  CaptureMode
	Cause error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("analysis failed for mode %s: %v", e.Mode, e.Cause)
}

func (e *AnalysisError) Unwrap() error { return e.Cause }

// CommitError is scoped to a single destination. Other commits from the
// same user action are unaffected and must not be rolled back.
type CommitError struct {
	Destination Destination
	Cause       error
}

func (e *CommitError) Error() string {
	return fmt.Sprintf("commit to %s failed: %v", e.Destination, e.Cause)
}

func (e *CommitError) Unwrap() error { return e.Cause }
