package session

import "errors"

// The four pipeline failure kinds. All of them collapse to the error state
// with one generic user-facing message; the specific kind is for internal
// logging and tests only.
var (
	ErrCapture   = errors.New("capture failed")
	ErrAnalysis  = errors.New("analysis failed")
	ErrSynthesis = errors.New("speech synthesis failed")
	ErrDecode    = errors.New("audio decode failed")
)

// Control-flow errors surfaced to callers of the controller API.
var (
	ErrBusy         = errors.New("a session pipeline is already in flight")
	ErrNotRecording = errors.New("no recording in progress")
	ErrNoResult     = errors.New("no completed result")
)

// GenericErrorMessage is the only error text shown to the user. Raw
// service errors never leave the logs.
const GenericErrorMessage = "We couldn't reflect on your moment this time. Please try again."
