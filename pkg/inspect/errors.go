package inspect

import (
	"errors"
	"fmt"

	"github.com/faultlens/faultlens/pkg/inspect/session"
)

// Sentinel errors for turn preconditions.
var (
	// ErrEmptySessionID indicates a request without a session key.
	ErrEmptySessionID = errors.New("session ID cannot be empty")

	// ErrEmptyDescription indicates a turn without a user message.
	ErrEmptyDescription = errors.New("description cannot be empty")

	// ErrMissingReference indicates a fresh inspection was requested for a
	// session with no registered reference image.
	ErrMissingReference = errors.New("no reference image registered for session")
)

// PreconditionError indicates a request was rejected before any collaborator
// was invoked. Callers can render these differently from analysis failures.
type PreconditionError struct {
	// SessionID is the session the request addressed.
	SessionID string
	// Err is the violated precondition (ErrEmptyDescription, ...).
	Err error
}

// Error implements the error interface.
func (e *PreconditionError) Error() string {
	return fmt.Sprintf("session %s: precondition: %v", e.SessionID, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// StageError wraps a failure from a pipeline stage with stage context.
type StageError struct {
	// Stage is the stage that failed.
	Stage Stage
	// Op is the operation that failed (e.g. "execute").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %s: %v", e.Stage, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *StageError) Unwrap() error {
	return e.Err
}

// PanicError captures a panic recovered during stage execution.
type PanicError struct {
	// Stage is the stage that panicked.
	Stage Stage
	// Value is the value passed to panic().
	Value any
	// Stack is the stack trace at the point of panic.
	Stack string
}

// Error implements the error interface.
func (e *PanicError) Error() string {
	return fmt.Sprintf("stage %s panicked: %v", e.Stage, e.Value)
}

// SessionError wraps a session store failure. Store failures are fatal for
// the turn; the only implicit recovery is create-if-absent on first contact.
type SessionError struct {
	// SessionID is the affected session key.
	SessionID string
	// Op is the operation that failed ("load", "decode", "encode", "save").
	Op string
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *SessionError) Error() string {
	return fmt.Sprintf("session %s: %s: %v", e.SessionID, e.Op, e.Err)
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *SessionError) Unwrap() error {
	return e.Err
}

// CancellationError captures the stage at which a turn was abandoned
// because the caller's context was done.
type CancellationError struct {
	// Stage is the stage that was about to execute.
	Stage Stage
	// Cause is context.Canceled or context.DeadlineExceeded.
	Cause error
}

// Error implements the error interface.
func (e *CancellationError) Error() string {
	return fmt.Sprintf("cancelled before stage %s: %v", e.Stage, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *CancellationError) Unwrap() error {
	return e.Cause
}

// User-visible messages for the error taxonomy. Internal collaborator error
// text is never surfaced through these.
const (
	msgMissingData     = "Required information is missing. Please check the order ID, description, and photos, and try again."
	msgUnavailable     = "The analysis system is temporarily unavailable. Please try again in a moment."
	msgSessionUnknown  = "No inspection was found for this order."
	msgTurnInterrupted = "The request was interrupted before it completed. Please try again."
)

// UserMessage maps an Invoke error to a single human-readable string,
// distinguishing missing data, analysis unavailability, and unknown
// sessions. It never leaks collaborator error text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var pre *PreconditionError
	if errors.As(err, &pre) {
		return msgMissingData
	}

	var ce *CancellationError
	if errors.As(err, &ce) {
		return msgTurnInterrupted
	}

	var se *SessionError
	if errors.As(err, &se) {
		if errors.Is(se.Err, session.ErrNotFound) {
			return msgSessionUnknown
		}
		return msgUnavailable
	}

	// Stage failures, panics, and anything unclassified read as an
	// analysis outage to the user.
	return msgUnavailable
}
