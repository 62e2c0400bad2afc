package controller

import "errors"

var (
	// ErrEmptyInput is returned when a blank comment is submitted.
	ErrEmptyInput = errors.New("comment cannot be empty")
	// ErrOperationPending is returned when a request is already in flight.
	ErrOperationPending = errors.New("an operation is already in progress")
	// ErrInvalidTrigger is returned when a trigger does not apply to the current state.
	ErrInvalidTrigger = errors.New("action not available in the current state")
	// ErrSelectionDisabled is returned for a selection from an empty list or out of range.
	ErrSelectionDisabled = errors.New("selection is not available")
	// ErrCommentDisabled is returned when the selected repository has no issues.
	ErrCommentDisabled = errors.New("comment entry is disabled")
	// ErrMissingCredentials is returned when loading without a username and secret.
	ErrMissingCredentials = errors.New("credentials are not set")
	// ErrClosed is returned by triggers after Close.
	ErrClosed = errors.New("controller is closed")
)
