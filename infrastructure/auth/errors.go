package auth

import "errors"

var (
	// ErrInteractiveFlowUsed is returned when a second browser authorization is attempted
	ErrInteractiveFlowUsed = errors.New("interactive authorization already performed in this process")

	// ErrStateMismatch is returned when the callback state does not match the request
	ErrStateMismatch = errors.New("oauth callback state mismatch")

	// ErrNoCode is returned when the callback carries no authorization code
	ErrNoCode = errors.New("no authorization code received")

	// ErrNoBrowser is returned when no URL handler is installed
	ErrNoBrowser = errors.New("no browser opener found")
)
