package util

import (
	"errors"
	"regexp"
)

// Global var used to strips ansi sequences
var reANSIEscapeChars = regexp.MustCompile("\x1B\\[(?:[0-9]{1,2}(?:;[0-9]{1,2})?)*[a-zA-Z]")

// StripANSISequence strips ANSI escape sequences from the given string
func StripANSISequence(s string) string {
	return reANSIEscapeChars.ReplaceAllString(s, "")
}

type exitStatuser interface {
	ExitStatus() int
}

// ExitError carries the process exit status for an error.
type ExitError struct {
	status int
	err    error
}

// NewExitError wraps err so that GetExitStatus reports status for it.
func NewExitError(status int, err error) *ExitError {
	return &ExitError{status: status, err: err}
}

func (e *ExitError) Error() string {
	if e.err == nil {
		return "exit status"
	}
	return e.err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.err
}

// ExitStatus returns the exit status.
func (e *ExitError) ExitStatus() int {
	return e.status
}

// GetExitStatus finds the exit status attached to err or anything it
// wraps. Errors without one report 1.
func GetExitStatus(err error) (int, bool) {
	var ese exitStatuser
	if errors.As(err, &ese) {
		return ese.ExitStatus(), true
	}
	return 1, false
}
