package config

import "fmt"

// Error represents an invalid configuration value
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("config error: %s: %v", e.Message, e.Cause)
	}
	return "config error: " + e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}
