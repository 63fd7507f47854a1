// Package catalog holds the immutable course and role requirement catalog.
package catalog

import "fmt"

// Error represents an error that occurs while loading or building the catalog
type Error struct {
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}
