// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package canvas

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an element id or template id does not resolve.
var ErrNotFound = errors.New("not found")

// ValidationError reports missing or invalid user input. The operation that
// returned it made no state change.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// IOError wraps a failed read, upload or network call.
type IOError struct {
	Op  string
	Err error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// IsValidation reports whether err is or wraps a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsIO reports whether err is or wraps an *IOError.
func IsIO(err error) bool {
	var e *IOError
	return errors.As(err, &e)
}
