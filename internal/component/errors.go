package component

import "errors"

var (
	// ErrDuplicateRegistration is returned when a component name is registered twice.
	ErrDuplicateRegistration = errors.New("component already registered")

	// ErrNotFound is returned when a component, interface or key is unknown.
	ErrNotFound = errors.New("not found")
)
