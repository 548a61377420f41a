package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInternalServerError will throw if any the Internal Server Error happen
	ErrInternalServerError = errors.New("internal Server Error")
	// ErrNotFound will throw if the requested item is not exists
	ErrNotFound = errors.New("your requested Item is not found")
	// ErrConflict will throw if the current action already exists
	ErrConflict = errors.New("your Item already exist")
	// ErrBadParamInput will throw if the given request-body or params is not valid
	ErrBadParamInput = errors.New("given Param is not valid")
	// ErrCacheMiss is returned by caches when the key has not been loaded yet
	ErrCacheMiss = errors.New("cache miss")

	// ErrUnauthenticated means the action needs a principal and none was resolved.
	// Callers should send the user to authentication; nothing is retried.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrForbidden means the principal is known but does not own the resource
	ErrForbidden = errors.New("you are not allowed to do this")
	// ErrValidation is returned when a required field is blank or out of range
	ErrValidation = errors.New("validation failed")
	// ErrConflictRecovered marks a uniqueness violation on like insert.
	// The ledger converts it to success and it never leaves the usecase layer.
	ErrConflictRecovered = errors.New("like already present")
	// ErrStoreUnavailable wraps transient store failures. Optimistic views roll back on it.
	ErrStoreUnavailable = errors.New("store unavailable, please retry later")
)

var known = []error{
	ErrNotFound, ErrConflict, ErrBadParamInput, ErrUnauthenticated,
	ErrForbidden, ErrValidation, ErrStoreUnavailable,
}

// StoreError passes domain errors through and wraps anything else coming
// back from a store as ErrStoreUnavailable.
func StoreError(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range known {
		if errors.Is(err, k) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
