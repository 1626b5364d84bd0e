package models

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidPage     = errors.New("page out of range")
	ErrInvalidPageSize = errors.New("page size out of range")
	ErrInvalidSort     = errors.New("sort must be accuracy or recency")
	ErrEmptyQuery      = errors.New("query is empty")
	ErrSessionClosed   = errors.New("session closed")
	ErrNotFound        = errors.New("not found")
)

// TransportError reports a network or HTTP failure talking to the search API
type TransportError struct {
	Kind       Kind
	Op         string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: status %d: %v", e.Op, e.Kind.Label(), e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Kind.Label(), e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StorageError reports a failure reading or writing local persistence
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}
