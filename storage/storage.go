// Package storage provides abstractions for persisting ytscout artifacts:
// the authenticated user's subscription list and ranked channel reports.
package storage

import (
	"context"
	"errors"
	"fmt"
)

// Sentinel errors for common storage conditions.
var (
	// ErrNotFound indicates the requested artifact was not found.
	ErrNotFound = errors.New("storage: not found")
	// ErrInvalidInput indicates invalid or malformed input was provided.
	ErrInvalidInput = errors.New("storage: invalid input")
	// ErrStorageCorrupt indicates data corruption was detected.
	ErrStorageCorrupt = errors.New("storage: data corruption detected")
	// ErrLockTimeout indicates a timeout acquiring a file lock.
	ErrLockTimeout = errors.New("storage: lock acquisition timeout")
)

// StorageError wraps storage errors with operation and entity context.
// Use errors.As() to extract this error type and get operation details:
//
//	var storErr *storage.StorageError
//	if errors.As(err, &storErr) {
//		fmt.Printf("Failed to %s %s %s: %v\n", storErr.Op, storErr.Entity, storErr.ID, storErr.Err)
//	}
type StorageError struct {
	// Op is the operation that failed ("read", "write", "lock").
	Op string
	// Entity is the artifact type ("subscriptions", "report").
	Entity string
	// ID is the artifact identifier if applicable.
	ID string
	// Err is the underlying error that occurred.
	Err error
}

func (e *StorageError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("storage: %s %s %s: %v", e.Op, e.Entity, e.ID, e.Err)
	}
	return fmt.Sprintf("storage: %s %s: %v", e.Op, e.Entity, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// SubscriptionStore persists the user's subscription list.
type SubscriptionStore interface {
	// SaveSubscriptions writes the subscription list along with its
	// plain-text companions (titles and URLs).
	SaveSubscriptions(ctx context.Context, list *SubscriptionList) error

	// LoadSubscriptions reads the saved subscription list.
	// Returns ErrNotFound if no list has been saved yet.
	LoadSubscriptions(ctx context.Context) (*SubscriptionList, error)
}

// ReportStore persists ranked channel reports.
type ReportStore interface {
	// SaveReport writes a report and returns the path it was written to.
	SaveReport(ctx context.Context, report *Report) (string, error)

	// LoadReport reads a previously saved report from the given path.
	LoadReport(ctx context.Context, path string) (*Report, error)
}

// Store combines all storage interfaces.
type Store interface {
	SubscriptionStore
	ReportStore

	// Close releases resources held by the store.
	Close() error
}
