package ytscout

import (
	"ytscout/auth"
	"ytscout/storage"
	"ytscout/youtube"
)

// Error handling types exported for library users.
//
// All error types support the standard error handling patterns:
//
// Using errors.Is() for sentinel errors:
//
//	if errors.Is(err, ytscout.ErrChannelNotFound) {
//		fmt.Println("Channel not found")
//	}
//
// Using errors.As() for wrapped errors:
//
//	var provErr *ytscout.ProviderError
//	if errors.As(err, &provErr) {
//		fmt.Printf("%s %s failed: %v\n", provErr.Op, provErr.ID, provErr.Err)
//	}

// Type aliases for convenient error handling.
type (
	// ProviderError wraps errors from YouTube metadata operations.
	ProviderError = youtube.ProviderError
	// StorageError wraps errors during artifact persistence.
	StorageError = storage.StorageError
)

// Sentinel errors exported from sub-packages.
var (
	// ErrChannelNotFound indicates the YouTube channel does not exist.
	ErrChannelNotFound = youtube.ErrChannelNotFound
	// ErrVideoNotFound indicates the YouTube video does not exist.
	ErrVideoNotFound = youtube.ErrVideoNotFound
	// ErrRateLimited indicates the API rejected a call for pacing reasons.
	ErrRateLimited = youtube.ErrRateLimited
	// ErrQuotaExhausted indicates the daily API unit budget is spent.
	ErrQuotaExhausted = youtube.ErrQuotaExhausted
	// ErrNetworkTimeout indicates a network timeout occurred.
	ErrNetworkTimeout = youtube.ErrNetworkTimeout
	// ErrNoCredentials indicates the client was built without an API key
	// or OAuth client.
	ErrNoCredentials = youtube.ErrNoCredentials
	// ErrOAuthRequired indicates an account-scoped call was made on an
	// API-key-only client.
	ErrOAuthRequired = youtube.ErrOAuthRequired
	// ErrBackendDown indicates the circuit breaker is refusing calls to
	// a failing backend.
	ErrBackendDown = youtube.ErrBackendDown

	// Storage errors.

	// ErrNotFound indicates an artifact was not found in storage.
	ErrNotFound = storage.ErrNotFound
	// ErrInvalidInput indicates invalid input was provided.
	ErrInvalidInput = storage.ErrInvalidInput
	// ErrStorageCorrupt indicates data corruption was detected.
	ErrStorageCorrupt = storage.ErrStorageCorrupt
	// ErrLockTimeout indicates a timeout acquiring a file lock.
	ErrLockTimeout = storage.ErrLockTimeout

	// ErrSetupRequired indicates OAuth client secrets are missing; see
	// auth.SetupInstructions.
	ErrSetupRequired = auth.ErrSetupRequired
)
