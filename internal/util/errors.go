package util

import "errors"

// Sentinel errors for the failure kinds surfaced to callers.
// Wrap with fmt.Errorf("...: %w", ...) so errors.Is keeps working across layers.
var (
	// ErrInvalidInput indicates a record is missing required fields (empty id or title)
	ErrInvalidInput = errors.New("invalid input")

	// ErrSourceFileMissing indicates a song claims a sheet file that is absent on disk
	ErrSourceFileMissing = errors.New("source file missing")

	// ErrAmbiguousMatch indicates legacy-file recovery found multiple plausible songs
	ErrAmbiguousMatch = errors.New("ambiguous match")

	// ErrRemoteUnavailable indicates the cloud-synced database folder could not be
	// located, read, or written
	ErrRemoteUnavailable = errors.New("remote store unavailable")

	// ErrInvalidBackupFormat indicates a restore snapshot has an unrecognized type
	// tag or is missing required keys
	ErrInvalidBackupFormat = errors.New("invalid backup format")

	// ErrNotFound indicates a required record or file was not found
	ErrNotFound = errors.New("not found")
)
