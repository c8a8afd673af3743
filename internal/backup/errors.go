// Package backup writes one user's humidor data to a zip archive and
// restores it, possibly into a store with a different driver.
package backup

import "errors"

var (
	// ErrInvalidManifest indicates the manifest is missing or malformed.
	ErrInvalidManifest = errors.New("invalid or missing manifest")

	// ErrVersionMismatch indicates the backup version is not supported.
	ErrVersionMismatch = errors.New("backup version not supported")

	// ErrCorruptedBackup indicates the archive contents disagree with the manifest.
	ErrCorruptedBackup = errors.New("backup integrity check failed")

	// ErrTargetNotEmpty indicates the restore target already holds data.
	ErrTargetNotEmpty = errors.New("restore target is not empty")
)
