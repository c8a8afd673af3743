package backup

// RestoreOptions configures restoration.
type RestoreOptions struct {
	// UserID overrides the owner recorded in the manifest.
	UserID string
	// DryRun validates the archive without writing.
	DryRun bool
}
