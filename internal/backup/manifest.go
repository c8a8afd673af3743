package backup

import "time"

// FormatVersion is the backup format version. Increment on breaking changes.
const FormatVersion = "1"

// Archive entry names.
const (
	manifestPath = "manifest.json"
	cigarsPath   = "entities/cigars.jsonl"
	archivePath  = "entities/archive.jsonl"
	activePath   = "entities/active.jsonl"
)

// Manifest describes backup contents and metadata.
type Manifest struct {
	Version   string    `json:"version"`
	CreatedAt time.Time `json:"created_at"`

	// Source of the data.
	UserID string `json:"user_id"`
	Driver string `json:"driver"`

	Counts EntityCounts `json:"counts"`
}

// EntityCounts tracks entity counts for validation and reporting.
type EntityCounts struct {
	Cigars   int `json:"cigars"`
	Archived int `json:"archived"`
	Active   int `json:"active"`
}
