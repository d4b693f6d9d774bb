package model

import "time"

// Document represents a stored file owned by a single user.
// This is a pure domain model with no database-specific dependencies or tags.
// It can be used across layers (HTTP, service, storage) without coupling to persistence.
//
// StoragePath is the unique key into the object store; the file-name extension
// embedded in it is the single source of truth for file-kind decisions
// (preview eligibility, display iconography).
type Document struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	StoragePath   string    `json:"storage_path"`
	FileSizeBytes int64     `json:"file_size_bytes"`
	CreatedBy     string    `json:"created_by"`
	CreatedAt     time.Time `json:"created_at"`
}
