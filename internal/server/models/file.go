// Package models defines server-side data models persisted in the database.
package models

import "time"

// File is the metadata record of an uploaded document. The bytes live in
// the storage gateway under Path.
type File struct {
	ID       int64
	Filename string
	// Path is the storage key inside the gateway. It must never reach a
	// client or a log line.
	Path       string
	UploadedBy int64
	Size       int64
	// Checksum is the hex BLAKE3 digest of the content.
	Checksum  string
	CreatedAt time.Time
}
