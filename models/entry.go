package models

import "time"

// Entry represents a single file or folder in the user's drive
type Entry struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Filename string  `json:"filename,omitempty"`
	IsFolder bool    `json:"is_folder"`
	Size     int64   `json:"size,omitempty"`
	ParentID *string `json:"parent_id,omitempty"`
}

// DisplayName returns the shown name. Some service builds populate
// "filename" instead of "name".
func (e Entry) DisplayName() string {
	if e.Name != "" {
		return e.Name
	}
	return e.Filename
}

// VersionRecord represents one stored version of a file
type VersionRecord struct {
	ID            string    `json:"id"`
	VersionNumber int       `json:"version_number"`
	UploadedAt    time.Time `json:"uploaded_at"`
	Size          int64     `json:"size"`
}
