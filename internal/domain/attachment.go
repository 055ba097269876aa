package domain

import "time"

// Attachment is file metadata for a document stored in object storage. The
// bytes themselves live under Path in the blob store.
type Attachment struct {
	ID          string    `json:"id"`
	CaseID      string    `json:"case_id"`
	FileName    string    `json:"file_name"`
	Path        string    `json:"-"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedBy  string    `json:"uploaded_by"`
	CreatedAt   time.Time `json:"created_at"`
}
