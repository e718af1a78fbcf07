package model

import "time"

// Tip represents an anonymous tip. Tips carry no submitter identity at all.
type Tip struct {
	TipID     string    `json:"tipId" db:"tip_id"`
	Subject   string    `json:"subject" db:"subject"`
	Body      string    `json:"body" db:"body"`
	Category  string    `json:"category,omitempty" db:"category"`
	Location  string    `json:"location,omitempty" db:"location"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// CreateTipRequest represents a request to submit an anonymous tip.
type CreateTipRequest struct {
	Subject  string `json:"subject"`
	Body     string `json:"body"`
	Category string `json:"category,omitempty"`
	Location string `json:"location,omitempty"`
}

// Attachment records metadata for a file attached to a report. The content
// itself lives in the blob store under StorageKey.
type Attachment struct {
	AttachmentID string    `json:"attachmentId" db:"attachment_id"`
	ReportID     string    `json:"-" db:"report_id"`
	FileName     string    `json:"fileName" db:"file_name"`
	ContentType  string    `json:"contentType" db:"content_type"`
	Size         int64     `json:"size" db:"size"`
	StorageKey   string    `json:"-" db:"storage_key"`
	UploadedBy   string    `json:"uploadedBy" db:"uploaded_by"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}
