package model

import "time"

// Parsing status lifecycle: pending -> processing -> completed | failed.
// Completed and failed are terminal; retries are a dispatcher concern.
const (
	ParsingStatusPending    = "pending"
	ParsingStatusProcessing = "processing"
	ParsingStatusCompleted  = "completed"
	ParsingStatusFailed     = "failed"
)

type Document struct {
	ID            int64     `json:"id"`
	FundID        int64     `json:"fund_id"`
	FileName      string    `json:"file_name"`
	FileKey       string    `json:"file_key"`
	ParsingStatus string    `json:"parsing_status"`
	ErrorMessage  string    `json:"error_message,omitempty"`
	UploadedAt    time.Time `json:"uploaded_at"`
}
