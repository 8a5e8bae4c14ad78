package types

import (
	"time"

	"github.com/google/uuid"
)

// StoredResume is a persisted resume row as read back from storage
type StoredResume struct {
	ID         uuid.UUID       `json:"id"`
	Filename   string          `json:"filename"`
	Extracted  ResumeRecord    `json:"extracted_json"`
	Validation Validation      `json:"validation"`
	Report     ATSReport       `json:"ats_report"`
	Enhanced   *EnhancedResume `json:"enhanced_json,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
}

// StoredResumeSummary is a lightweight listing view of a stored resume
type StoredResumeSummary struct {
	ID        uuid.UUID `json:"id"`
	Filename  string    `json:"filename"`
	Name      string    `json:"name"`
	ATSScore  int       `json:"ats_score"`
	Enhanced  bool      `json:"enhanced"`
	CreatedAt time.Time `json:"created_at"`
}
