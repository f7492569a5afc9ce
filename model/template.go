package model

import (
	"time"
)

// Template is one registered quotation template: the stored .docx filename
// plus the placeholder names extracted at registration time. Entries are only
// mutated through explicit re-registration (reload).
type Template struct {
	ID        string    `json:"id"`
	Filename  string    `json:"nombre"`
	Variables []string  `json:"variables"`
	Tenant    string    `json:"tenant,omitempty"`
	SourceURL string    `json:"source_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
