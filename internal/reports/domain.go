// Package reports implements complaint reports and their categories.
package reports

import "time"

// Status is the review state of a report.
type Status string

const (
	// StatusPending marks a freshly submitted report.
	StatusPending Status = "pending"
	// StatusInProgress marks a report picked up by an administrator.
	StatusInProgress Status = "in_progress"
	// StatusResolved marks a completed report.
	StatusResolved Status = "resolved"
	// StatusRejected marks a dismissed report.
	StatusRejected Status = "rejected"
)

// Valid reports whether s is one of the accepted statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// Category groups reports by complaint type.
type Category struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Report is a citizen complaint record.
type Report struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	CategoryID  string    `json:"category_id"`
	DistrictID  string    `json:"district_id"`
	VillageID   string    `json:"village_id"`
	Description string    `json:"description"`
	FullAddress string    `json:"full_address"`
	ImageURLs   []string  `json:"image_urls"`
	DocumentURL string    `json:"document_url,omitempty"`
	Status      Status    `json:"status"`
	Feedback    string    `json:"feedback,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Denormalized display fields populated by list/get queries.
	ReporterName string `json:"reporter_name,omitempty"`
	CategoryName string `json:"category_name,omitempty"`
	DistrictName string `json:"district_name,omitempty"`
	VillageName  string `json:"village_name,omitempty"`
}
