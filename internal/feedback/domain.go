package feedback

import "time"

// Entry is a piece of general feedback submitted through the public form,
// without requiring an account.
type Entry struct {
	ID           string    `json:"id"`
	UserName     string    `json:"user_name"`
	UserEmail    string    `json:"user_email"`
	UserImageURL string    `json:"user_image_url,omitempty"`
	Description  string    `json:"description"`
	Location     string    `json:"location,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
