package users

import "time"

// User represents a citizen or administrator account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name,omitempty"`
	NIK          string    `json:"nik,omitempty"`
	PhoneNumber  string    `json:"phone_number,omitempty"`
	Address      string    `json:"address,omitempty"`
	ImageURL     string    `json:"image_url,omitempty"`
	Role         string    `json:"role"`
	IsVerified   bool      `json:"is_verified"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasPassword reports whether the account can log in with credentials.
// OAuth-only accounts carry no password hash.
func (u User) HasPassword() bool {
	return u.PasswordHash != ""
}
