package districts

import "time"

// District is an administrative region (kecamatan) reports are filed against.
type District struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
