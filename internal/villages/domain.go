package villages

import "time"

// Village is an administrative sub region (kelurahan) inside a district.
type Village struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	DistrictID string    `json:"district_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
