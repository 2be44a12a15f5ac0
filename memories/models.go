package memories

import "time"

// Memory is one stored memory row.
type Memory struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Content          string    `json:"content"`
	Summary          string    `json:"summary,omitempty"`
	Tags             []string  `json:"tags,omitempty"`
	PersonalInfoType string    `json:"personal_info_type,omitempty"`
	Importance       float64   `json:"importance,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}
