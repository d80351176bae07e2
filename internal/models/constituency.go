package models

// Constituency is an administrative area officers are assigned to.
type Constituency struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	CreatedAt Timestamp `json:"created_at"`
}
