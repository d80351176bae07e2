package models

// OfficerStatus is the approval state of a registration officer.
type OfficerStatus string

const (
	OfficerStatusPending   OfficerStatus = "pending"
	OfficerStatusApproved  OfficerStatus = "approved"
	OfficerStatusRejected  OfficerStatus = "rejected"
	OfficerStatusSuspended OfficerStatus = "suspended"
)

// Officer is a registration officer account.
type Officer struct {
	ID           int           `json:"id"`
	IDNumber     string        `json:"id_number,omitempty"`
	FullName     string        `json:"full_name"`
	Email        string        `json:"email"`
	PhoneNumber  string        `json:"phone_number,omitempty"`
	Station      string        `json:"station,omitempty"`
	Constituency string        `json:"constituency,omitempty"`
	Status       OfficerStatus `json:"status"`
	CreatedAt    Timestamp     `json:"created_at"`
}

// Usable reports whether the officer may sign in.
func (o Officer) Usable() bool {
	return o.Status == OfficerStatusApproved
}

// OfficerProfile is the profile the registry returns on officer login.
type OfficerProfile struct {
	ID           int    `json:"id"`
	Email        string `json:"email"`
	FullName     string `json:"fullName"`
	Station      string `json:"station"`
	Constituency string `json:"constituency"`
}

// AdminProfile is the profile the registry returns on admin login.
type AdminProfile struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName"`
}
