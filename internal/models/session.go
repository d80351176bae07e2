package models

import "time"

// Role distinguishes portal users.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleOfficer Role = "officer"
)

// Session is a signed-in portal user together with the registry token obtained at login.
type Session struct {
	ID            string          `json:"id"`
	Role          Role            `json:"role"`
	RegistryToken string          `json:"registry_token"`
	Officer       *OfficerProfile `json:"officer,omitempty"`
	Admin         *AdminProfile   `json:"admin,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	ExpiresAt     time.Time       `json:"expires_at"`
}

// DisplayName is the human name of the session holder.
func (s *Session) DisplayName() string {
	if s == nil {
		return ""
	}
	switch {
	case s.Officer != nil:
		return s.Officer.FullName
	case s.Admin != nil:
		if s.Admin.FullName != "" {
			return s.Admin.FullName
		}
		return s.Admin.Username
	}
	return ""
}
