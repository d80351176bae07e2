package dto

import "github.com/noah-isme/id-portal/internal/models"

// TrackingResponse is the public status of an application.
type TrackingResponse struct {
	ApplicationNumber string                   `json:"application_number"`
	FullNames         string                   `json:"full_names"`
	Status            models.ApplicationStatus `json:"status"`
	StatusLabel       string                   `json:"status_label"`
	CreatedAt         models.Timestamp         `json:"created_at"`
	UpdatedAt         models.Timestamp         `json:"updated_at"`
}
