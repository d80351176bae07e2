package dto

import (
	"github.com/noah-isme/id-portal/internal/models"
	"github.com/noah-isme/id-portal/pkg/idcard"
)

// CardPreviewResponse pairs an application with its rendered card faces.
type CardPreviewResponse struct {
	ApplicationID     int                      `json:"application_id"`
	ApplicationNumber string                   `json:"application_number"`
	Status            models.ApplicationStatus `json:"status"`
	Card              idcard.Card              `json:"card"`
}
