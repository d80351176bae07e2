package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/noah-isme/id-portal/internal/dto"
	"github.com/noah-isme/id-portal/internal/models"
	"github.com/noah-isme/id-portal/internal/registry"
	appErrors "github.com/noah-isme/id-portal/pkg/errors"
)

type trackingRegistry interface {
	TrackApplication(ctx context.Context, number string) (*models.Application, error)
	OfficerApplications(ctx context.Context, officerID int) ([]models.Application, error)
	MarkCardArrived(ctx context.Context, id int) (string, error)
	MarkCardCollected(ctx context.Context, id int) (string, error)
}

// TrackingService answers status lookups and records card hand-over at stations.
type TrackingService struct {
	registry trackingRegistry
	logger   *zap.Logger
}

// NewTrackingService constructs a TrackingService.
func NewTrackingService(reg trackingRegistry, logger *zap.Logger) *TrackingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TrackingService{registry: reg, logger: logger}
}

// Track returns the public status of an application number.
func (s *TrackingService) Track(ctx context.Context, number string) (*dto.TrackingResponse, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, failWithNotice(appErrors.Clone(appErrors.ErrValidation, "Please enter an application number"), "")
	}
	app, err := s.registry.TrackApplication(ctx, number)
	if err != nil {
		return nil, failWithNotice(registryFailure(err, "Application not found"), "")
	}
	return &dto.TrackingResponse{
		ApplicationNumber: app.ApplicationNumber,
		FullNames:         app.FullNames,
		Status:            app.Status,
		StatusLabel:       app.Status.Label(),
		CreatedAt:         app.CreatedAt,
		UpdatedAt:         app.UpdatedAt,
	}, nil
}

// OfficerApplications lists the applications handled by the signed-in officer.
func (s *TrackingService) OfficerApplications(ctx context.Context, session *models.Session) ([]models.Application, error) {
	if session.Officer == nil {
		return nil, appErrors.ErrForbidden
	}
	apps, err := s.registry.OfficerApplications(registry.WithToken(ctx, session.RegistryToken), session.Officer.ID)
	if err != nil {
		return nil, failWithNotice(registryFailure(err, "Failed to fetch applications"), "")
	}
	if apps == nil {
		apps = []models.Application{}
	}
	return apps, nil
}

// MarkCardArrived records that a dispatched card reached the officer's station.
func (s *TrackingService) MarkCardArrived(ctx context.Context, session *models.Session, id int) (*dto.Notice, error) {
	if _, err := s.registry.MarkCardArrived(registry.WithToken(ctx, session.RegistryToken), id); err != nil {
		return nil, failWithNotice(registryFailure(err, "Failed to confirm card arrival"), "")
	}
	s.logger.Info("card arrived", zap.Int("application_id", id), zap.String("session_id", session.ID))
	return dto.Success("Success", "Card marked as ready for collection"), nil
}

// MarkCardCollected records that the holder collected the card.
func (s *TrackingService) MarkCardCollected(ctx context.Context, session *models.Session, id int) (*dto.Notice, error) {
	if _, err := s.registry.MarkCardCollected(registry.WithToken(ctx, session.RegistryToken), id); err != nil {
		return nil, failWithNotice(registryFailure(err, "Failed to confirm card collection"), "")
	}
	s.logger.Info("card collected", zap.Int("application_id", id), zap.String("session_id", session.ID))
	return dto.Success("Success", "Card marked as collected"), nil
}
