package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/id-portal/internal/dto"
	"github.com/noah-isme/id-portal/internal/models"
	"github.com/noah-isme/id-portal/internal/registry"
	"github.com/noah-isme/id-portal/pkg/idcard"
)

type previewRegistry interface {
	Application(ctx context.Context, id int) (*models.Application, error)
	BaseURL() string
}

type cardSheetRenderer interface {
	Render(card idcard.Card) ([]byte, error)
}

// PreviewService renders ID cards for admins checking an approved application before print.
type PreviewService struct {
	registry previewRegistry
	renderer cardSheetRenderer
	logger   *zap.Logger
	now      func() time.Time
}

// NewPreviewService constructs a PreviewService.
func NewPreviewService(reg previewRegistry, renderer cardSheetRenderer, logger *zap.Logger) *PreviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreviewService{registry: reg, renderer: renderer, logger: logger, now: time.Now}
}

// Preview fetches an application and composes both faces of its card.
func (s *PreviewService) Preview(ctx context.Context, session *models.Session, id int) (*dto.CardPreviewResponse, error) {
	app, err := s.registry.Application(registry.WithToken(ctx, session.RegistryToken), id)
	if err != nil {
		return nil, failWithNotice(registryFailure(err, "Failed to fetch application details"), "")
	}

	return &dto.CardPreviewResponse{
		ApplicationID:     app.ID,
		ApplicationNumber: app.ApplicationNumber,
		Status:            app.Status,
		Card:              idcard.Compose(cardRecord(app), s.now(), s.registry.BaseURL()),
	}, nil
}

// RenderPDF produces a printable sheet with both card faces.
func (s *PreviewService) RenderPDF(ctx context.Context, session *models.Session, id int) ([]byte, string, error) {
	preview, err := s.Preview(ctx, session, id)
	if err != nil {
		return nil, "", err
	}
	data, err := s.renderer.Render(preview.Card)
	if err != nil {
		s.logger.Error("render card sheet", zap.Int("application_id", id), zap.Error(err))
		return nil, "", err
	}
	return data, "id-card-" + preview.ApplicationNumber + ".pdf", nil
}

func cardRecord(app *models.Application) idcard.Record {
	docs := make([]idcard.Document, 0, len(app.Documents))
	for _, doc := range app.Documents {
		docs = append(docs, idcard.Document{Type: doc.DocumentType, FilePath: doc.FilePath})
	}
	return idcard.Record{
		Holder: idcard.Holder{
			IDNumber:    app.GeneratedIDNumber,
			FullName:    app.FullNames,
			Gender:      app.Gender,
			DateOfBirth: app.DateOfBirth.Time,
		},
		DistrictOfBirth: app.DistrictOfBirth,
		HomeDistrict:    app.HomeDistrict,
		Division:        app.Division,
		Location:        app.Location,
		SubLocation:     app.SubLocation,
		Documents:       docs,
	}
}
