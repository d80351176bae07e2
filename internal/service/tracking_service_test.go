package service

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/id-portal/internal/models"
	"github.com/noah-isme/id-portal/internal/registry"
	appErrors "github.com/noah-isme/id-portal/pkg/errors"
)

type fakeTrackingRegistry struct {
	app       *models.Application
	apps      []models.Application
	err       error
	officerID int
	marked    []string
	token     string
}

func (f *fakeTrackingRegistry) TrackApplication(_ context.Context, number string) (*models.Application, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.app, nil
}

func (f *fakeTrackingRegistry) OfficerApplications(ctx context.Context, officerID int) ([]models.Application, error) {
	f.officerID = officerID
	f.token = registry.TokenFromContext(ctx)
	return f.apps, f.err
}

func (f *fakeTrackingRegistry) MarkCardArrived(_ context.Context, id int) (string, error) {
	f.marked = append(f.marked, "arrived")
	return "", f.err
}

func (f *fakeTrackingRegistry) MarkCardCollected(_ context.Context, id int) (string, error) {
	f.marked = append(f.marked, "collected")
	return "", f.err
}

func TestTrackReturnsStatusLabel(t *testing.T) {
	reg := &fakeTrackingRegistry{app: &models.Application{ApplicationNumber: "APP-1", FullNames: "Jane Doe", Status: models.ApplicationStatusReadyForCollection}}
	svc := NewTrackingService(reg, nil)

	resp, err := svc.Track(context.Background(), " APP-1 ")
	require.NoError(t, err)
	assert.Equal(t, "Ready for Collection", resp.StatusLabel)
	assert.Equal(t, "Jane Doe", resp.FullNames)
}

func TestTrackNotFound(t *testing.T) {
	reg := &fakeTrackingRegistry{err: &registry.Error{Kind: registry.KindAPI, Status: http.StatusNotFound, Message: "Application not found"}}
	svc := NewTrackingService(reg, nil)

	_, err := svc.Track(context.Background(), "APP-404")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, http.StatusNotFound, appErr.Status)
	assert.Equal(t, "Application not found", appErr.Message)

	_, err = svc.Track(context.Background(), " ")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestOfficerApplicationsUsesSessionOfficer(t *testing.T) {
	reg := &fakeTrackingRegistry{}
	svc := NewTrackingService(reg, nil)

	apps, err := svc.OfficerApplications(context.Background(), officerSession)
	require.NoError(t, err)
	assert.NotNil(t, apps)
	assert.Equal(t, 3, reg.officerID)
	assert.Equal(t, "officer-token", reg.token)

	_, err = svc.OfficerApplications(context.Background(), adminSession)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestMarkCardTransitions(t *testing.T) {
	reg := &fakeTrackingRegistry{}
	svc := NewTrackingService(reg, nil)

	notice, err := svc.MarkCardArrived(context.Background(), officerSession, 5)
	require.NoError(t, err)
	assert.Equal(t, "Card marked as ready for collection", notice.Description)

	_, err = svc.MarkCardCollected(context.Background(), officerSession, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"arrived", "collected"}, reg.marked)

	reg.err = &registry.Error{Kind: registry.KindAPI, Status: http.StatusBadRequest}
	_, err = svc.MarkCardCollected(context.Background(), officerSession, 5)
	require.Error(t, err)
	assert.Equal(t, "Failed to confirm card collection", appErrors.FromError(err).Message)
}
