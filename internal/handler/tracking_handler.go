package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/id-portal/internal/dto"
	"github.com/noah-isme/id-portal/internal/models"
	"github.com/noah-isme/id-portal/pkg/response"
)

type trackingService interface {
	Track(ctx context.Context, number string) (*dto.TrackingResponse, error)
	OfficerApplications(ctx context.Context, session *models.Session) ([]models.Application, error)
	MarkCardArrived(ctx context.Context, session *models.Session, id int) (*dto.Notice, error)
	MarkCardCollected(ctx context.Context, session *models.Session, id int) (*dto.Notice, error)
}

// TrackingHandler serves public status lookups and station card hand-over.
type TrackingHandler struct {
	service trackingService
}

// NewTrackingHandler constructs a tracking handler.
func NewTrackingHandler(svc trackingService) *TrackingHandler {
	return &TrackingHandler{service: svc}
}

// Track godoc
// @Summary Track application
// @Tags Tracking
// @Produce json
// @Param number path string true "Application number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /track/{number} [get]
func (h *TrackingHandler) Track(c *gin.Context) {
	if h.service == nil {
		unavailable(c, "tracking")
		return
	}
	res, err := h.service.Track(c.Request.Context(), c.Param("number"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// OfficerApplications godoc
// @Summary Officer applications
// @Tags Tracking
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /officer/applications [get]
func (h *TrackingHandler) OfficerApplications(c *gin.Context) {
	if h.service == nil {
		unavailable(c, "tracking")
		return
	}
	session, ok := requireSession(c)
	if !ok {
		return
	}
	apps, err := h.service.OfficerApplications(c.Request.Context(), session)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, apps, map[string]interface{}{"total": len(apps)})
}

// CardArrived godoc
// @Summary Card arrived at station
// @Tags Tracking
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /officer/applications/{id}/card-arrived [post]
func (h *TrackingHandler) CardArrived(c *gin.Context) {
	h.mark(c, h.service.MarkCardArrived)
}

// CardCollected godoc
// @Summary Card collected by holder
// @Tags Tracking
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /officer/applications/{id}/card-collected [post]
func (h *TrackingHandler) CardCollected(c *gin.Context) {
	h.mark(c, h.service.MarkCardCollected)
}

func (h *TrackingHandler) mark(c *gin.Context, fn func(context.Context, *models.Session, int) (*dto.Notice, error)) {
	session, ok := requireSession(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	notice, err := fn(c.Request.Context(), session, id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"application_id": id}, noticeMeta(notice))
}
