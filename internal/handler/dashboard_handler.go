package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/id-portal/internal/dto"
	"github.com/noah-isme/id-portal/internal/models"
	"github.com/noah-isme/id-portal/internal/service"
	appErrors "github.com/noah-isme/id-portal/pkg/errors"
	"github.com/noah-isme/id-portal/pkg/response"
)

type dashboardService interface {
	Load(ctx context.Context, session *models.Session) (*dto.DashboardResponse, error)
	Execute(ctx context.Context, session *models.Session, cmd service.Command) (*dto.CommandResponse, *dto.Notice, error)
	ApplicationDetail(ctx context.Context, session *models.Session, id int) (*dto.ApplicationDetailResponse, error)
}

// DashboardHandler serves the admin dashboard and its actions.
type DashboardHandler struct {
	service dashboardService
}

// NewDashboardHandler constructs a dashboard handler.
func NewDashboardHandler(svc dashboardService) *DashboardHandler {
	return &DashboardHandler{service: svc}
}

// Load godoc
// @Summary Admin dashboard
// @Description Load every dashboard collection concurrently. Collections that fail carry their own error notice.
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Failure 403 {object} response.Envelope
// @Router /admin/dashboard [get]
func (h *DashboardHandler) Load(c *gin.Context) {
	if h.service == nil {
		unavailable(c, "dashboard")
		return
	}
	session, ok := requireSession(c)
	if !ok {
		return
	}
	res, err := h.service.Load(c.Request.Context(), session)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// ApplicationDetail godoc
// @Summary Application details
// @Description Full application with resolved document URLs
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/applications/{id} [get]
func (h *DashboardHandler) ApplicationDetail(c *gin.Context) {
	if h.service == nil {
		unavailable(c, "dashboard")
		return
	}
	session, ok := requireSession(c)
	if !ok {
		return
	}
	id, ok := idParam(c)
	if !ok {
		return
	}
	res, err := h.service.ApplicationDetail(c.Request.Context(), session, id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// ApproveOfficer godoc
// @Summary Approve officer
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Officer ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/officers/{id}/approve [post]
func (h *DashboardHandler) ApproveOfficer(c *gin.Context) { h.byID(c, service.ApproveOfficer) }

// RejectOfficer godoc
// @Summary Reject officer
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Officer ID"
// @Success 200 {object} response.Envelope
// @Router /admin/officers/{id}/reject [post]
func (h *DashboardHandler) RejectOfficer(c *gin.Context) { h.byID(c, service.RejectOfficer) }

// SuspendOfficer godoc
// @Summary Suspend officer
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Officer ID"
// @Success 200 {object} response.Envelope
// @Router /admin/officers/{id}/suspend [post]
func (h *DashboardHandler) SuspendOfficer(c *gin.Context) { h.byID(c, service.SuspendOfficer) }

// UnsuspendOfficer godoc
// @Summary Reactivate officer
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Officer ID"
// @Success 200 {object} response.Envelope
// @Router /admin/officers/{id}/unsuspend [post]
func (h *DashboardHandler) UnsuspendOfficer(c *gin.Context) { h.byID(c, service.UnsuspendOfficer) }

// DeleteOfficer godoc
// @Summary Delete officer
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Officer ID"
// @Success 200 {object} response.Envelope
// @Router /admin/officers/{id} [delete]
func (h *DashboardHandler) DeleteOfficer(c *gin.Context) { h.byID(c, service.DeleteOfficer) }

// ApproveApplication godoc
// @Summary Approve application
// @Description Approve a submitted application; the response carries the issued ID number
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /admin/applications/{id}/approve [post]
func (h *DashboardHandler) ApproveApplication(c *gin.Context) { h.byID(c, service.ApproveApplication) }

// RejectApplication godoc
// @Summary Reject application
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /admin/applications/{id}/reject [post]
func (h *DashboardHandler) RejectApplication(c *gin.Context) { h.byID(c, service.RejectApplication) }

// PrintApplication godoc
// @Summary Print ID card
// @Description Send an approved card to the dispatch queue
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /admin/applications/{id}/print [post]
func (h *DashboardHandler) PrintApplication(c *gin.Context) { h.byID(c, service.PrintApplication) }

// DispatchApplication godoc
// @Summary Dispatch ID card
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} response.Envelope
// @Router /admin/applications/{id}/dispatch [post]
func (h *DashboardHandler) DispatchApplication(c *gin.Context) { h.byID(c, service.DispatchApplication) }

// DeleteConstituency godoc
// @Summary Delete constituency
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Constituency ID"
// @Success 200 {object} response.Envelope
// @Router /admin/constituencies/{id} [delete]
func (h *DashboardHandler) DeleteConstituency(c *gin.Context) { h.byID(c, service.DeleteConstituency) }

// AddConstituency godoc
// @Summary Add constituency
// @Tags Admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.AddConstituencyRequest true "Constituency"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /admin/constituencies [post]
func (h *DashboardHandler) AddConstituency(c *gin.Context) {
	var req dto.AddConstituencyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid constituency payload"))
		return
	}
	h.execute(c, service.AddConstituency(req.Name))
}

func (h *DashboardHandler) byID(c *gin.Context, build func(id int) service.Command) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	h.execute(c, build(id))
}

func (h *DashboardHandler) execute(c *gin.Context, cmd service.Command) {
	if h.service == nil {
		unavailable(c, "dashboard")
		return
	}
	session, ok := requireSession(c)
	if !ok {
		return
	}
	res, notice, err := h.service.Execute(c.Request.Context(), session, cmd)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res, noticeMeta(notice))
}
