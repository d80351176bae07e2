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

type lostIDService interface {
	Start(ctx context.Context, session *models.Session, idNumber string) (*dto.FlowResult, error)
	Search(ctx context.Context, session *models.Session, flowID, idNumber string) (*dto.FlowResult, error)
	AttachDocument(ctx context.Context, session *models.Session, flowID, kind string, upload service.DocumentUpload) (*dto.FlowResult, error)
	Submit(ctx context.Context, session *models.Session, flowID string, req dto.SubmitFlowRequest) (*dto.FlowResult, error)
	Pay(ctx context.Context, session *models.Session, flowID string, req dto.PaymentRequest) (*dto.FlowResult, error)
	Confirm(ctx context.Context, session *models.Session, flowID string) (*dto.ConfirmationResponse, error)
	Get(ctx context.Context, session *models.Session, flowID string) (*dto.FlowResponse, error)
}

// LostIDHandler exposes the lost-ID replacement flow to officers.
type LostIDHandler struct {
	service lostIDService
}

// NewLostIDHandler constructs a lost-ID handler.
func NewLostIDHandler(svc lostIDService) *LostIDHandler {
	return &LostIDHandler{service: svc}
}

// Start godoc
// @Summary Start lost ID replacement
// @Description Open a replacement flow by searching for the lost ID number
// @Tags LostID
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param payload body dto.StartFlowRequest true "ID number"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /lost-id/flows [post]
func (h *LostIDHandler) Start(c *gin.Context) {
	session, ok := h.ready(c)
	if !ok {
		return
	}
	var req dto.StartFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid search payload"))
		return
	}
	res, err := h.service.Start(c.Request.Context(), session, req.IDNumber)
	if err != nil {
		respondError(c, err)
		return
	}
	response.Created(c, res.Flow, noticeMeta(res.Notice))
}

// Get godoc
// @Summary Lost ID flow
// @Description Current stage of a replacement flow, with the receipt link once generated
// @Tags LostID
// @Produce json
// @Security BearerAuth
// @Param id path string true "Flow ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /lost-id/flows/{id} [get]
func (h *LostIDHandler) Get(c *gin.Context) {
	session, ok := h.ready(c)
	if !ok {
		return
	}
	res, err := h.service.Get(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// Search godoc
// @Summary Search again
// @Tags LostID
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Flow ID"
// @Param payload body dto.SearchRequest true "ID number"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /lost-id/flows/{id}/search [post]
func (h *LostIDHandler) Search(c *gin.Context) {
	session, ok := h.ready(c)
	if !ok {
		return
	}
	var req dto.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid search payload"))
		return
	}
	res, err := h.service.Search(c.Request.Context(), session, c.Param("id"), req.IDNumber)
	h.flowResult(c, res, err)
}

// AttachDocument godoc
// @Summary Upload document
// @Description Stage the OB photo, passport photo or birth certificate for the replacement
// @Tags LostID
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path string true "Flow ID"
// @Param kind path string true "ob_photo, passport_photo or birth_certificate"
// @Param file formData file true "Document"
// @Success 200 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /lost-id/flows/{id}/documents/{kind} [put]
func (h *LostIDHandler) AttachDocument(c *gin.Context) {
	session, ok := h.ready(c)
	if !ok {
		return
	}
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "failed to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	res, err := h.service.AttachDocument(c.Request.Context(), session, c.Param("id"), c.Param("kind"), service.DocumentUpload{
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
	h.flowResult(c, res, err)
}

// Submit godoc
// @Summary Submit replacement
// @Description Send the replacement application and its documents to the registry
// @Tags LostID
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Flow ID"
// @Param payload body dto.SubmitFlowRequest true "Form fields"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /lost-id/flows/{id}/submit [post]
func (h *LostIDHandler) Submit(c *gin.Context) {
	session, ok := h.ready(c)
	if !ok {
		return
	}
	var req dto.SubmitFlowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid submission payload"))
		return
	}
	res, err := h.service.Submit(c.Request.Context(), session, c.Param("id"), req)
	h.flowResult(c, res, err)
}

// Pay godoc
// @Summary Pay replacement fee
// @Description Record the renewal fee and submit the application for approval
// @Tags LostID
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Flow ID"
// @Param payload body dto.PaymentRequest true "Payment method"
// @Success 200 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /lost-id/flows/{id}/payment [post]
func (h *LostIDHandler) Pay(c *gin.Context) {
	session, ok := h.ready(c)
	if !ok {
		return
	}
	var req dto.PaymentRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payment payload"))
			return
		}
	}
	res, err := h.service.Pay(c.Request.Context(), session, c.Param("id"), req)
	h.flowResult(c, res, err)
}

// Confirm godoc
// @Summary Confirm replacement
// @Description Close a paid flow; the waiting card is generated in the background
// @Tags LostID
// @Produce json
// @Security BearerAuth
// @Param id path string true "Flow ID"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Router /lost-id/flows/{id}/confirm [post]
func (h *LostIDHandler) Confirm(c *gin.Context) {
	session, ok := h.ready(c)
	if !ok {
		return
	}
	res, err := h.service.Confirm(c.Request.Context(), session, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

func (h *LostIDHandler) ready(c *gin.Context) (*models.Session, bool) {
	if h.service == nil {
		unavailable(c, "lost ID")
		return nil, false
	}
	return requireSession(c)
}

func (h *LostIDHandler) flowResult(c *gin.Context, res *dto.FlowResult, err error) {
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res.Flow, noticeMeta(res.Notice))
}
