package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/id-portal/internal/dto"
	"github.com/noah-isme/id-portal/internal/models"
	"github.com/noah-isme/id-portal/pkg/response"
)

type previewService interface {
	Preview(ctx context.Context, session *models.Session, id int) (*dto.CardPreviewResponse, error)
	RenderPDF(ctx context.Context, session *models.Session, id int) ([]byte, string, error)
}

// PreviewHandler renders ID cards for review before printing.
type PreviewHandler struct {
	service previewService
}

// NewPreviewHandler constructs a preview handler.
func NewPreviewHandler(svc previewService) *PreviewHandler {
	return &PreviewHandler{service: svc}
}

// Preview godoc
// @Summary ID card preview
// @Description Both faces of the card including the machine-readable zone
// @Tags Admin
// @Produce json
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /admin/applications/{id}/card [get]
func (h *PreviewHandler) Preview(c *gin.Context) {
	if h.service == nil {
		unavailable(c, "preview")
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
	res, err := h.service.Preview(c.Request.Context(), session, id)
	if err != nil {
		respondError(c, err)
		return
	}
	response.JSON(c, http.StatusOK, res)
}

// PDF godoc
// @Summary Printable ID card
// @Tags Admin
// @Produce application/pdf
// @Security BearerAuth
// @Param id path int true "Application ID"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /admin/applications/{id}/card.pdf [get]
func (h *PreviewHandler) PDF(c *gin.Context) {
	if h.service == nil {
		unavailable(c, "preview")
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
	data, name, err := h.service.RenderPDF(c.Request.Context(), session, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", name))
	c.Data(http.StatusOK, "application/pdf", data)
}
