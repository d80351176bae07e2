package handler

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
)

type receiptOpener interface {
	Open(token string) (*os.File, string, error)
}

// ReceiptHandler streams generated waiting cards through signed links.
type ReceiptHandler struct {
	receipts receiptOpener
}

// NewReceiptHandler constructs a receipt handler.
func NewReceiptHandler(receipts receiptOpener) *ReceiptHandler {
	return &ReceiptHandler{receipts: receipts}
}

// Download godoc
// @Summary Download waiting card
// @Tags LostID
// @Produce application/pdf
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /receipts/{token} [get]
func (h *ReceiptHandler) Download(c *gin.Context) {
	if h.receipts == nil {
		unavailable(c, "receipt")
		return
	}
	file, name, err := h.receipts.Open(c.Param("token"))
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.DataFromReader(http.StatusOK, info.Size(), "application/pdf", file, nil)
}
