package registry

import (
	"context"
	"net/http"

	"github.com/noah-isme/id-portal/internal/models"
)

type paymentBody struct {
	PaymentID int `json:"paymentId"`
}

// CreatePayment records a payment and returns its id.
func (c *Client) CreatePayment(ctx context.Context, payment models.Payment) (int, error) {
	var body paymentBody
	if err := c.sendJSON(ctx, "payments.create", http.MethodPost, "/api/payments", payment, "Payment processing failed", &body); err != nil {
		return 0, err
	}
	return body.PaymentID, nil
}
