package models

import "fmt"

// PaymentMethod is how a replacement fee is paid.
type PaymentMethod string

const (
	PaymentMethodCash  PaymentMethod = "cash"
	PaymentMethodMpesa PaymentMethod = "mpesa"
)

// Valid reports whether the method is accepted.
func (m PaymentMethod) Valid() bool {
	return m == PaymentMethodCash || m == PaymentMethodMpesa
}

// PaymentStatusPending is the only status the portal creates payments with.
const PaymentStatusPending = "pending"

// Payment is the body sent to the registry when recording a fee.
type Payment struct {
	ApplicationID int           `json:"application_id"`
	Amount        int           `json:"amount"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	Status        string        `json:"status"`
}

// PaymentReference renders the receipt reference shown to applicants.
func PaymentReference(paymentID int) string {
	return fmt.Sprintf("PAY%d", paymentID)
}
