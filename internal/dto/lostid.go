package dto

import (
	"time"

	"github.com/noah-isme/id-portal/internal/models"
)

// StartFlowRequest begins a lost-ID replacement with a search.
type StartFlowRequest struct {
	IDNumber string `json:"id_number"`
}

// SearchRequest repeats the search within an existing flow.
type SearchRequest struct {
	IDNumber string `json:"id_number"`
}

// SubmitFlowRequest supplies the remaining form fields.
type SubmitFlowRequest struct {
	OBNumber     string `json:"ob_number"`
	Constituency string `json:"constituency"`
}

// PaymentRequest selects how the fee is paid.
type PaymentRequest struct {
	PaymentMethod models.PaymentMethod `json:"payment_method" validate:"required,oneof=cash mpesa"`
}

// StagedDocumentView describes an uploaded document.
type StagedDocumentView struct {
	Kind     string    `json:"kind"`
	FileName string    `json:"file_name"`
	Size     int64     `json:"size"`
	Uploaded time.Time `json:"uploaded_at"`
}

// FlowResponse is the client view of a lost-ID flow.
type FlowResponse struct {
	ID                string                        `json:"id"`
	Stage             models.FlowStage              `json:"stage"`
	Record            *models.Application           `json:"record,omitempty"`
	OBNumber          string                        `json:"ob_number,omitempty"`
	Constituency      string                        `json:"constituency,omitempty"`
	Documents         map[string]StagedDocumentView `json:"documents"`
	MissingDocuments  []string                      `json:"missing_documents,omitempty"`
	ApplicationNumber string                        `json:"application_number,omitempty"`
	ApplicationID     int                           `json:"application_id,omitempty"`
	WaitingCardNumber string                        `json:"waiting_card_number,omitempty"`
	RenewalFee        int                           `json:"renewal_fee"`
	Payment           *PaymentView                  `json:"payment,omitempty"`
	ReceiptStatus     string                        `json:"receipt_status,omitempty"`
	ReceiptURL        string                        `json:"receipt_url,omitempty"`
}

// PaymentView summarises the recorded payment.
type PaymentView struct {
	PaymentID     int                  `json:"payment_id"`
	Reference     string               `json:"reference"`
	PaymentMethod models.PaymentMethod `json:"payment_method"`
	Amount        int                  `json:"amount"`
	Status        string               `json:"status"`
}

// ConfirmationResponse is returned once a flow is confirmed.
type ConfirmationResponse struct {
	ApplicationNumber string      `json:"application_number"`
	ApplicationID     int         `json:"application_id"`
	WaitingCardNumber string      `json:"waiting_card_number"`
	Payment           PaymentView `json:"payment"`
	ReceiptStatus     string      `json:"receipt_status"`
}

// FlowResult pairs the flow view with the notice to show for the step.
type FlowResult struct {
	Flow   *FlowResponse
	Notice *Notice
}
