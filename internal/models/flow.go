package models

import "time"

// FlowStage is a step of the lost-ID replacement flow.
type FlowStage string

const (
	FlowStageSearching       FlowStage = "searching"
	FlowStageFound           FlowStage = "found"
	FlowStageSubmitted       FlowStage = "submitted"
	FlowStagePaymentRecorded FlowStage = "payment_recorded"
	FlowStagePaid            FlowStage = "paid"
	FlowStageConfirmed       FlowStage = "confirmed"
)

// Receipt generation states.
const (
	ReceiptStatusPending = "pending"
	ReceiptStatusReady   = "ready"
	ReceiptStatusFailed  = "failed"
)

// RequiredLostIDDocuments lists the uploads a replacement needs, in submission order.
var RequiredLostIDDocuments = []string{DocumentOBPhoto, DocumentPassportPhoto, DocumentBirthCertificate}

// StagedDocument is an upload held by the portal until submission.
type StagedDocument struct {
	Kind        string    `json:"kind"`
	Path        string    `json:"path"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// Flow is the persisted state of one officer's lost-ID replacement.
type Flow struct {
	ID                  string                    `json:"id"`
	SessionID           string                    `json:"session_id"`
	OfficerName         string                    `json:"officer_name,omitempty"`
	OfficerConstituency string                    `json:"officer_constituency,omitempty"`
	Stage               FlowStage                 `json:"stage"`
	SearchedIDNumber    string                    `json:"searched_id_number,omitempty"`
	Record              *Application              `json:"record,omitempty"`
	OBNumber            string                    `json:"ob_number,omitempty"`
	Constituency        string                    `json:"constituency,omitempty"`
	Documents           map[string]StagedDocument `json:"documents,omitempty"`
	ApplicationNumber   string                    `json:"application_number,omitempty"`
	ApplicationID       int                       `json:"application_id,omitempty"`
	WaitingCardNumber   string                    `json:"waiting_card_number,omitempty"`
	PaymentID           int                       `json:"payment_id,omitempty"`
	PaymentMethod       PaymentMethod             `json:"payment_method,omitempty"`
	Amount              int                       `json:"amount,omitempty"`
	ReceiptStatus       string                    `json:"receipt_status,omitempty"`
	ReceiptPath         string                    `json:"receipt_path,omitempty"`
	CreatedAt           time.Time                 `json:"created_at"`
	UpdatedAt           time.Time                 `json:"updated_at"`
}

// HasAllDocuments reports whether every required upload is staged.
func (f *Flow) HasAllDocuments() bool {
	for _, kind := range RequiredLostIDDocuments {
		if _, ok := f.Documents[kind]; !ok {
			return false
		}
	}
	return true
}
