package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/id-portal/internal/dto"
	"github.com/noah-isme/id-portal/internal/models"
	"github.com/noah-isme/id-portal/internal/registry"
	"github.com/noah-isme/id-portal/internal/repository"
	appErrors "github.com/noah-isme/id-portal/pkg/errors"
	"github.com/noah-isme/id-portal/pkg/storage"
)

const (
	msgEnterIDNumber       = "Please enter an ID number to search"
	msgMissingInformation  = "Please fill all fields, select constituency, and upload all required documents"
	msgInvalidPayment      = "Please select a payment method"
	paymentStatusDisplayed = "Pending Verification"
	sniffLength            = 512
)

type flowStore interface {
	Create(ctx context.Context, flow *models.Flow, ttl time.Duration) error
	Get(ctx context.Context, id string) (*models.Flow, error)
	Update(ctx context.Context, flow *models.Flow) error
	Lock(ctx context.Context, id string, ttl time.Duration) (func(), error)
}

type lostIDRegistry interface {
	SearchByIDNumber(ctx context.Context, idNumber string) (*models.Application, error)
	SubmitLostID(ctx context.Context, sub registry.LostIDSubmission) (*registry.LostIDResult, error)
	CreatePayment(ctx context.Context, payment models.Payment) (int, error)
	SubmitForApproval(ctx context.Context, id int) (string, error)
}

type documentStaging interface {
	SaveStream(name string, r io.Reader, limit int64) (int64, error)
	Open(name string) (*os.File, error)
	DeleteDir(name string) error
}

type receiptIssuer interface {
	Schedule(ctx context.Context, flow *models.Flow) error
	DownloadURL(flow *models.Flow) (string, error)
}

type flowObserver interface {
	ObserveFlowTransition(stage string)
}

// DocumentUpload is one file an officer attaches to a flow.
type DocumentUpload struct {
	FileName    string
	ContentType string
	Body        io.Reader
}

// LostIDServiceParams groups the dependencies of the lost-ID flow.
type LostIDServiceParams struct {
	Flows       flowStore
	Registry    lostIDRegistry
	Staging     documentStaging
	Receipts    receiptIssuer
	Metrics     flowObserver
	Validator   *validator.Validate
	Logger      *zap.Logger
	FlowTTL     time.Duration
	LockTTL     time.Duration
	RenewalFee  int
	MaxFileSize int64
}

// LostIDService walks an officer through replacing a lost ID: search, documents, submission, payment, confirmation.
type LostIDService struct {
	flows       flowStore
	registry    lostIDRegistry
	staging     documentStaging
	receipts    receiptIssuer
	metrics     flowObserver
	validate    *validator.Validate
	logger      *zap.Logger
	flowTTL     time.Duration
	lockTTL     time.Duration
	renewalFee  int
	maxFileSize int64
	now         func() time.Time
}

// NewLostIDService constructs a LostIDService.
func NewLostIDService(params LostIDServiceParams) *LostIDService {
	svc := &LostIDService{
		flows:       params.Flows,
		registry:    params.Registry,
		staging:     params.Staging,
		receipts:    params.Receipts,
		metrics:     params.Metrics,
		validate:    params.Validator,
		logger:      params.Logger,
		flowTTL:     params.FlowTTL,
		lockTTL:     params.LockTTL,
		renewalFee:  params.RenewalFee,
		maxFileSize: params.MaxFileSize,
		now:         time.Now,
	}
	if svc.logger == nil {
		svc.logger = zap.NewNop()
	}
	if svc.validate == nil {
		svc.validate = validator.New()
	}
	if svc.flowTTL <= 0 {
		svc.flowTTL = 2 * time.Hour
	}
	if svc.lockTTL <= 0 {
		svc.lockTTL = 30 * time.Second
	}
	if svc.renewalFee <= 0 {
		svc.renewalFee = 1000
	}
	if svc.maxFileSize <= 0 {
		svc.maxFileSize = 5 * 1024 * 1024
	}
	return svc
}

// Start opens a flow for the officer and runs the first search.
func (s *LostIDService) Start(ctx context.Context, session *models.Session, idNumber string) (*dto.FlowResult, error) {
	idNumber = strings.TrimSpace(idNumber)
	if idNumber == "" {
		return nil, failWithNotice(appErrors.Clone(appErrors.ErrValidation, msgEnterIDNumber), "")
	}

	now := s.now().UTC()
	flow := &models.Flow{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Stage:     models.FlowStageSearching,
		Documents: map[string]models.StagedDocument{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if session.Officer != nil {
		flow.OfficerName = session.Officer.FullName
		flow.OfficerConstituency = session.Officer.Constituency
	}

	notice, err := s.search(registry.WithToken(ctx, session.RegistryToken), flow, idNumber)
	if err != nil {
		return nil, err
	}
	if err := s.flows.Create(ctx, flow, s.flowTTL); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save lost ID flow")
	}
	s.observe(flow.Stage)
	s.logger.Info("lost id flow started", zap.String("flow_id", flow.ID), zap.String("stage", string(flow.Stage)))

	return s.result(flow, notice)
}

// Search repeats the lookup inside an existing flow, replacing any earlier match.
func (s *LostIDService) Search(ctx context.Context, session *models.Session, flowID, idNumber string) (*dto.FlowResult, error) {
	idNumber = strings.TrimSpace(idNumber)
	if idNumber == "" {
		return nil, failWithNotice(appErrors.Clone(appErrors.ErrValidation, msgEnterIDNumber), "")
	}

	var notice *dto.Notice
	flow, err := s.mutate(ctx, session, flowID, func(flow *models.Flow) error {
		if err := requireStage(flow, models.FlowStageSearching, models.FlowStageFound); err != nil {
			return err
		}
		found, err := s.search(registry.WithToken(ctx, session.RegistryToken), flow, idNumber)
		notice = found
		return err
	})
	if err != nil {
		return nil, err
	}
	return s.result(flow, notice)
}

func (s *LostIDService) search(ctx context.Context, flow *models.Flow, idNumber string) (*dto.Notice, error) {
	record, err := s.registry.SearchByIDNumber(ctx, idNumber)
	if err != nil {
		if registry.IsNotFound(err) {
			flow.SearchedIDNumber = idNumber
			flow.Record = nil
			flow.Stage = models.FlowStageSearching
			return &dto.Notice{Title: "Not Found", Description: "No ID found with this number", Variant: dto.NoticeDestructive}, nil
		}
		return nil, failWithNotice(registryFailure(err, "Failed to search for ID"), "")
	}

	flow.SearchedIDNumber = idNumber
	flow.Record = record
	flow.Stage = models.FlowStageFound
	return dto.Success("ID Found", "ID details retrieved successfully"), nil
}

// AttachDocument stages one required document. A file over the size limit leaves any earlier upload in place.
func (s *LostIDService) AttachDocument(ctx context.Context, session *models.Session, flowID, kind string, upload DocumentUpload) (*dto.FlowResult, error) {
	if !isRequiredDocument(kind) {
		return nil, failWithNotice(appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported document type %q", kind)), "")
	}
	if upload.Body == nil {
		return nil, failWithNotice(appErrors.Clone(appErrors.ErrValidation, "file is required"), "")
	}

	flow, err := s.mutate(ctx, session, flowID, func(flow *models.Flow) error {
		if err := requireStage(flow, models.FlowStageFound); err != nil {
			return err
		}

		body := upload.Body
		contentType := upload.ContentType
		if contentType == "" || contentType == "application/octet-stream" {
			head := make([]byte, sniffLength)
			n, readErr := io.ReadFull(body, head)
			if readErr != nil && !errors.Is(readErr, io.ErrUnexpectedEOF) && !errors.Is(readErr, io.EOF) {
				return appErrors.Wrap(readErr, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "failed to read upload")
			}
			contentType = http.DetectContentType(head[:n])
			body = io.MultiReader(bytes.NewReader(head[:n]), body)
		}

		name := stagedPath(flow.ID, kind)
		size, err := s.staging.SaveStream(name, body, s.maxFileSize)
		if err != nil {
			if errors.Is(err, storage.ErrTooLarge) {
				msg := "Please select a file smaller than " + sizeLabel(s.maxFileSize)
				return failWithNotice(appErrors.Clone(appErrors.ErrFileTooLarge, msg), "File Too Large")
			}
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stage document")
		}

		if flow.Documents == nil {
			flow.Documents = map[string]models.StagedDocument{}
		}
		flow.Documents[kind] = models.StagedDocument{
			Kind:        kind,
			Path:        name,
			FileName:    path.Base(strings.ReplaceAll(upload.FileName, `\`, "/")),
			ContentType: contentType,
			Size:        size,
			UploadedAt:  s.now().UTC(),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.result(flow, nil)
}

// Submit sends the replacement application with its staged documents.
func (s *LostIDService) Submit(ctx context.Context, session *models.Session, flowID string, req dto.SubmitFlowRequest) (*dto.FlowResult, error) {
	obNumber := strings.TrimSpace(req.OBNumber)
	constituency := strings.TrimSpace(req.Constituency)

	flow, err := s.mutate(ctx, session, flowID, func(flow *models.Flow) error {
		if err := requireStage(flow, models.FlowStageFound); err != nil {
			return err
		}
		if flow.Record == nil || obNumber == "" || constituency == "" || !flow.HasAllDocuments() {
			return failWithNotice(appErrors.Clone(appErrors.ErrValidation, msgMissingInformation), "Missing Information")
		}

		record := flow.Record
		sub := registry.LostIDSubmission{
			ExistingIDNumber: firstNonEmpty(record.GeneratedIDNumber, flow.SearchedIDNumber),
			OBNumber:         obNumber,
			FullNames:        record.FullNames,
			DateOfBirth:      record.DateOfBirth.Date(),
			FatherName:       record.FatherName,
			MotherName:       record.MotherName,
			HomeDistrict:     record.HomeDistrict,
			Constituency:     constituency,
		}
		for _, kind := range models.RequiredLostIDDocuments {
			doc := flow.Documents[kind]
			sub.Files = append(sub.Files, registry.Upload{
				Field:       kind,
				FileName:    doc.FileName,
				ContentType: doc.ContentType,
				Open: func() (io.ReadCloser, error) {
					return s.staging.Open(doc.Path)
				},
			})
		}

		res, err := s.registry.SubmitLostID(registry.WithToken(ctx, session.RegistryToken), sub)
		if err != nil {
			return failWithNotice(registryFailure(err, "Failed to submit application"), "")
		}

		flow.OBNumber = obNumber
		flow.Constituency = constituency
		flow.ApplicationNumber = res.ApplicationNumber
		flow.ApplicationID = res.ApplicationID
		flow.WaitingCardNumber = res.WaitingCardNumber
		if flow.WaitingCardNumber == "" {
			flow.WaitingCardNumber = "WC-" + res.ApplicationNumber
		}
		flow.Stage = models.FlowStageSubmitted
		flow.Documents = map[string]models.StagedDocument{}

		if err := s.staging.DeleteDir(stagedDir(flow.ID)); err != nil {
			s.logger.Warn("failed to remove staged documents", zap.String("flow_id", flow.ID), zap.Error(err))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.result(flow, dto.Success("Success", "Lost ID application submitted successfully"))
}

// Pay records the renewal fee and submits the application for approval. When the payment was already
// recorded by an earlier attempt only the approval submission is retried.
func (s *LostIDService) Pay(ctx context.Context, session *models.Session, flowID string, req dto.PaymentRequest) (*dto.FlowResult, error) {
	regCtx := registry.WithToken(ctx, session.RegistryToken)

	flow, err := s.mutate(ctx, session, flowID, func(flow *models.Flow) error {
		if err := requireStage(flow, models.FlowStageSubmitted, models.FlowStagePaymentRecorded); err != nil {
			return err
		}

		if flow.Stage == models.FlowStageSubmitted {
			if err := s.validate.Struct(req); err != nil || !req.PaymentMethod.Valid() {
				return failWithNotice(appErrors.Clone(appErrors.ErrValidation, msgInvalidPayment), "")
			}
			paymentID, err := s.registry.CreatePayment(regCtx, models.Payment{
				ApplicationID: flow.ApplicationID,
				Amount:        s.renewalFee,
				PaymentMethod: req.PaymentMethod,
				Status:        models.PaymentStatusPending,
			})
			if err != nil {
				return failWithNotice(registryFailure(err, "Payment processing failed"), "Payment Error")
			}
			flow.PaymentID = paymentID
			flow.PaymentMethod = req.PaymentMethod
			flow.Amount = s.renewalFee
			flow.Stage = models.FlowStagePaymentRecorded
			if err := s.save(ctx, flow); err != nil {
				return err
			}
			s.observe(flow.Stage)
		}

		if _, err := s.registry.SubmitForApproval(regCtx, flow.ApplicationID); err != nil {
			s.logger.Warn("submit for approval failed after payment",
				zap.String("flow_id", flow.ID),
				zap.Int("payment_id", flow.PaymentID),
				zap.Error(err),
			)
			return failWithNotice(registryFailure(err, "Failed to submit application for approval"), "Payment Error")
		}
		flow.Stage = models.FlowStagePaid
		return nil
	})
	if err != nil {
		return nil, err
	}

	msg := fmt.Sprintf("Payment of KES %d via %s submitted successfully", flow.Amount, strings.ToUpper(string(flow.PaymentMethod)))
	return s.result(flow, dto.Success("Payment Submitted", msg))
}

// Confirm closes a paid flow and schedules its waiting card. Receipt scheduling never blocks confirmation.
func (s *LostIDService) Confirm(ctx context.Context, session *models.Session, flowID string) (*dto.ConfirmationResponse, error) {
	flow, err := s.mutate(ctx, session, flowID, func(flow *models.Flow) error {
		if err := requireStage(flow, models.FlowStagePaid); err != nil {
			return err
		}
		flow.Stage = models.FlowStageConfirmed
		flow.ReceiptStatus = models.ReceiptStatusPending
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.receipts != nil {
		if err := s.receipts.Schedule(ctx, flow); err != nil {
			s.logger.Error("failed to schedule waiting card", zap.String("flow_id", flow.ID), zap.Error(err))
			flow.ReceiptStatus = models.ReceiptStatusFailed
			if err := s.save(ctx, flow); err != nil {
				s.logger.Warn("failed to record receipt failure", zap.String("flow_id", flow.ID), zap.Error(err))
			}
		}
	}

	return &dto.ConfirmationResponse{
		ApplicationNumber: flow.ApplicationNumber,
		ApplicationID:     flow.ApplicationID,
		WaitingCardNumber: flow.WaitingCardNumber,
		Payment:           paymentView(flow),
		ReceiptStatus:     flow.ReceiptStatus,
	}, nil
}

// Get returns the flow as the officer sees it, including the receipt link once generated.
func (s *LostIDService) Get(ctx context.Context, session *models.Session, flowID string) (*dto.FlowResponse, error) {
	flow, err := s.load(ctx, session, flowID)
	if err != nil {
		return nil, err
	}
	return s.view(flow), nil
}

// mutate loads a flow under its lock, applies fn and saves the result. A failed fn saves nothing.
func (s *LostIDService) mutate(ctx context.Context, session *models.Session, flowID string, fn func(*models.Flow) error) (*models.Flow, error) {
	unlock, err := s.flows.Lock(ctx, flowID, s.lockTTL)
	if err != nil {
		if errors.Is(err, repository.ErrLocked) {
			return nil, failWithNotice(appErrors.Clone(appErrors.ErrConflict, "Another update to this application is in progress"), "")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to lock lost ID flow")
	}
	defer unlock()

	flow, err := s.load(ctx, session, flowID)
	if err != nil {
		return nil, err
	}
	before := flow.Stage
	if err := fn(flow); err != nil {
		return nil, err
	}
	if err := s.save(ctx, flow); err != nil {
		return nil, err
	}
	if flow.Stage != before {
		s.observe(flow.Stage)
		s.logger.Info("lost id flow advanced",
			zap.String("flow_id", flow.ID),
			zap.String("from", string(before)),
			zap.String("to", string(flow.Stage)),
		)
	}
	return flow, nil
}

func (s *LostIDService) load(ctx context.Context, session *models.Session, flowID string) (*models.Flow, error) {
	flow, err := s.flows.Get(ctx, flowID)
	if err != nil {
		if appErrors.Is(err, appErrors.ErrNotFound) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "lost ID flow not found or expired")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load lost ID flow")
	}
	if flow.SessionID != session.ID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "lost ID flow not found or expired")
	}
	return flow, nil
}

func (s *LostIDService) save(ctx context.Context, flow *models.Flow) error {
	flow.UpdatedAt = s.now().UTC()
	if err := s.flows.Update(ctx, flow); err != nil {
		if appErrors.Is(err, appErrors.ErrNotFound) {
			return appErrors.Clone(appErrors.ErrNotFound, "lost ID flow not found or expired")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save lost ID flow")
	}
	return nil
}

func (s *LostIDService) observe(stage models.FlowStage) {
	if s.metrics != nil {
		s.metrics.ObserveFlowTransition(string(stage))
	}
}

func (s *LostIDService) result(flow *models.Flow, notice *dto.Notice) (*dto.FlowResult, error) {
	return &dto.FlowResult{Flow: s.view(flow), Notice: notice}, nil
}

func (s *LostIDService) view(flow *models.Flow) *dto.FlowResponse {
	resp := &dto.FlowResponse{
		ID:                flow.ID,
		Stage:             flow.Stage,
		Record:            flow.Record,
		OBNumber:          flow.OBNumber,
		Constituency:      flow.Constituency,
		Documents:         make(map[string]dto.StagedDocumentView, len(flow.Documents)),
		ApplicationNumber: flow.ApplicationNumber,
		ApplicationID:     flow.ApplicationID,
		WaitingCardNumber: flow.WaitingCardNumber,
		RenewalFee:        s.renewalFee,
		ReceiptStatus:     flow.ReceiptStatus,
	}
	for kind, doc := range flow.Documents {
		resp.Documents[kind] = dto.StagedDocumentView{Kind: kind, FileName: doc.FileName, Size: doc.Size, Uploaded: doc.UploadedAt}
	}
	if flow.Stage == models.FlowStageSearching || flow.Stage == models.FlowStageFound {
		for _, kind := range models.RequiredLostIDDocuments {
			if _, ok := flow.Documents[kind]; !ok {
				resp.MissingDocuments = append(resp.MissingDocuments, kind)
			}
		}
	}
	if flow.PaymentID != 0 {
		payment := paymentView(flow)
		resp.Payment = &payment
	}
	if flow.ReceiptStatus == models.ReceiptStatusReady && s.receipts != nil {
		url, err := s.receipts.DownloadURL(flow)
		if err != nil {
			s.logger.Warn("failed to sign receipt url", zap.String("flow_id", flow.ID), zap.Error(err))
		} else {
			resp.ReceiptURL = url
		}
	}
	return resp
}

func paymentView(flow *models.Flow) dto.PaymentView {
	return dto.PaymentView{
		PaymentID:     flow.PaymentID,
		Reference:     models.PaymentReference(flow.PaymentID),
		PaymentMethod: flow.PaymentMethod,
		Amount:        flow.Amount,
		Status:        paymentStatusDisplayed,
	}
}

func requireStage(flow *models.Flow, allowed ...models.FlowStage) error {
	for _, stage := range allowed {
		if flow.Stage == stage {
			return nil
		}
	}
	msg := fmt.Sprintf("this step is not available while the application is %s", strings.ReplaceAll(string(flow.Stage), "_", " "))
	return failWithNotice(appErrors.Clone(appErrors.ErrInvalidStage, msg), "")
}

func sizeLabel(limit int64) string {
	if limit >= 1024*1024 {
		return fmt.Sprintf("%dMB", limit/(1024*1024))
	}
	return fmt.Sprintf("%dKB", limit/1024)
}

func isRequiredDocument(kind string) bool {
	for _, required := range models.RequiredLostIDDocuments {
		if kind == required {
			return true
		}
	}
	return false
}

func stagedDir(flowID string) string {
	return path.Join("flows", flowID)
}

func stagedPath(flowID, kind string) string {
	return path.Join("flows", flowID, kind)
}
