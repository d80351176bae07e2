package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/id-portal/internal/dto"
	"github.com/noah-isme/id-portal/internal/models"
	"github.com/noah-isme/id-portal/internal/registry"
	"github.com/noah-isme/id-portal/internal/repository"
	appErrors "github.com/noah-isme/id-portal/pkg/errors"
	"github.com/noah-isme/id-portal/pkg/storage"
)

type memoryFlowStore struct {
	mu     sync.Mutex
	flows  map[string]models.Flow
	locked map[string]bool
}

func newMemoryFlowStore() *memoryFlowStore {
	return &memoryFlowStore{flows: map[string]models.Flow{}, locked: map[string]bool{}}
}

func (m *memoryFlowStore) Create(_ context.Context, flow *models.Flow, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flows[flow.ID] = cloneFlow(flow)
	return nil
}

func (m *memoryFlowStore) Get(_ context.Context, id string) (*models.Flow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	flow, ok := m.flows[id]
	if !ok {
		return nil, appErrors.ErrNotFound
	}
	out := cloneFlow(&flow)
	return &out, nil
}

func (m *memoryFlowStore) Update(_ context.Context, flow *models.Flow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.flows[flow.ID]; !ok {
		return appErrors.ErrNotFound
	}
	m.flows[flow.ID] = cloneFlow(flow)
	return nil
}

func (m *memoryFlowStore) Lock(_ context.Context, id string, _ time.Duration) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.locked[id] {
		return nil, repository.ErrLocked
	}
	m.locked[id] = true
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.locked, id)
	}, nil
}

func (m *memoryFlowStore) stored(id string) models.Flow {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.flows[id]
}

func cloneFlow(flow *models.Flow) models.Flow {
	out := *flow
	out.Documents = make(map[string]models.StagedDocument, len(flow.Documents))
	for k, v := range flow.Documents {
		out.Documents[k] = v
	}
	return out
}

type fakeLostIDRegistry struct {
	record       *models.Application
	searchErr    error
	submitResult *registry.LostIDResult
	submitErr    error
	paymentErr   error
	approvalErr  error

	submissions []registry.LostIDSubmission
	uploads     map[string]string
	payments    []models.Payment
	approvals   int
	tokens      []string
}

func newFakeLostIDRegistry() *fakeLostIDRegistry {
	return &fakeLostIDRegistry{
		record: &models.Application{
			FullNames:    "Achieng Mary Otieno",
			DateOfBirth:  models.Timestamp{Time: time.Date(1992, time.February, 3, 0, 0, 0, 0, time.UTC)},
			FatherName:   "Peter Otieno",
			MotherName:   "Grace Atieno",
			HomeDistrict: "Siaya",
		},
		submitResult: &registry.LostIDResult{ApplicationNumber: "LID-2024-001", ApplicationID: 77},
		uploads:      map[string]string{},
	}
}

func (f *fakeLostIDRegistry) SearchByIDNumber(ctx context.Context, idNumber string) (*models.Application, error) {
	f.tokens = append(f.tokens, registry.TokenFromContext(ctx))
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return f.record, nil
}

func (f *fakeLostIDRegistry) SubmitLostID(_ context.Context, sub registry.LostIDSubmission) (*registry.LostIDResult, error) {
	f.submissions = append(f.submissions, sub)
	for _, upload := range sub.Files {
		rc, err := upload.Open()
		if err != nil {
			return nil, err
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return nil, err
		}
		f.uploads[upload.Field] = string(data)
	}
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return f.submitResult, nil
}

func (f *fakeLostIDRegistry) CreatePayment(_ context.Context, payment models.Payment) (int, error) {
	if f.paymentErr != nil {
		return 0, f.paymentErr
	}
	f.payments = append(f.payments, payment)
	return 500 + len(f.payments), nil
}

func (f *fakeLostIDRegistry) SubmitForApproval(context.Context, int) (string, error) {
	f.approvals++
	if f.approvalErr != nil {
		return "", f.approvalErr
	}
	return "Application submitted for approval", nil
}

type fakeReceiptIssuer struct {
	scheduled []string
	err       error
}

func (f *fakeReceiptIssuer) Schedule(_ context.Context, flow *models.Flow) error {
	f.scheduled = append(f.scheduled, flow.ID)
	return f.err
}

func (f *fakeReceiptIssuer) DownloadURL(flow *models.Flow) (string, error) {
	return "/receipts/token-" + flow.ID, nil
}

type fakeFlowObserver struct {
	stages []string
}

func (f *fakeFlowObserver) ObserveFlowTransition(stage string) {
	f.stages = append(f.stages, stage)
}

type lostIDFixture struct {
	svc      *LostIDService
	flows    *memoryFlowStore
	registry *fakeLostIDRegistry
	staging  *storage.LocalStorage
	receipts *fakeReceiptIssuer
	metrics  *fakeFlowObserver
}

var officerSession = &models.Session{
	ID:            "officer-session",
	Role:          models.RoleOfficer,
	RegistryToken: "officer-token",
	Officer:       &models.OfficerProfile{ID: 3, FullName: "Kelvin Alianda", Constituency: "Kisumu Central"},
}

func newLostIDFixture(t *testing.T) *lostIDFixture {
	t.Helper()
	staging, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	f := &lostIDFixture{
		flows:    newMemoryFlowStore(),
		registry: newFakeLostIDRegistry(),
		staging:  staging,
		receipts: &fakeReceiptIssuer{},
		metrics:  &fakeFlowObserver{},
	}
	f.svc = NewLostIDService(LostIDServiceParams{
		Flows:       f.flows,
		Registry:    f.registry,
		Staging:     staging,
		Receipts:    f.receipts,
		Metrics:     f.metrics,
		RenewalFee:  1000,
		MaxFileSize: 1024,
	})
	return f
}

func (f *lostIDFixture) foundFlow(t *testing.T) string {
	t.Helper()
	res, err := f.svc.Start(context.Background(), officerSession, " 12345678 ")
	require.NoError(t, err)
	require.Equal(t, models.FlowStageFound, res.Flow.Stage)
	return res.Flow.ID
}

func (f *lostIDFixture) attachAll(t *testing.T, flowID string) {
	t.Helper()
	for _, kind := range models.RequiredLostIDDocuments {
		_, err := f.svc.AttachDocument(context.Background(), officerSession, flowID, kind, DocumentUpload{
			FileName:    kind + ".jpg",
			ContentType: "image/jpeg",
			Body:        strings.NewReader("content-of-" + kind),
		})
		require.NoError(t, err)
	}
}

func (f *lostIDFixture) submittedFlow(t *testing.T) string {
	t.Helper()
	id := f.foundFlow(t)
	f.attachAll(t, id)
	_, err := f.svc.Submit(context.Background(), officerSession, id, dto.SubmitFlowRequest{OBNumber: "OB/12/2024", Constituency: "Kisumu Central"})
	require.NoError(t, err)
	return id
}

func noticeOf(t *testing.T, err error) *dto.Notice {
	t.Helper()
	var withNotice interface{ Notice() *dto.Notice }
	require.ErrorAs(t, err, &withNotice)
	return withNotice.Notice()
}

func TestLostIDStartRejectsBlankID(t *testing.T) {
	f := newLostIDFixture(t)

	_, err := f.svc.Start(context.Background(), officerSession, "   ")
	require.Error(t, err)
	assert.Equal(t, "Please enter an ID number to search", noticeOf(t, err).Description)
	assert.Empty(t, f.registry.tokens)
}

func TestLostIDStartFindsRecord(t *testing.T) {
	f := newLostIDFixture(t)

	res, err := f.svc.Start(context.Background(), officerSession, "12345678")
	require.NoError(t, err)
	assert.Equal(t, models.FlowStageFound, res.Flow.Stage)
	assert.Equal(t, "Achieng Mary Otieno", res.Flow.Record.FullNames)
	assert.Equal(t, "ID Found", res.Notice.Title)
	assert.Equal(t, 1000, res.Flow.RenewalFee)
	assert.Len(t, res.Flow.MissingDocuments, 3)
	assert.Equal(t, []string{"officer-token"}, f.registry.tokens)
	assert.Equal(t, []string{"found"}, f.metrics.stages)

	stored := f.flows.stored(res.Flow.ID)
	assert.Equal(t, "Kelvin Alianda", stored.OfficerName)
	assert.Equal(t, "Kisumu Central", stored.OfficerConstituency)
}

func TestLostIDSearchNotFoundStaysSearching(t *testing.T) {
	f := newLostIDFixture(t)
	id := f.foundFlow(t)

	f.registry.searchErr = &registry.Error{Kind: registry.KindAPI, Status: http.StatusNotFound, Message: "Application not found"}
	res, err := f.svc.Search(context.Background(), officerSession, id, "99999999")
	require.NoError(t, err)
	assert.Equal(t, models.FlowStageSearching, res.Flow.Stage)
	assert.Nil(t, res.Flow.Record)
	assert.Equal(t, "No ID found with this number", res.Notice.Description)
	assert.Equal(t, dto.NoticeDestructive, res.Notice.Variant)
}

func TestLostIDSearchNetworkFailureKeepsFlow(t *testing.T) {
	f := newLostIDFixture(t)
	id := f.foundFlow(t)

	f.registry.searchErr = &registry.Error{Kind: registry.KindNetwork, Message: registry.MessageUnreachable, Err: errors.New("refused")}
	_, err := f.svc.Search(context.Background(), officerSession, id, "99999999")
	require.Error(t, err)
	assert.Equal(t, "Failed to connect to server", noticeOf(t, err).Description)
	assert.Equal(t, models.FlowStageFound, f.flows.stored(id).Stage)
}

func TestLostIDAttachDocumentKeepsPreviousOnOversize(t *testing.T) {
	f := newLostIDFixture(t)
	id := f.foundFlow(t)

	_, err := f.svc.AttachDocument(context.Background(), officerSession, id, models.DocumentOBPhoto, DocumentUpload{
		FileName: `C:\scans\ob.png`,
		Body:     bytes.NewReader([]byte("\x89PNG\r\n\x1a\nsmall")),
	})
	require.NoError(t, err)
	doc := f.flows.stored(id).Documents[models.DocumentOBPhoto]
	assert.Equal(t, "ob.png", doc.FileName)
	assert.Equal(t, "image/png", doc.ContentType)

	_, err = f.svc.AttachDocument(context.Background(), officerSession, id, models.DocumentOBPhoto, DocumentUpload{
		FileName:    "huge.png",
		ContentType: "image/png",
		Body:        bytes.NewReader(bytes.Repeat([]byte("x"), 2048)),
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrFileTooLarge.Code, appErrors.FromError(err).Code)
	assert.Equal(t, "File Too Large", noticeOf(t, err).Title)

	assert.Equal(t, "ob.png", f.flows.stored(id).Documents[models.DocumentOBPhoto].FileName)
	file, err := f.staging.Open(doc.Path)
	require.NoError(t, err)
	defer file.Close()
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "\x89PNG\r\n\x1a\nsmall", string(data))
}

func TestLostIDAttachDocumentRejectsUnknownKind(t *testing.T) {
	f := newLostIDFixture(t)
	id := f.foundFlow(t)

	_, err := f.svc.AttachDocument(context.Background(), officerSession, id, "selfie", DocumentUpload{Body: strings.NewReader("x")})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestLostIDSubmitRequiresEverything(t *testing.T) {
	f := newLostIDFixture(t)
	id := f.foundFlow(t)

	_, err := f.svc.Submit(context.Background(), officerSession, id, dto.SubmitFlowRequest{OBNumber: "OB/1", Constituency: "Kibra"})
	require.Error(t, err)
	notice := noticeOf(t, err)
	assert.Equal(t, "Missing Information", notice.Title)
	assert.Equal(t, "Please fill all fields, select constituency, and upload all required documents", notice.Description)
	assert.Empty(t, f.registry.submissions)
}

func TestLostIDSubmitSendsFormAndClearsStaging(t *testing.T) {
	f := newLostIDFixture(t)
	id := f.submittedFlow(t)

	require.Len(t, f.registry.submissions, 1)
	sub := f.registry.submissions[0]
	assert.Equal(t, "12345678", sub.ExistingIDNumber)
	assert.Equal(t, "OB/12/2024", sub.OBNumber)
	assert.Equal(t, "1992-02-03", sub.DateOfBirth)
	assert.Equal(t, "Siaya", sub.HomeDistrict)
	require.Len(t, sub.Files, 3)
	assert.Equal(t, "content-of-passport_photo", f.registry.uploads[models.DocumentPassportPhoto])

	stored := f.flows.stored(id)
	assert.Equal(t, models.FlowStageSubmitted, stored.Stage)
	assert.Equal(t, "LID-2024-001", stored.ApplicationNumber)
	assert.Equal(t, "WC-LID-2024-001", stored.WaitingCardNumber)
	assert.Empty(t, stored.Documents)
	assert.False(t, f.staging.Exists(stagedPath(id, models.DocumentOBPhoto)))
}

func TestLostIDSubmitPrefersRecordIDNumber(t *testing.T) {
	f := newLostIDFixture(t)
	f.registry.record.GeneratedIDNumber = "30219876"
	f.submittedFlow(t)

	require.Len(t, f.registry.submissions, 1)
	assert.Equal(t, "30219876", f.registry.submissions[0].ExistingIDNumber)
}

func TestLostIDSubmitFromWrongStage(t *testing.T) {
	f := newLostIDFixture(t)
	id := f.submittedFlow(t)

	_, err := f.svc.Submit(context.Background(), officerSession, id, dto.SubmitFlowRequest{OBNumber: "OB", Constituency: "X"})
	require.Error(t, err)
	assert.Equal(t, http.StatusConflict, appErrors.FromError(err).Status)
	assert.Len(t, f.registry.submissions, 1)
}

func TestLostIDPayValidatesMethod(t *testing.T) {
	f := newLostIDFixture(t)
	id := f.submittedFlow(t)

	_, err := f.svc.Pay(context.Background(), officerSession, id, dto.PaymentRequest{PaymentMethod: "card"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.Empty(t, f.registry.payments)
}

func TestLostIDPayRecordsPaymentAndSubmits(t *testing.T) {
	f := newLostIDFixture(t)
	id := f.submittedFlow(t)

	res, err := f.svc.Pay(context.Background(), officerSession, id, dto.PaymentRequest{PaymentMethod: models.PaymentMethodMpesa})
	require.NoError(t, err)
	assert.Equal(t, models.FlowStagePaid, res.Flow.Stage)
	assert.Equal(t, "Payment of KES 1000 via MPESA submitted successfully", res.Notice.Description)
	require.NotNil(t, res.Flow.Payment)
	assert.Equal(t, "PAY501", res.Flow.Payment.Reference)
	assert.Equal(t, "Pending Verification", res.Flow.Payment.Status)

	require.Len(t, f.registry.payments, 1)
	assert.Equal(t, models.Payment{ApplicationID: 77, Amount: 1000, PaymentMethod: models.PaymentMethodMpesa, Status: "pending"}, f.registry.payments[0])
	assert.Equal(t, 1, f.registry.approvals)
}

func TestLostIDPayRetriesOnlyApproval(t *testing.T) {
	f := newLostIDFixture(t)
	id := f.submittedFlow(t)

	f.registry.approvalErr = &registry.Error{Kind: registry.KindAPI, Status: http.StatusInternalServerError, Message: "Failed to submit application for approval"}
	_, err := f.svc.Pay(context.Background(), officerSession, id, dto.PaymentRequest{PaymentMethod: models.PaymentMethodCash})
	require.Error(t, err)
	assert.Equal(t, "Payment Error", noticeOf(t, err).Title)

	stored := f.flows.stored(id)
	assert.Equal(t, models.FlowStagePaymentRecorded, stored.Stage)
	assert.Equal(t, 501, stored.PaymentID)

	f.registry.approvalErr = nil
	res, err := f.svc.Pay(context.Background(), officerSession, id, dto.PaymentRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.FlowStagePaid, res.Flow.Stage)
	assert.Len(t, f.registry.payments, 1)
	assert.Equal(t, 2, f.registry.approvals)
	assert.Equal(t, "Payment of KES 1000 via CASH submitted successfully", res.Notice.Description)
}

func TestLostIDPayFailureLeavesFlowSubmitted(t *testing.T) {
	f := newLostIDFixture(t)
	id := f.submittedFlow(t)

	f.registry.paymentErr = &registry.Error{Kind: registry.KindAPI, Status: http.StatusBadRequest}
	_, err := f.svc.Pay(context.Background(), officerSession, id, dto.PaymentRequest{PaymentMethod: models.PaymentMethodCash})
	require.Error(t, err)
	assert.Equal(t, "Payment processing failed", noticeOf(t, err).Description)
	assert.Equal(t, models.FlowStageSubmitted, f.flows.stored(id).Stage)
	assert.Equal(t, 0, f.registry.approvals)
}

func TestLostIDConfirmSchedulesReceipt(t *testing.T) {
	f := newLostIDFixture(t)
	id := f.submittedFlow(t)
	_, err := f.svc.Pay(context.Background(), officerSession, id, dto.PaymentRequest{PaymentMethod: models.PaymentMethodCash})
	require.NoError(t, err)

	resp, err := f.svc.Confirm(context.Background(), officerSession, id)
	require.NoError(t, err)
	assert.Equal(t, "LID-2024-001", resp.ApplicationNumber)
	assert.Equal(t, 77, resp.ApplicationID)
	assert.Equal(t, "PAY501", resp.Payment.Reference)
	assert.Equal(t, models.ReceiptStatusPending, resp.ReceiptStatus)
	assert.Equal(t, []string{id}, f.receipts.scheduled)
	assert.Equal(t, models.FlowStageConfirmed, f.flows.stored(id).Stage)

	_, err = f.svc.Confirm(context.Background(), officerSession, id)
	assert.Equal(t, appErrors.ErrInvalidStage.Code, appErrors.FromError(err).Code)
}

func TestLostIDConfirmSurvivesScheduleFailure(t *testing.T) {
	f := newLostIDFixture(t)
	f.receipts.err = errors.New("queue full")
	id := f.submittedFlow(t)
	_, err := f.svc.Pay(context.Background(), officerSession, id, dto.PaymentRequest{PaymentMethod: models.PaymentMethodCash})
	require.NoError(t, err)

	resp, err := f.svc.Confirm(context.Background(), officerSession, id)
	require.NoError(t, err)
	assert.Equal(t, models.ReceiptStatusFailed, resp.ReceiptStatus)
	assert.Equal(t, models.FlowStageConfirmed, f.flows.stored(id).Stage)
}

func TestLostIDGetShowsReceiptURL(t *testing.T) {
	f := newLostIDFixture(t)
	id := f.foundFlow(t)

	flow := f.flows.stored(id)
	flow.ReceiptStatus = models.ReceiptStatusReady
	flow.ReceiptPath = "receipts/" + id + "/application-1.pdf"
	require.NoError(t, f.flows.Update(context.Background(), &flow))

	resp, err := f.svc.Get(context.Background(), officerSession, id)
	require.NoError(t, err)
	assert.Equal(t, "/receipts/token-"+id, resp.ReceiptURL)
}

func TestLostIDFlowIsPrivateToSession(t *testing.T) {
	f := newLostIDFixture(t)
	id := f.foundFlow(t)

	other := &models.Session{ID: "someone-else", Role: models.RoleOfficer}
	_, err := f.svc.Get(context.Background(), other, id)
	assert.True(t, appErrors.Is(err, appErrors.ErrNotFound))
}

func TestLostIDConcurrentMutationIsRejected(t *testing.T) {
	f := newLostIDFixture(t)
	id := f.foundFlow(t)

	unlock, err := f.flows.Lock(context.Background(), id, time.Second)
	require.NoError(t, err)
	defer unlock()

	_, err = f.svc.Search(context.Background(), officerSession, id, "12345678")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSizeLabel(t *testing.T) {
	assert.Equal(t, "5MB", sizeLabel(5*1024*1024))
	assert.Equal(t, "1KB", sizeLabel(1024))
}
