package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/id-portal/internal/dto"
	"github.com/noah-isme/id-portal/internal/middleware"
	"github.com/noah-isme/id-portal/internal/models"
	"github.com/noah-isme/id-portal/internal/service"
	appErrors "github.com/noah-isme/id-portal/pkg/errors"
)

type fakeLostIDService struct {
	err        error
	lastKind   string
	lastUpload service.DocumentUpload
	uploaded   []byte
	lastSubmit dto.SubmitFlowRequest
	lastPay    dto.PaymentRequest
}

func (f *fakeLostIDService) result(stage models.FlowStage, notice *dto.Notice) (*dto.FlowResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.FlowResult{Flow: &dto.FlowResponse{ID: "flow-1", Stage: stage}, Notice: notice}, nil
}

func (f *fakeLostIDService) Start(context.Context, *models.Session, string) (*dto.FlowResult, error) {
	return f.result(models.FlowStageFound, dto.Success("Record Found", "ID record located successfully"))
}

func (f *fakeLostIDService) Search(context.Context, *models.Session, string, string) (*dto.FlowResult, error) {
	return f.result(models.FlowStageFound, nil)
}

func (f *fakeLostIDService) AttachDocument(_ context.Context, _ *models.Session, _ string, kind string, upload service.DocumentUpload) (*dto.FlowResult, error) {
	f.lastKind = kind
	f.lastUpload = upload
	f.uploaded, _ = io.ReadAll(upload.Body)
	return f.result(models.FlowStageFound, nil)
}

func (f *fakeLostIDService) Submit(_ context.Context, _ *models.Session, _ string, req dto.SubmitFlowRequest) (*dto.FlowResult, error) {
	f.lastSubmit = req
	return f.result(models.FlowStageSubmitted, nil)
}

func (f *fakeLostIDService) Pay(_ context.Context, _ *models.Session, _ string, req dto.PaymentRequest) (*dto.FlowResult, error) {
	f.lastPay = req
	return f.result(models.FlowStagePaid, dto.Success("Payment Successful", "Payment recorded"))
}

func (f *fakeLostIDService) Confirm(context.Context, *models.Session, string) (*dto.ConfirmationResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ConfirmationResponse{ApplicationNumber: "APP-9", ReceiptStatus: models.ReceiptStatusPending}, nil
}

func (f *fakeLostIDService) Get(context.Context, *models.Session, string) (*dto.FlowResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.FlowResponse{ID: "flow-1", Stage: models.FlowStageConfirmed, ReceiptURL: "/api/v1/receipts/token"}, nil
}

func TestLostIDHandlerStart(t *testing.T) {
	h := NewLostIDHandler(&fakeLostIDService{})
	c, rec := newContext(http.MethodPost, "/lost-id/flows", []byte(`{"id_number":"12345678"}`), testOfficer)

	h.Start(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "found", envelope.Data["stage"])
	assert.Equal(t, "Record Found", noticeFrom(t, envelope)["title"])
}

func TestLostIDHandlerRequiresSession(t *testing.T) {
	h := NewLostIDHandler(&fakeLostIDService{})
	c, rec := newContext(http.MethodPost, "/lost-id/flows", []byte(`{"id_number":"1"}`), nil)

	h.Start(c)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLostIDHandlerAttachDocument(t *testing.T) {
	svc := &fakeLostIDService{}
	h := NewLostIDHandler(svc)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="ob.jpg"`)
	header.Set("Content-Type", "image/jpeg")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("jpeg-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPut, "/lost-id/flows/flow-1/documents/ob_photo", &body)
	c.Request.Header.Set("Content-Type", writer.FormDataContentType())
	c.Params = gin.Params{{Key: "id", Value: "flow-1"}, {Key: "kind", Value: "ob_photo"}}
	c.Set(middleware.ContextSessionKey, testOfficer)

	h.AttachDocument(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ob_photo", svc.lastKind)
	assert.Equal(t, "ob.jpg", svc.lastUpload.FileName)
	assert.Equal(t, "image/jpeg", svc.lastUpload.ContentType)
	assert.Equal(t, []byte("jpeg-bytes"), svc.uploaded)
}

func TestLostIDHandlerAttachDocumentMissingFile(t *testing.T) {
	h := NewLostIDHandler(&fakeLostIDService{})
	c, rec := newContext(http.MethodPut, "/lost-id/flows/flow-1/documents/ob_photo", nil, testOfficer)

	h.AttachDocument(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLostIDHandlerSubmitAndPay(t *testing.T) {
	svc := &fakeLostIDService{}
	h := NewLostIDHandler(svc)

	c, rec := newContext(http.MethodPost, "/", []byte(`{"ob_number":"OB/12/2024","constituency":"Kisumu Central"}`), testOfficer)
	h.Submit(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "OB/12/2024", svc.lastSubmit.OBNumber)

	c, rec = newContext(http.MethodPost, "/", []byte(`{"payment_method":"mpesa"}`), testOfficer)
	h.Pay(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.PaymentMethod("mpesa"), svc.lastPay.PaymentMethod)
	assert.Equal(t, "Payment Successful", noticeFrom(t, decodeEnvelope(t, rec))["title"])
}

func TestLostIDHandlerConflictCarriesNotice(t *testing.T) {
	svc := &fakeLostIDService{err: &errWithNotice{
		err:    appErrors.Clone(appErrors.ErrConflict, "flow is busy"),
		notice: dto.Failure("flow is busy"),
	}}
	h := NewLostIDHandler(svc)
	c, rec := newContext(http.MethodPost, "/", nil, testOfficer)

	h.Confirm(c)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "flow is busy", noticeFrom(t, decodeEnvelope(t, rec))["description"])
}

func TestLostIDHandlerGet(t *testing.T) {
	h := NewLostIDHandler(&fakeLostIDService{})
	c, rec := newContext(http.MethodGet, "/", nil, testOfficer)
	c.Params = gin.Params{{Key: "id", Value: "flow-1"}}

	h.Get(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/api/v1/receipts/token", decodeEnvelope(t, rec).Data["receipt_url"])
}

type fakeReceiptOpener struct {
	path string
	err  error
}

func (f *fakeReceiptOpener) Open(string) (*os.File, string, error) {
	if f.err != nil {
		return nil, "", f.err
	}
	file, err := os.Open(f.path)
	return file, filepath.Base(f.path), err
}

func TestReceiptHandlerDownload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "application-APP-9.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.3"), 0o600))
	h := NewReceiptHandler(&fakeReceiptOpener{path: path})
	c, rec := newContext(http.MethodGet, "/receipts/token", nil, nil)

	h.Download(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "application-APP-9.pdf")
	assert.Equal(t, "%PDF-1.3", rec.Body.String())
}

func TestReceiptHandlerForbidden(t *testing.T) {
	h := NewReceiptHandler(&fakeReceiptOpener{err: appErrors.Clone(appErrors.ErrForbidden, "receipt link is invalid or expired")})
	c, rec := newContext(http.MethodGet, "/receipts/bad", nil, nil)

	h.Download(c)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

type fakePreviewService struct{}

func (fakePreviewService) Preview(_ context.Context, _ *models.Session, id int) (*dto.CardPreviewResponse, error) {
	return &dto.CardPreviewResponse{ApplicationID: id, ApplicationNumber: "APP-1"}, nil
}

func (fakePreviewService) RenderPDF(context.Context, *models.Session, int) ([]byte, string, error) {
	return []byte("%PDF"), "id-card-12345678.pdf", nil
}

func TestPreviewHandlerPDF(t *testing.T) {
	h := NewPreviewHandler(fakePreviewService{})
	c, rec := newContext(http.MethodGet, "/", nil, testAdmin)
	c.Params = gin.Params{{Key: "id", Value: "5"}}

	h.PDF(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "id-card-12345678.pdf")
}

func TestPreviewHandlerPreview(t *testing.T) {
	h := NewPreviewHandler(fakePreviewService{})
	c, rec := newContext(http.MethodGet, "/", nil, testAdmin)
	c.Params = gin.Params{{Key: "id", Value: "5"}}

	h.Preview(c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.EqualValues(t, 5, decodeEnvelope(t, rec).Data["application_id"])
}
