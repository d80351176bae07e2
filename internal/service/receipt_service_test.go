package service

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/id-portal/internal/models"
	appErrors "github.com/noah-isme/id-portal/pkg/errors"
	"github.com/noah-isme/id-portal/pkg/export"
	"github.com/noah-isme/id-portal/pkg/jobs"
	"github.com/noah-isme/id-portal/pkg/storage"
)

type recordingEnqueuer struct {
	jobs []jobs.Job
	err  error
}

func (r *recordingEnqueuer) Enqueue(job jobs.Job) error {
	if r.err != nil {
		return r.err
	}
	r.jobs = append(r.jobs, job)
	return nil
}

type stubWaitingCardRenderer struct {
	card export.WaitingCard
	err  error
}

func (s *stubWaitingCardRenderer) Render(card export.WaitingCard) ([]byte, error) {
	s.card = card
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF waiting card"), nil
}

type receiptFixture struct {
	svc      *ReceiptService
	flows    *memoryFlowStore
	renderer *stubWaitingCardRenderer
	queue    *recordingEnqueuer
	signer   *storage.SignedURLSigner
}

func newReceiptFixture(t *testing.T) *receiptFixture {
	t.Helper()
	store, err := storage.NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	f := &receiptFixture{
		flows:    newMemoryFlowStore(),
		renderer: &stubWaitingCardRenderer{},
		queue:    &recordingEnqueuer{},
		signer:   storage.NewSignedURLSigner("secret", time.Hour),
	}
	f.svc = NewReceiptService(ReceiptServiceParams{
		Flows:     f.flows,
		Storage:   store,
		Renderer:  f.renderer,
		Signer:    f.signer,
		URLPrefix: "/api/v1/receipts/",
	})
	f.svc.AttachQueue(f.queue)
	f.svc.now = func() time.Time { return time.Date(2024, time.May, 2, 9, 0, 0, 0, time.UTC) }
	return f
}

func confirmedFlow() *models.Flow {
	return &models.Flow{
		ID:                  "flow-1",
		Stage:               models.FlowStageConfirmed,
		OfficerName:         "Kelvin Alianda",
		OfficerConstituency: "Kisumu Central",
		Record:              &models.Application{FullNames: "Achieng Mary Otieno"},
		ApplicationNumber:   "LID-9",
		ReceiptStatus:       models.ReceiptStatusPending,
	}
}

func TestReceiptScheduleEnqueuesFlowID(t *testing.T) {
	f := newReceiptFixture(t)

	require.NoError(t, f.svc.Schedule(context.Background(), confirmedFlow()))
	require.Len(t, f.queue.jobs, 1)
	assert.Equal(t, JobTypeWaitingCard, f.queue.jobs[0].Type)
	assert.Equal(t, "flow-1", f.queue.jobs[0].Payload)
}

func TestReceiptScheduleWithoutQueue(t *testing.T) {
	svc := NewReceiptService(ReceiptServiceParams{})
	assert.Error(t, svc.Schedule(context.Background(), confirmedFlow()))
}

func TestReceiptHandleStoresCardAndSignsLink(t *testing.T) {
	f := newReceiptFixture(t)
	require.NoError(t, f.flows.Create(context.Background(), confirmedFlow(), time.Hour))

	require.NoError(t, f.svc.Handle(context.Background(), jobs.Job{ID: "job-1", Payload: "flow-1"}))

	assert.Equal(t, "Achieng Mary Otieno", f.renderer.card.FullName)
	assert.Equal(t, "Kisumu Central", f.renderer.card.District)
	assert.Equal(t, "Lost ID Replacement", f.renderer.card.ApplicationType)

	stored := f.flows.stored("flow-1")
	assert.Equal(t, models.ReceiptStatusReady, stored.ReceiptStatus)
	assert.Equal(t, "receipts/flow-1/application-LID-9.pdf", stored.ReceiptPath)

	url, err := f.svc.DownloadURL(&stored)
	require.NoError(t, err)
	require.Contains(t, url, "/api/v1/receipts/")
	token := url[len("/api/v1/receipts/"):]

	file, name, err := f.svc.Open(token)
	require.NoError(t, err)
	defer file.Close()
	assert.Equal(t, "application-LID-9.pdf", name)
	data, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "%PDF waiting card", string(data))
}

func TestReceiptOpenRejectsTamperedToken(t *testing.T) {
	f := newReceiptFixture(t)

	_, _, err := f.svc.Open("flow-1.123.abc.deadbeef")
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))

	token, _, err := f.signer.Generate("flow-1", "receipts/flow-2/application-X.pdf")
	require.NoError(t, err)
	_, _, err = f.svc.Open(token)
	assert.True(t, appErrors.Is(err, appErrors.ErrForbidden))
}

func TestReceiptHandleRendererFailure(t *testing.T) {
	f := newReceiptFixture(t)
	require.NoError(t, f.flows.Create(context.Background(), confirmedFlow(), time.Hour))
	f.renderer.err = errors.New("pdf broke")

	assert.Error(t, f.svc.Handle(context.Background(), jobs.Job{ID: "job-1", Payload: "flow-1"}))
	assert.Equal(t, models.ReceiptStatusPending, f.flows.stored("flow-1").ReceiptStatus)

	f.svc.ObserveJob(jobs.Job{ID: "job-1", Payload: "flow-1"}, jobs.OutcomeFailed, errors.New("pdf broke"))
	assert.Equal(t, models.ReceiptStatusFailed, f.flows.stored("flow-1").ReceiptStatus)
}

func TestWaitingCardForFallbacks(t *testing.T) {
	now := time.Date(2024, time.May, 2, 0, 0, 0, 0, time.UTC)
	card := WaitingCardFor(&models.Flow{ApplicationNumber: "LID-1"}, now)

	assert.Equal(t, "Lost ID Replacement Applicant", card.FullName)
	assert.Equal(t, "Unknown District", card.District)
	assert.Equal(t, "Registration Officer", card.OfficerName)
	assert.Equal(t, now, card.Date)
	assert.Equal(t, "application-LID-1.pdf", card.FileName())
}

type stubExpiringStorage struct {
	deleted []string
	err     error
	ttl     time.Duration
}

func (s *stubExpiringStorage) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	s.ttl = ttl
	return s.deleted, s.err
}

func TestStorageJanitorSweep(t *testing.T) {
	staging := &stubExpiringStorage{deleted: []string{"flows/a/ob_photo", "flows/b/passport_photo"}}
	receipts := &stubExpiringStorage{err: errors.New("permission denied")}
	janitor := NewStorageJanitor(6*time.Hour, nil,
		JanitorTarget{Name: "staging", Storage: staging},
		JanitorTarget{Name: "receipts", Storage: receipts},
	)

	assert.Equal(t, 2, janitor.Sweep())
	assert.Equal(t, 6*time.Hour, staging.ttl)
	assert.Equal(t, 6*time.Hour, receipts.ttl)
}

func TestStorageJanitorRunStopsWithContext(t *testing.T) {
	janitor := NewStorageJanitor(time.Hour, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		janitor.Run(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
