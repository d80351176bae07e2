package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/id-portal/internal/models"
	appErrors "github.com/noah-isme/id-portal/pkg/errors"
	"github.com/noah-isme/id-portal/pkg/export"
	"github.com/noah-isme/id-portal/pkg/jobs"
)

// JobTypeWaitingCard identifies waiting-card generation jobs.
const JobTypeWaitingCard = "waiting_card"

const (
	fallbackApplicantName = "Lost ID Replacement Applicant"
	fallbackDistrict      = "Unknown District"
	fallbackOfficerName   = "Registration Officer"
	lostIDApplicationType = "Lost ID Replacement"
)

type receiptFlows interface {
	Get(ctx context.Context, id string) (*models.Flow, error)
	Update(ctx context.Context, flow *models.Flow) error
	Lock(ctx context.Context, id string, ttl time.Duration) (func(), error)
}

type receiptStorage interface {
	Save(name string, data []byte) (string, error)
	Open(name string) (*os.File, error)
}

type waitingCardRenderer interface {
	Render(card export.WaitingCard) ([]byte, error)
}

type receiptSigner interface {
	Generate(ownerID, relPath string) (string, time.Time, error)
	Parse(token string, allowExpired bool) (ownerID, relPath string, expiresAt time.Time, err error)
}

type jobEnqueuer interface {
	Enqueue(job jobs.Job) error
}

// ReceiptServiceParams groups the dependencies of receipt generation.
type ReceiptServiceParams struct {
	Flows     receiptFlows
	Storage   receiptStorage
	Renderer  waitingCardRenderer
	Signer    receiptSigner
	URLPrefix string
	Logger    *zap.Logger
}

// ReceiptService renders waiting cards in the background and serves them through signed links.
type ReceiptService struct {
	flows     receiptFlows
	storage   receiptStorage
	renderer  waitingCardRenderer
	signer    receiptSigner
	urlPrefix string
	queue     jobEnqueuer
	logger    *zap.Logger
	now       func() time.Time
}

// NewReceiptService constructs a ReceiptService. AttachQueue must be called before Schedule.
func NewReceiptService(params ReceiptServiceParams) *ReceiptService {
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReceiptService{
		flows:     params.Flows,
		storage:   params.Storage,
		renderer:  params.Renderer,
		signer:    params.Signer,
		urlPrefix: strings.TrimRight(params.URLPrefix, "/"),
		logger:    logger,
		now:       time.Now,
	}
}

// AttachQueue sets the queue that runs Handle.
func (s *ReceiptService) AttachQueue(queue jobEnqueuer) {
	s.queue = queue
}

// Schedule enqueues waiting-card generation for a confirmed flow.
func (s *ReceiptService) Schedule(_ context.Context, flow *models.Flow) error {
	if s.queue == nil {
		return errors.New("receipt queue not attached")
	}
	return s.queue.Enqueue(jobs.Job{
		ID:       uuid.NewString(),
		Type:     JobTypeWaitingCard,
		Payload:  flow.ID,
		Enqueued: s.now().UTC(),
	})
}

// Handle renders and stores the waiting card for the flow named by the job payload.
func (s *ReceiptService) Handle(ctx context.Context, job jobs.Job) error {
	flowID, ok := job.Payload.(string)
	if !ok || flowID == "" {
		return fmt.Errorf("job %s: payload is not a flow id", job.ID)
	}

	flow, err := s.flows.Get(ctx, flowID)
	if err != nil {
		return fmt.Errorf("load flow %s: %w", flowID, err)
	}

	card := WaitingCardFor(flow, s.now())
	data, err := s.renderer.Render(card)
	if err != nil {
		return err
	}
	name := path.Join("receipts", flow.ID, card.FileName())
	if _, err := s.storage.Save(name, data); err != nil {
		return fmt.Errorf("store waiting card: %w", err)
	}

	if err := s.updateFlow(ctx, flowID, func(f *models.Flow) {
		f.ReceiptStatus = models.ReceiptStatusReady
		f.ReceiptPath = name
	}); err != nil {
		return err
	}
	s.logger.Info("waiting card generated", zap.String("flow_id", flowID), zap.String("path", name))
	return nil
}

// ObserveJob marks the flow's receipt as failed once the queue gives up on it.
func (s *ReceiptService) ObserveJob(job jobs.Job, outcome jobs.Outcome, jobErr error) {
	if outcome != jobs.OutcomeFailed {
		return
	}
	flowID, _ := job.Payload.(string)
	if flowID == "" {
		return
	}
	err := s.updateFlow(context.Background(), flowID, func(f *models.Flow) {
		f.ReceiptStatus = models.ReceiptStatusFailed
	})
	if err != nil {
		s.logger.Warn("failed to record receipt failure", zap.String("flow_id", flowID), zap.Error(err))
	}
	s.logger.Error("waiting card generation failed", zap.String("flow_id", flowID), zap.Error(jobErr))
}

func (s *ReceiptService) updateFlow(ctx context.Context, flowID string, fn func(*models.Flow)) error {
	unlock, err := s.flows.Lock(ctx, flowID, 30*time.Second)
	if err != nil {
		return fmt.Errorf("lock flow %s: %w", flowID, err)
	}
	defer unlock()

	flow, err := s.flows.Get(ctx, flowID)
	if err != nil {
		return fmt.Errorf("reload flow %s: %w", flowID, err)
	}
	fn(flow)
	flow.UpdatedAt = s.now().UTC()
	if err := s.flows.Update(ctx, flow); err != nil {
		return fmt.Errorf("update flow %s: %w", flowID, err)
	}
	return nil
}

// DownloadURL signs a link to the flow's stored waiting card.
func (s *ReceiptService) DownloadURL(flow *models.Flow) (string, error) {
	if flow.ReceiptPath == "" {
		return "", errors.New("receipt not generated")
	}
	token, _, err := s.signer.Generate(flow.ID, flow.ReceiptPath)
	if err != nil {
		return "", err
	}
	return s.urlPrefix + "/" + token, nil
}

// Open resolves a signed token to the stored waiting card and its download name.
func (s *ReceiptService) Open(token string) (*os.File, string, error) {
	flowID, relPath, _, err := s.signer.Parse(token, false)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrForbidden.Code, appErrors.ErrForbidden.Status, "receipt link is invalid or expired")
	}
	if !strings.HasPrefix(relPath, path.Join("receipts", flowID)+"/") {
		return nil, "", appErrors.Clone(appErrors.ErrForbidden, "receipt link is invalid or expired")
	}
	file, err := s.storage.Open(relPath)
	if err != nil {
		return nil, "", appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, "receipt no longer available")
	}
	return file, path.Base(relPath), nil
}

// WaitingCardFor fills a waiting card from a confirmed flow, substituting placeholders for missing values.
func WaitingCardFor(flow *models.Flow, now time.Time) export.WaitingCard {
	card := export.WaitingCard{
		ApplicationNumber: flow.ApplicationNumber,
		FullName:          fallbackApplicantName,
		District:          firstNonEmpty(flow.OfficerConstituency, fallbackDistrict),
		ApplicationType:   lostIDApplicationType,
		OfficerName:       firstNonEmpty(flow.OfficerName, fallbackOfficerName),
		Date:              now,
	}
	if flow.Record != nil {
		card.FullName = firstNonEmpty(flow.Record.FullNames, fallbackApplicantName)
	}
	return card
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
