package service

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/noah-isme/id-portal/internal/dto"
	"github.com/noah-isme/id-portal/internal/models"
	"github.com/noah-isme/id-portal/internal/registry"
	"github.com/noah-isme/id-portal/pkg/idcard"
)

type collectionFetcher struct {
	fallback string
	fetch    func(ctx context.Context, reg dashboardRegistry) (dto.CollectionState, error)
}

func applicationFetcher(fallback string, list func(dashboardRegistry, context.Context) ([]models.Application, error)) collectionFetcher {
	return collectionFetcher{
		fallback: fallback,
		fetch: func(ctx context.Context, reg dashboardRegistry) (dto.CollectionState, error) {
			items, err := list(reg, ctx)
			return dto.CollectionState{Applications: items}, err
		},
	}
}

func officerFetcher(fallback string, list func(dashboardRegistry, context.Context) ([]models.Officer, error)) collectionFetcher {
	return collectionFetcher{
		fallback: fallback,
		fetch: func(ctx context.Context, reg dashboardRegistry) (dto.CollectionState, error) {
			items, err := list(reg, ctx)
			return dto.CollectionState{Officers: items}, err
		},
	}
}

var collectionFetchers = map[dto.Collection]collectionFetcher{
	dto.CollectionApplications:     applicationFetcher("Failed to fetch applications", dashboardRegistry.Applications),
	dto.CollectionPreview:          applicationFetcher("Failed to fetch preview applications", dashboardRegistry.PreviewQueue),
	dto.CollectionDispatch:         applicationFetcher("Failed to fetch dispatch applications", dashboardRegistry.DispatchQueue),
	dto.CollectionHistory:          applicationFetcher("Failed to fetch application history", dashboardRegistry.History),
	dto.CollectionPendingOfficers:  officerFetcher("Failed to fetch pending officers", dashboardRegistry.PendingOfficers),
	dto.CollectionApprovedOfficers: officerFetcher("Failed to fetch approved officers", dashboardRegistry.ApprovedOfficers),
	dto.CollectionConstituencies: {
		fallback: "Failed to fetch constituencies",
		fetch: func(ctx context.Context, reg dashboardRegistry) (dto.CollectionState, error) {
			items, err := reg.Constituencies(ctx)
			return dto.CollectionState{Constituencies: items}, err
		},
	},
}

// Invalidator re-fetches a set of collections concurrently into a board.
type Invalidator struct {
	registry dashboardRegistry
	logger   *zap.Logger
}

// NewInvalidator builds an invalidator over reg.
func NewInvalidator(reg dashboardRegistry, logger *zap.Logger) *Invalidator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Invalidator{registry: reg, logger: logger}
}

// Refresh loads every named collection in its own goroutine. Each goroutine writes only its own slot;
// failed collections keep their previous rows plus a destructive notice, and their notices are returned.
func (i *Invalidator) Refresh(ctx context.Context, board *Board, names []dto.Collection) []dto.Notice {
	results := make([]*dto.Notice, len(names))

	var wg sync.WaitGroup
	for idx, name := range names {
		fetcher, ok := collectionFetchers[name]
		if !ok {
			continue
		}
		wg.Add(1)
		go func(idx int, name dto.Collection, fetcher collectionFetcher) {
			defer wg.Done()
			state, err := fetcher.fetch(ctx, i.registry)
			if err != nil {
				appErr := registryFailure(err, fetcher.fallback)
				i.logger.Warn("dashboard collection fetch failed",
					zap.String("collection", string(name)),
					zap.Error(err),
				)
				notice := dto.Failure(appErr.Message)
				results[idx] = notice
				board.fail(name, notice)
				return
			}
			state.Loaded = true
			board.set(name, state)
		}(idx, name, fetcher)
	}
	wg.Wait()

	var notices []dto.Notice
	for _, notice := range results {
		if notice != nil {
			notices = append(notices, *notice)
		}
	}
	return notices
}

// DashboardService serves the admin dashboard.
type DashboardService struct {
	registry    dashboardRegistry
	boards      *BoardRegistry
	invalidator *Invalidator
	logger      *zap.Logger
}

// NewDashboardService wires the dashboard over the registry client.
func NewDashboardService(reg dashboardRegistry, boards *BoardRegistry, logger *zap.Logger) *DashboardService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if boards == nil {
		boards = NewBoardRegistry()
	}
	return &DashboardService{
		registry:    reg,
		boards:      boards,
		invalidator: NewInvalidator(reg, logger),
		logger:      logger,
	}
}

// Load fetches every collection into the session's board and returns the snapshot.
func (s *DashboardService) Load(ctx context.Context, session *models.Session) (*dto.DashboardResponse, error) {
	ctx = registry.WithToken(ctx, session.RegistryToken)
	board := s.boards.Acquire(session.ID)
	notices := s.invalidator.Refresh(ctx, board, dto.AllCollections)

	snapshot := board.Snapshot()
	snapshot.Notices = notices
	return snapshot, nil
}

// Execute runs cmd, then applies its local patch and refreshes the collections it invalidates.
// On failure the board is left untouched.
func (s *DashboardService) Execute(ctx context.Context, session *models.Session, cmd Command) (*dto.CommandResponse, *dto.Notice, error) {
	ctx = registry.WithToken(ctx, session.RegistryToken)

	outcome, err := cmd.Execute(ctx, s.registry)
	if err != nil {
		s.logger.Warn("dashboard command failed",
			zap.String("command", cmd.Name()),
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
		return nil, nil, err
	}

	board := s.boards.Acquire(session.ID)
	if outcome.Patch != nil {
		board.Apply(*outcome.Patch)
	}
	notices := s.invalidator.Refresh(ctx, board, outcome.Invalidates)

	s.logger.Info("dashboard command executed",
		zap.String("command", cmd.Name()),
		zap.String("session_id", session.ID),
	)

	snapshot := board.Snapshot()
	snapshot.Notices = notices
	return &dto.CommandResponse{
		Refreshed: outcome.Invalidates,
		IDNumber:  outcome.IDNumber,
		Dashboard: snapshot,
	}, outcome.Notice, nil
}

// ApplicationDetail fetches one application with its document URLs resolved.
func (s *DashboardService) ApplicationDetail(ctx context.Context, session *models.Session, id int) (*dto.ApplicationDetailResponse, error) {
	ctx = registry.WithToken(ctx, session.RegistryToken)
	app, err := s.registry.Application(ctx, id)
	if err != nil {
		return nil, failWithNotice(registryFailure(err, "Failed to fetch application details"), "")
	}

	docs := make([]models.Document, len(app.Documents))
	for i, doc := range app.Documents {
		doc.URL = s.registry.UploadURL(idcard.FileName(doc.FilePath))
		docs[i] = doc
	}
	app.Documents = docs
	return &dto.ApplicationDetailResponse{Application: *app}, nil
}

// DropBoard forgets a session's board.
func (s *DashboardService) DropBoard(sessionID string) {
	s.boards.Drop(sessionID)
}
