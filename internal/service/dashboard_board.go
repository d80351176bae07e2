package service

import (
	"sync"
	"time"

	"github.com/noah-isme/id-portal/internal/dto"
	"github.com/noah-isme/id-portal/internal/models"
)

// PatchKind selects a local edit applied to a board after a successful command.
type PatchKind int

const (
	// PatchRemove drops the row with ID from Collection.
	PatchRemove PatchKind = iota + 1
	// PatchOfficerStatus sets Status on the officer row with ID in Collection.
	PatchOfficerStatus
)

// Patch is a local edit of one board collection.
type Patch struct {
	Kind       PatchKind
	Collection dto.Collection
	ID         int
	Status     models.OfficerStatus
}

// Board is one admin's dashboard view state. Each collection slot is written independently.
type Board struct {
	mu          sync.RWMutex
	collections map[dto.Collection]dto.CollectionState
}

// NewBoard returns an empty board.
func NewBoard() *Board {
	return &Board{collections: make(map[dto.Collection]dto.CollectionState, len(dto.AllCollections))}
}

func (b *Board) set(name dto.Collection, state dto.CollectionState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.collections[name] = state
}

// fail marks a collection as failed while keeping whatever it last loaded.
func (b *Board) fail(name dto.Collection, notice *dto.Notice) {
	b.mu.Lock()
	defer b.mu.Unlock()
	state := b.collections[name]
	state.Error = notice
	b.collections[name] = state
}

// Apply performs a local patch. Rows that are not present are ignored.
func (b *Board) Apply(p Patch) {
	b.mu.Lock()
	defer b.mu.Unlock()

	state, ok := b.collections[p.Collection]
	if !ok {
		return
	}
	switch p.Kind {
	case PatchRemove:
		state.Applications = removeApplication(state.Applications, p.ID)
		state.Officers = removeOfficer(state.Officers, p.ID)
		state.Constituencies = removeConstituency(state.Constituencies, p.ID)
	case PatchOfficerStatus:
		officers := make([]models.Officer, len(state.Officers))
		copy(officers, state.Officers)
		for i := range officers {
			if officers[i].ID == p.ID {
				officers[i].Status = p.Status
			}
		}
		state.Officers = officers
	}
	b.collections[p.Collection] = state
}

// Snapshot copies the board for rendering.
func (b *Board) Snapshot() *dto.DashboardResponse {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := &dto.DashboardResponse{Collections: make(map[dto.Collection]dto.CollectionState, len(dto.AllCollections))}
	for _, name := range dto.AllCollections {
		state := b.collections[name]
		out.Collections[name] = dto.CollectionState{
			Applications:   append([]models.Application(nil), state.Applications...),
			Officers:       append([]models.Officer(nil), state.Officers...),
			Constituencies: append([]models.Constituency(nil), state.Constituencies...),
			Loaded:         state.Loaded,
			Error:          state.Error,
		}
	}
	return out
}

func removeApplication(items []models.Application, id int) []models.Application {
	out := make([]models.Application, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}

func removeOfficer(items []models.Officer, id int) []models.Officer {
	out := make([]models.Officer, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}

func removeConstituency(items []models.Constituency, id int) []models.Constituency {
	out := make([]models.Constituency, 0, len(items))
	for _, item := range items {
		if item.ID != id {
			out = append(out, item)
		}
	}
	return out
}

// BoardRegistry keeps one board per admin session. Boards of sessions that expire without a logout
// are dropped by CleanupOlderThan once they go unused for longer than the session TTL.
type BoardRegistry struct {
	mu       sync.Mutex
	boards   map[string]*Board
	lastUsed map[string]time.Time
	now      func() time.Time
}

// NewBoardRegistry returns an empty registry.
func NewBoardRegistry() *BoardRegistry {
	return &BoardRegistry{
		boards:   make(map[string]*Board),
		lastUsed: make(map[string]time.Time),
		now:      time.Now,
	}
}

// Acquire returns the session's board, creating it on first use.
func (r *BoardRegistry) Acquire(sessionID string) *Board {
	r.mu.Lock()
	defer r.mu.Unlock()
	board, ok := r.boards[sessionID]
	if !ok {
		board = NewBoard()
		r.boards[sessionID] = board
	}
	r.lastUsed[sessionID] = r.now()
	return board
}

// Drop forgets the session's board.
func (r *BoardRegistry) Drop(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.boards, sessionID)
	delete(r.lastUsed, sessionID)
}

// CleanupOlderThan drops boards not acquired within ttl and returns their session IDs.
func (r *BoardRegistry) CleanupOlderThan(ttl time.Duration) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-ttl)
	var dropped []string
	for sessionID, used := range r.lastUsed {
		if used.Before(cutoff) {
			delete(r.boards, sessionID)
			delete(r.lastUsed, sessionID)
			dropped = append(dropped, sessionID)
		}
	}
	return dropped, nil
}

// Len reports how many boards are held.
func (r *BoardRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.boards)
}
