package dto

import "github.com/noah-isme/id-portal/internal/models"

// Collection names one list shown on the admin dashboard.
type Collection string

const (
	CollectionApplications     Collection = "applications"
	CollectionPreview          Collection = "preview"
	CollectionDispatch         Collection = "dispatch"
	CollectionPendingOfficers  Collection = "pending_officers"
	CollectionApprovedOfficers Collection = "approved_officers"
	CollectionConstituencies   Collection = "constituencies"
	CollectionHistory          Collection = "history"
)

// AllCollections lists every dashboard collection in display order.
var AllCollections = []Collection{
	CollectionApplications,
	CollectionPreview,
	CollectionDispatch,
	CollectionPendingOfficers,
	CollectionApprovedOfficers,
	CollectionConstituencies,
	CollectionHistory,
}

// CollectionState is one collection's latest contents, or the notice explaining why it could not be loaded.
type CollectionState struct {
	Applications   []models.Application  `json:"applications,omitempty"`
	Officers       []models.Officer      `json:"officers,omitempty"`
	Constituencies []models.Constituency `json:"constituencies,omitempty"`
	Loaded         bool                  `json:"loaded"`
	Error          *Notice               `json:"error,omitempty"`
}

// DashboardResponse is a snapshot of the admin dashboard.
type DashboardResponse struct {
	Collections map[Collection]CollectionState `json:"collections"`
	Notices     []Notice                       `json:"notices,omitempty"`
}

// AddConstituencyRequest creates a constituency.
type AddConstituencyRequest struct {
	Name string `json:"name"`
}

// ApplicationDetailResponse is a full application with resolved document URLs.
type ApplicationDetailResponse struct {
	Application models.Application `json:"application"`
}

// CommandResponse reports the outcome of a dashboard action.
type CommandResponse struct {
	Refreshed []Collection       `json:"refreshed,omitempty"`
	IDNumber  string             `json:"id_number,omitempty"`
	Dashboard *DashboardResponse `json:"dashboard"`
}
