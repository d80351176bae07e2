package service

import (
	"context"
	"strings"

	"github.com/noah-isme/id-portal/internal/dto"
	"github.com/noah-isme/id-portal/internal/models"
	"github.com/noah-isme/id-portal/internal/registry"
	appErrors "github.com/noah-isme/id-portal/pkg/errors"
)

type dashboardRegistry interface {
	Applications(ctx context.Context) ([]models.Application, error)
	PreviewQueue(ctx context.Context) ([]models.Application, error)
	DispatchQueue(ctx context.Context) ([]models.Application, error)
	History(ctx context.Context) ([]models.Application, error)
	PendingOfficers(ctx context.Context) ([]models.Officer, error)
	ApprovedOfficers(ctx context.Context) ([]models.Officer, error)
	Constituencies(ctx context.Context) ([]models.Constituency, error)
	Application(ctx context.Context, id int) (*models.Application, error)

	ChangeOfficer(ctx context.Context, id int, action registry.OfficerAction) (string, error)
	DeleteOfficer(ctx context.Context, id int) (string, error)
	ApproveApplication(ctx context.Context, id int) (*registry.ApprovalResult, error)
	RejectApplication(ctx context.Context, id int) (string, error)
	PrintApplication(ctx context.Context, id int) (string, error)
	DispatchApplication(ctx context.Context, id int) (string, error)
	AddConstituency(ctx context.Context, name string) (string, error)
	DeleteConstituency(ctx context.Context, id int) (string, error)

	UploadURL(filename string) string
}

// Outcome is what a successful command asks the board to do next.
type Outcome struct {
	Patch       *Patch
	Invalidates []dto.Collection
	Notice      *dto.Notice
	IDNumber    string
}

// Command is one admin action against the registry.
type Command interface {
	Name() string
	Execute(ctx context.Context, reg dashboardRegistry) (Outcome, error)
}

type officerCommand struct {
	id     int
	action registry.OfficerAction
}

// ApproveOfficer activates a pending officer and drops it from the pending list.
func ApproveOfficer(id int) Command { return officerCommand{id: id, action: registry.OfficerApprove} }

// RejectOfficer declines a pending officer and drops it from the pending list.
func RejectOfficer(id int) Command { return officerCommand{id: id, action: registry.OfficerReject} }

// SuspendOfficer marks an approved officer suspended in place.
func SuspendOfficer(id int) Command { return officerCommand{id: id, action: registry.OfficerSuspend} }

// UnsuspendOfficer marks a suspended officer approved in place.
func UnsuspendOfficer(id int) Command {
	return officerCommand{id: id, action: registry.OfficerUnsuspend}
}

func (c officerCommand) Name() string { return "officer." + string(c.action) }

func (c officerCommand) Execute(ctx context.Context, reg dashboardRegistry) (Outcome, error) {
	if _, err := reg.ChangeOfficer(ctx, c.id, c.action); err != nil {
		return Outcome{}, commandFailure(err, "Failed to "+string(c.action)+" officer")
	}
	switch c.action {
	case registry.OfficerApprove:
		return Outcome{
			Patch:  &Patch{Kind: PatchRemove, Collection: dto.CollectionPendingOfficers, ID: c.id},
			Notice: dto.Success("Success", "Officer approved successfully"),
		}, nil
	case registry.OfficerReject:
		return Outcome{
			Patch:  &Patch{Kind: PatchRemove, Collection: dto.CollectionPendingOfficers, ID: c.id},
			Notice: dto.Success("Success", "Officer rejected"),
		}, nil
	case registry.OfficerSuspend:
		return Outcome{
			Patch:  &Patch{Kind: PatchOfficerStatus, Collection: dto.CollectionApprovedOfficers, ID: c.id, Status: models.OfficerStatusSuspended},
			Notice: dto.Success("Officer Suspended", "The officer has been suspended."),
		}, nil
	default:
		return Outcome{
			Patch:  &Patch{Kind: PatchOfficerStatus, Collection: dto.CollectionApprovedOfficers, ID: c.id, Status: models.OfficerStatusApproved},
			Notice: dto.Success("Officer Unsuspended", "The officer has been reactivated."),
		}, nil
	}
}

type deleteOfficerCommand struct{ id int }

// DeleteOfficer removes an officer account and its row.
func DeleteOfficer(id int) Command { return deleteOfficerCommand{id: id} }

func (c deleteOfficerCommand) Name() string { return "officer.delete" }

func (c deleteOfficerCommand) Execute(ctx context.Context, reg dashboardRegistry) (Outcome, error) {
	if _, err := reg.DeleteOfficer(ctx, c.id); err != nil {
		return Outcome{}, commandFailure(err, "Failed to delete officer")
	}
	return Outcome{
		Patch:  &Patch{Kind: PatchRemove, Collection: dto.CollectionApprovedOfficers, ID: c.id},
		Notice: dto.Success("Officer Deleted", "The officer has been removed."),
	}, nil
}

// applicationMoves lists the collections a status change can move a row between.
var applicationMoves = []dto.Collection{
	dto.CollectionApplications,
	dto.CollectionDispatch,
	dto.CollectionPreview,
	dto.CollectionHistory,
}

type decideApplicationCommand struct {
	id      int
	approve bool
}

// ApproveApplication approves a submitted application; the registry issues its ID number.
func ApproveApplication(id int) Command { return decideApplicationCommand{id: id, approve: true} }

// RejectApplication rejects a submitted application.
func RejectApplication(id int) Command { return decideApplicationCommand{id: id} }

func (c decideApplicationCommand) Name() string {
	if c.approve {
		return "application.approve"
	}
	return "application.reject"
}

func (c decideApplicationCommand) Execute(ctx context.Context, reg dashboardRegistry) (Outcome, error) {
	if c.approve {
		res, err := reg.ApproveApplication(ctx, c.id)
		if err != nil {
			return Outcome{}, commandFailure(err, "Failed to approve application")
		}
		return Outcome{
			Invalidates: applicationMoves,
			Notice:      dto.Success("Success", "Application approved successfully"),
			IDNumber:    res.IDNumber,
		}, nil
	}
	if _, err := reg.RejectApplication(ctx, c.id); err != nil {
		return Outcome{}, commandFailure(err, "Failed to reject application")
	}
	return Outcome{
		Invalidates: applicationMoves,
		Notice:      dto.Success("Success", "Application rejected"),
	}, nil
}

type printCommand struct{ id int }

// PrintApplication sends an approved card to the dispatch queue.
func PrintApplication(id int) Command { return printCommand{id: id} }

func (c printCommand) Name() string { return "application.print" }

func (c printCommand) Execute(ctx context.Context, reg dashboardRegistry) (Outcome, error) {
	if _, err := reg.PrintApplication(ctx, c.id); err != nil {
		return Outcome{}, commandFailure(err, "Failed to print ID card")
	}
	return Outcome{
		Invalidates: []dto.Collection{dto.CollectionPreview, dto.CollectionDispatch, dto.CollectionHistory},
		Notice:      dto.Success("ID Card Printed", "ID card has been sent to dispatch"),
	}, nil
}

type dispatchCommand struct{ id int }

// DispatchApplication marks a printed card as dispatched.
func DispatchApplication(id int) Command { return dispatchCommand{id: id} }

func (c dispatchCommand) Name() string { return "application.dispatch" }

func (c dispatchCommand) Execute(ctx context.Context, reg dashboardRegistry) (Outcome, error) {
	if _, err := reg.DispatchApplication(ctx, c.id); err != nil {
		return Outcome{}, commandFailure(err, "Failed to dispatch ID")
	}
	return Outcome{
		Patch:       &Patch{Kind: PatchRemove, Collection: dto.CollectionDispatch, ID: c.id},
		Invalidates: []dto.Collection{dto.CollectionHistory},
		Notice:      dto.Success("Success", "ID dispatched successfully"),
	}, nil
}

type addConstituencyCommand struct{ name string }

// AddConstituency creates a constituency from a trimmed, non-empty name.
func AddConstituency(name string) Command { return addConstituencyCommand{name: strings.TrimSpace(name)} }

func (c addConstituencyCommand) Name() string { return "constituency.add" }

func (c addConstituencyCommand) Execute(ctx context.Context, reg dashboardRegistry) (Outcome, error) {
	if c.name == "" {
		return Outcome{}, failWithNotice(appErrors.Clone(appErrors.ErrValidation, "Please enter a constituency name"), "")
	}
	if _, err := reg.AddConstituency(ctx, c.name); err != nil {
		return Outcome{}, commandFailure(err, "Failed to add constituency")
	}
	return Outcome{
		Invalidates: []dto.Collection{dto.CollectionConstituencies},
		Notice:      dto.Success("Success", "Constituency added successfully"),
	}, nil
}

type deleteConstituencyCommand struct{ id int }

// DeleteConstituency removes a constituency.
func DeleteConstituency(id int) Command { return deleteConstituencyCommand{id: id} }

func (c deleteConstituencyCommand) Name() string { return "constituency.delete" }

func (c deleteConstituencyCommand) Execute(ctx context.Context, reg dashboardRegistry) (Outcome, error) {
	if _, err := reg.DeleteConstituency(ctx, c.id); err != nil {
		return Outcome{}, commandFailure(err, "Failed to delete constituency")
	}
	return Outcome{
		Invalidates: []dto.Collection{dto.CollectionConstituencies},
		Notice:      dto.Success("Success", "Constituency deleted successfully"),
	}, nil
}

func commandFailure(err error, fallback string) error {
	return failWithNotice(registryFailure(err, fallback), "")
}
