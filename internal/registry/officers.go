package registry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/noah-isme/id-portal/internal/models"
)

// OfficerAction is a status change an admin applies to an officer.
type OfficerAction string

const (
	OfficerApprove   OfficerAction = "approve"
	OfficerReject    OfficerAction = "reject"
	OfficerSuspend   OfficerAction = "suspend"
	OfficerUnsuspend OfficerAction = "unsuspend"
)

type officersBody struct {
	Officers []models.Officer `json:"officers"`
}

// OfficerLoginResult is the registry's answer to a successful officer login.
type OfficerLoginResult struct {
	Token   string                `json:"token"`
	Officer models.OfficerProfile `json:"officer"`
}

// AdminLoginResult is the registry's answer to a successful admin login.
type AdminLoginResult struct {
	Token string              `json:"token"`
	Admin models.AdminProfile `json:"admin"`
}

// OfficerSignup is the registry signup body.
type OfficerSignup struct {
	FullName     string `json:"fullName"`
	IDNumber     string `json:"idNumber"`
	Email        string `json:"email"`
	PhoneNumber  string `json:"phoneNumber"`
	Station      string `json:"station"`
	Constituency string `json:"constituency"`
	Password     string `json:"password"`
}

// PendingOfficers lists officers awaiting approval.
func (c *Client) PendingOfficers(ctx context.Context) ([]models.Officer, error) {
	var body officersBody
	if err := c.getJSON(ctx, "officers.pending", "/api/admin/officers/pending", "Failed to fetch pending officers", &body); err != nil {
		return nil, err
	}
	return body.Officers, nil
}

// ApprovedOfficers lists approved and suspended officers.
func (c *Client) ApprovedOfficers(ctx context.Context) ([]models.Officer, error) {
	var body officersBody
	if err := c.getJSON(ctx, "officers.approved", "/api/admin/officers/approved", "Failed to fetch approved officers", &body); err != nil {
		return nil, err
	}
	return body.Officers, nil
}

// ChangeOfficer applies action to officer id.
func (c *Client) ChangeOfficer(ctx context.Context, id int, action OfficerAction) (string, error) {
	path := fmt.Sprintf("/api/admin/officers/%d/%s", id, action)
	return c.send(ctx, "officers."+string(action), http.MethodPut, path, nil, fmt.Sprintf("Failed to %s officer", action))
}

// DeleteOfficer removes an officer account.
func (c *Client) DeleteOfficer(ctx context.Context, id int) (string, error) {
	return c.send(ctx, "officers.delete", http.MethodDelete, fmt.Sprintf("/api/admin/officers/%d", id), nil, "Failed to delete officer")
}

// OfficerLogin exchanges officer credentials for a registry token.
func (c *Client) OfficerLogin(ctx context.Context, email, password string) (*OfficerLoginResult, error) {
	payload := map[string]string{"email": email, "password": password}
	var result OfficerLoginResult
	if err := c.sendJSON(ctx, "officer.login", http.MethodPost, "/api/officer/login", payload, "Invalid credentials", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AdminLogin exchanges admin credentials for a registry token.
func (c *Client) AdminLogin(ctx context.Context, username, password string) (*AdminLoginResult, error) {
	payload := map[string]string{"username": username, "password": password}
	var result AdminLoginResult
	if err := c.sendJSON(ctx, "admin.login", http.MethodPost, "/api/admin/login", payload, "Invalid credentials", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SignupOfficer submits an officer account request for admin approval.
func (c *Client) SignupOfficer(ctx context.Context, signup OfficerSignup) (string, error) {
	return c.send(ctx, "officer.signup", http.MethodPost, "/api/officer/signup", signup, "Failed to submit application")
}

// ApproveOfficer activates a pending officer.
func (c *Client) ApproveOfficer(ctx context.Context, id int) (string, error) {
	return c.ChangeOfficer(ctx, id, OfficerApprove)
}

// RejectOfficer declines a pending officer.
func (c *Client) RejectOfficer(ctx context.Context, id int) (string, error) {
	return c.ChangeOfficer(ctx, id, OfficerReject)
}

// SuspendOfficer blocks an approved officer from signing in.
func (c *Client) SuspendOfficer(ctx context.Context, id int) (string, error) {
	return c.ChangeOfficer(ctx, id, OfficerSuspend)
}

// UnsuspendOfficer reactivates a suspended officer.
func (c *Client) UnsuspendOfficer(ctx context.Context, id int) (string, error) {
	return c.ChangeOfficer(ctx, id, OfficerUnsuspend)
}
