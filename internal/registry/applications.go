package registry

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"

	"github.com/noah-isme/id-portal/internal/models"
)

type applicationsBody struct {
	Applications []models.Application `json:"applications"`
}

type applicationBody struct {
	Application models.Application `json:"application"`
}

// ApprovalResult is the registry's answer to approving an application.
type ApprovalResult struct {
	Message  string `json:"message"`
	IDNumber string `json:"id_number"`
}

// LostIDResult is the registry's answer to a lost-ID submission. WaitingCardNumber may be empty.
type LostIDResult struct {
	ApplicationNumber string `json:"applicationNumber"`
	ApplicationID     int    `json:"applicationId"`
	WaitingCardNumber string `json:"waitingCardNumber"`
}

// Upload is one file in a multipart submission.
type Upload struct {
	Field       string
	FileName    string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

// LostIDSubmission is the form sent for a lost-ID replacement.
type LostIDSubmission struct {
	ExistingIDNumber string
	OBNumber         string
	FullNames        string
	DateOfBirth      string
	FatherName       string
	MotherName       string
	HomeDistrict     string
	Constituency     string
	Files            []Upload
}

func (c *Client) listApplications(ctx context.Context, endpoint, path, fallback string) ([]models.Application, error) {
	var body applicationsBody
	if err := c.getJSON(ctx, endpoint, path, fallback, &body); err != nil {
		return nil, err
	}
	return body.Applications, nil
}

// Applications lists applications awaiting review.
func (c *Client) Applications(ctx context.Context) ([]models.Application, error) {
	return c.listApplications(ctx, "applications.list", "/api/admin/applications", "Failed to fetch applications")
}

// DispatchQueue lists printed applications awaiting dispatch.
func (c *Client) DispatchQueue(ctx context.Context) ([]models.Application, error) {
	return c.listApplications(ctx, "applications.dispatch", "/api/admin/applications/dispatch", "Failed to fetch dispatch applications")
}

// PreviewQueue lists approved applications awaiting printing.
func (c *Client) PreviewQueue(ctx context.Context) ([]models.Application, error) {
	return c.listApplications(ctx, "applications.preview", "/api/admin/applications/preview", "Failed to fetch preview applications")
}

// History lists processed applications.
func (c *Client) History(ctx context.Context) ([]models.Application, error) {
	return c.listApplications(ctx, "applications.history", "/api/admin/applications/history", "Failed to fetch application history")
}

// Application fetches one application with its documents.
func (c *Client) Application(ctx context.Context, id int) (*models.Application, error) {
	var body applicationBody
	if err := c.getJSON(ctx, "applications.get", fmt.Sprintf("/api/admin/applications/%d", id), "Failed to fetch application details", &body); err != nil {
		return nil, err
	}
	return &body.Application, nil
}

// ApproveApplication approves an application and returns the issued ID number.
func (c *Client) ApproveApplication(ctx context.Context, id int) (*ApprovalResult, error) {
	var result ApprovalResult
	if err := c.sendJSON(ctx, "applications.approve", http.MethodPut, fmt.Sprintf("/api/admin/applications/%d/approve", id), nil, "Failed to approve application", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// RejectApplication rejects an application.
func (c *Client) RejectApplication(ctx context.Context, id int) (string, error) {
	return c.send(ctx, "applications.reject", http.MethodPut, fmt.Sprintf("/api/admin/applications/%d/reject", id), nil, "Failed to reject application")
}

// PrintApplication marks an approved application as printed.
func (c *Client) PrintApplication(ctx context.Context, id int) (string, error) {
	return c.send(ctx, "applications.print", http.MethodPut, fmt.Sprintf("/api/admin/applications/%d/print", id), nil, "Failed to print ID card")
}

// DispatchApplication marks a printed application as dispatched.
func (c *Client) DispatchApplication(ctx context.Context, id int) (string, error) {
	return c.send(ctx, "applications.dispatch_one", http.MethodPut, fmt.Sprintf("/api/admin/applications/%d/dispatch", id), nil, "Failed to dispatch ID")
}

// SubmitForApproval forwards a paid application to admin review.
func (c *Client) SubmitForApproval(ctx context.Context, id int) (string, error) {
	return c.send(ctx, "applications.submit_for_approval", http.MethodPut, fmt.Sprintf("/api/applications/%d/submit-for-approval", id), nil, "Failed to submit application for approval")
}

// SearchByIDNumber finds the issued application holding idNumber. A missing record is a 404 KindAPI error.
func (c *Client) SearchByIDNumber(ctx context.Context, idNumber string) (*models.Application, error) {
	var body applicationBody
	path := "/api/applications/search-by-id/" + url.PathEscape(idNumber)
	if err := c.getJSON(ctx, "applications.search_by_id", path, "Failed to search for ID", &body); err != nil {
		return nil, err
	}
	return &body.Application, nil
}

// TrackApplication looks up an application's status by number.
func (c *Client) TrackApplication(ctx context.Context, number string) (*models.Application, error) {
	var body applicationBody
	path := "/api/applications/track/" + url.PathEscape(number)
	if err := c.getJSON(ctx, "applications.track", path, "Application not found", &body); err != nil {
		return nil, err
	}
	return &body.Application, nil
}

// OfficerApplications lists applications handled at an officer's station.
func (c *Client) OfficerApplications(ctx context.Context, officerID int) ([]models.Application, error) {
	var apps []models.Application
	path := fmt.Sprintf("/api/officer/applications?officer_id=%d", officerID)
	if err := c.getJSON(ctx, "officer.applications", path, "Failed to fetch applications", &apps); err != nil {
		return nil, err
	}
	return apps, nil
}

// MarkCardArrived records that a dispatched card reached the station.
func (c *Client) MarkCardArrived(ctx context.Context, id int) (string, error) {
	return c.send(ctx, "officer.card_arrived", http.MethodPut, fmt.Sprintf("/api/officer/applications/%d/card-arrived", id), nil, "Failed to confirm card arrival")
}

// MarkCardCollected records that the holder collected the card.
func (c *Client) MarkCardCollected(ctx context.Context, id int) (string, error) {
	return c.send(ctx, "officer.card_collected", http.MethodPut, fmt.Sprintf("/api/officer/applications/%d/card-collected", id), nil, "Failed to confirm card collection")
}

// SubmitLostID sends a replacement application with its documents as one multipart request.
func (c *Client) SubmitLostID(ctx context.Context, sub LostIDSubmission) (*LostIDResult, error) {
	const endpoint = "applications.lost_id"
	const fallback = "Failed to submit application"

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	fields := [][2]string{
		{"existing_id_number", sub.ExistingIDNumber},
		{"ob_number", sub.OBNumber},
		{"renewal_reason", "lost"},
		{"application_type", "renewal"},
		{"full_names", sub.FullNames},
		{"date_of_birth", sub.DateOfBirth},
		{"father_name", sub.FatherName},
		{"mother_name", sub.MotherName},
		{"home_district", sub.HomeDistrict},
		{"constituency", sub.Constituency},
	}
	for _, f := range fields {
		if err := writer.WriteField(f[0], f[1]); err != nil {
			return nil, &Error{Kind: KindDecode, Endpoint: endpoint, Message: fallback, Err: err}
		}
	}
	for _, upload := range sub.Files {
		if err := writeUpload(writer, upload); err != nil {
			return nil, &Error{Kind: KindDecode, Endpoint: endpoint, Message: fallback, Err: err}
		}
	}
	if err := writer.Close(); err != nil {
		return nil, &Error{Kind: KindDecode, Endpoint: endpoint, Message: fallback, Err: err}
	}

	var result LostIDResult
	err := c.do(ctx, call{
		endpoint:    endpoint,
		method:      http.MethodPost,
		path:        "/api/applications/lost-id",
		body:        body,
		contentType: writer.FormDataContentType(),
		fallback:    fallback,
	}, &result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func writeUpload(writer *multipart.Writer, upload Upload) error {
	src, err := upload.Open()
	if err != nil {
		return fmt.Errorf("open %s: %w", upload.Field, err)
	}
	defer src.Close() //nolint:errcheck

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, upload.Field, upload.FileName))
	contentType := upload.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := writer.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create part %s: %w", upload.Field, err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("copy %s: %w", upload.Field, err)
	}
	return nil
}
