package registry

import (
	"context"
	"fmt"
	"net/http"

	"github.com/noah-isme/id-portal/internal/models"
)

type constituenciesBody struct {
	Constituencies []models.Constituency `json:"constituencies"`
}

// Constituencies lists all constituencies.
func (c *Client) Constituencies(ctx context.Context) ([]models.Constituency, error) {
	var body constituenciesBody
	if err := c.getJSON(ctx, "constituencies.list", "/api/constituencies", "Failed to fetch constituencies", &body); err != nil {
		return nil, err
	}
	return body.Constituencies, nil
}

// AddConstituency creates a constituency.
func (c *Client) AddConstituency(ctx context.Context, name string) (string, error) {
	return c.send(ctx, "constituencies.add", http.MethodPost, "/api/admin/constituencies", map[string]string{"name": name}, "Failed to add constituency")
}

// DeleteConstituency removes a constituency.
func (c *Client) DeleteConstituency(ctx context.Context, id int) (string, error) {
	return c.send(ctx, "constituencies.delete", http.MethodDelete, fmt.Sprintf("/api/admin/constituencies/%d", id), nil, "Failed to delete constituency")
}
