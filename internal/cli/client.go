// Package cli implements compliancectl, a read-only client for the
// compliance reporting API.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/okian/compliance/internal/domain/types"
)

const defaultTimeout = 30 * time.Second

// ErrAPI is wrapped by every non-2xx response.
var ErrAPI = errors.New("api error")

// APIError carries the status and detail of a failed request.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Detail)
}

func (e *APIError) Unwrap() error { return ErrAPI }

// Client talks to the reporting API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client for baseURL, e.g. http://localhost:8000.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

func (c *Client) Health(ctx context.Context) (types.HealthResponse, error) {
	var out types.HealthResponse
	return out, c.get(ctx, "/api/health", nil, &out)
}

func (c *Client) Projects(ctx context.Context) ([]types.ProjectResponse, error) {
	var out []types.ProjectResponse
	return out, c.get(ctx, "/api/projects", nil, &out)
}

func (c *Client) Project(ctx context.Context, id uuid.UUID) (types.ProjectResponse, error) {
	var out types.ProjectResponse
	return out, c.get(ctx, "/api/projects/"+id.String(), nil, &out)
}

func (c *Client) ProjectHistory(ctx context.Context, id uuid.UUID, limit int) ([]types.ScoreHistoryResponse, error) {
	var out []types.ScoreHistoryResponse
	return out, c.get(ctx, "/api/projects/"+id.String()+"/history", limitQuery(limit), &out)
}

func (c *Client) ProjectTrend(ctx context.Context, id uuid.UUID, limit int) (types.TrendResponse, error) {
	var out types.TrendResponse
	return out, c.get(ctx, "/api/projects/"+id.String()+"/trend", limitQuery(limit), &out)
}

// Executions lists executions, optionally for one project.
func (c *Client) Executions(ctx context.Context, projectID *uuid.UUID, limit int) ([]types.ExecutionResponse, error) {
	q := limitQuery(limit)
	if projectID != nil {
		q.Set("project_id", projectID.String())
	}
	var out []types.ExecutionResponse
	return out, c.get(ctx, "/api/executions", q, &out)
}

func (c *Client) Execution(ctx context.Context, id uuid.UUID) (types.ExecutionResponse, error) {
	var out types.ExecutionResponse
	return out, c.get(ctx, "/api/executions/"+id.String(), nil, &out)
}

func (c *Client) Results(ctx context.Context, id uuid.UUID) ([]types.TestResultResponse, error) {
	var out []types.TestResultResponse
	return out, c.get(ctx, "/api/executions/"+id.String()+"/results", nil, &out)
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		detail := strings.TrimSpace(string(body))
		var e types.ErrorResponse
		if json.Unmarshal(body, &e) == nil && e.Detail != "" {
			detail = e.Detail
		}
		return &APIError{Status: resp.StatusCode, Detail: detail}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func limitQuery(limit int) url.Values {
	q := url.Values{}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	return q
}
