package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/claude/ironlog/internal/models"
	"github.com/claude/ironlog/internal/records"
	"github.com/claude/ironlog/internal/storage"
	"github.com/claude/ironlog/internal/strength"
	"github.com/google/uuid"
)

// HTTPClient implements DataSource by calling the IronLog REST API.
// Used for remote MCP mode where the binary runs locally (stdio) but
// data lives on the remote server (accessed over Tailscale). The server
// identifies the user, so userID arguments are ignored.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// Compile-time check: HTTPClient satisfies DataSource.
var _ DataSource = (*HTTPClient)(nil)

// NewHTTPClient creates an HTTPClient targeting the given base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *HTTPClient) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("httpclient: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("httpclient: %s: %w", path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: read body: %w", err)
	}

	switch resp.StatusCode {
	case http.StatusOK:
		return body, nil
	case http.StatusNotFound:
		return nil, fmt.Errorf("httpclient: %s: %w", path, storage.ErrNotFound)
	default:
		return nil, fmt.Errorf("httpclient: %s returned %d: %s", path, resp.StatusCode, body)
	}
}

// getJSON fetches path and decodes the response into v.
func (c *HTTPClient) getJSON(ctx context.Context, path string, params url.Values, what string, v any) error {
	body, err := c.get(ctx, path, params)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("httpclient: decode %s: %w", what, err)
	}
	return nil
}

func timeParams(start, end time.Time) url.Values {
	v := url.Values{}
	v.Set("start", start.Format(time.RFC3339))
	v.Set("end", end.Format(time.RFC3339))
	return v
}

func (c *HTTPClient) ListSessions(ctx context.Context, _ int, start, end time.Time) ([]models.SessionSummary, error) {
	var sessions []models.SessionSummary
	if err := c.getJSON(ctx, "/api/v1/sessions", timeParams(start, end), "sessions", &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *HTTPClient) GetSession(ctx context.Context, _ int, sessionID uuid.UUID) (*models.Session, error) {
	var session models.Session
	if err := c.getJSON(ctx, "/api/v1/sessions/"+sessionID.String(), nil, "session", &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *HTTPClient) SessionRecords(ctx context.Context, _ int, sessionID uuid.UUID) (*records.Result, error) {
	var result records.Result
	if err := c.getJSON(ctx, "/api/v1/sessions/"+sessionID.String()+"/records", nil, "records", &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *HTTPClient) StrengthLevels(ctx context.Context, _ int) (*strength.Levels, error) {
	var resp struct {
		Levels *strength.Levels `json:"levels"`
	}
	if err := c.getJSON(ctx, "/api/v1/strength", nil, "strength levels", &resp); err != nil {
		return nil, err
	}
	return resp.Levels, nil
}

func (c *HTTPClient) BestLifts(ctx context.Context, _ int) ([]strength.ExerciseData, error) {
	var lifts []strength.ExerciseData
	if err := c.getJSON(ctx, "/api/v1/strength/lifts", nil, "best lifts", &lifts); err != nil {
		return nil, err
	}
	return lifts, nil
}

func (c *HTTPClient) ExerciseHistory(ctx context.Context, _ int, filter string, start, end time.Time) ([]models.ExerciseSetRow, error) {
	params := timeParams(start, end)
	if filter != "" {
		params.Set("exercise", filter)
	}

	var sets []models.ExerciseSetRow
	if err := c.getJSON(ctx, "/api/v1/exercises/sets", params, "exercise sets", &sets); err != nil {
		return nil, err
	}
	return sets, nil
}

func (c *HTTPClient) Profile(ctx context.Context, _ int) (*models.Profile, error) {
	var p models.Profile
	if err := c.getJSON(ctx, "/api/v1/profile", nil, "profile", &p); err != nil {
		return nil, err
	}
	return &p, nil
}
