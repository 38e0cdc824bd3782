// Package apiclient is the HTTP client for the catalog API, used by the
// browsing session and by any external tool that talks to the server.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/aura-video/catalog-backend/internal/criteria"
	"github.com/aura-video/catalog-backend/internal/models"
)

// Client talks to a catalog server.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// New creates a client for the given base URL (e.g. http://localhost:8080).
func New(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// envelope mirrors the server's JSON response body.
type envelope struct {
	Success bool              `json:"success"`
	Data    json.RawMessage   `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// QueryFailure is a failed list or tag query. Not retried automatically;
// the caller decides what to surface.
type QueryFailure struct {
	Status  int
	Message string
	cause   error
}

func (e *QueryFailure) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("query failed: %v", e.cause)
	}
	return fmt.Sprintf("query failed (%d): %s", e.Status, e.Message)
}

func (e *QueryFailure) Unwrap() error { return e.cause }

// CreationFailure is a failed record creation after local validation
// passed, i.e. a server-side problem rather than a client input problem.
type CreationFailure struct {
	Status  int
	Message string
	cause   error
}

func (e *CreationFailure) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("creation failed: %v", e.cause)
	}
	return fmt.Sprintf("creation failed (%d): %s", e.Status, e.Message)
}

func (e *CreationFailure) Unwrap() error { return e.cause }

// ListVideos fetches the video list for the given criteria.
func (c *Client) ListVideos(ctx context.Context, crit criteria.ListCriteria) ([]models.Video, error) {
	u := c.BaseURL + "/videos"
	if q := crit.Values().Encode(); q != "" {
		u += "?" + q
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &QueryFailure{cause: err}
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &QueryFailure{cause: err}
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(resp.Body)
	if err != nil {
		return nil, &QueryFailure{Status: resp.StatusCode, cause: err}
	}
	if resp.StatusCode != http.StatusOK || !env.Success {
		return nil, &QueryFailure{Status: resp.StatusCode, Message: env.Error}
	}
	var videos []models.Video
	if err := json.Unmarshal(env.Data, &videos); err != nil {
		return nil, &QueryFailure{Status: resp.StatusCode, cause: err}
	}
	return videos, nil
}

// CreateVideo validates the input locally, then persists it. Server-side
// validation failures come back as *criteria.ValidationError with the
// field map; anything else is a *CreationFailure.
func (c *Client) CreateVideo(ctx context.Context, in criteria.CreateInput) (*models.Video, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	body, err := json.Marshal(in)
	if err != nil {
		return nil, &CreationFailure{cause: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/videos", bytes.NewReader(body))
	if err != nil {
		return nil, &CreationFailure{cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &CreationFailure{cause: err}
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(resp.Body)
	if err != nil {
		return nil, &CreationFailure{Status: resp.StatusCode, cause: err}
	}
	switch {
	case resp.StatusCode == http.StatusCreated && env.Success:
		var video models.Video
		if err := json.Unmarshal(env.Data, &video); err != nil {
			return nil, &CreationFailure{Status: resp.StatusCode, cause: err}
		}
		return &video, nil
	case resp.StatusCode == http.StatusBadRequest && len(env.Fields) > 0:
		return nil, &criteria.ValidationError{Fields: env.Fields}
	default:
		return nil, &CreationFailure{Status: resp.StatusCode, Message: env.Error}
	}
}

// ListTags fetches the distinct tag names known to the catalog.
func (c *Client) ListTags(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/tags", nil)
	if err != nil {
		return nil, &QueryFailure{cause: err}
	}
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, &QueryFailure{cause: err}
	}
	defer resp.Body.Close()

	env, err := decodeEnvelope(resp.Body)
	if err != nil {
		return nil, &QueryFailure{Status: resp.StatusCode, cause: err}
	}
	if resp.StatusCode != http.StatusOK || !env.Success {
		return nil, &QueryFailure{Status: resp.StatusCode, Message: env.Error}
	}
	var tags []string
	if err := json.Unmarshal(env.Data, &tags); err != nil {
		return nil, &QueryFailure{Status: resp.StatusCode, cause: err}
	}
	return tags, nil
}

func decodeEnvelope(r io.Reader) (envelope, error) {
	var env envelope
	if err := json.NewDecoder(r).Decode(&env); err != nil {
		return env, fmt.Errorf("decode response: %w", err)
	}
	return env, nil
}
