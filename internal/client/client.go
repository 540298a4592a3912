// Package client is the API-facing side of the CLI and TUI: a REST client,
// an optimistic engagement store that reconciles against server responses,
// and a local SQLite snapshot so library views survive restarts offline.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"animehub/internal/core"
	"animehub/pkg/models"
)

// Client handles HTTP API communication
type Client struct {
	baseURL    string
	httpClient *http.Client
	token      string
	userID     int64
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// SetToken sets the authentication token
func (c *Client) SetToken(token string) {
	c.token = token
}

// GetToken returns the current authentication token
func (c *Client) GetToken() string {
	return c.token
}

// UserID returns the logged-in user's id, 0 when logged out
func (c *Client) UserID() int64 {
	return c.userID
}

// doRequest performs an HTTP request with common handling
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	return resp, nil
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// decodeAPIResponse decodes the APIResponse envelope and unmarshals the data
// field into target
func decodeAPIResponse(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiResp apiResponse
		if err := json.NewDecoder(resp.Body).Decode(&apiResp); err == nil && apiResp.Error != "" {
			return fmt.Errorf("API error (status %d): %s", resp.StatusCode, apiResp.Error)
		}
		return fmt.Errorf("API error (status %d)", resp.StatusCode)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	if !apiResp.Success {
		if apiResp.Error != "" {
			return fmt.Errorf("%s", apiResp.Error)
		}
		return fmt.Errorf("request failed")
	}

	if target != nil && len(apiResp.Data) > 0 {
		if err := json.Unmarshal(apiResp.Data, target); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}

	return nil
}

// Auth endpoints

// Register creates a new account and stores the returned session
func (c *Client) Register(ctx context.Context, name, email, password string) (*models.LoginResponse, error) {
	body := models.RegisterRequest{Name: name, Email: email, Password: password}

	resp, err := c.doRequest(ctx, "POST", "/api/v1/auth/register", body)
	if err != nil {
		return nil, err
	}

	var loginResp models.LoginResponse
	if err := decodeAPIResponse(resp, &loginResp); err != nil {
		return nil, err
	}

	c.token = loginResp.Token
	c.userID = loginResp.User.ID
	return &loginResp, nil
}

// Login authenticates and stores the returned session
func (c *Client) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	body := models.LoginRequest{Email: email, Password: password}

	resp, err := c.doRequest(ctx, "POST", "/api/v1/auth/login", body)
	if err != nil {
		return nil, err
	}

	var loginResp models.LoginResponse
	if err := decodeAPIResponse(resp, &loginResp); err != nil {
		return nil, err
	}

	c.token = loginResp.Token
	c.userID = loginResp.User.ID
	return &loginResp, nil
}

// Catalog endpoints

// ListAnimes retrieves the full catalog
func (c *Client) ListAnimes(ctx context.Context) ([]models.Anime, error) {
	resp, err := c.doRequest(ctx, "GET", "/api/v1/animes", nil)
	if err != nil {
		return nil, err
	}

	var animes []models.Anime
	if err := decodeAPIResponse(resp, &animes); err != nil {
		return nil, err
	}
	return animes, nil
}

// SearchAnimes searches the catalog by title
func (c *Client) SearchAnimes(ctx context.Context, query string) ([]models.Anime, error) {
	path := "/api/v1/animes/search?q=" + url.QueryEscape(query)
	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var animes []models.Anime
	if err := decodeAPIResponse(resp, &animes); err != nil {
		return nil, err
	}
	return animes, nil
}

// GetAnime retrieves one anime
func (c *Client) GetAnime(ctx context.Context, id int64) (*models.Anime, error) {
	resp, err := c.doRequest(ctx, "GET", fmt.Sprintf("/api/v1/animes/%d", id), nil)
	if err != nil {
		return nil, err
	}

	var anime models.Anime
	if err := decodeAPIResponse(resp, &anime); err != nil {
		return nil, err
	}
	return &anime, nil
}

// ListEpisodes retrieves the episodes of one anime
func (c *Client) ListEpisodes(ctx context.Context, animeID int64) ([]models.Episode, error) {
	resp, err := c.doRequest(ctx, "GET", fmt.Sprintf("/api/v1/animes/%d/episodes", animeID), nil)
	if err != nil {
		return nil, err
	}

	var episodes []models.Episode
	if err := decodeAPIResponse(resp, &episodes); err != nil {
		return nil, err
	}
	return episodes, nil
}

// ListCategories retrieves all categories
func (c *Client) ListCategories(ctx context.Context) ([]models.Category, error) {
	resp, err := c.doRequest(ctx, "GET", "/api/v1/categories", nil)
	if err != nil {
		return nil, err
	}

	var categories []models.Category
	if err := decodeAPIResponse(resp, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Engagement endpoints

// SetReaction toggles a like or dislike
func (c *Client) SetReaction(ctx context.Context, animeID int64, tag models.StatusTag) (*models.EngagementResult, error) {
	body := models.ReactionRequest{Reaction: tag}
	resp, err := c.doRequest(ctx, "POST", fmt.Sprintf("/api/v1/animes/%d/reaction", animeID), body)
	if err != nil {
		return nil, err
	}

	var result models.EngagementResult
	if err := decodeAPIResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SetFavourite toggles the favourite mark
func (c *Client) SetFavourite(ctx context.Context, animeID int64) (*models.EngagementResult, error) {
	resp, err := c.doRequest(ctx, "POST", fmt.Sprintf("/api/v1/animes/%d/favourite", animeID), struct{}{})
	if err != nil {
		return nil, err
	}

	var result models.EngagementResult
	if err := decodeAPIResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SetWatchState replaces the watch state
func (c *Client) SetWatchState(ctx context.Context, animeID int64, tag models.StatusTag) (*models.EngagementResult, error) {
	body := models.WatchStateRequest{State: tag}
	resp, err := c.doRequest(ctx, "PUT", fmt.Sprintf("/api/v1/animes/%d/watch-state", animeID), body)
	if err != nil {
		return nil, err
	}

	var result models.EngagementResult
	if err := decodeAPIResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SetProgress records watched episodes
func (c *Client) SetProgress(ctx context.Context, animeID int64, episodes int) (*models.EngagementResult, error) {
	body := models.ProgressRequest{Episodes: episodes}
	resp, err := c.doRequest(ctx, "PUT", fmt.Sprintf("/api/v1/animes/%d/progress", animeID), body)
	if err != nil {
		return nil, err
	}

	var result models.EngagementResult
	if err := decodeAPIResponse(resp, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// GetReactions retrieves the public like/dislike tallies
func (c *Client) GetReactions(ctx context.Context, animeID int64) (*models.ReactionCounts, error) {
	resp, err := c.doRequest(ctx, "GET", fmt.Sprintf("/api/v1/animes/%d/reactions", animeID), nil)
	if err != nil {
		return nil, err
	}

	var counts models.ReactionCounts
	if err := decodeAPIResponse(resp, &counts); err != nil {
		return nil, err
	}
	return &counts, nil
}

// GetAnimeState retrieves the logged-in user's state for one anime
func (c *Client) GetAnimeState(ctx context.Context, animeID int64) (*core.AnimeState, error) {
	resp, err := c.doRequest(ctx, "GET", fmt.Sprintf("/api/v1/animes/%d/state", animeID), nil)
	if err != nil {
		return nil, err
	}

	var state core.AnimeState
	if err := decodeAPIResponse(resp, &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// GetSummary retrieves a user's library summary
func (c *Client) GetSummary(ctx context.Context, userID int64) (*models.StatusSummary, error) {
	resp, err := c.doRequest(ctx, "GET", fmt.Sprintf("/api/v1/users/%d/summary", userID), nil)
	if err != nil {
		return nil, err
	}

	var summary models.StatusSummary
	if err := decodeAPIResponse(resp, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

// GetUserList retrieves a user's status rows for one tag
func (c *Client) GetUserList(ctx context.Context, userID int64, tag models.StatusTag) ([]models.Status, error) {
	path := fmt.Sprintf("/api/v1/users/%d/list/%s", userID, url.PathEscape(string(tag)))
	resp, err := c.doRequest(ctx, "GET", path, nil)
	if err != nil {
		return nil, err
	}

	var statuses []models.Status
	if err := decodeAPIResponse(resp, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}
