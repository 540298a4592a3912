package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"animehub/internal/core"
	"animehub/pkg/config"
	"animehub/pkg/models"
)

// stubAuth accepts the token "good-token" as testUser and "admin-token" as
// testAdmin; everything else is invalid
type stubAuth struct{}

var (
	testUser  = &models.User{ID: 7, Name: "viewer", Email: "viewer@example.com"}
	testAdmin = &models.User{ID: 1, Name: "admin", Email: "admin@example.com", IsAdmin: true}
)

func (stubAuth) Register(_ context.Context, _ models.RegisterRequest) (*models.LoginResponse, error) {
	return &models.LoginResponse{Token: "good-token", User: testUser.Profile(), ExpiresIn: 3600}, nil
}

func (stubAuth) Login(_ context.Context, req models.LoginRequest) (*models.LoginResponse, error) {
	if req.Email != testUser.Email || req.Password != "password123" {
		return nil, models.ErrInvalidCredentials
	}
	return &models.LoginResponse{Token: "good-token", User: testUser.Profile(), ExpiresIn: 3600}, nil
}

func (stubAuth) ValidateToken(_ context.Context, token string) (*models.User, error) {
	switch token {
	case "good-token":
		u := *testUser
		return &u, nil
	case "admin-token":
		u := *testAdmin
		return &u, nil
	}
	return nil, models.ErrInvalidToken
}

func (stubAuth) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	if id == testUser.ID {
		u := *testUser
		return &u, nil
	}
	return nil, models.ErrUserNotFound
}

// stubEngagement records the last call and returns canned results
type stubEngagement struct {
	lastUserID  int64
	lastAnimeID int64
	lastTag     models.StatusTag
	failWith    error
}

func (s *stubEngagement) SetReaction(_ context.Context, userID, animeID int64, tag models.StatusTag) (*models.EngagementResult, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	s.lastUserID, s.lastAnimeID, s.lastTag = userID, animeID, tag
	return &models.EngagementResult{
		Effect: models.EffectAdded,
		Counts: &models.ReactionCounts{Likes: 1},
	}, nil
}

func (s *stubEngagement) SetFavourite(_ context.Context, userID, animeID int64) (*models.EngagementResult, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	s.lastUserID, s.lastAnimeID = userID, animeID
	return &models.EngagementResult{Effect: models.EffectAdded}, nil
}

func (s *stubEngagement) SetWatchState(_ context.Context, userID, animeID int64, tag models.StatusTag) (*models.EngagementResult, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	s.lastUserID, s.lastAnimeID, s.lastTag = userID, animeID, tag
	return &models.EngagementResult{Effect: models.EffectAdded}, nil
}

func (s *stubEngagement) SetEpisodeProgress(_ context.Context, userID, animeID int64, episodes int) (*models.EngagementResult, error) {
	if s.failWith != nil {
		return nil, s.failWith
	}
	s.lastUserID, s.lastAnimeID = userID, animeID
	return &models.EngagementResult{Effect: models.EffectAdded}, nil
}

func (s *stubEngagement) CountReactions(_ context.Context, _ int64) (models.ReactionCounts, error) {
	return models.ReactionCounts{Likes: 3, Dislikes: 1}, nil
}

func (s *stubEngagement) GetState(_ context.Context, _, _ int64) (*core.AnimeState, error) {
	return &core.AnimeState{}, nil
}

func (s *stubEngagement) Summary(_ context.Context, _ int64) (*models.StatusSummary, error) {
	return &models.StatusSummary{Counts: map[models.StatusTag]int{}}, nil
}

func (s *stubEngagement) ListByUserAndTag(_ context.Context, _ int64, tag models.StatusTag) ([]models.Status, error) {
	if !models.IsWatchTag(tag) && !models.IsReactionTag(tag) && tag != models.TagFavourites {
		return nil, models.ErrInvalidInput
	}
	return []models.Status{}, nil
}

func newTestServer(t *testing.T, eng core.EngagementService) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Uploads.Dir = t.TempDir()
	cfg.HTTP.RateLimit = 0
	return NewServer(cfg, stubAuth{}, nil, nil, nil, nil, eng, nil)
}

func doJSON(t *testing.T, s *Server, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t, &stubEngagement{})
	w := doJSON(t, s, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequestIDHeader(t *testing.T) {
	s := newTestServer(t, &stubEngagement{})

	w := doJSON(t, s, http.MethodGet, "/health", "", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	// A supplied id is echoed back
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	w = httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)
	assert.Equal(t, "trace-123", w.Header().Get("X-Request-ID"))
}

func TestEngagementRequiresToken(t *testing.T) {
	eng := &stubEngagement{}
	s := newTestServer(t, eng)

	// No token
	w := doJSON(t, s, http.MethodPost, "/api/v1/animes/5/reaction", "",
		models.ReactionRequest{Reaction: models.TagLikes})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	// Garbage token
	w = doJSON(t, s, http.MethodPost, "/api/v1/animes/5/reaction", "bad-token",
		models.ReactionRequest{Reaction: models.TagLikes})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	assert.Zero(t, eng.lastAnimeID, "service must not be reached without a valid token")
}

func TestSetReaction(t *testing.T) {
	eng := &stubEngagement{}
	s := newTestServer(t, eng)

	w := doJSON(t, s, http.MethodPost, "/api/v1/animes/5/reaction", "good-token",
		models.ReactionRequest{Reaction: models.TagLikes})
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, testUser.ID, eng.lastUserID, "user identity comes from the token, not the body")
	assert.Equal(t, int64(5), eng.lastAnimeID)
	assert.Equal(t, models.TagLikes, eng.lastTag)

	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestSetReactionErrorMapping(t *testing.T) {
	eng := &stubEngagement{failWith: models.ErrAnimeNotFound}
	s := newTestServer(t, eng)

	w := doJSON(t, s, http.MethodPost, "/api/v1/animes/5/reaction", "good-token",
		models.ReactionRequest{Reaction: models.TagLikes})
	assert.Equal(t, http.StatusNotFound, w.Code)

	eng.failWith = models.ErrInvalidRange
	w = doJSON(t, s, http.MethodPut, "/api/v1/animes/5/progress", "good-token",
		models.ProgressRequest{Episodes: 999})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStorageFailureHidesDetail(t *testing.T) {
	eng := &stubEngagement{failWith: fmt.Errorf("database error during upsert_slot: connection refused")}
	s := newTestServer(t, eng)

	w := doJSON(t, s, http.MethodPost, "/api/v1/animes/5/reaction", "good-token",
		models.ReactionRequest{Reaction: models.TagLikes})
	require.Equal(t, http.StatusInternalServerError, w.Code)

	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "internal server error", resp.Error)
	assert.NotContains(t, w.Body.String(), "upsert_slot")
}

func TestAuthCookieFallback(t *testing.T) {
	eng := &stubEngagement{}
	s := newTestServer(t, eng)

	body, _ := json.Marshal(models.WatchStateRequest{State: models.TagWatching})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/animes/9/watch-state", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(&http.Cookie{Name: authCookieName, Value: "good-token"})
	w := httptest.NewRecorder()
	s.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testUser.ID, eng.lastUserID)
}

func TestInvalidAnimeIDRejected(t *testing.T) {
	s := newTestServer(t, &stubEngagement{})

	w := doJSON(t, s, http.MethodGet, "/api/v1/animes/abc/reactions", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, s, http.MethodGet, "/api/v1/animes/-3/reactions", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetReactionsIsPublic(t *testing.T) {
	s := newTestServer(t, &stubEngagement{})

	w := doJSON(t, s, http.MethodGet, "/api/v1/animes/5/reactions", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data models.ReactionCounts `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(3), resp.Data.Likes)
	assert.Equal(t, int64(1), resp.Data.Dislikes)
}

func TestLoginSetsAuthCookie(t *testing.T) {
	s := newTestServer(t, &stubEngagement{})

	w := doJSON(t, s, http.MethodPost, "/api/v1/auth/login", "",
		models.LoginRequest{Email: testUser.Email, Password: "password123"})
	require.Equal(t, http.StatusOK, w.Code)

	cookies := w.Result().Cookies()
	var found bool
	for _, cookie := range cookies {
		if cookie.Name == authCookieName && cookie.Value == "good-token" {
			found = true
		}
	}
	assert.True(t, found, "login must set the auth cookie")
}

func TestAdminRouteForbiddenForRegularUser(t *testing.T) {
	s := newTestServer(t, &stubEngagement{})

	w := doJSON(t, s, http.MethodDelete, "/api/v1/users/7", "good-token", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRateLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Uploads.Dir = t.TempDir()
	cfg.HTTP.RateLimit = 1
	cfg.HTTP.Burst = 2
	s := NewServer(cfg, stubAuth{}, nil, nil, nil, nil, &stubEngagement{}, nil)

	var limited bool
	for i := 0; i < 5; i++ {
		w := doJSON(t, s, http.MethodGet, "/health", "", nil)
		if w.Code == http.StatusTooManyRequests {
			limited = true
		}
	}
	assert.True(t, limited, "burst of 5 against burst limit 2 must trip the limiter")
}
