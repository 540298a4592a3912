package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"animehub/pkg/models"
)

// setReaction toggles a like or dislike on an anime.
// POST /api/v1/animes/:id/reaction
func (s *Server) setReaction(c *gin.Context) {
	animeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.Fail("unauthorized"))
		return
	}

	var req models.ReactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid request body"))
		return
	}

	result, err := s.engSvc.SetReaction(c.Request.Context(), userID, animeID, req.Reaction)
	if err != nil {
		failError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(result))
}

// setFavourite toggles the favourite mark on an anime.
// POST /api/v1/animes/:id/favourite
func (s *Server) setFavourite(c *gin.Context) {
	animeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.Fail("unauthorized"))
		return
	}

	result, err := s.engSvc.SetFavourite(c.Request.Context(), userID, animeID)
	if err != nil {
		failError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(result))
}

// setWatchState replaces the watch state for an anime.
// PUT /api/v1/animes/:id/watch-state
func (s *Server) setWatchState(c *gin.Context) {
	animeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.Fail("unauthorized"))
		return
	}

	var req models.WatchStateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid request body"))
		return
	}

	result, err := s.engSvc.SetWatchState(c.Request.Context(), userID, animeID, req.State)
	if err != nil {
		failError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(result))
}

// setProgress records how many episodes the user has watched.
// PUT /api/v1/animes/:id/progress
func (s *Server) setProgress(c *gin.Context) {
	animeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.Fail("unauthorized"))
		return
	}

	var req models.ProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid request body"))
		return
	}

	result, err := s.engSvc.SetEpisodeProgress(c.Request.Context(), userID, animeID, req.Episodes)
	if err != nil {
		failError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(result))
}

// getReactions returns the public like/dislike tallies.
// GET /api/v1/animes/:id/reactions
func (s *Server) getReactions(c *gin.Context) {
	animeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	counts, err := s.engSvc.CountReactions(c.Request.Context(), animeID)
	if err != nil {
		c.JSON(models.HTTPStatusFor(err), models.Fail("failed to load reaction counts"))
		return
	}
	c.JSON(http.StatusOK, models.OK(counts))
}

// getAnimeState returns everything the authenticated user has recorded
// against one anime. GET /api/v1/animes/:id/state
func (s *Server) getAnimeState(c *gin.Context) {
	animeID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.Fail("unauthorized"))
		return
	}

	state, err := s.engSvc.GetState(c.Request.Context(), userID, animeID)
	if err != nil {
		c.JSON(models.HTTPStatusFor(err), models.Fail("failed to load engagement state"))
		return
	}
	c.JSON(http.StatusOK, models.OK(state))
}

// getUserSummary returns per-tag counts and the total watched episodes for a
// user's library page. GET /api/v1/users/:id/summary
func (s *Server) getUserSummary(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := s.userSvc.GetByID(c.Request.Context(), userID); err != nil {
		failError(c, err)
		return
	}

	summary, err := s.engSvc.Summary(c.Request.Context(), userID)
	if err != nil {
		c.JSON(models.HTTPStatusFor(err), models.Fail("failed to load summary"))
		return
	}
	c.JSON(http.StatusOK, models.OK(summary))
}

// getUserList returns the animes a user filed under one status tag, oldest
// first. GET /api/v1/users/:id/list/:status
func (s *Server) getUserList(c *gin.Context) {
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	statuses, err := s.engSvc.ListByUserAndTag(c.Request.Context(), userID, models.StatusTag(c.Param("status")))
	if err != nil {
		failError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(statuses))
}
