package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"animehub/pkg/logger"
	"animehub/pkg/models"
)

// failError writes a service error to the response. Sentinel errors keep
// their message; anything mapping to a 500 is a storage or driver failure
// whose detail stays in the log, not the body.
func failError(c *gin.Context, err error) {
	status := models.HTTPStatusFor(err)
	if status == http.StatusInternalServerError {
		logger.Errorf("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(status, models.Fail("internal server error"))
		return
	}
	c.JSON(status, models.Fail(err.Error()))
}

// parseIDParam reads a positive integer id from a path parameter
func parseIDParam(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, models.Fail("invalid "+name))
		return 0, false
	}
	return id, true
}

// listAnimes returns the full catalog. GET /api/v1/animes
func (s *Server) listAnimes(c *gin.Context) {
	animes, err := s.animeSvc.List(c.Request.Context())
	if err != nil {
		c.JSON(models.HTTPStatusFor(err), models.Fail("failed to list animes"))
		return
	}
	c.JSON(http.StatusOK, models.OK(animes))
}

// searchAnimes filters the catalog by title. GET /api/v1/animes/search?q=
func (s *Server) searchAnimes(c *gin.Context) {
	animes, err := s.animeSvc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(models.HTTPStatusFor(err), models.Fail("failed to search animes"))
		return
	}
	c.JSON(http.StatusOK, models.OK(animes))
}

// getAnime returns one anime. GET /api/v1/animes/:id
func (s *Server) getAnime(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	anime, err := s.animeSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		failError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(anime))
}

// listAnimeEpisodes returns the episodes of one anime.
// GET /api/v1/animes/:id/episodes
func (s *Server) listAnimeEpisodes(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := s.animeSvc.GetByID(c.Request.Context(), id); err != nil {
		failError(c, err)
		return
	}

	episodes, err := s.episodeSvc.ListByAnime(c.Request.Context(), id)
	if err != nil {
		c.JSON(models.HTTPStatusFor(err), models.Fail("failed to list episodes"))
		return
	}
	c.JSON(http.StatusOK, models.OK(episodes))
}

// createAnime creates a catalog entry from a multipart form with optional
// image files. POST /api/v1/animes (admin)
func (s *Server) createAnime(c *gin.Context) {
	var req models.CreateAnimeRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid request form"))
		return
	}

	imageURL, err := s.uploads.SaveOptional(c, "image")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Fail(err.Error()))
		return
	}
	bigImageURL, err := s.uploads.SaveOptional(c, "big_image")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Fail(err.Error()))
		return
	}
	req.ImageURL = imageURL
	req.BigImageURL = bigImageURL

	anime, err := s.animeSvc.Create(c.Request.Context(), req)
	if err != nil {
		failError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.OK(anime))
}

// updateAnime applies a partial update. PUT /api/v1/animes/:id (admin)
func (s *Server) updateAnime(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateAnimeRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid request form"))
		return
	}

	if url, err := s.uploads.SaveOptional(c, "image"); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail(err.Error()))
		return
	} else if url != "" {
		req.ImageURL = &url
	}
	if url, err := s.uploads.SaveOptional(c, "big_image"); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail(err.Error()))
		return
	} else if url != "" {
		req.BigImageURL = &url
	}

	anime, err := s.animeSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		failError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(anime))
}

// deleteAnime removes an anime with its episodes and engagement rows.
// DELETE /api/v1/animes/:id (admin)
func (s *Server) deleteAnime(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := s.animeSvc.Delete(c.Request.Context(), id); err != nil {
		failError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OKMessage("Anime deleted successfully"))
}
