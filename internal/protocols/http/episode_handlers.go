package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"animehub/pkg/models"
)

// listEpisodes returns every episode in the catalog. GET /api/v1/episodes
func (s *Server) listEpisodes(c *gin.Context) {
	episodes, err := s.episodeSvc.List(c.Request.Context())
	if err != nil {
		c.JSON(models.HTTPStatusFor(err), models.Fail("failed to list episodes"))
		return
	}
	c.JSON(http.StatusOK, models.OK(episodes))
}

// searchEpisodes filters episodes by title. GET /api/v1/episodes/search?q=
func (s *Server) searchEpisodes(c *gin.Context) {
	episodes, err := s.episodeSvc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(models.HTTPStatusFor(err), models.Fail("failed to search episodes"))
		return
	}
	c.JSON(http.StatusOK, models.OK(episodes))
}

// getEpisode returns one episode. GET /api/v1/episodes/:id
func (s *Server) getEpisode(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	episode, err := s.episodeSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		failError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(episode))
}

// createEpisode creates an episode from a multipart form with optional video
// and thumbnail files. POST /api/v1/episodes (admin)
func (s *Server) createEpisode(c *gin.Context) {
	var req models.CreateEpisodeRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid request form"))
		return
	}

	videoURL, err := s.uploads.SaveOptional(c, "video")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Fail(err.Error()))
		return
	}
	thumbURL, err := s.uploads.SaveOptional(c, "thumbnail")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.Fail(err.Error()))
		return
	}
	req.VideoURL = videoURL
	req.ThumbnailURL = thumbURL

	episode, err := s.episodeSvc.Create(c.Request.Context(), req)
	if err != nil {
		failError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.OK(episode))
}

// updateEpisode applies a partial update. PUT /api/v1/episodes/:id (admin)
func (s *Server) updateEpisode(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateEpisodeRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid request form"))
		return
	}

	if url, err := s.uploads.SaveOptional(c, "video"); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail(err.Error()))
		return
	} else if url != "" {
		req.VideoURL = &url
	}
	if url, err := s.uploads.SaveOptional(c, "thumbnail"); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail(err.Error()))
		return
	} else if url != "" {
		req.ThumbnailURL = &url
	}

	episode, err := s.episodeSvc.Update(c.Request.Context(), id, req)
	if err != nil {
		failError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(episode))
}

// deleteEpisode removes an episode. DELETE /api/v1/episodes/:id (admin)
func (s *Server) deleteEpisode(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := s.episodeSvc.Delete(c.Request.Context(), id); err != nil {
		failError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OKMessage("Episode deleted successfully"))
}
