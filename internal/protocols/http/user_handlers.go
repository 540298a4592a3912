package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"animehub/pkg/models"
)

// getUser returns a public user profile. GET /api/v1/users/:id
func (s *Server) getUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	user, err := s.userSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		failError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(user.Profile()))
}

// listUsers returns all users. GET /api/v1/users (admin)
func (s *Server) listUsers(c *gin.Context) {
	users, err := s.userSvc.List(c.Request.Context())
	if err != nil {
		c.JSON(models.HTTPStatusFor(err), models.Fail("failed to list users"))
		return
	}
	c.JSON(http.StatusOK, models.OK(users))
}

// searchUsers filters users by name. GET /api/v1/users/search?q= (admin)
func (s *Server) searchUsers(c *gin.Context) {
	users, err := s.userSvc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(models.HTTPStatusFor(err), models.Fail("failed to search users"))
		return
	}
	c.JSON(http.StatusOK, models.OK(users))
}

// updateProfile lets the authenticated user edit their own profile, with an
// optional avatar file. PUT /api/v1/me
func (s *Server) updateProfile(c *gin.Context) {
	userID, ok := GetUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.Fail("unauthorized"))
		return
	}

	var req models.UpdateProfileRequest
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

	user, err := s.userSvc.UpdateProfile(c.Request.Context(), userID, req)
	if err != nil {
		failError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(user.Profile()))
}

// setUserBlocked sets the block flag. PUT /api/v1/users/:id/block (admin)
func (s *Server) setUserBlocked(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Blocked bool `json:"blocked"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid request body"))
		return
	}

	// Admins cannot block themselves out of the system
	if selfID, _ := GetUserID(c); selfID == id && req.Blocked {
		c.JSON(http.StatusBadRequest, models.Fail("cannot block your own account"))
		return
	}

	if err := s.userSvc.SetBlocked(c.Request.Context(), id, req.Blocked); err != nil {
		failError(c, err)
		return
	}

	msg := "User unblocked successfully"
	if req.Blocked {
		msg = "User blocked successfully"
	}
	c.JSON(http.StatusOK, models.OKMessage(msg))
}

// deleteUser removes a user account. DELETE /api/v1/users/:id (admin)
func (s *Server) deleteUser(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if selfID, _ := GetUserID(c); selfID == id {
		c.JSON(http.StatusBadRequest, models.Fail("cannot delete your own account"))
		return
	}

	if err := s.userSvc.Delete(c.Request.Context(), id); err != nil {
		failError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OKMessage("User deleted successfully"))
}
