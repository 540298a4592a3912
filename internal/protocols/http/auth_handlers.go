package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"animehub/pkg/models"
)

// register handles user registration and logs the new account in
func (s *Server) register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid request body"))
		return
	}

	if req.Email == "" || req.Password == "" || req.Name == "" {
		c.JSON(http.StatusBadRequest, models.Fail("name, email and password are required"))
		return
	}

	resp, err := s.authSvc.Register(c.Request.Context(), req)
	if err != nil {
		failError(c, err)
		return
	}

	s.setAuthCookie(c, resp.Token, resp.ExpiresIn)
	c.JSON(http.StatusCreated, models.APIResponse{
		Success:   true,
		Message:   "User registered successfully",
		Data:      resp,
		Timestamp: time.Now(),
	})
}

// login handles user authentication
func (s *Server) login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid request body"))
		return
	}

	if req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, models.Fail("email and password are required"))
		return
	}

	resp, err := s.authSvc.Login(c.Request.Context(), req)
	if err != nil {
		c.JSON(models.HTTPStatusFor(err), models.Fail("invalid credentials"))
		return
	}

	s.setAuthCookie(c, resp.Token, resp.ExpiresIn)
	c.JSON(http.StatusOK, models.APIResponse{
		Success:   true,
		Message:   "Login successful",
		Data:      resp,
		Timestamp: time.Now(),
	})
}

// setAuthCookie mirrors the token into a cookie so browser page loads are
// authenticated without a script attaching the header
func (s *Server) setAuthCookie(c *gin.Context, token string, maxAge int) {
	c.SetCookie(authCookieName, token, maxAge, "/", "", false, true)
}

// getMe returns the authenticated user's own profile
func (s *Server) getMe(c *gin.Context) {
	user, ok := GetUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, models.Fail("unauthorized"))
		return
	}
	c.JSON(http.StatusOK, models.OK(user.Profile()))
}
