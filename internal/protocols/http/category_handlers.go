package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"animehub/pkg/models"
)

// listCategories returns all categories. GET /api/v1/categories
func (s *Server) listCategories(c *gin.Context) {
	categories, err := s.categorySvc.List(c.Request.Context())
	if err != nil {
		c.JSON(models.HTTPStatusFor(err), models.Fail("failed to list categories"))
		return
	}
	c.JSON(http.StatusOK, models.OK(categories))
}

// searchCategories filters categories by name. GET /api/v1/categories/search?q=
func (s *Server) searchCategories(c *gin.Context) {
	categories, err := s.categorySvc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		c.JSON(models.HTTPStatusFor(err), models.Fail("failed to search categories"))
		return
	}
	c.JSON(http.StatusOK, models.OK(categories))
}

// getCategory returns one category. GET /api/v1/categories/:id
func (s *Server) getCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	category, err := s.categorySvc.GetByID(c.Request.Context(), id)
	if err != nil {
		failError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(category))
}

// createCategory creates a category. POST /api/v1/categories (admin)
func (s *Server) createCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid request body"))
		return
	}

	category, err := s.categorySvc.Create(c.Request.Context(), req)
	if err != nil {
		failError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.OK(category))
}

// renameCategory renames a category; the new name is rewritten into every
// anime genre list that carried the old one. PUT /api/v1/categories/:id (admin)
func (s *Server) renameCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req models.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("invalid request body"))
		return
	}

	category, err := s.categorySvc.Rename(c.Request.Context(), id, req)
	if err != nil {
		failError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK(category))
}

// deleteCategory removes a category and strips it from every genre list.
// DELETE /api/v1/categories/:id (admin)
func (s *Server) deleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := s.categorySvc.Delete(c.Request.Context(), id); err != nil {
		failError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OKMessage("Category deleted successfully"))
}
