package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okatkov/shelfmark/internal/entities"
	"github.com/okatkov/shelfmark/internal/lists"
)

// ListRegistry defines the list operations the controller needs.
type ListRegistry interface {
	Create(ownerID uint, p lists.CreateParams) (*entities.List, error)
	Update(ownerID, listID uint, p lists.UpdateParams) (*entities.List, error)
	Delete(ownerID, listID uint) error
	GetByID(ownerID, listID uint) (*entities.List, error)
	ListForOwner(ownerID uint) ([]entities.List, error)
}

type ListsController struct {
	registry ListRegistry
}

func NewListsController(registry ListRegistry) *ListsController {
	return &ListsController{registry: registry}
}

// CreateList creates a new reading list.
// POST /api/lists
func (lc *ListsController) CreateList(c *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required"`
		Description string `json:"description"`
		Visibility  string `json:"visibility"`
		Type        string `json:"type"`
		Year        string `json:"year"`
		CoverImage  string `json:"cover_image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title is required")
		return
	}

	list, err := lc.registry.Create(GetUserID(c), lists.CreateParams{
		Title:       req.Title,
		Description: req.Description,
		Visibility:  entities.Visibility(req.Visibility),
		Type:        entities.ListType(req.Type),
		Year:        req.Year,
		CoverImage:  req.CoverImage,
	})
	if err != nil {
		respondServiceError(c, err, "create list")
		return
	}

	respondCreated(c, list)
}

// GetLists returns all lists for the current owner.
// GET /api/lists
func (lc *ListsController) GetLists(c *gin.Context) {
	result, err := lc.registry.ListForOwner(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list lists")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetList returns one list with its memberships ordered by position.
// GET /api/lists/:id
func (lc *ListsController) GetList(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	list, err := lc.registry.GetByID(GetUserID(c), id)
	if err != nil {
		respondServiceError(c, err, "get list")
		return
	}
	c.JSON(http.StatusOK, list)
}

// UpdateList updates mutable list fields. Type and year are immutable.
// PATCH /api/lists/:id
func (lc *ListsController) UpdateList(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Visibility  *string `json:"visibility"`
		CoverImage  *string `json:"cover_image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	params := lists.UpdateParams{
		Title:       req.Title,
		Description: req.Description,
		CoverImage:  req.CoverImage,
	}
	if req.Visibility != nil {
		v := entities.Visibility(*req.Visibility)
		params.Visibility = &v
	}

	list, err := lc.registry.Update(GetUserID(c), id, params)
	if err != nil {
		respondServiceError(c, err, "update list")
		return
	}
	c.JSON(http.StatusOK, list)
}

// DeleteList removes a list and all of its memberships.
// DELETE /api/lists/:id
func (lc *ListsController) DeleteList(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := lc.registry.Delete(GetUserID(c), id); err != nil {
		respondServiceError(c, err, "delete list")
		return
	}
	respondSuccess(c, "list deleted")
}
