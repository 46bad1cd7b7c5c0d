package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okatkov/shelfmark/internal/entities"
)

// MembershipManager defines the membership operations the controller needs.
type MembershipManager interface {
	Add(ownerID, listID, bookID uint, position *int) (*entities.Membership, error)
	Remove(ownerID, listID, bookID uint) error
	UpdateNotes(ownerID, listID, bookID uint, notes string) (*entities.Membership, error)
	Reorder(ownerID, listID uint, orderedBookIDs []uint) error
}

type MembershipsController struct {
	manager MembershipManager
}

func NewMembershipsController(manager MembershipManager) *MembershipsController {
	return &MembershipsController{manager: manager}
}

// AddBook attaches a book to a list, optionally at an explicit position.
// POST /api/lists/:id/books
func (mc *MembershipsController) AddBook(c *gin.Context) {
	listID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		BookID   uint `json:"book_id" binding:"required"`
		Position *int `json:"position"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "book_id is required")
		return
	}

	membership, err := mc.manager.Add(GetUserID(c), listID, req.BookID, req.Position)
	if err != nil {
		respondServiceError(c, err, "add membership")
		return
	}
	respondCreated(c, membership)
}

// RemoveBook detaches a book from a list.
// DELETE /api/lists/:id/books/:bookId
func (mc *MembershipsController) RemoveBook(c *gin.Context) {
	listID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	if err := mc.manager.Remove(GetUserID(c), listID, bookID); err != nil {
		respondServiceError(c, err, "remove membership")
		return
	}
	respondSuccess(c, "book removed from list")
}

// UpdateNotes replaces the notes on a membership.
// PATCH /api/lists/:id/books/:bookId
func (mc *MembershipsController) UpdateNotes(c *gin.Context) {
	listID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	var req struct {
		Notes string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	membership, err := mc.manager.UpdateNotes(GetUserID(c), listID, bookID, req.Notes)
	if err != nil {
		respondServiceError(c, err, "update notes")
		return
	}
	c.JSON(http.StatusOK, membership)
}

// ReorderBooks atomically replaces the full ordering of a list.
// PUT /api/lists/:id/order
func (mc *MembershipsController) ReorderBooks(c *gin.Context) {
	listID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		BookIDs []uint `json:"book_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "book_ids is required")
		return
	}

	if err := mc.manager.Reorder(GetUserID(c), listID, req.BookIDs); err != nil {
		respondServiceError(c, err, "reorder list")
		return
	}
	respondSuccess(c, "list reordered")
}
