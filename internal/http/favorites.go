package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okatkov/shelfmark/internal/entities"
	"github.com/okatkov/shelfmark/internal/favorites"
)

// FavoritesMapper defines the slot operations the controller needs.
type FavoritesMapper interface {
	Set(ownerID, bookID uint, slot int, year string) (*entities.Membership, error)
	Remove(ownerID, bookID uint, year string) error
	Fetch(ownerID uint, year string) ([]favorites.Entry, error)
	AvailableYears(ownerID uint) ([]int, error)
}

type FavoritesController struct {
	mapper FavoritesMapper
}

func NewFavoritesController(mapper FavoritesMapper) *FavoritesController {
	return &FavoritesController{mapper: mapper}
}

// SetFavorite places a book into a ranked slot (1-6); re-assigning a book
// already on the list moves it. The target list is created on first use.
// PUT /api/favorites/:bookId
func (fc *FavoritesController) SetFavorite(c *gin.Context) {
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	var req struct {
		Slot int    `json:"slot" binding:"required"`
		Year string `json:"year"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "slot is required")
		return
	}

	membership, err := fc.mapper.Set(GetUserID(c), bookID, req.Slot, req.Year)
	if err != nil {
		respondServiceError(c, err, "set favorite")
		return
	}
	c.JSON(http.StatusOK, membership)
}

// RemoveFavorite takes a book out of the favorites list.
// DELETE /api/favorites/:bookId?year=2024
func (fc *FavoritesController) RemoveFavorite(c *gin.Context) {
	bookID, ok := parseIDParam(c, "bookId")
	if !ok {
		return
	}

	if err := fc.mapper.Remove(GetUserID(c), bookID, c.Query("year")); err != nil {
		respondServiceError(c, err, "remove favorite")
		return
	}
	respondSuccess(c, "favorite removed")
}

// ListFavorites returns the favorites with their slots, ascending.
// GET /api/favorites?year=2024
func (fc *FavoritesController) ListFavorites(c *gin.Context) {
	entries, err := fc.mapper.Fetch(GetUserID(c), c.Query("year"))
	if err != nil {
		respondServiceError(c, err, "list favorites")
		return
	}
	c.JSON(http.StatusOK, gin.H{"favorites": entries})
}

// ListYears returns the years with a yearly favorites list, descending.
// GET /api/favorites/years
func (fc *FavoritesController) ListYears(c *gin.Context) {
	years, err := fc.mapper.AvailableYears(GetUserID(c))
	if err != nil {
		respondServiceError(c, err, "list favorite years")
		return
	}
	c.JSON(http.StatusOK, gin.H{"years": years})
}
