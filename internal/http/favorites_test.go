package http

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/okatkov/shelfmark/internal/favorites"
)

func newFavoritesRouter(userID uint, mapper FavoritesMapper) *gin.Engine {
	router := newTestRouter(userID)
	controller := NewFavoritesController(mapper)
	router.PUT("/api/favorites/:bookId", controller.SetFavorite)
	router.DELETE("/api/favorites/:bookId", controller.RemoveFavorite)
	router.GET("/api/favorites", controller.ListFavorites)
	router.GET("/api/favorites/years", controller.ListYears)
	return router
}

func TestFavoritesController_SetFavorite(t *testing.T) {
	t.Run("assigns a slot and round-trips", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()
		router := newFavoritesRouter(1, favorites.NewService(db.DB))

		book := seedBook(t, db, 1, "Dune")
		w := doJSON(t, router, "PUT", fmt.Sprintf("/api/favorites/%d", book.ID), gin.H{"slot": 2})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, "GET", "/api/favorites", nil)
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Favorites []favorites.Entry `json:"favorites"`
		}
		decodeBody(t, w, &resp)
		require.Len(t, resp.Favorites, 1)
		assert.Equal(t, 2, resp.Favorites[0].Slot)
		assert.Equal(t, "Dune", resp.Favorites[0].Book.Title)
	})

	t.Run("moves a book between slots", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()
		router := newFavoritesRouter(1, favorites.NewService(db.DB))

		book := seedBook(t, db, 1, "Dune")
		path := fmt.Sprintf("/api/favorites/%d", book.ID)
		w := doJSON(t, router, "PUT", path, gin.H{"slot": 1})
		require.Equal(t, http.StatusOK, w.Code)
		w = doJSON(t, router, "PUT", path, gin.H{"slot": 6})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, "GET", "/api/favorites", nil)
		var resp struct {
			Favorites []favorites.Entry `json:"favorites"`
		}
		decodeBody(t, w, &resp)
		require.Len(t, resp.Favorites, 1)
		assert.Equal(t, 6, resp.Favorites[0].Slot)
	})

	t.Run("yearly favorites are scoped by query", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()
		router := newFavoritesRouter(1, favorites.NewService(db.DB))

		book := seedBook(t, db, 1, "Dune")
		w := doJSON(t, router, "PUT", fmt.Sprintf("/api/favorites/%d", book.ID), gin.H{"slot": 1, "year": "2024"})
		require.Equal(t, http.StatusOK, w.Code)

		w = doJSON(t, router, "GET", "/api/favorites?year=2024", nil)
		var yearly struct {
			Favorites []favorites.Entry `json:"favorites"`
		}
		decodeBody(t, w, &yearly)
		assert.Len(t, yearly.Favorites, 1)

		w = doJSON(t, router, "GET", "/api/favorites", nil)
		var allTime struct {
			Favorites []favorites.Entry `json:"favorites"`
		}
		decodeBody(t, w, &allTime)
		assert.Empty(t, allTime.Favorites)
	})

	t.Run("out-of-range slot returns bad request", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()
		router := newFavoritesRouter(1, favorites.NewService(db.DB))

		book := seedBook(t, db, 1, "Dune")
		w := doJSON(t, router, "PUT", fmt.Sprintf("/api/favorites/%d", book.ID), gin.H{"slot": 7})
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("full list returns conflict for a new book", func(t *testing.T) {
		db, cleanup := setupTestDB(t)
		defer cleanup()
		router := newFavoritesRouter(1, favorites.NewService(db.DB))

		for slot := 1; slot <= favorites.MaxSlot; slot++ {
			book := seedBook(t, db, 1, fmt.Sprintf("Book %d", slot))
			w := doJSON(t, router, "PUT", fmt.Sprintf("/api/favorites/%d", book.ID), gin.H{"slot": slot})
			require.Equal(t, http.StatusOK, w.Code)
		}

		extra := seedBook(t, db, 1, "Seventh")
		w := doJSON(t, router, "PUT", fmt.Sprintf("/api/favorites/%d", extra.ID), gin.H{"slot": 1})
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestFavoritesController_RemoveFavorite(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	router := newFavoritesRouter(1, favorites.NewService(db.DB))

	book := seedBook(t, db, 1, "Dune")
	w := doJSON(t, router, "PUT", fmt.Sprintf("/api/favorites/%d", book.ID), gin.H{"slot": 1})
	require.Equal(t, http.StatusOK, w.Code)

	path := fmt.Sprintf("/api/favorites/%d", book.ID)
	w = doJSON(t, router, "DELETE", path, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "DELETE", path, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestFavoritesController_ListYears(t *testing.T) {
	db, cleanup := setupTestDB(t)
	defer cleanup()
	router := newFavoritesRouter(1, favorites.NewService(db.DB))

	for _, year := range []string{"2023", "2024"} {
		book := seedBook(t, db, 1, "Book "+year)
		w := doJSON(t, router, "PUT", fmt.Sprintf("/api/favorites/%d", book.ID), gin.H{"slot": 1, "year": year})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := doJSON(t, router, "GET", "/api/favorites/years", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Years []int `json:"years"`
	}
	decodeBody(t, w, &resp)
	assert.Equal(t, []int{2024, 2023}, resp.Years)
}
