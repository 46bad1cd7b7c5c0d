package http

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/okatkov/shelfmark/internal/entities"
	"github.com/okatkov/shelfmark/internal/metadata"
	"github.com/okatkov/shelfmark/internal/tasks"
)

// BookStore defines the catalog operations the controller needs.
type BookStore interface {
	CreateBook(book *entities.Book) error
	GetBookByID(id uint) (*entities.Book, error)
	GetBooksForOwner(ownerID uint) ([]entities.Book, error)
	DeleteBook(ownerID, bookID uint) error
}

type BooksController struct {
	store      BookStore
	taskClient *tasks.Client
	coverCache CoverCache
}

// NewBooksController creates the catalog controller. taskClient may be nil,
// in which case newly created books are not queued for metadata enrichment;
// coverCache may be nil when covers are not served.
func NewBooksController(store BookStore, taskClient *tasks.Client, coverCache CoverCache) *BooksController {
	return &BooksController{store: store, taskClient: taskClient, coverCache: coverCache}
}

// CreateBook adds a book to the owner's catalog.
// POST /api/books
func (bc *BooksController) CreateBook(c *gin.Context) {
	var req struct {
		Title           string `json:"title" binding:"required"`
		Author          string `json:"author"`
		ISBN            string `json:"isbn"`
		CoverURL        string `json:"cover_url"`
		PublicationYear int    `json:"publication_year"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "title is required")
		return
	}

	book := &entities.Book{
		OwnerID:         GetUserID(c),
		Title:           strings.TrimSpace(req.Title),
		Author:          strings.TrimSpace(req.Author),
		ISBN:            strings.TrimSpace(req.ISBN),
		CoverURL:        strings.TrimSpace(req.CoverURL),
		PublicationYear: req.PublicationYear,
	}
	if book.Title == "" {
		respondBadRequest(c, "title is required")
		return
	}

	if err := bc.store.CreateBook(book); err != nil {
		respondInternalError(c, err, "create book")
		return
	}

	if bc.taskClient != nil && metadata.NeedsEnrichment(book) {
		if _, err := bc.taskClient.Add(tasks.EnrichBookTask{BookID: book.ID}).Save(); err != nil {
			// The book is saved; enrichment can be retriggered from the admin API.
			log.Printf("[ERROR] enqueue enrichment for book %d: %v", book.ID, err)
		}
	}

	respondCreated(c, book)
}

// GetBooks returns the owner's catalog sorted by title.
// GET /api/books
func (bc *BooksController) GetBooks(c *gin.Context) {
	books, err := bc.store.GetBooksForOwner(GetUserID(c))
	if err != nil {
		respondInternalError(c, err, "list books")
		return
	}
	c.JSON(http.StatusOK, books)
}

// DeleteBook removes a book and every membership referencing it.
// DELETE /api/books/:id
func (bc *BooksController) DeleteBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if err := bc.store.DeleteBook(GetUserID(c), id); err != nil {
		respondServiceError(c, err, "delete book")
		return
	}

	if bc.coverCache != nil {
		if err := bc.coverCache.Invalidate(id); err != nil {
			// The book is gone; a stale cover file is only a disk-space leak.
			log.Printf("[ERROR] invalidate cover cache for book %d: %v", id, err)
		}
	}

	respondSuccess(c, "book deleted")
}
