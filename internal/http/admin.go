package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/okatkov/shelfmark/internal/tasks"
)

type AdminController struct {
	taskClient *tasks.Client
}

func NewAdminController(taskClient *tasks.Client) *AdminController {
	return &AdminController{taskClient: taskClient}
}

// CompactList enqueues a background position compaction for one list.
// Favorites-type lists are skipped by the task processor.
// POST /api/admin/lists/:id/compact
func (ac *AdminController) CompactList(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := ac.taskClient.Add(tasks.CompactListTask{ListID: id}).Save(); err != nil {
		respondInternalError(c, err, "enqueue compaction")
		return
	}

	c.JSON(http.StatusAccepted, SuccessResponse{Message: "compaction enqueued"})
}

// EnrichBook enqueues a metadata lookup for one catalog book.
// POST /api/admin/books/:id/enrich
func (ac *AdminController) EnrichBook(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	if _, err := ac.taskClient.Add(tasks.EnrichBookTask{BookID: id}).Save(); err != nil {
		respondInternalError(c, err, "enqueue enrichment")
		return
	}

	c.JSON(http.StatusAccepted, SuccessResponse{Message: "enrichment enqueued"})
}
