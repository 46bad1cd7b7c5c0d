package http

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/okatkov/shelfmark/internal/auth"
	"github.com/okatkov/shelfmark/internal/shelferr"
)

// GetUserID extracts the authenticated owner's ID from the Gin context.
// Returns auth.DefaultUserID (0) when auth is disabled.
func GetUserID(c *gin.Context) uint {
	return auth.GetUserID(c)
}

// --- Response Types ---

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"` // machine-readable error kind
}

// SuccessResponse is a standard success response with optional data.
type SuccessResponse struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// --- Error Response Helpers ---

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message})
}

// respondInternalError logs the error and sends a 500 Internal Server Error
// response. The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// respondServiceError translates a service error into the corresponding HTTP
// status. Unknown (infrastructure) errors map to a generic 500.
func respondServiceError(c *gin.Context, err error, context string) {
	kind := shelferr.KindOf(err)
	status, known := kindStatus[kind]
	if !known {
		respondInternalError(c, err, context)
		return
	}
	c.JSON(status, ErrorResponse{Error: err.Error(), Code: string(kind)})
}

var kindStatus = map[shelferr.Kind]int{
	shelferr.KindUnauthenticated:   http.StatusUnauthorized,
	shelferr.KindValidation:        http.StatusBadRequest,
	shelferr.KindNotFound:          http.StatusNotFound,
	shelferr.KindOwnership:         http.StatusForbidden,
	shelferr.KindUniqueness:        http.StatusConflict,
	shelferr.KindCapacity:          http.StatusConflict,
	shelferr.KindDuplicate:         http.StatusConflict,
	shelferr.KindInvalidMembers:    http.StatusUnprocessableEntity,
	shelferr.KindIncompleteReorder: http.StatusUnprocessableEntity,
}

// --- Success Response Helpers ---

// respondSuccess sends a 200 OK response with a message.
func respondSuccess(c *gin.Context, message string) {
	c.JSON(http.StatusOK, SuccessResponse{Message: message})
}

// respondCreated sends a 201 Created response with data.
func respondCreated(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}

// --- Parameter Parsing ---

// parseIDParam extracts and validates an unsigned integer ID from URL
// parameters. On failure it responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	idStr := c.Param(paramName)
	id, err := strconv.ParseUint(idStr, 10, 32)
	if err != nil {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}
