package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// paginationParams parses page and limit query parameters with the usual
// defaults. It writes the error response itself when parsing fails.
func paginationParams(c *gin.Context) (page, limit int, ok bool) {
	var err error

	page, err = strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid page parameter"})
		return 0, 0, false
	}
	limit, err = strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > 100 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid limit parameter"})
		return 0, 0, false
	}
	return page, limit, true
}

// paginated wraps a result page with the listing envelope.
func paginated(data any, total, page, limit int) gin.H {
	totalPages := (total + limit - 1) / limit
	return gin.H{
		"data":        data,
		"total":       total,
		"page":        page,
		"limit":       limit,
		"total_pages": totalPages,
		"has_next":    page < totalPages,
		"has_prev":    page > 1,
	}
}
