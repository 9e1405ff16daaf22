package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"reno-market/internal/apperr"
)

// respondError maps an error's kind onto its HTTP status. Unclassified
// errors are logged and surfaced as a generic 500.
func respondError(c *gin.Context, err error) {
	switch apperr.KindOf(err) {
	case apperr.KindInvalid:
		c.JSON(http.StatusBadRequest, gin.H{"error": apperr.MessageOf(err)})
	case apperr.KindNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": apperr.MessageOf(err)})
	case apperr.KindPermissionDenied:
		c.JSON(http.StatusForbidden, gin.H{"error": apperr.MessageOf(err)})
	case apperr.KindConflict:
		c.JSON(http.StatusConflict, gin.H{"error": apperr.MessageOf(err)})
	default:
		log.Printf("Internal error on %s %s: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
