package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	customerrors "github.com/axellelanca/edgelink/internal/errors"
)

const internalErrorMessage = "Internal server error"

func abortWithError(c *gin.Context, status int, err error) {
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
}

// writeError maps service errors to HTTP statuses. Unexpected errors are logged
// and answered with a generic message.
func writeError(c *gin.Context, logger *logrus.Entry, err error) {
	switch {
	case customerrors.IsValidation(err):
		abortWithError(c, http.StatusBadRequest, err)
	case errors.Is(err, customerrors.ErrShortCodeTaken):
		abortWithError(c, http.StatusConflict, err)
	case errors.Is(err, customerrors.ErrShortCodeNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Short URL not found"})
	case errors.Is(err, customerrors.ErrDomainNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "Domain not found"})
	case errors.Is(err, customerrors.ErrShortCodeGenerationFailed):
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "Unable to generate unique short code. Please try again later."})
	default:
		logger.WithError(err).WithField("path", c.Request.URL.Path).Error("unexpected error")
		_ = c.Error(err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
	}
}
