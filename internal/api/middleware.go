package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	customerrors "github.com/axellelanca/edgelink/internal/errors"
	"github.com/axellelanca/edgelink/internal/ratelimit"
	"github.com/axellelanca/edgelink/internal/repository"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "requestID"
)

// RequestLogger assigns a request ID and writes one access log line per request.
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Header(requestIDHeader, requestID)

		c.Next()

		status := c.Writer.Status()
		entry := logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     status,
			"latency":    time.Since(start).String(),
			"client_ip":  c.ClientIP(),
		})
		if len(c.Errors) > 0 {
			entry = entry.WithField("errors", c.Errors.String())
		}

		switch {
		case status >= http.StatusInternalServerError:
			entry.Error("request failed")
		case status >= http.StatusBadRequest:
			entry.Warn("request rejected")
		default:
			entry.Info("request handled")
		}
	}
}

// RateLimit counts requests per client address. Rejected requests never reach
// the handlers.
func RateLimit(limiter *ratelimit.Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Enabled() {
			c.Next()
			return
		}

		d := limiter.CheckAndIncrement(c.Request.Context(), c.ClientIP())
		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			c.Header("Retry-After", strconv.Itoa(int(d.RetryAfter/time.Second)))
			abortWithError(c, http.StatusTooManyRequests, customerrors.ErrRateLimited)
			return
		}
		c.Next()
	}
}

// BearerAuth accepts requests carrying "Authorization: Bearer <token>" for a
// token present in the credential store.
func BearerAuth(creds repository.CredentialRepository, logger *logrus.Logger) gin.HandlerFunc {
	log := logger.WithField("component", "api/auth")
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.Header("WWW-Authenticate", `Bearer realm="edgelink"`)
			abortWithError(c, http.StatusUnauthorized, customerrors.ErrUnauthorized)
			return
		}

		valid, err := creds.ValidateToken(c.Request.Context(), token)
		if err != nil {
			log.WithError(err).Error("credential lookup failed")
			_ = c.Error(err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": internalErrorMessage})
			return
		}
		if !valid {
			c.Header("WWW-Authenticate", `Bearer realm="edgelink", error="invalid_token"`)
			abortWithError(c, http.StatusUnauthorized, customerrors.ErrUnauthorized)
			return
		}
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
