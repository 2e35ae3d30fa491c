package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/axellelanca/edgelink/internal/models"
	"github.com/axellelanca/edgelink/internal/ratelimit"
	"github.com/axellelanca/edgelink/internal/repository"
	"github.com/axellelanca/edgelink/internal/services"
)

// Deps are the collaborators the HTTP layer is built from.
type Deps struct {
	Links       *services.LinkService
	Redirects   *services.RedirectService
	Analytics   *services.AnalyticsService
	Domains     *services.DomainService
	Credentials repository.CredentialRepository
	Limiter     *ratelimit.Limiter
	BaseURL     string // used to build short URLs, without trailing slash
	Logger      *logrus.Logger
}

// SetupRoutes configures all Gin routes and injects necessary dependencies.
// Every /api route goes through the rate limiter first, then bearer auth.
func SetupRoutes(router *gin.Engine, deps Deps) {
	log := deps.Logger.WithField("component", "api")
	router.SetHTMLTemplate(previewTemplate)

	// Health Check Route - used for monitoring service availability
	router.GET("/health", HealthCheckHandler)

	api := router.Group("/api")
	api.Use(RateLimit(deps.Limiter), BearerAuth(deps.Credentials, deps.Logger))
	{
		api.POST("/urls", CreateShortLinkHandler(deps.Links, deps.BaseURL, log))
		api.GET("/urls/:shortCode", GetLinkHandler(deps.Links, deps.BaseURL, log))
		api.PUT("/urls/:shortCode", UpdateLinkHandler(deps.Links, deps.BaseURL, log))
		api.DELETE("/urls/:shortCode", DeleteLinkHandler(deps.Links, log))

		api.POST("/domains", RegisterDomainHandler(deps.Domains, log))
		api.DELETE("/domains/:domain", RemoveDomainHandler(deps.Domains, log))

		api.GET("/analytics", AnalyticsSummaryHandler(deps.Analytics, log))
		api.GET("/analytics/:shortCode", LinkAnalyticsHandler(deps.Analytics, log))
	}

	// Redirection routes at root level, e.g. localhost:8080/abc123
	router.GET("/:shortCode", RedirectHandler(deps.Redirects, log))
	router.GET("/:shortCode/og", PreviewHandler(deps.Redirects, deps.BaseURL, log))
}

// HealthCheckHandler handles the /health route to verify service status
func HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// CreateLinkRequest is the body of POST /api/urls.
type CreateLinkRequest struct {
	URL           string `json:"url" binding:"required"`
	CustomCode    string `json:"customCode"`
	ExpiresIn     *int64 `json:"expiresIn"` // seconds
	OGTitle       string `json:"ogTitle"`
	OGDescription string `json:"ogDescription"`
	OGImage       string `json:"ogImage"`
}

// LinkResponse describes a link to API clients.
type LinkResponse struct {
	ShortCode string          `json:"code"`
	ShortURL  string          `json:"shortUrl"`
	LongURL   string          `json:"url"`
	CreatedAt *time.Time      `json:"createdAt,omitempty"`
	ExpiresAt *time.Time      `json:"expiresAt,omitempty"`
	Preview   *models.Preview `json:"preview,omitempty"`
}

func newLinkResponse(link *models.Link, baseURL string, full bool) LinkResponse {
	resp := LinkResponse{
		ShortCode: link.ShortCode,
		ShortURL:  baseURL + "/" + link.ShortCode,
		LongURL:   link.LongURL,
		ExpiresAt: link.ExpiresAt,
	}
	if full {
		createdAt := link.CreatedAt
		resp.CreatedAt = &createdAt
		resp.Preview = link.Preview
	}
	return resp
}

// CreateShortLinkHandler answers 201 for a new link and 200 when the URL is
// already mapped to a live link.
func CreateShortLinkHandler(linkService *services.LinkService, baseURL string, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateLinkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}

		link, created, err := linkService.CreateLink(c.Request.Context(), services.CreateLinkInput{
			URL:           req.URL,
			CustomCode:    req.CustomCode,
			ExpiresIn:     req.ExpiresIn,
			OGTitle:       req.OGTitle,
			OGDescription: req.OGDescription,
			OGImage:       req.OGImage,
		})
		if err != nil {
			writeError(c, log, err)
			return
		}

		status := http.StatusOK
		if created {
			status = http.StatusCreated
		}
		c.JSON(status, newLinkResponse(link, baseURL, false))
	}
}

// GetLinkHandler returns the stored record, expired or not.
func GetLinkHandler(linkService *services.LinkService, baseURL string, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		link, err := linkService.GetLinkByShortCode(c.Request.Context(), c.Param("shortCode"))
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, newLinkResponse(link, baseURL, true))
	}
}

type UpdateLinkRequest struct {
	URL string `json:"url" binding:"required"`
}

func UpdateLinkHandler(linkService *services.LinkService, baseURL string, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateLinkRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}
		link, err := linkService.UpdateLink(c.Request.Context(), c.Param("shortCode"), req.URL)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, newLinkResponse(link, baseURL, true))
	}
}

// DeleteLinkHandler is idempotent: unknown codes are answered with 200 too.
func DeleteLinkHandler(linkService *services.LinkService, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		shortCode := c.Param("shortCode")
		if err := linkService.DeleteLink(c.Request.Context(), shortCode); err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": shortCode, "deleted": true})
	}
}

// RedirectHandler handles the redirection from a short URL to the original long URL.
// Crawlers are sent to the preview page instead.
func RedirectHandler(redirects *services.RedirectService, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := redirects.Resolve(c.Request.Context(), c.Param("shortCode"), c.Request.Host, c.GetHeader("User-Agent"))
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.Redirect(http.StatusFound, res.Location)
	}
}

type RegisterDomainRequest struct {
	Domain string `json:"domain" binding:"required"`
	Target string `json:"target" binding:"required"`
}

func RegisterDomainHandler(domains *services.DomainService, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterDomainRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
			return
		}
		d, err := domains.RegisterDomain(c.Request.Context(), req.Domain, req.Target)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusCreated, d)
	}
}

func RemoveDomainHandler(domains *services.DomainService, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		domain := c.Param("domain")
		if err := domains.RemoveDomain(c.Request.Context(), domain); err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"domain": domain, "deleted": true})
	}
}

// LinkAnalyticsHandler answers with the click count of a code, 0 when unknown.
func LinkAnalyticsHandler(analytics *services.AnalyticsService, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		shortCode := c.Param("shortCode")
		clicks, err := analytics.ClickCount(c.Request.Context(), shortCode)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"code": shortCode, "clickCount": clicks})
	}
}

// AnalyticsSummaryHandler accepts an optional ?limit= for the top list size.
func AnalyticsSummaryHandler(analytics *services.AnalyticsService, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit := services.DefaultTopN
		if raw := c.Query("limit"); raw != "" {
			n, err := strconv.Atoi(raw)
			if err != nil || n <= 0 {
				c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
				return
			}
			limit = n
		}
		summary, err := analytics.Summary(c.Request.Context(), limit)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}
