package api

import (
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/axellelanca/edgelink/internal/services"
)

// previewTemplate is rendered for crawlers. html/template escapes every field
// for the context it lands in (text, attribute, script string).
var previewTemplate = template.Must(template.New("preview.html").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<meta property="og:type" content="website">
<meta property="og:title" content="{{.Title}}">
<meta property="og:description" content="{{.Description}}">
<meta property="og:image" content="{{.Image}}">
<meta property="og:url" content="{{.ShortURL}}">
<meta name="twitter:card" content="summary_large_image">
<meta name="twitter:title" content="{{.Title}}">
<meta name="twitter:description" content="{{.Description}}">
<meta name="twitter:image" content="{{.Image}}">
</head>
<body>
<p>Redirecting to <a href="{{.Target}}">{{.Title}}</a>...</p>
<script>window.location.replace({{.Target}});</script>
</body>
</html>
`))

type previewPage struct {
	Title       string
	Description string
	Image       string
	ShortURL    string
	Target      string
}

// PreviewHandler renders the Open Graph page of a link. No click is recorded.
func PreviewHandler(redirects *services.RedirectService, baseURL string, log *logrus.Entry) gin.HandlerFunc {
	return func(c *gin.Context) {
		shortCode := c.Param("shortCode")
		link, err := redirects.Preview(c.Request.Context(), shortCode)
		if err != nil {
			writeError(c, log, err)
			return
		}
		c.HTML(http.StatusOK, "preview.html", previewPage{
			Title:       link.Preview.Title,
			Description: link.Preview.Description,
			Image:       link.Preview.ImageURL,
			ShortURL:    baseURL + "/" + shortCode,
			Target:      link.LongURL,
		})
	}
}
