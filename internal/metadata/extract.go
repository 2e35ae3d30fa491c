package metadata

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/axellelanca/edgelink/internal/models"
)

// Fallback values used when a field is missing, empty or invalid.
const (
	DefaultTitle       = "Untitled"
	DefaultDescription = "No description available."
	PlaceholderImage   = "https://placehold.co/1200x630/png?text=edgelink"
)

// Extract parses an HTML document and returns its og:title, og:description and
// og:image values along with the text of its <title> element.
func Extract(r io.Reader) (models.Preview, string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return models.Preview{}, "", err
	}

	var (
		p        models.Preview
		docTitle string
	)
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.DataAtom {
			case atom.Meta:
				applyMeta(&p, n)
			case atom.Title:
				if docTitle == "" {
					docTitle = textOf(n)
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return p, strings.TrimSpace(docTitle), nil
}

func applyMeta(p *models.Preview, n *html.Node) {
	var key, content string
	for _, a := range n.Attr {
		switch strings.ToLower(a.Key) {
		case "property", "name":
			if key == "" {
				key = strings.ToLower(strings.TrimSpace(a.Val))
			}
		case "content":
			content = strings.TrimSpace(a.Val)
		}
	}
	// first occurrence wins
	switch key {
	case "og:title":
		if p.Title == "" {
			p.Title = content
		}
	case "og:description":
		if p.Description == "" {
			p.Description = content
		}
	case "og:image", "og:image:url":
		if p.ImageURL == "" {
			p.ImageURL = content
		}
	}
}

func textOf(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Normalize applies the per-field fallback policy. docTitle is used when the
// title is missing and may be empty.
func Normalize(p models.Preview, docTitle string) models.Preview {
	out := models.Preview{
		Title:       strings.TrimSpace(p.Title),
		Description: strings.TrimSpace(p.Description),
		ImageURL:    strings.TrimSpace(p.ImageURL),
	}
	if out.Title == "" {
		out.Title = strings.TrimSpace(docTitle)
	}
	if out.Title == "" {
		out.Title = DefaultTitle
	}
	if out.Description == "" {
		out.Description = DefaultDescription
	}
	if !IsAbsoluteURL(out.ImageURL) {
		out.ImageURL = PlaceholderImage
	}
	return out
}

// IsAbsoluteURL reports whether raw is an absolute http(s) URL with a host.
func IsAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
