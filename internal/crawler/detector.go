// Package crawler decides whether a request comes from a link-preview bot.
package crawler

import "strings"

// Detector reports whether a user agent belongs to a link-preview crawler.
type Detector interface {
	IsCrawler(userAgent string) bool
}

// DefaultSignatures are user-agent fragments of the common social preview bots.
var DefaultSignatures = []string{
	"facebookexternalhit",
	"facebot",
	"twitterbot",
	"linkedinbot",
	"slackbot",
	"slack-imgproxy",
	"discordbot",
	"telegrambot",
	"whatsapp",
	"pinterest",
	"redditbot",
	"embedly",
	"skypeuripreview",
	"vkshare",
	"applebot",
	"mastodon",
	"iframely",
}

// SignatureDetector matches user agents against a list of substrings,
// ignoring case.
type SignatureDetector struct {
	signatures []string
}

// NewSignatureDetector returns a detector for DefaultSignatures plus extra.
func NewSignatureDetector(extra ...string) *SignatureDetector {
	sigs := make([]string, 0, len(DefaultSignatures)+len(extra))
	for _, s := range append(append([]string{}, DefaultSignatures...), extra...) {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			sigs = append(sigs, s)
		}
	}
	return &SignatureDetector{signatures: sigs}
}

func (d *SignatureDetector) IsCrawler(userAgent string) bool {
	if userAgent == "" {
		return false
	}
	ua := strings.ToLower(userAgent)
	for _, s := range d.signatures {
		if strings.Contains(ua, s) {
			return true
		}
	}
	return false
}

// DetectorFunc adapts a plain function to Detector.
type DetectorFunc func(userAgent string) bool

func (f DetectorFunc) IsCrawler(userAgent string) bool { return f(userAgent) }
