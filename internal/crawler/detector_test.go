package crawler

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSignatureDetector(t *testing.T) {
	d := NewSignatureDetector("MyPreviewBot", "  ")

	tests := []struct {
		ua   string
		want bool
	}{
		{"facebookexternalhit/1.1 (+http://www.facebook.com/externalhit_uatext.php)", true},
		{"Mozilla/5.0 (compatible; Twitterbot/1.0)", true},
		{"Slackbot-LinkExpanding 1.0 (+https://api.slack.com/robots)", true},
		{"Mozilla/5.0 (compatible; Discordbot/2.0; +https://discordapp.com)", true},
		{"WhatsApp/2.23.20.0", true},
		{"mypreviewbot/0.1", true},
		{"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0 Safari/537.36", false},
		{"curl/8.4.0", false},
		{"", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, d.IsCrawler(tt.ua), tt.ua)
	}
}

func TestDetectorFunc(t *testing.T) {
	var d Detector = DetectorFunc(func(ua string) bool { return ua == "bot" })
	assert.True(t, d.IsCrawler("bot"))
	assert.False(t, d.IsCrawler("human"))
}
