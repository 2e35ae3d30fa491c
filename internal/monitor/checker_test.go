package monitor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axellelanca/edgelink/internal/logging"
	"github.com/axellelanca/edgelink/internal/models"
)

func TestCheckAll(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		switch r.URL.Path {
		case "/ok":
			w.WriteHeader(http.StatusOK)
		case "/moved":
			w.WriteHeader(http.StatusNotModified)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	dead := httptest.NewServer(http.NotFoundHandler())
	deadURL := dead.URL
	dead.Close()

	links := []models.Link{
		{ShortCode: "ok", LongURL: srv.URL + "/ok"},
		{ShortCode: "moved", LongURL: srv.URL + "/moved"},
		{ShortCode: "gone", LongURL: srv.URL + "/gone"},
		{ShortCode: "dead", LongURL: deadURL},
	}

	checker := NewChecker(srv.Client(), 2, time.Second, logging.Discard())
	reports := checker.CheckAll(context.Background(), links)
	require.Len(t, reports, 4)

	assert.True(t, reports[0].Accessible)
	assert.True(t, reports[1].Accessible)
	assert.False(t, reports[2].Accessible)
	assert.Equal(t, http.StatusNotFound, reports[2].StatusCode)
	assert.False(t, reports[3].Accessible)
	assert.Zero(t, reports[3].StatusCode)
	assert.NotEmpty(t, reports[3].Error)

	for i, r := range reports {
		assert.Equal(t, links[i].ShortCode, r.ShortCode)
	}
}
