package metadata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/axellelanca/edgelink/internal/kv"
	"github.com/axellelanca/edgelink/internal/logging"
	"github.com/axellelanca/edgelink/internal/models"
)

const pageWithTags = `<!doctype html>
<html><head>
<title>  Page   title </title>
<meta property="og:title" content="Fish &amp; <Chips>">
<meta name="og:description" content="Best in town">
<meta property="og:image" content="https://cdn.example.com/fish.png">
</head><body><p>hi</p></body></html>`

func countingServer(t *testing.T, status int, body string) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)
		w.Header().Set("Content-Type", "text/html")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func newTestResolver(store kv.Store, opts Options) *Resolver {
	if opts.FetchTimeout == 0 {
		opts.FetchTimeout = 2 * time.Second
	}
	return NewResolver(store, opts, logging.Discard())
}

func TestResolve_ExtractsTagsAndCaches(t *testing.T) {
	srv, hits := countingServer(t, http.StatusOK, pageWithTags)
	r := newTestResolver(kv.NewMemoryStore(), Options{})

	p := r.Resolve(context.Background(), srv.URL)
	assert.Equal(t, "Fish & <Chips>", p.Title)
	assert.Equal(t, "Best in town", p.Description)
	assert.Equal(t, "https://cdn.example.com/fish.png", p.ImageURL)

	again := r.Resolve(context.Background(), srv.URL)
	assert.Equal(t, p, again)
	assert.EqualValues(t, 1, hits.Load(), "second call must be served from cache")
}

func TestResolve_UnreachableTargetFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	target := srv.URL + "/gone"
	srv.Close()

	store := kv.NewMemoryStore()
	r := newTestResolver(store, Options{})

	p := r.Resolve(context.Background(), target)
	assert.Equal(t, DefaultTitle, p.Title)
	assert.Equal(t, DefaultDescription, p.Description)
	assert.True(t, IsAbsoluteURL(p.ImageURL))

	// the fallback is cached too
	_, err := store.Get(context.Background(), cachePrefix+kv.HashKey(target))
	require.NoError(t, err)
}

func TestResolve_NonSuccessStatusFallsBack(t *testing.T) {
	srv, hits := countingServer(t, http.StatusInternalServerError, pageWithTags)
	r := newTestResolver(kv.NewMemoryStore(), Options{})

	p := r.Resolve(context.Background(), srv.URL)
	assert.Equal(t, DefaultTitle, p.Title)

	r.Resolve(context.Background(), srv.URL)
	assert.EqualValues(t, 1, hits.Load())
}

func TestResolve_SlowTargetTimesOut(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	r := newTestResolver(kv.NewMemoryStore(), Options{FetchTimeout: 50 * time.Millisecond})

	start := time.Now()
	p := r.Resolve(context.Background(), srv.URL)
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, DefaultTitle, p.Title)
}

func TestResolve_ThrottledCallIsNotCached(t *testing.T) {
	srv, hits := countingServer(t, http.StatusOK, pageWithTags)
	store := kv.NewMemoryStore()
	r := newTestResolver(store, Options{FetchRPS: 0.001, FetchBurst: 1})

	r.Resolve(context.Background(), srv.URL+"/a")
	p := r.Resolve(context.Background(), srv.URL+"/b")

	assert.EqualValues(t, 1, hits.Load())
	assert.Equal(t, DefaultTitle, p.Title)
	_, err := store.Get(context.Background(), cachePrefix+kv.HashKey(srv.URL+"/b"))
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestResolve_MalformedCacheEntryIsAMiss(t *testing.T) {
	srv, hits := countingServer(t, http.StatusOK, pageWithTags)
	store := kv.NewMemoryStore()
	require.NoError(t, store.Put(context.Background(), cachePrefix+kv.HashKey(srv.URL), "{{", 0))

	p := newTestResolver(store, Options{}).Resolve(context.Background(), srv.URL)
	assert.Equal(t, "Fish & <Chips>", p.Title)
	assert.EqualValues(t, 1, hits.Load())
}

func TestExtract_TitleFallback(t *testing.T) {
	p, docTitle, err := Extract(strings.NewReader(`<html><head><title>Plain page</title></head></html>`))
	require.NoError(t, err)
	assert.Empty(t, p.Title)
	assert.Equal(t, "Plain page", docTitle)
	assert.Equal(t, "Plain page", Normalize(p, docTitle).Title)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   models.Preview
		want models.Preview
	}{
		{
			name: "empty",
			want: models.Preview{Title: DefaultTitle, Description: DefaultDescription, ImageURL: PlaceholderImage},
		},
		{
			name: "relative image",
			in:   models.Preview{Title: "t", Description: "d", ImageURL: "/img.png"},
			want: models.Preview{Title: "t", Description: "d", ImageURL: PlaceholderImage},
		},
		{
			name: "javascript image",
			in:   models.Preview{ImageURL: "javascript:alert(1)"},
			want: models.Preview{Title: DefaultTitle, Description: DefaultDescription, ImageURL: PlaceholderImage},
		},
		{
			name: "kept",
			in:   models.Preview{Title: " t ", Description: "d", ImageURL: "http://x.test/i.png"},
			want: models.Preview{Title: "t", Description: "d", ImageURL: "http://x.test/i.png"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in, ""))
		})
	}
}
