package repository

import (
	"context"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"

	customerrors "github.com/axellelanca/edgelink/internal/errors"
	"github.com/axellelanca/edgelink/internal/kv"
	"github.com/axellelanca/edgelink/internal/logging"
	"github.com/axellelanca/edgelink/internal/models"
)

type RepositorySuite struct {
	suite.Suite
	store   *kv.MemoryStore
	links   *KVLinkRepository
	clicks  *KVClickRepository
	domains *KVDomainRepository
	creds   *KVCredentialRepository
}

func TestRepositorySuite(t *testing.T) {
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) SetupTest() {
	s.store = kv.NewMemoryStore()
	s.links = NewLinkRepository(s.store, logging.Discard())
	s.clicks = NewClickRepository(s.store, logging.Discard())
	s.domains = NewDomainRepository(s.store)
	s.creds = NewCredentialRepository(s.store)
}

func (s *RepositorySuite) TestLinkRoundTrip() {
	ctx := context.Background()
	exp := time.Now().Add(time.Hour).UTC().Truncate(time.Second)
	link := &models.Link{
		ShortCode: "abc123",
		LongURL:   gofakeit.URL(),
		CreatedAt: time.Now().UTC().Truncate(time.Second),
		ExpiresAt: &exp,
	}
	s.Require().NoError(s.links.SaveLink(ctx, link))

	got, err := s.links.GetLinkByShortCode(ctx, "abc123")
	s.Require().NoError(err)
	s.Equal(link.LongURL, got.LongURL)
	s.True(exp.Equal(*got.ExpiresAt))

	ok, err := s.links.ShortCodeExists(ctx, "abc123")
	s.Require().NoError(err)
	s.True(ok)

	s.Require().NoError(s.links.DeleteLink(ctx, "abc123"))
	s.Require().NoError(s.links.DeleteLink(ctx, "abc123"))
	_, err = s.links.GetLinkByShortCode(ctx, "abc123")
	s.ErrorIs(err, customerrors.ErrShortCodeNotFound)
}

func (s *RepositorySuite) TestMalformedLinkIsNotFound() {
	ctx := context.Background()
	s.Require().NoError(s.store.Put(ctx, "url:broken", "{not json", 0))

	_, err := s.links.GetLinkByShortCode(ctx, "broken")
	s.True(customerrors.IsNotFound(err))

	// the key is still occupied
	ok, err := s.links.ShortCodeExists(ctx, "broken")
	s.Require().NoError(err)
	s.True(ok)
}

func (s *RepositorySuite) TestGetAllLinksSkipsMalformed() {
	ctx := context.Background()
	for _, code := range []string{"aaa", "bbb"} {
		s.Require().NoError(s.links.SaveLink(ctx, &models.Link{ShortCode: code, LongURL: gofakeit.URL()}))
	}
	s.Require().NoError(s.store.Put(ctx, "url:ccc", "garbage", 0))

	links, err := s.links.GetAllLinks(ctx)
	s.Require().NoError(err)
	s.Len(links, 2)
}

func (s *RepositorySuite) TestURLIndex() {
	ctx := context.Background()
	target := "https://example.com/page"

	_, err := s.links.FindShortCodeByURL(ctx, target)
	s.ErrorIs(err, customerrors.ErrShortCodeNotFound)

	s.Require().NoError(s.links.IndexURL(ctx, target, "first"))
	code, err := s.links.FindShortCodeByURL(ctx, target)
	s.Require().NoError(err)
	s.Equal("first", code)

	// another code does not own the entry
	s.Require().NoError(s.links.UnindexURL(ctx, target, "other"))
	code, err = s.links.FindShortCodeByURL(ctx, target)
	s.Require().NoError(err)
	s.Equal("first", code)

	s.Require().NoError(s.links.UnindexURL(ctx, target, "first"))
	_, err = s.links.FindShortCodeByURL(ctx, target)
	s.ErrorIs(err, customerrors.ErrShortCodeNotFound)
}

func (s *RepositorySuite) TestClickCounters() {
	ctx := context.Background()
	for range 3 {
		s.Require().NoError(s.clicks.IncrementClicks(ctx, "abc"))
	}
	s.Require().NoError(s.clicks.IncrementClicks(ctx, "xyz"))

	n, err := s.clicks.CountClicks(ctx, "abc")
	s.Require().NoError(err)
	s.EqualValues(3, n)

	total, err := s.clicks.TotalClicks(ctx)
	s.Require().NoError(err)
	s.EqualValues(4, total)

	all, err := s.clicks.AllClicks(ctx)
	s.Require().NoError(err)
	s.Equal(map[string]int64{"abc": 3, "xyz": 1}, all)

	s.Require().NoError(s.clicks.DeleteClicks(ctx, "abc"))
	n, err = s.clicks.CountClicks(ctx, "abc")
	s.Require().NoError(err)
	s.Zero(n)

	// the total keeps matching the remaining counters
	total, err = s.clicks.TotalClicks(ctx)
	s.Require().NoError(err)
	s.EqualValues(1, total)

	s.Require().NoError(s.clicks.DeleteClicks(ctx, "unknown"))
	total, err = s.clicks.TotalClicks(ctx)
	s.Require().NoError(err)
	s.EqualValues(1, total)
}

func (s *RepositorySuite) TestMalformedCounterReadsZero() {
	ctx := context.Background()
	s.Require().NoError(s.store.Put(ctx, "clicks:abc", "lots", 0))

	n, err := s.clicks.CountClicks(ctx, "abc")
	s.Require().NoError(err)
	s.Zero(n)

	s.Require().NoError(s.clicks.IncrementClicks(ctx, "abc"))
	n, err = s.clicks.CountClicks(ctx, "abc")
	s.Require().NoError(err)
	s.EqualValues(1, n)
}

func (s *RepositorySuite) TestDomains() {
	ctx := context.Background()
	s.Require().NoError(s.domains.SaveDomain(ctx, &models.CustomDomain{Domain: "Go.Example.com", Target: "https://example.com"}))

	d, err := s.domains.GetDomain(ctx, "go.example.com:8443")
	s.Require().NoError(err)
	s.Equal("https://example.com", d.Target)

	s.Require().NoError(s.domains.DeleteDomain(ctx, "go.example.com"))
	_, err = s.domains.GetDomain(ctx, "go.example.com")
	s.ErrorIs(err, customerrors.ErrDomainNotFound)
}

func (s *RepositorySuite) TestCredentials() {
	ctx := context.Background()
	token := gofakeit.UUID()

	ok, err := s.creds.ValidateToken(ctx, token)
	s.Require().NoError(err)
	s.False(ok)

	s.Require().NoError(s.creds.AddToken(ctx, token, "ci"))
	ok, err = s.creds.ValidateToken(ctx, token)
	s.Require().NoError(err)
	s.True(ok)

	s.Require().NoError(s.store.Put(ctx, "apikey:blank", "  ", 0))
	ok, err = s.creds.ValidateToken(ctx, "blank")
	s.Require().NoError(err)
	s.False(ok)

	ok, err = s.creds.ValidateToken(ctx, "")
	s.Require().NoError(err)
	s.False(ok)
}

func TestNormalizeHost(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"example.com", "example.com"},
		{"EXAMPLE.com:8080", "example.com"},
		{"example.com.", "example.com"},
		{"[::1]:8080", "::1"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeHost(tt.in), tt.in)
	}
}
