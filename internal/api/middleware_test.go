package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"

	customerrors "github.com/axellelanca/edgelink/internal/errors"
	"github.com/axellelanca/edgelink/internal/logging"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer   abc  ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer   ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		token, ok := bearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.token, token, tt.header)
	}
}

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	log := logging.Discard().WithField("component", "test")

	tests := []struct {
		err  error
		want int
	}{
		{customerrors.ErrInvalidURL, http.StatusBadRequest},
		{errors.Wrap(customerrors.ErrInvalidShortCode, "create"), http.StatusBadRequest},
		{customerrors.ErrShortCodeTaken, http.StatusConflict},
		{customerrors.ErrShortCodeNotFound, http.StatusNotFound},
		{customerrors.ErrDomainNotFound, http.StatusNotFound},
		{customerrors.ErrShortCodeGenerationFailed, http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)

		writeError(c, log, tt.err)
		assert.Equal(t, tt.want, w.Code, tt.err.Error())
		if tt.want == http.StatusInternalServerError {
			assert.NotContains(t, w.Body.String(), "disk on fire")
		}
	}
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestLogger(logging.Discard()))
	router.GET("/ping", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(requestIDKey)) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	id := w.Header().Get(requestIDHeader)
	assert.Len(t, id, 36)
	assert.Equal(t, id, w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(requestIDHeader, "from-client")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, "from-client", w.Header().Get(requestIDHeader))
}
