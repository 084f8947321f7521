package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConditionalGET(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var version uint64 = 3
	hits := 0

	r := gin.New()
	r.GET("/courses", ConditionalGET(func() uint64 { return version }), func(c *gin.Context) {
		hits++
		c.String(http.StatusOK, "list")
	})
	r.POST("/courses", ConditionalGET(func() uint64 { return version }), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/courses", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `W/"v3"`, w.Header().Get("ETag"))

	req := httptest.NewRequest(http.MethodGet, "/courses", nil)
	req.Header.Set("If-None-Match", `"v3"`)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotModified, w.Code)
	assert.Equal(t, 1, hits)

	version = 4
	req = httptest.NewRequest(http.MethodGet, "/courses", nil)
	req.Header.Set("If-None-Match", `W/"v3"`)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, `W/"v4"`, w.Header().Get("ETag"))
	assert.Equal(t, 2, hits)

	req = httptest.NewRequest(http.MethodPost, "/courses", nil)
	req.Header.Set("If-None-Match", "*")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, w.Header().Get("ETag"))
}

func TestETagMatches(t *testing.T) {
	assert.False(t, etagMatches("", `W/"v1"`))
	assert.True(t, etagMatches(`W/"v0", W/"v1"`, `W/"v1"`))
	assert.True(t, etagMatches("*", `W/"v1"`))
	assert.False(t, etagMatches(`W/"v10"`, `W/"v1"`))
}
