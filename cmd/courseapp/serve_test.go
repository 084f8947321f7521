package main

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/course-viewer/pkg/config"
)

func testConfig() *config.Config {
	return &config.Config{
		Env:       config.EnvDevelopment,
		Port:      8080,
		APIPrefix: "/api/v1",
		Stream:    config.StreamConfig{Heartbeat: time.Minute},
		Exports:   config.ExportsConfig{Enabled: true, Title: "Courses"},
	}
}

func TestNewAppRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := newApp(testConfig(), zap.NewNop())

	cases := []struct {
		method string
		path   string
		body   string
		status int
	}{
		{http.MethodGet, "/health", "", http.StatusOK},
		{http.MethodGet, "/ready", "", http.StatusOK},
		{http.MethodGet, "/api/v1/courses", "", http.StatusOK},
		{http.MethodPost, "/api/v1/courses", `{"department":"BIO","number":"101","location":"LIB 2"}`, http.StatusCreated},
		{http.MethodGet, "/api/v1/courses/export", "", http.StatusOK},
		{http.MethodGet, "/api/v1/selection", "", http.StatusOK},
		{http.MethodGet, "/stats", "", http.StatusOK},
		{http.MethodGet, "/metrics", "", http.StatusOK},
		{http.MethodGet, "/nowhere", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(tc.method, tc.path, strings.NewReader(tc.body))
		if tc.body != "" {
			req.Header.Set("Content-Type", "application/json")
		}
		w := httptest.NewRecorder()
		a.router.ServeHTTP(w, req)
		assert.Equal(t, tc.status, w.Code, "%s %s", tc.method, tc.path)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"), "%s %s", tc.method, tc.path)
	}

	assert.Len(t, a.store.Courses(), 3)
	summary := a.metrics.Snapshot()
	assert.Equal(t, 3, summary.Courses)
	assert.EqualValues(t, 1, summary.MutationsApplied)
}

func TestNewAppMetricsExposition(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := newApp(testConfig(), zap.NewNop())

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/courses", nil))
	require.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `path="/api/v1/courses"`)
}

func TestNewAppConditionalGET(t *testing.T) {
	gin.SetMode(gin.TestMode)
	a := newApp(testConfig(), zap.NewNop())

	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/courses", nil))
	require.Equal(t, http.StatusOK, w.Code)
	tag := w.Header().Get("ETag")
	require.NotEmpty(t, tag)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/courses", nil)
	req.Header.Set("If-None-Match", tag)
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotModified, w.Code)

	a.store.ClearSelection()
	a.store.DeleteCourse(a.store.Courses()[0].ID)
	w = httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, tag, w.Header().Get("ETag"))
}

func TestRootCommandHasSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["tui"])
}
