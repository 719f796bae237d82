package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const hostAddr = "localhost:4173"

// hostRouter mounts stand-ins for the host's inspection routes behind mw.
func hostRouter(mw ...gin.HandlerFunc) (*gin.Engine, *int) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(mw...)

	reached := 0
	ok := func(c *gin.Context) {
		reached++
		c.JSON(http.StatusOK, gin.H{"windows": []string{}})
	}
	router.GET("/windows", ok)
	router.GET("/projects", ok)
	router.POST("/windows/:id/envelopes", func(c *gin.Context) {
		reached++
		c.Status(http.StatusAccepted)
	})
	return router, &reached
}

func serve(router *gin.Engine, method, path, remote string, header map[string]string) *httptest.ResponseRecorder {
	var body *strings.Reader
	if method == http.MethodPost {
		body = strings.NewReader(`{"type":"undo"}`)
	} else {
		body = strings.NewReader("")
	}
	req := httptest.NewRequest(method, path, body)
	req.Host = hostAddr
	if remote != "" {
		req.RemoteAddr = remote
	}
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCORSInspectionRoutes(t *testing.T) {
	router, _ := hostRouter(CORS(DefaultCORSConfig()))

	tests := []struct {
		name        string
		method      string
		path        string
		header      map[string]string
		wantStatus  int
		wantOrigin  string
		wantHeaders string
	}{
		{
			name:       "dashboard lists windows",
			method:     http.MethodGet,
			path:       "/windows",
			header:     map[string]string{"Origin": "http://localhost:5173"},
			wantStatus: http.StatusOK,
			wantOrigin: "*",
		},
		{
			name:   "preflight for envelope push",
			method: http.MethodOptions,
			path:   "/windows/win_1/envelopes",
			header: map[string]string{
				"Origin":                         "http://localhost:5173",
				"Access-Control-Request-Method":  http.MethodPost,
				"Access-Control-Request-Headers": "Content-Type, X-Trace-ID",
			},
			wantStatus:  http.StatusNoContent,
			wantOrigin:  "*",
			wantHeaders: "X-Trace-Id",
		},
		{
			name:       "curl without origin",
			method:     http.MethodGet,
			path:       "/projects",
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, tt.method, tt.path, "", tt.header)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantOrigin, w.Header().Get("Access-Control-Allow-Origin"))
			assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
			if tt.wantHeaders != "" {
				assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), tt.wantHeaders)
			}
		})
	}
}

func TestCORSRestrictedOrigin(t *testing.T) {
	const studio = "https://studio.viewsync.dev"
	router, reached := hostRouter(CORS(CORSConfig{
		AllowOrigins: []string{studio},
		AllowMethods: []string{http.MethodGet, http.MethodPost},
		AllowHeaders: []string{"Content-Type"},
		MaxAge:       time.Hour,
	}))

	w := serve(router, http.MethodGet, "/windows", "", map[string]string{"Origin": studio})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, studio, w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(router, http.MethodPost, "/windows/win_1/envelopes", "", map[string]string{"Origin": "https://evil.example"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, 1, *reached)

	// Pages served by the host itself are same-origin and pass untouched.
	w = serve(router, http.MethodGet, "/projects", "", map[string]string{"Origin": "http://" + hostAddr})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRateLimitPerClient(t *testing.T) {
	router, reached := hostRouter(RateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 2}))

	const tool, other = "192.168.1.1:1234", "192.168.1.2:1234"
	push := func(remote string) int {
		return serve(router, http.MethodPost, "/windows/win_1/envelopes", remote, nil).Code
	}

	assert.Equal(t, http.StatusAccepted, push(tool))
	assert.Equal(t, http.StatusAccepted, push(tool))

	w := serve(router, http.MethodPost, "/windows/win_1/envelopes", tool, nil)
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded"}`, w.Body.String())

	assert.Equal(t, http.StatusAccepted, push(other), "clients are limited separately")
	assert.Equal(t, 3, *reached, "rejected requests never reach the handler")
}

func TestGlobalRateLimitSharedAcrossClients(t *testing.T) {
	router, _ := hostRouter(GlobalRateLimit(RateLimitConfig{RequestsPerSecond: 1, Burst: 2}))

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/windows", "10.0.0.1:1", nil).Code)
	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/windows", "10.0.0.2:1", nil).Code)
	assert.Equal(t, http.StatusTooManyRequests, serve(router, http.MethodGet, "/windows", "10.0.0.3:1", nil).Code)
}

func TestDefaults(t *testing.T) {
	cors := DefaultCORSConfig()
	assert.Equal(t, []string{"*"}, cors.AllowOrigins)
	assert.False(t, cors.AllowCredentials)
	assert.ElementsMatch(t, []string{http.MethodGet, http.MethodPost, http.MethodOptions}, cors.AllowMethods)
	assert.Contains(t, cors.AllowHeaders, "X-Trace-ID")
	assert.Equal(t, 12*time.Hour, cors.MaxAge)

	limit := DefaultRateLimitConfig()
	assert.Equal(t, RateLimitConfig{RequestsPerSecond: 100, Burst: 200}, limit)
}
