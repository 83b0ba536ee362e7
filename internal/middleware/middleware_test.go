package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newRouter(t *testing.T, origins string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Logger(zaptest.NewLogger(t), "/ws"), CORS(origins))
	r.GET("/api/messages", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestCORS_Wildcard(t *testing.T) {
	r := newRouter(t, "*")
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/messages", nil)
	req.Header.Set("Origin", "http://example.com")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_AllowList(t *testing.T) {
	r := newRouter(t, "http://a.test, http://b.test")

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/api/messages", nil)
	req.Header.Set("Origin", "http://b.test")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "http://b.test", w.Header().Get("Access-Control-Allow-Origin"))

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/api/messages", nil)
	req.Header.Set("Origin", "http://evil.test")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
