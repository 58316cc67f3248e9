package cors

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func performRequest(t *testing.T, allowedOrigins []string, origin string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/api/v1/students", nil)
	if origin != "" {
		c.Request.Header.Set("Origin", origin)
	}

	New(allowedOrigins)(c)
	return w
}

func TestCORSAllowsConfiguredOrigin(t *testing.T) {
	w := performRequest(t, []string{"https://dashboard.example.com"}, "https://dashboard.example.com")

	assert.Equal(t, "https://dashboard.example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSRejectsUnknownOrigin(t *testing.T) {
	w := performRequest(t, []string{"https://dashboard.example.com"}, "https://evil.example.com")

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSExposesDownloadHeaders(t *testing.T) {
	w := performRequest(t, nil, "https://dashboard.example.com")

	exposed := w.Header().Get("Access-Control-Expose-Headers")
	assert.Contains(t, exposed, "Content-Disposition")
	assert.Contains(t, exposed, "X-Request-ID")
}
