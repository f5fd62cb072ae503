package middleware_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/kuman/config"
	"github.com/shashiranjanraj/kuman/pkg/logger"
	"github.com/shashiranjanraj/kuman/pkg/middleware"
	"github.com/shashiranjanraj/kuman/pkg/reqid"
)

func TestRecovery(t *testing.T) {
	h := middleware.Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal Server Error")
}

func TestLogger_TagsRequestID(t *testing.T) {
	var buf bytes.Buffer
	config.Set("LOG_LEVEL", "info")
	logger.SetOutput(&buf)
	t.Cleanup(func() {
		config.Set("LOG_LEVEL", "")
		logger.SetOutput(os.Stderr)
	})

	h := reqid.Middleware()(middleware.Logger(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	})))

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req.Header.Set(reqid.Header, "rid-1")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Contains(t, buf.String(), "rid-1")
	assert.Contains(t, buf.String(), "/api/dashboard")
}
