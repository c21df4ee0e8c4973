package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoggerRecordsRequestFields(t *testing.T) {
	var got ectologger.EctoLogMessage
	logger := ectologger.NewEctoLogger(func(msg ectologger.EctoLogMessage) {
		got = msg
	})

	e := echo.New()
	e.Use(Logger(logger))
	e.GET("/ping", func(c echo.Context) error {
		return c.String(http.StatusOK, "pong")
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", strings.NewReader("body"))
	req.Header.Set(echo.HeaderContentLength, "4")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, "Request", got.Message)
	assert.Equal(t, http.MethodGet, got.Fields["method"])
	assert.Equal(t, http.StatusOK, got.Fields["status"])
	assert.Equal(t, "/ping", got.Fields["route"])
	assert.Equal(t, "HTTP/1.1", got.Fields["protocol"])
	assert.Equal(t, "4", got.Fields["request_size"])
	assert.Equal(t, "4", got.Fields["response_size"])
	assert.NotEmpty(t, got.Fields["request_id"])
}
