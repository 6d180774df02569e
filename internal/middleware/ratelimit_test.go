package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/hbagde424/employee-management/internal/config"
	"github.com/hbagde424/employee-management/internal/middleware"
)

func TestRateLimitDisabledPassesThrough(t *testing.T) {
	cfg := config.RateLimitConfig{Enabled: false, Limit: 1, Window: time.Minute}
	mw := middleware.RateLimit(cfg, nil)

	e := echo.New()
	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
		assert.NoError(t, h(c))
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimitWithoutRedisPassesThrough(t *testing.T) {
	// An enabled limiter with no Redis client must not block traffic.
	cfg := config.RateLimitConfig{Enabled: true, Limit: 1, Window: time.Minute}
	mw := middleware.RateLimit(cfg, nil)

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	h := mw(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	assert.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
}
