package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/hbagde424/employee-management/internal/config"
	"github.com/hbagde424/employee-management/internal/repository"
)

// StatsHandler serves the employee statistics endpoint. The aggregate is
// cached in Redis for a short TTL because it scans the whole employees
// table; when Redis is unavailable the handler simply computes it on every
// request.
type StatsHandler struct {
	Employees *repository.EmployeeRepo
	RDB       *redis.Client
	Cache     config.StatsCacheConfig
}

func NewStatsHandler(e *repository.EmployeeRepo, rdb *redis.Client, cache config.StatsCacheConfig) *StatsHandler {
	return &StatsHandler{Employees: e, RDB: rdb, Cache: cache}
}

// Get returns the aggregate statistics view.
func (h *StatsHandler) Get(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	key := h.Cache.Prefix + ":employee-stats"
	if h.cacheable() {
		if blob, err := h.RDB.Get(ctx, key).Bytes(); err == nil {
			return c.JSONBlob(http.StatusOK, blob)
		}
	}

	stats, err := h.Employees.Stats(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "compute stats failed"})
	}

	if h.cacheable() {
		if blob, err := json.Marshal(stats); err == nil {
			// Cache write failures are ignored; the response is already computed.
			_ = h.RDB.Set(ctx, key, blob, h.Cache.TTL).Err()
		}
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *StatsHandler) cacheable() bool {
	return h.Cache.Enabled && h.RDB != nil
}
