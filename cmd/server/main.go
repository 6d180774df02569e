package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/hbagde424/employee-management/internal/bootstrap"
	"github.com/hbagde424/employee-management/internal/config"
	"github.com/hbagde424/employee-management/internal/database"
	"github.com/hbagde424/employee-management/internal/handler"
	"github.com/hbagde424/employee-management/internal/middleware"
	"github.com/hbagde424/employee-management/internal/repository"
	"github.com/hbagde424/employee-management/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real env vars win
	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	users := repository.NewUserRepo(db)
	roles := repository.NewRoleRepo(db)
	perms := repository.NewPermissionRepo(db)
	employees := repository.NewEmployeeRepo(db)

	// Seed the role/permission catalog before accepting traffic so that
	// registration can rely on the default role existing.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := bootstrap.Seed(ctx, roles, perms); err != nil {
		cancel()
		log.Fatalf("seed catalog: %v", err)
	}
	cancel()

	// Redis is optional: a nil client disables rate limiting and caching.
	rdb := config.NewRedisClient()
	if rdb == nil {
		log.Println("redis unavailable; rate limiting and stats cache disabled")
	}
	limiter := middleware.RateLimit(config.LoadRateLimitConfig(), rdb)

	authHandler := handler.NewAuthHandler(cfg, users, roles)
	rbacHandler := handler.NewRBACHandler(users, roles, perms)
	employeeHandler := handler.NewEmployeeHandler(employees)
	statsHandler := handler.NewStatsHandler(employees, rdb, config.LoadStatsCacheConfig())

	e := echo.New()
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, rbacHandler, users, cfg.JWTSecret, limiter)
	router.RegisterEmployees(e, employeeHandler, statsHandler, users, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
