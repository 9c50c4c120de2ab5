package handlers

import (
	"context"
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

type pingFunc func(ctx context.Context) error

func (f pingFunc) PingContext(ctx context.Context) error { return f(ctx) }

type checkFunc func(ctx context.Context) error

func (f checkFunc) HealthCheck(ctx context.Context) error { return f(ctx) }

func TestHealthHandler(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("down") }

	tests := []struct {
		name       string
		db         Pinger
		cache      HealthChecker
		wantStatus int
		wantState  string
	}{
		{name: "healthy", db: pingFunc(ok), cache: checkFunc(ok), wantStatus: fiber.StatusOK, wantState: "ok"},
		{name: "database down", db: pingFunc(down), cache: checkFunc(ok), wantStatus: fiber.StatusServiceUnavailable, wantState: "degraded"},
		{name: "redis down", db: pingFunc(ok), cache: checkFunc(down), wantStatus: fiber.StatusServiceUnavailable, wantState: "degraded"},
		{name: "not configured", wantStatus: fiber.StatusServiceUnavailable, wantState: "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/health", NewHealthHandler(tt.db, tt.cache, "test").HealthCheck)

			status, body := doJSON(t, app, "GET", "/health", "")
			assert.Equal(t, tt.wantStatus, status)
			assert.Equal(t, tt.wantState, body["status"])
			assert.Equal(t, "test", body["version"])
		})
	}
}
