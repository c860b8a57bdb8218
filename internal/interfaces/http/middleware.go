package http

import (
	"context"
	"math"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/agrotrack-api/internal/application/dto"
	"github.com/jhoicas/agrotrack-api/internal/infrastructure/redis"
	"github.com/jhoicas/agrotrack-api/pkg/logger"
)

// rateLimiter lo implementa *redis.RateLimiter.
type rateLimiter interface {
	Allow(ctx context.Context, key string) (redis.Decision, error)
	Limit() int
}

// RateLimitByIP consume un token por IP; sin tokens responde 429 con Retry-After.
// Un error del limitador deja pasar la petición.
func RateLimitByIP(limiter rateLimiter, scope string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := limiter.Allow(c.UserContext(), scope+":"+c.IP())
		if err != nil {
			return c.Next()
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			secs := int(math.Ceil(d.RetryAfter.Seconds()))
			if secs < 1 {
				secs = 1
			}
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(secs))
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Code:    "RATE_LIMITED",
				Message: "demasiados intentos, intente en " + strconv.Itoa(secs) + "s",
			})
		}
		return c.Next()
	}
}

// RequestLogger registra método, ruta, estado, latencia y usuario de cada petición.
func RequestLogger(log *logger.Logger) fiber.Handler {
	log = log.Component("http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()
		if err != nil {
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}
		status := c.Response().StatusCode()
		ev := log.Info()
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = log.Error()
		case status >= fiber.StatusBadRequest:
			ev = log.Warn()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Str("ip", c.IP()).
			Str("user_id", GetUserID(c)).
			Msg("request")
		return nil
	}
}
