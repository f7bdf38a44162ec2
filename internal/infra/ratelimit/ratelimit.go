// Package ratelimit limits requests per client IP. A Redis fixed window is shared across
// instances; without Redis each instance keeps its own token buckets.
package ratelimit

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"brightsteps/config"
	deliverycontext "brightsteps/internal/delivery/context"
	domainerrors "brightsteps/internal/domain/errors"
	"brightsteps/internal/domain/lifecycle"
	"brightsteps/internal/errors"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"
	"golang.org/x/time/rate"
)

const keyPrefix = "ratelimit:"

// windowCounter increments the counter of the current window and reports the new value.
type windowCounter interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}

// Limiter builds the rate limiting middleware.
type Limiter struct {
	counter  windowCounter
	requests int
	window   time.Duration
	logger   *slog.Logger
}

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New creates a Limiter. When redis.enabled is set the Redis client is connected on start and closed on stop.
func New(params Params) (*Limiter, error) {
	cfg := params.Config
	limiter := &Limiter{
		requests: cfg.RateLimit.Requests,
		window:   cfg.RateLimit.Window,
		logger:   params.Logger,
	}

	if cfg.Redis == nil || !cfg.Redis.Enabled {
		params.Logger.Info("Redis not configured, using in-memory rate limiter")

		return limiter, nil
	}

	opt, err := redis.ParseURL(cfg.Redis.URI)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse redis uri")
	}
	opt.MaxRetries = 3
	opt.DialTimeout = 5 * time.Second
	opt.ReadTimeout = 3 * time.Second
	opt.WriteTimeout = 3 * time.Second

	client := redis.NewClient(opt)
	limiter.counter = &redisCounter{client: client}

	params.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			ctx, cancel := context.WithTimeout(startCtx, lifecycle.DefaultTimeout)
			defer cancel()

			if err := client.Ping(ctx).Err(); err != nil {
				return errors.Wrap(err, "failed to ping redis")
			}
			params.Logger.Info("Connected to Redis for rate limiting")

			return nil
		},
		OnStop: func(_ context.Context) error {
			return client.Close()
		},
	})

	return limiter, nil
}

// Middleware returns the per-IP limiter. Exceeding the limit yields ErrRateLimited.
func (l *Limiter) Middleware() echo.MiddlewareFunc {
	if l.counter == nil {
		return l.memoryMiddleware()
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			key := keyPrefix + c.RealIP()

			count, err := l.counter.Increment(ctx, key, l.window)
			if err != nil {
				// Fail open: an unavailable Redis must not lock users out.
				deliverycontext.GetLoggerOrDefault(ctx, l.logger).Warn("Rate limiter unavailable",
					slog.Any("error", err),
				)

				return next(c)
			}

			remaining := max(int64(l.requests)-count, 0)
			header := c.Response().Header()
			header.Set("X-RateLimit-Limit", strconv.Itoa(l.requests))
			header.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if count > int64(l.requests) {
				header.Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))

				return domainerrors.ErrRateLimited
			}

			return next(c)
		}
	}
}

func (l *Limiter) memoryMiddleware() echo.MiddlewareFunc {
	perSecond := rate.Limit(float64(l.requests) / l.window.Seconds())
	store := middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      perSecond,
		Burst:     l.requests,
		ExpiresIn: 3 * l.window,
	})

	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: store,
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(_ echo.Context, err error) error {
			return domainerrors.ErrInternalError.WithDetails(err.Error())
		},
		DenyHandler: func(_ echo.Context, _ string, _ error) error {
			return domainerrors.ErrRateLimited
		},
	})
}

type redisCounter struct {
	client redis.Cmdable
}

// Increment bumps the counter and starts the window on the first hit, in one transaction.
func (r *redisCounter) Increment(ctx context.Context, key string, window time.Duration) (int64, error) {
	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.ExpireNX(ctx, key, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, errors.Wrap(err, "failed to increment rate limit window")
	}

	return incr.Val(), nil
}
