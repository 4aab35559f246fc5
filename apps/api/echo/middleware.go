package echoapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/user"
	"github.com/supinter/ums/services/metrics"
	"github.com/supinter/ums/services/ratelimit"
)

// activeUserMiddleware loads the token holder and refuses deactivated accounts.
func activeUserMiddleware(svc user.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := getContextUser(ctx, svc)
			if err != nil {
				return err
			}
			if !usr.IsActive {
				return errAccountDeactivated
			}
			return next(ctx)
		}
	}
}

// roleMiddleware lets through the users holding any of roles.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, ok := ctx.Get(contextUserKey).(user.User)
			if !ok {
				claims, err := getContextClaims(ctx)
				if err != nil {
					return errors.Wrap(err, "getting context claims")
				}
				usr = user.User{Role: claims.Role}
			}
			if usr.HasAnyRole(roles...) {
				return next(ctx)
			}
			return errHttpForbidden
		}
	}
}

// rateLimitMiddleware throttles requests per client IP.
func rateLimitMiddleware(limiter ratelimit.Limiter, logger core.Logger, mtr *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ok, err := limiter.Allow(ctx.Request().Context(), ctx.Path()+":"+ctx.RealIP())
			if err != nil {
				// let the request through rather than lock everybody out
				logger.Warn("rate limiter unavailable", err)
				return next(ctx)
			}
			ctx.Response().Header().Set("X-RateLimit-Limit", strconv.Itoa(limiter.Limit()))
			if !ok {
				if mtr != nil {
					mtr.ObserveLogin("throttled")
				}
				ctx.Response().Header().Set("Retry-After", "60")
				return errTooManyRequests
			}
			return next(ctx)
		}
	}
}

// metricsMiddleware records every request against its route template.
func metricsMiddleware(mtr *metrics.Metrics) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)
			if err != nil {
				ctx.Error(err) // commit the status before observing it
			}
			route := ctx.Path()
			if route == "" {
				route = "unmatched"
			}
			mtr.ObserveRequest(ctx.Request().Method, route, ctx.Response().Status, time.Since(start))
			return nil
		}
	}
}
