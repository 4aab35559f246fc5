package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/supinter/ums/core/dashboard"
)

func registerDashboardAPI(authed *echo.Group, deps *Deps) {
	svc := deps.DashboardSvc

	authed.GET("/dashboard/stats", func(ctx echo.Context) error {
		var q dashboard.StatsQuery
		if err := bindQuery(ctx, &q); err != nil {
			return err
		}
		stats, err := svc.Stats(ctx.Request().Context(), getScope(ctx), q)
		if err != nil {
			return errors.Wrap(err, "computing dashboard stats")
		}
		return ctx.JSON(http.StatusOK, stats)
	})
}
