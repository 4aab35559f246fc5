package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/grade"
)

type gradeApi struct {
	svc      *grade.Service
	validate *validator.Validate
}

func registerGradeAPI(authed *echo.Group, deps *Deps) {
	api := gradeApi{svc: deps.GradeSvc, validate: deps.Validate}

	authed.POST("/grades", api.create)
	authed.POST("/grades/bulk", api.bulk)
	authed.GET("/grades", api.query)
	authed.GET("/grades/averages", api.averages)
	authed.GET("/grades/:id", api.retrieve)
	authed.PUT("/grades/:id", api.update)
	authed.DELETE("/grades/:id", api.destroy)

	authed.GET("/students/:id/bulletin", api.bulletin)
}

func (api *gradeApi) create(ctx echo.Context) error {
	var data grade.GradeInput
	if err := bindAndValidate(ctx, api.validate, &data); err != nil {
		return err
	}
	grd, err := api.svc.Create(ctx.Request().Context(), getScope(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating grade")
	}
	return ctx.JSON(http.StatusCreated, grd)
}

// bulk upserts a whole grid of grades. Every line is validated before anything is written.
func (api *gradeApi) bulk(ctx echo.Context) error {
	var data []grade.GradeInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to []GradeInput")
	}
	if len(data) == 0 {
		return core.NewValidationError(errors.New("aucune note à enregistrer"))
	}
	for i := range data {
		if err := data[i].Validate(api.validate); err != nil {
			return errors.Wrapf(err, "validating grade %d", i)
		}
	}

	grades, err := api.svc.BulkUpsert(ctx.Request().Context(), getScope(ctx), data)
	if err != nil {
		return errors.Wrap(err, "upserting grades")
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *gradeApi) query(ctx echo.Context) error {
	var filter grade.QueryFilter
	if err := bindQuery(ctx, &filter); err != nil {
		return err
	}
	grades, err := api.svc.Query(ctx.Request().Context(), getScope(ctx), filter)
	if err != nil {
		return errors.Wrap(err, "querying grades")
	}
	return ctx.JSON(http.StatusOK, grades)
}

func (api *gradeApi) averages(ctx echo.Context) error {
	var q grade.AveragesQuery
	if err := bindAndValidate(ctx, api.validate, &q); err != nil {
		return err
	}
	avgs, err := api.svc.Averages(ctx.Request().Context(), getScope(ctx), q)
	if err != nil {
		return errors.Wrap(err, "computing averages")
	}
	return ctx.JSON(http.StatusOK, avgs)
}

func (api *gradeApi) retrieve(ctx echo.Context) error {
	grd, err := api.svc.Get(ctx.Request().Context(), getScope(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting grade")
	}
	return ctx.JSON(http.StatusOK, grd)
}

func (api *gradeApi) update(ctx echo.Context) error {
	var data grade.GradeInput
	if err := bindAndValidate(ctx, api.validate, &data); err != nil {
		return err
	}
	grd, err := api.svc.Update(ctx.Request().Context(), getScope(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating grade")
	}
	return ctx.JSON(http.StatusOK, grd)
}

func (api *gradeApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), getScope(ctx), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting grade")
	}
	return deleted(ctx, "Note supprimée")
}

func (api *gradeApi) bulletin(ctx echo.Context) error {
	var q grade.BulletinQuery
	if err := bindAndValidate(ctx, api.validate, &q); err != nil {
		return err
	}
	bulletin, err := api.svc.Bulletin(ctx.Request().Context(), getScope(ctx), ctx.Param("id"), q)
	if err != nil {
		return errors.Wrap(err, "building bulletin")
	}
	return ctx.JSON(http.StatusOK, bulletin)
}
