package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/supinter/ums/core/staff"
)

type staffApi struct {
	svc      *staff.Service
	validate *validator.Validate
}

func registerStaffAPI(authed *echo.Group, deps *Deps) {
	api := staffApi{svc: deps.StaffSvc, validate: deps.Validate}

	authed.POST("/professors", api.createProfessor)
	authed.GET("/professors", api.queryProfessors)
	authed.GET("/professors/:id", api.retrieveProfessor)
	authed.PUT("/professors/:id", api.updateProfessor)
	authed.DELETE("/professors/:id", api.destroyProfessor)

	authed.POST("/professor-hours", api.createHours)
	authed.GET("/professor-hours", api.queryHours)
	authed.GET("/professor-hours/:id", api.retrieveHours)
	authed.PUT("/professor-hours/:id", api.updateHours)
	authed.DELETE("/professor-hours/:id", api.destroyHours)

	authed.POST("/staff", api.createStaff)
	authed.GET("/staff", api.queryStaff)
	authed.GET("/staff/:id", api.retrieveStaff)
	authed.PUT("/staff/:id", api.updateStaff)
	authed.DELETE("/staff/:id", api.destroyStaff)
}

// Professors

func (api *staffApi) bindProfessor(ctx echo.Context) (staff.ProfessorInput, error) {
	var data staff.ProfessorInput
	if err := ctx.Bind(&data); err != nil {
		return data, errors.Wrap(err, "binding to ProfessorInput")
	}
	pinCampus(ctx, &data.CampusID)
	return data, data.Validate(api.validate)
}

func (api *staffApi) createProfessor(ctx echo.Context) error {
	data, err := api.bindProfessor(ctx)
	if err != nil {
		return err
	}
	prof, err := api.svc.CreateProfessor(ctx.Request().Context(), getScope(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating professor")
	}
	return ctx.JSON(http.StatusCreated, prof)
}

func (api *staffApi) queryProfessors(ctx echo.Context) error {
	var filter staff.ProfessorFilter
	if err := bindQuery(ctx, &filter); err != nil {
		return err
	}
	profs, err := api.svc.QueryProfessors(ctx.Request().Context(), getScope(ctx), filter)
	if err != nil {
		return errors.Wrap(err, "querying professors")
	}
	return ctx.JSON(http.StatusOK, profs)
}

func (api *staffApi) retrieveProfessor(ctx echo.Context) error {
	prof, err := api.svc.GetProfessor(ctx.Request().Context(), getScope(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting professor")
	}
	return ctx.JSON(http.StatusOK, prof)
}

func (api *staffApi) updateProfessor(ctx echo.Context) error {
	data, err := api.bindProfessor(ctx)
	if err != nil {
		return err
	}
	prof, err := api.svc.UpdateProfessor(ctx.Request().Context(), getScope(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating professor")
	}
	return ctx.JSON(http.StatusOK, prof)
}

func (api *staffApi) destroyProfessor(ctx echo.Context) error {
	if err := api.svc.DeleteProfessor(ctx.Request().Context(), getScope(ctx), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting professor")
	}
	return deleted(ctx, "Professeur supprimé")
}

// Professor hours

func (api *staffApi) createHours(ctx echo.Context) error {
	var data staff.HoursInput
	if err := bindAndValidate(ctx, api.validate, &data); err != nil {
		return err
	}
	hours, err := api.svc.CreateHours(ctx.Request().Context(), getScope(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating professor hours")
	}
	return ctx.JSON(http.StatusCreated, hours)
}

func (api *staffApi) queryHours(ctx echo.Context) error {
	var filter staff.HoursFilter
	if err := bindQuery(ctx, &filter); err != nil {
		return err
	}
	hours, err := api.svc.QueryHours(ctx.Request().Context(), getScope(ctx), filter)
	if err != nil {
		return errors.Wrap(err, "querying professor hours")
	}
	return ctx.JSON(http.StatusOK, hours)
}

func (api *staffApi) retrieveHours(ctx echo.Context) error {
	hours, err := api.svc.GetHours(ctx.Request().Context(), getScope(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting professor hours")
	}
	return ctx.JSON(http.StatusOK, hours)
}

func (api *staffApi) updateHours(ctx echo.Context) error {
	var data staff.HoursInput
	if err := bindAndValidate(ctx, api.validate, &data); err != nil {
		return err
	}
	hours, err := api.svc.UpdateHours(ctx.Request().Context(), getScope(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating professor hours")
	}
	return ctx.JSON(http.StatusOK, hours)
}

func (api *staffApi) destroyHours(ctx echo.Context) error {
	if err := api.svc.DeleteHours(ctx.Request().Context(), getScope(ctx), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting professor hours")
	}
	return deleted(ctx, "Heures supprimées")
}

// Staff

func (api *staffApi) bindStaff(ctx echo.Context) (staff.StaffInput, error) {
	var data staff.StaffInput
	if err := ctx.Bind(&data); err != nil {
		return data, errors.Wrap(err, "binding to StaffInput")
	}
	pinCampus(ctx, &data.CampusID)
	return data, data.Validate(api.validate)
}

func (api *staffApi) createStaff(ctx echo.Context) error {
	data, err := api.bindStaff(ctx)
	if err != nil {
		return err
	}
	member, err := api.svc.CreateStaff(ctx.Request().Context(), getScope(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating staff member")
	}
	return ctx.JSON(http.StatusCreated, member)
}

func (api *staffApi) queryStaff(ctx echo.Context) error {
	var filter staff.StaffFilter
	if err := bindQuery(ctx, &filter); err != nil {
		return err
	}
	members, err := api.svc.QueryStaff(ctx.Request().Context(), getScope(ctx), filter)
	if err != nil {
		return errors.Wrap(err, "querying staff")
	}
	return ctx.JSON(http.StatusOK, members)
}

func (api *staffApi) retrieveStaff(ctx echo.Context) error {
	member, err := api.svc.GetStaff(ctx.Request().Context(), getScope(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting staff member")
	}
	return ctx.JSON(http.StatusOK, member)
}

func (api *staffApi) updateStaff(ctx echo.Context) error {
	data, err := api.bindStaff(ctx)
	if err != nil {
		return err
	}
	member, err := api.svc.UpdateStaff(ctx.Request().Context(), getScope(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating staff member")
	}
	return ctx.JSON(http.StatusOK, member)
}

func (api *staffApi) destroyStaff(ctx echo.Context) error {
	if err := api.svc.DeleteStaff(ctx.Request().Context(), getScope(ctx), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting staff member")
	}
	return deleted(ctx, "Membre du personnel supprimé")
}
