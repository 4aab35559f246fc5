package echoapi

import (
	"bytes"
	"fmt"
	"net/http"
	"net/mail"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/student"
	"github.com/supinter/ums/core/user"
)

const csvContentType = "text/csv; charset=utf-8"

type studentApi struct {
	svc      *student.Service
	usrSvc   user.Service
	mailSvc  core.EmailService
	validate *validator.Validate
}

func registerStudentAPI(authed *echo.Group, deps *Deps) {
	api := studentApi{svc: deps.StudentSvc, usrSvc: deps.UserSvc, mailSvc: deps.MailSvc, validate: deps.Validate}

	authed.POST("/students", api.create)
	authed.GET("/students", api.query)
	authed.GET("/students/export.csv", api.export)
	authed.POST("/students/export/email", api.exportByEmail)
	authed.GET("/students/:id", api.retrieve)
	authed.PUT("/students/:id", api.update)
	authed.DELETE("/students/:id", api.destroy)
	authed.POST("/students/:id/reenroll", api.reenroll)

	authed.POST("/student-absences", api.createAbsence)
	authed.GET("/student-absences", api.queryAbsences)
	authed.DELETE("/student-absences/:id", api.destroyAbsence)
}

func (api *studentApi) bindInput(ctx echo.Context) (student.StudentInput, error) {
	var data student.StudentInput
	if err := ctx.Bind(&data); err != nil {
		return data, errors.Wrap(err, "binding to StudentInput")
	}
	pinCampus(ctx, &data.CampusID)
	return data, data.Validate(api.validate)
}

func (api *studentApi) bindFilter(ctx echo.Context) (student.QueryFilter, error) {
	var filter student.QueryFilter
	if err := bindQuery(ctx, &filter); err != nil {
		return filter, err
	}
	filter.Clean()
	return filter, nil
}

func (api *studentApi) create(ctx echo.Context) error {
	data, err := api.bindInput(ctx)
	if err != nil {
		return err
	}
	stu, err := api.svc.Create(ctx.Request().Context(), getScope(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, stu)
}

func (api *studentApi) query(ctx echo.Context) error {
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	students, err := api.svc.Query(ctx.Request().Context(), getScope(ctx), filter, ordering.Orderings...)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) export(ctx echo.Context) error {
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := api.svc.ExportCSV(ctx.Request().Context(), getScope(ctx), filter, &buf); err != nil {
		return errors.Wrap(err, "exporting students")
	}
	ctx.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", student.ExportFilename()))
	return ctx.Blob(http.StatusOK, csvContentType, buf.Bytes())
}

// exportByEmail sends the export to the caller as a CSV attachment.
func (api *studentApi) exportByEmail(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return err
	}
	filter, err := api.bindFilter(ctx)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := api.svc.ExportCSV(ctx.Request().Context(), usr.Scope(), filter, &buf); err != nil {
		return errors.Wrap(err, "exporting students")
	}
	msg := &core.EmailMessage{
		To:      []mail.Address{{Name: usr.Name, Address: usr.Email}},
		Subject: "Export des étudiants",
		BodyStr: "Veuillez trouver ci-joint l'export des étudiants.",
	}
	if err := msg.Attach(&buf, student.ExportFilename(), csvContentType); err != nil {
		return errors.Wrap(err, "attaching export")
	}
	api.mailSvc.SendMessages(msg)
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Export envoyé à " + usr.Email})
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	stu, err := api.svc.Get(ctx.Request().Context(), getScope(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting student")
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) update(ctx echo.Context) error {
	data, err := api.bindInput(ctx)
	if err != nil {
		return err
	}
	stu, err := api.svc.Update(ctx.Request().Context(), getScope(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, stu)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), getScope(ctx), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return deleted(ctx, "Étudiant supprimé")
}

func (api *studentApi) reenroll(ctx echo.Context) error {
	var data student.ReenrollInput
	if err := bindAndValidate(ctx, api.validate, &data); err != nil {
		return err
	}
	stu, err := api.svc.Reenroll(ctx.Request().Context(), getScope(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "reenrolling student")
	}
	return ctx.JSON(http.StatusOK, stu)
}

// Absences

func (api *studentApi) createAbsence(ctx echo.Context) error {
	var data student.AbsenceInput
	if err := bindAndValidate(ctx, api.validate, &data); err != nil {
		return err
	}
	abs, err := api.svc.CreateAbsence(ctx.Request().Context(), getScope(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating absence")
	}
	return ctx.JSON(http.StatusCreated, abs)
}

func (api *studentApi) queryAbsences(ctx echo.Context) error {
	var filter student.AbsenceFilter
	if err := bindQuery(ctx, &filter); err != nil {
		return err
	}
	absences, err := api.svc.QueryAbsences(ctx.Request().Context(), getScope(ctx), filter)
	if err != nil {
		return errors.Wrap(err, "querying absences")
	}
	return ctx.JSON(http.StatusOK, absences)
}

func (api *studentApi) destroyAbsence(ctx echo.Context) error {
	if err := api.svc.DeleteAbsence(ctx.Request().Context(), getScope(ctx), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting absence")
	}
	return deleted(ctx, "Absence supprimée")
}
