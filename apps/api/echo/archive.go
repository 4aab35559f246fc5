package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/supinter/ums/core/archive"
	"github.com/supinter/ums/core/user"
)

type archiveApi struct {
	svc      *archive.Service
	userSvc  user.Service
	validate *validator.Validate
}

func registerArchiveAPI(authed *echo.Group, deps *Deps) {
	api := archiveApi{svc: deps.ArchiveSvc, userSvc: deps.UserSvc, validate: deps.Validate}

	authed.POST("/archives", api.create)
	authed.GET("/archives", api.query)
	authed.GET("/archives/document-types", api.documentTypes)
}

// create records a generated document. The downloader defaults to the caller.
func (api *archiveApi) create(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.userSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data archive.ArchiveInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ArchiveInput")
	}
	pinCampus(ctx, &data.CampusID)
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	arc, err := api.svc.Create(ctx.Request().Context(), getScope(ctx), usr.Name, data)
	if err != nil {
		return errors.Wrap(err, "archiving document")
	}
	return ctx.JSON(http.StatusCreated, arc)
}

func (api *archiveApi) query(ctx echo.Context) error {
	var filter archive.QueryFilter
	if err := bindQuery(ctx, &filter); err != nil {
		return err
	}
	archives, err := api.svc.Query(ctx.Request().Context(), getScope(ctx), filter)
	if err != nil {
		return errors.Wrap(err, "querying archives")
	}
	return ctx.JSON(http.StatusOK, archives)
}

func (api *archiveApi) documentTypes(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.DocumentTypes())
}
