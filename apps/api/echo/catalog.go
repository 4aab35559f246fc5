package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/supinter/ums/core/catalog"
	"github.com/supinter/ums/core/user"
)

type catalogApi struct {
	svc      *catalog.Service
	validate *validator.Validate
}

func registerCatalogAPI(public, authed *echo.Group, deps *Deps) {
	api := catalogApi{svc: deps.CatalogSvc, validate: deps.Validate}
	founder := roleMiddleware(user.RoleFounder)

	// reference lists used by the login and enrollment pages
	public.GET("/campuses", api.queryCampuses)
	public.GET("/academic-years", api.queryAcademicYears)
	public.GET("/formations", api.queryFormations)
	public.GET("/filieres", api.queryFilieres)
	public.GET("/levels", api.queryLevels)

	authed.POST("/campuses", api.createCampus, founder)
	authed.GET("/campuses/:id", api.retrieveCampus)
	authed.PUT("/campuses/:id", api.updateCampus, founder)
	authed.DELETE("/campuses/:id", api.destroyCampus, founder)

	authed.POST("/academic-years", api.createAcademicYear)
	authed.GET("/academic-years/:id", api.retrieveAcademicYear)
	authed.PUT("/academic-years/:id", api.updateAcademicYear)
	authed.DELETE("/academic-years/:id", api.destroyAcademicYear)

	authed.POST("/formations", api.createFormation)
	authed.GET("/formations/:id", api.retrieveFormation)
	authed.PUT("/formations/:id", api.updateFormation)
	authed.DELETE("/formations/:id", api.destroyFormation)

	authed.POST("/filieres", api.createFiliere)
	authed.GET("/filieres/:id", api.retrieveFiliere)
	authed.PUT("/filieres/:id", api.updateFiliere)
	authed.DELETE("/filieres/:id", api.destroyFiliere)

	authed.POST("/levels", api.createLevel)
	authed.GET("/levels/:id", api.retrieveLevel)
	authed.PUT("/levels/:id", api.updateLevel)
	authed.DELETE("/levels/:id", api.destroyLevel)

	authed.POST("/classes", api.createClass)
	authed.GET("/classes", api.queryClasses)
	authed.GET("/classes/:id", api.retrieveClass)
	authed.PUT("/classes/:id", api.updateClass)
	authed.DELETE("/classes/:id", api.destroyClass)

	authed.POST("/subjects", api.createSubject)
	authed.GET("/subjects", api.querySubjects)
	authed.GET("/subjects/:id", api.retrieveSubject)
	authed.PUT("/subjects/:id", api.updateSubject)
	authed.DELETE("/subjects/:id", api.destroySubject)

	authed.GET("/cascade", api.cascade)
}

func deleted(ctx echo.Context, msg string) error {
	return ctx.JSON(http.StatusOK, MessageResponse{Message: msg})
}

// Campuses

func (api *catalogApi) createCampus(ctx echo.Context) error {
	var data catalog.CampusInput
	if err := bindAndValidate(ctx, api.validate, &data); err != nil {
		return err
	}
	campus, err := api.svc.CreateCampus(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating campus")
	}
	return ctx.JSON(http.StatusCreated, campus)
}

func (api *catalogApi) queryCampuses(ctx echo.Context) error {
	campuses, err := api.svc.QueryCampuses(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying campuses")
	}
	return ctx.JSON(http.StatusOK, campuses)
}

func (api *catalogApi) retrieveCampus(ctx echo.Context) error {
	campus, err := api.svc.GetCampus(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting campus")
	}
	return ctx.JSON(http.StatusOK, campus)
}

func (api *catalogApi) updateCampus(ctx echo.Context) error {
	var data catalog.CampusInput
	if err := bindAndValidate(ctx, api.validate, &data); err != nil {
		return err
	}
	campus, err := api.svc.UpdateCampus(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating campus")
	}
	return ctx.JSON(http.StatusOK, campus)
}

func (api *catalogApi) destroyCampus(ctx echo.Context) error {
	if err := api.svc.DeleteCampus(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting campus")
	}
	return deleted(ctx, "Campus supprimé")
}

// Academic years

func (api *catalogApi) createAcademicYear(ctx echo.Context) error {
	var data catalog.AcademicYearInput
	if err := bindAndValidate(ctx, api.validate, &data); err != nil {
		return err
	}
	year, err := api.svc.CreateAcademicYear(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating academic year")
	}
	return ctx.JSON(http.StatusCreated, year)
}

func (api *catalogApi) queryAcademicYears(ctx echo.Context) error {
	years, err := api.svc.QueryAcademicYears(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying academic years")
	}
	return ctx.JSON(http.StatusOK, years)
}

func (api *catalogApi) retrieveAcademicYear(ctx echo.Context) error {
	year, err := api.svc.GetAcademicYear(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting academic year")
	}
	return ctx.JSON(http.StatusOK, year)
}

func (api *catalogApi) updateAcademicYear(ctx echo.Context) error {
	var data catalog.AcademicYearInput
	if err := bindAndValidate(ctx, api.validate, &data); err != nil {
		return err
	}
	year, err := api.svc.UpdateAcademicYear(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating academic year")
	}
	return ctx.JSON(http.StatusOK, year)
}

func (api *catalogApi) destroyAcademicYear(ctx echo.Context) error {
	if err := api.svc.DeleteAcademicYear(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting academic year")
	}
	return deleted(ctx, "Année académique supprimée")
}

// Formations

func (api *catalogApi) createFormation(ctx echo.Context) error {
	var data catalog.FormationInput
	if err := bindAndValidate(ctx, api.validate, &data); err != nil {
		return err
	}
	formation, err := api.svc.CreateFormation(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating formation")
	}
	return ctx.JSON(http.StatusCreated, formation)
}

func (api *catalogApi) queryFormations(ctx echo.Context) error {
	formations, err := api.svc.QueryFormations(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying formations")
	}
	return ctx.JSON(http.StatusOK, formations)
}

func (api *catalogApi) retrieveFormation(ctx echo.Context) error {
	formation, err := api.svc.GetFormation(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting formation")
	}
	return ctx.JSON(http.StatusOK, formation)
}

func (api *catalogApi) updateFormation(ctx echo.Context) error {
	var data catalog.FormationInput
	if err := bindAndValidate(ctx, api.validate, &data); err != nil {
		return err
	}
	formation, err := api.svc.UpdateFormation(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating formation")
	}
	return ctx.JSON(http.StatusOK, formation)
}

func (api *catalogApi) destroyFormation(ctx echo.Context) error {
	if err := api.svc.DeleteFormation(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting formation")
	}
	return deleted(ctx, "Formation supprimée")
}

// Filières

func (api *catalogApi) createFiliere(ctx echo.Context) error {
	var data catalog.FiliereInput
	if err := bindAndValidate(ctx, api.validate, &data); err != nil {
		return err
	}
	filiere, err := api.svc.CreateFiliere(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating filiere")
	}
	return ctx.JSON(http.StatusCreated, filiere)
}

func (api *catalogApi) queryFilieres(ctx echo.Context) error {
	filieres, err := api.svc.QueryFilieres(ctx.Request().Context(), ctx.QueryParam("formation_id"))
	if err != nil {
		return errors.Wrap(err, "querying filieres")
	}
	return ctx.JSON(http.StatusOK, filieres)
}

func (api *catalogApi) retrieveFiliere(ctx echo.Context) error {
	filiere, err := api.svc.GetFiliere(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting filiere")
	}
	return ctx.JSON(http.StatusOK, filiere)
}

func (api *catalogApi) updateFiliere(ctx echo.Context) error {
	var data catalog.FiliereInput
	if err := bindAndValidate(ctx, api.validate, &data); err != nil {
		return err
	}
	filiere, err := api.svc.UpdateFiliere(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating filiere")
	}
	return ctx.JSON(http.StatusOK, filiere)
}

func (api *catalogApi) destroyFiliere(ctx echo.Context) error {
	if err := api.svc.DeleteFiliere(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting filiere")
	}
	return deleted(ctx, "Filière supprimée")
}

// Levels

func (api *catalogApi) createLevel(ctx echo.Context) error {
	var data catalog.LevelInput
	if err := bindAndValidate(ctx, api.validate, &data); err != nil {
		return err
	}
	level, err := api.svc.CreateLevel(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating level")
	}
	return ctx.JSON(http.StatusCreated, level)
}

func (api *catalogApi) queryLevels(ctx echo.Context) error {
	levels, err := api.svc.QueryLevels(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying levels")
	}
	return ctx.JSON(http.StatusOK, levels)
}

func (api *catalogApi) retrieveLevel(ctx echo.Context) error {
	level, err := api.svc.GetLevel(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting level")
	}
	return ctx.JSON(http.StatusOK, level)
}

func (api *catalogApi) updateLevel(ctx echo.Context) error {
	var data catalog.LevelInput
	if err := bindAndValidate(ctx, api.validate, &data); err != nil {
		return err
	}
	level, err := api.svc.UpdateLevel(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating level")
	}
	return ctx.JSON(http.StatusOK, level)
}

func (api *catalogApi) destroyLevel(ctx echo.Context) error {
	if err := api.svc.DeleteLevel(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting level")
	}
	return deleted(ctx, "Niveau supprimé")
}

// Classes

func (api *catalogApi) createClass(ctx echo.Context) error {
	var data catalog.ClassInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ClassInput")
	}
	pinCampus(ctx, &data.CampusID)
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	class, err := api.svc.CreateClass(ctx.Request().Context(), getScope(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating class")
	}
	return ctx.JSON(http.StatusCreated, class)
}

func (api *catalogApi) queryClasses(ctx echo.Context) error {
	var filter catalog.ClassFilter
	if err := bindQuery(ctx, &filter); err != nil {
		return err
	}
	classes, err := api.svc.QueryClasses(ctx.Request().Context(), getScope(ctx), filter)
	if err != nil {
		return errors.Wrap(err, "querying classes")
	}
	return ctx.JSON(http.StatusOK, classes)
}

func (api *catalogApi) retrieveClass(ctx echo.Context) error {
	class, err := api.svc.GetClass(ctx.Request().Context(), getScope(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting class")
	}
	return ctx.JSON(http.StatusOK, class)
}

func (api *catalogApi) updateClass(ctx echo.Context) error {
	var data catalog.ClassInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ClassInput")
	}
	pinCampus(ctx, &data.CampusID)
	if err := data.Validate(api.validate); err != nil {
		return err
	}
	class, err := api.svc.UpdateClass(ctx.Request().Context(), getScope(ctx), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating class")
	}
	return ctx.JSON(http.StatusOK, class)
}

func (api *catalogApi) destroyClass(ctx echo.Context) error {
	if err := api.svc.DeleteClass(ctx.Request().Context(), getScope(ctx), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting class")
	}
	return deleted(ctx, "Classe supprimée")
}

// Subjects

func (api *catalogApi) createSubject(ctx echo.Context) error {
	var data catalog.SubjectInput
	if err := bindAndValidate(ctx, api.validate, &data); err != nil {
		return err
	}
	subject, err := api.svc.CreateSubject(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating subject")
	}
	return ctx.JSON(http.StatusCreated, subject)
}

func (api *catalogApi) querySubjects(ctx echo.Context) error {
	var filter catalog.SubjectFilter
	if err := bindQuery(ctx, &filter); err != nil {
		return err
	}
	subjects, err := api.svc.QuerySubjects(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "querying subjects")
	}
	return ctx.JSON(http.StatusOK, subjects)
}

func (api *catalogApi) retrieveSubject(ctx echo.Context) error {
	subject, err := api.svc.GetSubject(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting subject")
	}
	return ctx.JSON(http.StatusOK, subject)
}

func (api *catalogApi) updateSubject(ctx echo.Context) error {
	var data catalog.SubjectInput
	if err := bindAndValidate(ctx, api.validate, &data); err != nil {
		return err
	}
	subject, err := api.svc.UpdateSubject(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		return errors.Wrap(err, "updating subject")
	}
	return ctx.JSON(http.StatusOK, subject)
}

func (api *catalogApi) destroySubject(ctx echo.Context) error {
	if err := api.svc.DeleteSubject(ctx.Request().Context(), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting subject")
	}
	return deleted(ctx, "Matière supprimée")
}

func (api *catalogApi) cascade(ctx echo.Context) error {
	var q catalog.CascadeQuery
	if err := bindQuery(ctx, &q); err != nil {
		return err
	}
	opts, err := api.svc.Cascade(ctx.Request().Context(), getScope(ctx), q)
	if err != nil {
		return errors.Wrap(err, "loading cascade options")
	}
	return ctx.JSON(http.StatusOK, opts)
}
