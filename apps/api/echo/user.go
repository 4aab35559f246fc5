package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/user"
	"github.com/supinter/ums/services/metrics"
)

var (
	errUsrNotFoundInCtx  = errors.New("user object not found in echo.Context")
	errNoPermsToSetRoles = "droits insuffisants pour attribuer ce rôle"
	passwordResetSent    = "Si cette adresse est associée à un compte actif, un email de réinitialisation vous a été envoyé."
	passwordResetDone    = "Le mot de passe a été réinitialisé."
)

type userApi struct {
	conf     *core.Config
	svc      user.Service
	validate *validator.Validate
	logger   core.Logger
	metrics  *metrics.Metrics
}

func registerUserAPI(public, authed *echo.Group, deps *Deps) {
	api := userApi{
		conf:     deps.Conf,
		svc:      deps.UserSvc,
		validate: deps.Validate,
		logger:   deps.Logger,
		metrics:  deps.Metrics,
	}
	admin := roleMiddleware(user.AdminRoles...)

	// un-authed endpoints
	var login []echo.MiddlewareFunc
	if deps.Limiter != nil {
		login = append(login, rateLimitMiddleware(deps.Limiter, deps.Logger, deps.Metrics))
	}
	public.POST("/auth/login", api.login, login...)
	public.POST("/auth/password-reset", api.resetPassword, login...)
	public.POST("/auth/password-reset-confirm", api.confirmPasswordReset)

	// authed endpoints
	authed.GET("/auth/me", api.me)
	authed.POST("/auth/token-refresh", api.refreshToken)
	authed.POST("/auth/register", api.create, admin)

	authed.GET("/users", api.query, admin)
	authed.GET("/users/roles", api.queryRoles)
	authed.GET("/users/:id", api.retrieve, admin, api.objectMiddleware())
	authed.PUT("/users/:id", api.update, admin, api.objectMiddleware())
	authed.DELETE("/users/:id", api.destroy, admin, api.objectMiddleware())
}

func (api *userApi) observeLogin(outcome string) {
	if api.metrics != nil {
		api.metrics.ObserveLogin(outcome)
	}
}

func (api *userApi) tokenResponse(ctx echo.Context, code int, usr user.User) error {
	token, err := GenerateToken(GetUserClaims(usr, api.conf), api.conf)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(code, TokenResponse{AccessToken: token, TokenType: tokenType, User: usr})
}

// Handlers

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := bindAndValidate(ctx, api.validate, &data); err != nil {
		return err
	}

	usr, err := authenticate(ctx, data.Email, data.Password, api.svc)
	if err != nil {
		api.observeLogin("failure")
		return errors.Wrap(err, "authenticating")
	}
	api.observeLogin("success")
	return api.tokenResponse(ctx, http.StatusOK, usr)
}

func (api *userApi) create(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if !ctxUsr.IsFounder() {
		data.CampusID = ctxUsr.CampusID.String
	}
	if err := data.Validate(ctx.Request().Context(), api.validate, api.svc); err != nil {
		return err
	}

	// ctxUser cannot grant a role above their own
	if user.RolePriority(data.Role) > user.RolePriority(ctxUsr.Role) {
		return core.NewValidationError(core.ErrForbidden, core.FieldError{Field: "role", Error: errNoPermsToSetRoles})
	}

	usr, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating user")
	}
	return api.tokenResponse(ctx, http.StatusCreated, usr)
}

func (api *userApi) me(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, usr, err := refreshToken(ctx, api.svc, api.conf)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{AccessToken: token, TokenType: tokenType, User: usr})
}

func (api *userApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := bindAndValidate(ctx, api.validate, &data); err != nil {
		return err
	}

	if err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email); !(err == nil || errors.Cause(err) == user.ErrNotFound) {
		// do not return errors to attackers
		api.logger.Error("requesting password reset", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: passwordResetSent})
}

func (api *userApi) confirmPasswordReset(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: passwordResetDone})
}

func (api *userApi) query(ctx echo.Context) error {
	filter := new(user.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []user.User{})
	}
	filter.Clean()
	pinCampus(ctx, &filter.CampusID)
	ordering := new(Ordering)
	ordering.Bind(ctx)

	users, err := api.svc.Query(ctx.Request().Context(), *filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, user.Roles)
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, ok := ctx.Get("object").(user.User)
	if !ok {
		return errors.Wrap(errUsrNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) update(ctx echo.Context) error {
	usr, ok := ctx.Get("object").(user.User)
	if !ok {
		return errors.Wrap(errUsrNotFoundInCtx, "retrieving object from context")
	}
	ctxUsr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data user.UpdateUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateUser")
	}
	if !ctxUsr.IsFounder() && data.CampusID != nil {
		campusID := ctxUsr.CampusID.String
		data.CampusID = &campusID
	}
	if err := data.Validate(ctx.Request().Context(), usr, api.validate, api.svc); err != nil {
		return err
	}

	// ctxUser cannot grant a role above their own, nor edit someone ranked above them
	if user.RolePriority(data.Role) > user.RolePriority(ctxUsr.Role) ||
		user.RolePriority(usr.Role) > user.RolePriority(ctxUsr.Role) {
		return core.NewValidationError(core.ErrForbidden, core.FieldError{Field: "role", Error: errNoPermsToSetRoles})
	}

	usr, err = api.svc.Update(ctx.Request().Context(), usr, data)
	if err != nil {
		return errors.Wrap(err, "updating user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) destroy(ctx echo.Context) error {
	usr, ok := ctx.Get("object").(user.User)
	if !ok {
		return errors.Wrap(errUsrNotFoundInCtx, "retrieving object from context")
	}

	// ctxUser cannot delete themselves
	ctxUsr, err := getContextUser(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if usr.ID == ctxUsr.ID || user.RolePriority(usr.Role) > user.RolePriority(ctxUsr.Role) {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), usr.ID); err != nil {
		return errors.Wrap(err, "deleting user")
	}
	return ctx.JSON(http.StatusOK, MessageResponse{Message: "Utilisateur supprimé"})
}

// objectMiddleware loads the user targeted by :id into the context, hiding users of other campuses.
func (api *userApi) objectMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			usr, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
			if err != nil {
				return errors.Wrap(err, "finding user by ID")
			}
			if !getScope(ctx).Allows(usr.CampusID.String) {
				return user.ErrNotFound
			}
			ctx.Set("object", usr)
			return next(ctx)
		}
	}
}
