package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/supinter/ums/core/finance"
)

type financeApi struct {
	svc      *finance.Service
	validate *validator.Validate
}

func registerFinanceAPI(authed *echo.Group, deps *Deps) {
	api := financeApi{svc: deps.FinanceSvc, validate: deps.Validate}

	authed.POST("/transactions", api.create)
	authed.GET("/transactions", api.query)
	authed.GET("/transactions/:id", api.retrieve)
	authed.DELETE("/transactions/:id", api.destroy)

	authed.GET("/finance/balance", api.balance)
	authed.GET("/finance/categories", api.categories)
}

func (api *financeApi) create(ctx echo.Context) error {
	var data finance.TransactionInput
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TransactionInput")
	}
	pinCampus(ctx, &data.CampusID)
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	tx, err := api.svc.Create(ctx.Request().Context(), getScope(ctx), data)
	if err != nil {
		return errors.Wrap(err, "creating transaction")
	}
	return ctx.JSON(http.StatusCreated, tx)
}

func (api *financeApi) query(ctx echo.Context) error {
	var filter finance.QueryFilter
	if err := bindQuery(ctx, &filter); err != nil {
		return err
	}
	txs, err := api.svc.Query(ctx.Request().Context(), getScope(ctx), filter)
	if err != nil {
		return errors.Wrap(err, "querying transactions")
	}
	return ctx.JSON(http.StatusOK, txs)
}

func (api *financeApi) retrieve(ctx echo.Context) error {
	tx, err := api.svc.Get(ctx.Request().Context(), getScope(ctx), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "getting transaction")
	}
	return ctx.JSON(http.StatusOK, tx)
}

func (api *financeApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), getScope(ctx), ctx.Param("id")); err != nil {
		return errors.Wrap(err, "deleting transaction")
	}
	return deleted(ctx, "Transaction supprimée")
}

func (api *financeApi) balance(ctx echo.Context) error {
	var q finance.BalanceQuery
	if err := bindQuery(ctx, &q); err != nil {
		return err
	}
	if err := api.validate.Struct(q); err != nil {
		return err
	}
	bal, err := api.svc.Balance(ctx.Request().Context(), getScope(ctx), q)
	if err != nil {
		return errors.Wrap(err, "computing balance")
	}
	return ctx.JSON(http.StatusOK, bal)
}

func (api *financeApi) categories(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, api.svc.Categories())
}
