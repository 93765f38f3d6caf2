package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mroldanv/presente/core"
	"github.com/mroldanv/presente/core/account"
)

type (
	LoginRequest struct {
		RUT      string `json:"rut" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}
)

func (r *LoginRequest) Validate() error {
	return core.Validate.Struct(r)
}

type accountApi struct {
	svc *account.Service
}

func registerAccountAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *account.Service) {
	api := accountApi{svc: svc}

	ag := g.Group("/accounts")

	// un-authed endpoints
	ag.POST("/register", api.register)
	ag.POST("/login", api.login)

	// authed endpoints
	mg := ag.Group("", jwt)
	mg.POST("/token-refresh", api.refreshToken)
	mg.GET("/me", api.retrieve)
	mg.PUT("/me", api.updateCredentials)
	mg.DELETE("/me", api.destroy)
}

// Handlers

func (api *accountApi) register(ctx echo.Context) error {
	var data account.NewAccount
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewAccount")
	}

	acct, err := api.svc.Register(data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, acct)
}

func (api *accountApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := authenticate(data.RUT, data.Password, api.svc)
	if err != nil {
		return err
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *accountApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.svc)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *accountApi) retrieve(ctx echo.Context) error {
	acct, err := getContextAccount(ctx, api.svc)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, acct)
}

func (api *accountApi) updateCredentials(ctx echo.Context) error {
	id, err := getContextAccountID(ctx)
	if err != nil {
		return err
	}

	var data account.UpdateCredentials
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCredentials")
	}

	acct, err := api.svc.UpdateCredentials(id, data)
	if err != nil {
		return err
	}
	ctx.Set(contextAccountKey, acct)
	return ctx.JSON(http.StatusOK, acct)
}

func (api *accountApi) destroy(ctx echo.Context) error {
	id, err := getContextAccountID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
