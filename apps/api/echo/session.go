package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mroldanv/presente/core/session"
)

type sessionApi struct {
	svc *session.Service
}

func registerSessionAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *session.Service) {
	api := sessionApi{svc: svc}

	cg := g.Group("/courses/:code/sessions", jwt)
	cg.POST("", api.start)
	cg.GET("", api.query)

	sg := g.Group("/sessions/:id", jwt)
	sg.GET("", api.retrieve)
	sg.PUT("", api.update)
	sg.DELETE("", api.destroy)
}

// Handlers

func (api *sessionApi) start(ctx echo.Context) error {
	accountID, err := getContextAccountID(ctx)
	if err != nil {
		return err
	}

	s, err := api.svc.Start(accountID, ctx.Param("code"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, s)
}

func (api *sessionApi) query(ctx echo.Context) error {
	accountID, err := getContextAccountID(ctx)
	if err != nil {
		return err
	}

	sessions, err := api.svc.ByCourse(accountID, ctx.Param("code"))
	if err != nil {
		return err
	}
	if sessions == nil {
		sessions = []session.Session{}
	}
	return ctx.JSON(http.StatusOK, sessions)
}

func (api *sessionApi) retrieve(ctx echo.Context) error {
	accountID, err := getContextAccountID(ctx)
	if err != nil {
		return err
	}
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}

	s, err := api.svc.Get(accountID, id)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *sessionApi) update(ctx echo.Context) error {
	accountID, err := getContextAccountID(ctx)
	if err != nil {
		return err
	}
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}

	var data session.EditSession
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to EditSession")
	}

	s, err := api.svc.Edit(accountID, id, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, s)
}

func (api *sessionApi) destroy(ctx echo.Context) error {
	accountID, err := getContextAccountID(ctx)
	if err != nil {
		return err
	}
	id, err := sessionID(ctx)
	if err != nil {
		return err
	}

	if err := api.svc.Delete(accountID, id); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func sessionID(ctx echo.Context) (int, error) {
	id, err := strconv.Atoi(ctx.Param("id"))
	if err != nil {
		return 0, errHttpNotFound
	}
	return id, nil
}
