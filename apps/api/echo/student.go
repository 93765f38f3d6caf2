package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mroldanv/presente/core/student"
)

type studentApi struct {
	svc *student.Service
}

func registerStudentAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *student.Service) {
	api := studentApi{svc: svc}

	sg := g.Group("/students", jwt)
	sg.POST("", api.create)
	sg.GET("", api.query)
	sg.GET("/:rut", api.retrieve)
	sg.PUT("/:rut", api.update)
	sg.DELETE("/:rut", api.destroy)
}

// Handlers

func (api *studentApi) create(ctx echo.Context) error {
	accountID, err := getContextAccountID(ctx)
	if err != nil {
		return err
	}

	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}

	st, err := api.svc.Add(accountID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, st)
}

func (api *studentApi) query(ctx echo.Context) error {
	accountID, err := getContextAccountID(ctx)
	if err != nil {
		return err
	}

	students, err := api.svc.QueryAll(accountID)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

func (api *studentApi) retrieve(ctx echo.Context) error {
	accountID, err := getContextAccountID(ctx)
	if err != nil {
		return err
	}

	st, err := api.svc.Get(accountID, ctx.Param("rut"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *studentApi) update(ctx echo.Context) error {
	accountID, err := getContextAccountID(ctx)
	if err != nil {
		return err
	}

	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}

	st, err := api.svc.Update(accountID, ctx.Param("rut"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, st)
}

func (api *studentApi) destroy(ctx echo.Context) error {
	accountID, err := getContextAccountID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(accountID, ctx.Param("rut")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}
