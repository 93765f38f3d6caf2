package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/mroldanv/presente/core"
	"github.com/mroldanv/presente/core/course"
	"github.com/mroldanv/presente/core/session"
)

type (
	RosterRequest struct {
		Students []string `json:"students"`
	}

	MinAttendanceRequest struct {
		MinAttendance float64 `json:"min_attendance"`
	}

	AttendanceResponse struct {
		RUT        string  `json:"rut"`
		Percentage float64 `json:"percentage"`
	}
)

type courseApi struct {
	svc      *course.Service
	sessions *session.Service
}

func registerCourseAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc *course.Service, sessions *session.Service) {
	api := courseApi{svc: svc, sessions: sessions}

	cg := g.Group("/courses", jwt)
	cg.POST("", api.create)
	cg.GET("", api.query)
	cg.GET("/:code", api.retrieve)
	cg.PUT("/:code", api.update)
	cg.DELETE("/:code", api.destroy)
	cg.PUT("/:code/roster", api.assignRoster)
	cg.POST("/:code/close", api.close)
	cg.PUT("/:code/min-attendance", api.setMinAttendance)
	cg.GET("/:code/attendance", api.attendanceReport)
	cg.GET("/:code/attendance/:rut", api.attendance)
}

// Handlers

func (api *courseApi) create(ctx echo.Context) error {
	accountID, err := getContextAccountID(ctx)
	if err != nil {
		return err
	}

	var data course.NewCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewCourse")
	}

	courses, err := api.svc.Create(accountID, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, courses)
}

func (api *courseApi) query(ctx echo.Context) error {
	accountID, err := getContextAccountID(ctx)
	if err != nil {
		return err
	}

	courses, err := api.svc.QueryAll(accountID)
	if err != nil {
		return errors.Wrap(err, "querying courses")
	}
	if courses == nil {
		courses = []course.Course{}
	}
	return ctx.JSON(http.StatusOK, courses)
}

func (api *courseApi) retrieve(ctx echo.Context) error {
	accountID, err := getContextAccountID(ctx)
	if err != nil {
		return err
	}

	co, err := api.svc.Get(accountID, ctx.Param("code"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, co)
}

func (api *courseApi) update(ctx echo.Context) error {
	accountID, err := getContextAccountID(ctx)
	if err != nil {
		return err
	}

	var data course.UpdateCourse
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateCourse")
	}

	co, err := api.svc.Update(accountID, ctx.Param("code"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, co)
}

func (api *courseApi) destroy(ctx echo.Context) error {
	accountID, err := getContextAccountID(ctx)
	if err != nil {
		return err
	}
	if err := api.svc.Delete(accountID, ctx.Param("code")); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *courseApi) assignRoster(ctx echo.Context) error {
	accountID, err := getContextAccountID(ctx)
	if err != nil {
		return err
	}

	var data RosterRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RosterRequest")
	}

	co, err := api.svc.AssignRoster(accountID, ctx.Param("code"), core.NewStringSet(data.Students...))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, co)
}

func (api *courseApi) close(ctx echo.Context) error {
	accountID, err := getContextAccountID(ctx)
	if err != nil {
		return err
	}

	co, err := api.svc.Close(accountID, ctx.Param("code"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, co)
}

func (api *courseApi) setMinAttendance(ctx echo.Context) error {
	accountID, err := getContextAccountID(ctx)
	if err != nil {
		return err
	}

	var data MinAttendanceRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to MinAttendanceRequest")
	}

	co, err := api.svc.SetMinAttendance(accountID, ctx.Param("code"), data.MinAttendance)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, co)
}

func (api *courseApi) attendanceReport(ctx echo.Context) error {
	accountID, err := getContextAccountID(ctx)
	if err != nil {
		return err
	}

	rows, err := api.sessions.Report(accountID, ctx.Param("code"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rows)
}

func (api *courseApi) attendance(ctx echo.Context) error {
	accountID, err := getContextAccountID(ctx)
	if err != nil {
		return err
	}

	rut := ctx.Param("rut")
	pct, err := api.sessions.Percentage(accountID, ctx.Param("code"), rut)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, AttendanceResponse{RUT: rut, Percentage: pct})
}
