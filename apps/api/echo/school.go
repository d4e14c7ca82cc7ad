package echoapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/school"
	"github.com/trezcool/darasa/core/teardown"
	"github.com/trezcool/darasa/core/user"
)

type schoolApi struct {
	svc         *school.Service
	usrSvc      user.ServiceInterface
	teardownSvc *teardown.Service
}

func registerSchoolAPI(
	g *echo.Group,
	jwt echo.MiddlewareFunc,
	svc *school.Service,
	usrSvc user.ServiceInterface,
	teardownSvc *teardown.Service,
) {
	api := schoolApi{
		svc:         svc,
		usrSvc:      usrSvc,
		teardownSvc: teardownSvc,
	}

	cg := g.Group("/classrooms", jwt)
	cg.GET("/:id", api.retrieveClassroom)
	cg.DELETE("/:id", api.destroyClassroom)

	g.Group("/streams", jwt).DELETE("/:id", api.destroyStream)
	g.Group("/comments", jwt).DELETE("/:id", api.destroyComment)
	g.Group("/notes", jwt).DELETE("/:id", api.destroyNote)
}

// Handlers

func (api *schoolApi) retrieveClassroom(ctx echo.Context) error {
	cls, err := api.svc.GetClassroom(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding classroom")
	}
	return ctx.JSON(http.StatusOK, cls)
}

// destroyClassroom cascades: streams, comments, classwork, enrollments, chat
// and stored files all go with the classroom row. The owning teacher's User
// row stays. Only that teacher or an admin may trigger it.
func (api *schoolApi) destroyClassroom(ctx echo.Context) error {
	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	c, cancel := context.WithTimeout(ctx.Request().Context(), core.Conf.Server.TeardownTimeout)
	defer cancel()

	res, err := api.teardownSvc.Teardown(c, ctxUsr, teardown.RootClassroom, ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "tearing down classroom")
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *schoolApi) destroyStream(ctx echo.Context) error {
	c := ctx.Request().Context()

	strm, err := api.svc.GetStream(c, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == school.ErrNotFound {
			return ctx.NoContent(http.StatusNoContent) // already gone
		}
		return errors.Wrap(err, "finding stream")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !ctxUsr.IsAdmin() && strm.UserID != ctxUsr.ID {
		// the classroom teacher moderates their own class
		cls, err := api.svc.GetClassroom(c, strm.ClassID)
		if err != nil || cls.TeacherID != ctxUsr.ID {
			return errHttpForbidden
		}
	}

	if err = api.svc.DeleteStream(c, strm.ID); err != nil {
		return errors.Wrap(err, "deleting stream")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *schoolApi) destroyComment(ctx echo.Context) error {
	c := ctx.Request().Context()

	cmt, err := api.svc.GetComment(c, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == school.ErrNotFound {
			return ctx.NoContent(http.StatusNoContent)
		}
		return errors.Wrap(err, "finding comment")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !ctxUsr.IsAdmin() && cmt.UserID != ctxUsr.ID {
		return errHttpForbidden
	}

	if err = api.svc.DeleteComment(c, cmt.ID); err != nil {
		return errors.Wrap(err, "deleting comment")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *schoolApi) destroyNote(ctx echo.Context) error {
	c := ctx.Request().Context()

	note, err := api.svc.GetNote(c, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == school.ErrNotFound {
			return ctx.NoContent(http.StatusNoContent)
		}
		return errors.Wrap(err, "finding note")
	}

	ctxUsr, err := getContextUser(ctx, api.usrSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	if !ctxUsr.IsAdmin() && note.UserID != ctxUsr.ID {
		return errHttpForbidden
	}

	if err = api.svc.DeleteNote(c, note.ID); err != nil {
		return errors.Wrap(err, "deleting note")
	}
	return ctx.NoContent(http.StatusNoContent)
}
