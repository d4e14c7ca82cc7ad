package echoapi

import (
	"context"
	"crypto/subtle"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/teardown"
	"github.com/trezcool/darasa/core/user"
)

// hookApi receives server-to-server callbacks from the identity provider.
// Authentication is a shared secret header, not a user JWT: the subject of
// the callback no longer has an account to authenticate with.
type hookApi struct {
	teardownSvc *teardown.Service
	conf        *core.Config
}

func registerHookAPI(g *echo.Group, teardownSvc *teardown.Service, conf *core.Config) {
	api := hookApi{teardownSvc: teardownSvc, conf: conf}

	hg := g.Group("/hooks")
	hg.POST("/account-deleted", api.accountDeleted)
}

type AccountDeletedHook struct {
	UserID string `json:"user_id"`
}

// accountDeleted runs a full user teardown on behalf of the identity
// provider after the account was deleted upstream.
func (api *hookApi) accountDeleted(ctx echo.Context) error {
	token := ctx.Request().Header.Get("X-Hook-Token")
	if api.conf.AccountHookToken == "" ||
		subtle.ConstantTimeCompare([]byte(token), []byte(api.conf.AccountHookToken)) != 1 {
		return errUnauthorized
	}

	var data AccountDeletedHook
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to AccountDeletedHook")
	}
	if data.UserID == "" {
		return core.NewValidationError(nil, core.FieldError{Field: "user_id", Error: "this field is required"})
	}

	c, cancel := context.WithTimeout(ctx.Request().Context(), api.conf.Server.TeardownTimeout)
	defer cancel()

	// the provider acts with admin rights
	caller := user.User{Name: "identity-provider", Roles: []string{user.RoleAdminOwner}}
	res, err := api.teardownSvc.Teardown(c, caller, teardown.RootUser, data.UserID)
	if err != nil {
		return errors.Wrap(err, "tearing down user")
	}
	return ctx.JSON(http.StatusOK, res)
}
