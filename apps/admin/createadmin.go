package main

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/user"
)

// createAdmin creates an admin user, or promotes the existing user matching
// username/email and resets their password.
func (cli *commandLine) createAdmin(uname, email, pwd string) error {
	ctx := context.Background()
	now := time.Now().UTC()
	uname = core.CleanString(uname, true)
	email = core.CleanString(email, true)
	isActive := true

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{UsernameOrEmail: []string{uname, email}})
	if err != nil {
		if errors.Cause(err) != user.ErrNotFound {
			return err
		}
		usr = user.User{
			Name:      uname,
			Username:  uname,
			Email:     email,
			IsActive:  &isActive,
			Roles:     user.AllRoles,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err = usr.SetPassword(pwd); err != nil {
			return err
		}
		_, err = cli.usrRepo.CreateUser(ctx, usr)
		return err
	}

	usr.IsActive = &isActive
	usr.Roles = user.AllRoles
	usr.UpdatedAt = now
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err = cli.usrRepo.UpdateUser(ctx, usr)
	return err
}
