package main

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/supinter/ums/core"
	"github.com/supinter/ums/core/user"
)

// addUser updates or creates an active user.User
func (cli *commandLine) addUser(name, email, pwd, role, campusID string) error {
	ctx := context.Background()
	name = core.CleanString(name)
	email = core.CleanString(email, true /* lower */)

	if user.RolePriority(role) == 0 {
		return fmt.Errorf("unknown role %q", role)
	}
	if role == user.RoleFounder {
		campusID = ""
	} else {
		if campusID == "" {
			return fmt.Errorf("role %q needs a campus", role)
		}
		found, err := cli.usrRepo.CampusExists(ctx, campusID)
		if err != nil {
			return errors.Wrap(err, "checking campus")
		}
		if !found {
			return user.ErrCampusNotFound
		}
	}

	usr, err := cli.usrRepo.GetUser(ctx, user.GetFilter{Email: email})
	exists := err == nil
	if err != nil && errors.Cause(err) != user.ErrNotFound {
		return err
	}

	now := time.Now().UTC()
	if !exists {
		usr = user.User{ID: uuid.NewString(), Email: email, CreatedAt: now}
	}
	usr.Name = name
	usr.Role = role
	usr.CampusID = null.NewString(campusID, campusID != "")
	usr.IsActive = true
	usr.UpdatedAt = now
	if err = usr.SetPassword(pwd); err != nil {
		return err
	}

	if exists {
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
	} else {
		_, err = cli.usrRepo.CreateUser(ctx, usr)
	}
	if err != nil {
		return err
	}
	cli.printf("user %s saved\n", email)
	return nil
}
