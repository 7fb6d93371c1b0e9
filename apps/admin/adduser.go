package main

import (
	"context"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/perm"
	"github.com/trezcool/lmsadmin/core/user"
)

// addUser updates or creates a user.User
func (cli *commandLine) addUser(first, last, email, pwd string, role perm.Role, profileID string) error {
	usr := user.User{
		FirstName: core.CleanString(first),
		LastName:  core.CleanString(last),
		Email:     core.CleanString(email, true /* lower */),
		Role:      role,
		ProfileID: core.CleanString(profileID),
	}
	_, err := cli.usrSvc.Upsert(context.Background(), usr, pwd)
	return err
}
