package main

import (
	"context"

	"github.com/trezcool/lmsadmin/core"
)

func (cli *commandLine) resetPassword(email, pwd string) error {
	return cli.usrSvc.SetPassword(context.Background(), core.CleanString(email, true /* lower */), pwd)
}
