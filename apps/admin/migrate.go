package main

import (
	"context"
	"fmt"

	"github.com/trezcool/lmsadmin/storage/database"
)

var gooseRunFunc = database.RunMigrations // mockable

func (cli *commandLine) migrate(args []string) error {
	return gooseRunFunc(cli.db, args[0], args[1:]...)
}

func (cli *commandLine) purge() error {
	n, err := cli.announcements.Purge(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("%d expired announcement(s) deleted\n", n)
	return nil
}
