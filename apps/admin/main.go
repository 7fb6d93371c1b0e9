package main

import (
	"log"
	"os"

	"github.com/trezcool/lmsadmin/core"
	"github.com/trezcool/lmsadmin/core/school"
	"github.com/trezcool/lmsadmin/core/user"
	emailsvc "github.com/trezcool/lmsadmin/services/email"
	logsvc "github.com/trezcool/lmsadmin/services/logger"
	"github.com/trezcool/lmsadmin/storage/database"
	"github.com/trezcool/lmsadmin/storage/database/pgstore"
)

func main() {
	conf := core.NewConfig()
	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile), conf)
	logger.Enable(!conf.Debug)

	// set up DB
	if err := database.CreateIfNotExist(conf); err != nil {
		logger.Fatal("setting up database", err)
	}
	db, err := database.Open(conf)
	if err != nil {
		logger.Fatal("opening database", err)
	}

	validate := core.NewDefaultValidator()
	user.InitValidators(validate.Engine(), validate.Translator())
	svcs := school.NewServices(pgstore.NewStores(db), validate, emailsvc.NewConsoleService(conf), conf, logger)

	// start CLI
	cli := commandLine{
		db:            db.DB,
		usrSvc:        svcs.Users,
		announcements: svcs.Announcements,
	}
	err = cli.run(os.Args)
	_ = db.Close()
	if err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}
