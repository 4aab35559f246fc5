package main

import (
	"os"

	"github.com/supinter/ums/core"
	logsvc "github.com/supinter/ums/services/logger"
	"github.com/supinter/ums/storage/database"
	inmemdb "github.com/supinter/ums/storage/database/inmem"
	sqlxdb "github.com/supinter/ums/storage/database/sqlx"
)

func main() {
	conf := core.NewConfig()
	logger, err := logsvc.NewLogger(conf)
	if err != nil {
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	cli := commandLine{out: os.Stdout}
	if conf.Database.InMemory() {
		cli.usrRepo = inmemdb.NewUserRepository(inmemdb.Open())
	} else {
		db, err := database.Open(conf)
		if err != nil {
			logger.Fatal("opening database", err)
		}
		defer func() { _ = db.Close() }()
		cli.db = db
		cli.usrRepo = sqlxdb.NewUserRepository(db)
	}

	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error("admin command failed", err)
		}
		os.Exit(1)
	}
}
