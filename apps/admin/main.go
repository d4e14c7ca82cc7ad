package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/teardown"
	emailsvc "github.com/trezcool/darasa/services/email"
	logsvc "github.com/trezcool/darasa/services/logger"
	storagesvc "github.com/trezcool/darasa/services/storage"
	"github.com/trezcool/darasa/storage/database"
	sqlxrepos "github.com/trezcool/darasa/storage/database/sqlx"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	appLogger := logsvc.NewRollbarLogger(logger, conf)
	appLogger.Enable(!conf.Debug)

	// set up DB
	db, err := database.Open(conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(db.Ping())

	// set up object storage
	blobs, err := storagesvc.NewS3Storage(context.Background(), conf)
	errAndDie(err)

	usrRepo := sqlxrepos.NewUserRepository(db)
	schoolRepo := sqlxrepos.NewSchoolRepository(db)

	// the CLI runs alone; an in-process lock is enough
	teardownSvc := teardown.NewService(
		usrRepo, schoolRepo, blobs, teardown.NewMemoryLocker(),
		emailsvc.NewConsoleService(conf), appLogger, conf,
	)

	// start CLI
	cli := commandLine{
		db:          db,
		conf:        conf,
		usrRepo:     usrRepo,
		teardownSvc: teardownSvc,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			fmt.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
