package main

import (
	"log"
	"os"

	"github.com/ebdplacar/backend/core"
	logsvc "github.com/ebdplacar/backend/services/logger"
	"github.com/ebdplacar/backend/storage/database"
)

func main() {
	defer os.Exit(0)

	std := log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	workDir, err := os.Getwd()
	if err != nil {
		std.Fatal(err)
	}
	conf, err := core.NewConfig(workDir)
	if err != nil {
		std.Fatal(err)
	}

	logger := logsvc.NewRollbarLogger(std, conf)
	logger.Enable(!(conf.Debug || conf.TestMode))

	errAndDie := func(err error) {
		if err != nil {
			logger.Fatal(err.Error())
		}
	}

	// set up DB
	errAndDie(database.CreateIfNotExist(conf))
	db, err := database.Open(conf)
	errAndDie(err)
	defer func() { _ = db.Close() }()
	errAndDie(db.Ping())

	cli := commandLine{db: db, log: logger}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Error(err.Error())
		}
		os.Exit(1)
	}
}
