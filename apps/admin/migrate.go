package main

import (
	"github.com/ebdplacar/backend/storage/database"
)

var migrateFunc = database.Migrate // mockable

func (cli *commandLine) migrate() error {
	cli.log.Info("applying migrations")
	if err := migrateFunc(cli.db.DB); err != nil {
		return err
	}
	cli.log.Info("migrations applied")
	return nil
}
