package main

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ebdplacar/backend/core"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	db  *sqlx.DB
	log core.Logger
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  migrate - apply pending schema migrations")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	switch args[1] {
	case "migrate":
		return cli.migrate()
	default:
		cli.printUsage()
		return errHelp
	}
}
