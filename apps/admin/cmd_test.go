package main

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"

	"github.com/ebdplacar/backend/tests"
)

func setup(t *testing.T) *commandLine {
	t.Helper()
	return &commandLine{
		db:  &sqlx.DB{},
		log: testutil.Logger{},
	}
}

func Test_commandLine_run(t *testing.T) {
	cli := setup(t)

	var migrateCalls int
	migrateFunc = func(db *sql.DB) error {
		migrateCalls++
		return nil
	}

	tests := []struct {
		name    string
		args    []string // without program name
		wantErr error
	}{
		{name: "no command", wantErr: errHelp},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "migrate", args: []string{"migrate"}},
	}
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			if err := cli.run(args); err != tt.wantErr {
				t.Errorf("cli.run() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	if migrateCalls != 1 {
		t.Errorf("migrateFunc called %d times, want 1", migrateCalls)
	}
}

func Test_commandLine_migrate_error(t *testing.T) {
	cli := setup(t)

	wantErr := errors.New("goose: boom")
	migrateFunc = func(db *sql.DB) error { return wantErr }

	if err := cli.run([]string{"admin", "migrate"}); err != wantErr {
		t.Errorf("cli.run() error = %v, wantErr %v", err, wantErr)
	}
}
