package main

import (
	"github.com/pressly/goose"
	cli "gopkg.in/urfave/cli.v1"

	_ "github.com/venicegeo/bf-snap/migrations"
	"github.com/venicegeo/bf-snap/util"
)

func migrateDatabaseAction(c *cli.Context) error {
	logContext := &util.BasicLogContext{}

	command := c.Args().First()
	if command == "" {
		command = "up"
	}

	database, err := getDbConnectionFunc(logContext)
	if err != nil {
		return cli.NewExitError(util.LogSimpleErr(logContext, "Could not open database connection.", err).Error(), 1)
	}
	defer database.Close()

	if err = goose.SetDialect("postgres"); err != nil {
		return err
	}
	if err = goose.Run(command, database, "."); err != nil {
		return cli.NewExitError(util.LogSimpleErr(logContext, "Migration "+command+" failed.", err).Error(), 1)
	}
	util.LogInfo(logContext, "Migration "+command+" complete")
	return nil
}
