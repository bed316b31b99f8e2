package main

import (
	"fmt"
	"os"

	"github.com/venicegeo/bf-snap/util"
	cli "gopkg.in/urfave/cli.v1"
)

func main() {
	util.LogAudit(&(util.BasicLogContext{}), util.LogAuditInput{Actor: "main()", Action: "startup", Actee: "self", Message: "Application Startup", Severity: util.INFO})
	err := createCliApp().Run(os.Args)
	if err != nil {
		util.LogAlert(&(util.BasicLogContext{}), fmt.Sprintf("Error executing CLI app: %v", err))
		os.Exit(1)
	}
}

func versionAction(c *cli.Context) error {
	_, err := fmt.Fprintf(c.App.Writer, "%s %s\n", c.App.Name, c.App.Version)
	return err
}
