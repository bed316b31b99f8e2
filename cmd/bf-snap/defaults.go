package main

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/venicegeo/bf-snap/gpt"
	cli "gopkg.in/urfave/cli.v1"
)

func defaultsAction(c *cli.Context) error {
	operator := c.Args().First()
	if operator == "" {
		return cli.NewExitError("an operator name is required", 1)
	}

	descriptors, err := gpt.NewRegistry(gptConfig(c)).Descriptors(context.Background(), operator)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}

	w := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PARAMETER\tTYPE\tDEFAULT")
	for _, d := range descriptors {
		value := "-"
		if d.DefaultValue != nil {
			value = *d.DefaultValue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", d.Name, d.Type, value)
	}
	return w.Flush()
}
