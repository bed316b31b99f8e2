package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/venicegeo/bf-snap/metadata"
	"github.com/venicegeo/bf-snap/util"
	cli "gopkg.in/urfave/cli.v1"
)

func metadataAction(c *cli.Context) error {
	logContext := &util.BasicLogContext{}

	filename := c.Args().First()
	if filename == "" {
		return cli.NewExitError("a metadata record file is required", 1)
	}
	file, err := os.Open(filename)
	if err != nil {
		return cli.NewExitError(err.Error(), 1)
	}
	defer file.Close()

	record, err := metadata.LoadRecord(file)
	if err != nil {
		return cli.NewExitError(util.LogSimpleErr(logContext, "Failed to read "+filename, err).Error(), 1)
	}

	if out := c.String("out"); out != "" {
		xmlPath, propertiesPath, err := metadata.Write(logContext, *record, out)
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		fmt.Fprintln(c.App.Writer, xmlPath)
		fmt.Fprintln(c.App.Writer, propertiesPath)
		return nil
	}

	switch c.String("format") {
	case "xml":
		doc, err := metadata.EOP(*record)
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		_, err = doc.WriteTo(c.App.Writer)
		return err
	case "properties":
		_, err = fmt.Fprint(c.App.Writer, metadata.Properties(*record))
		return err
	case "geojson":
		feature, err := metadata.Footprint(*record)
		if err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		encoder := json.NewEncoder(c.App.Writer)
		encoder.SetIndent("", "  ")
		return encoder.Encode(feature)
	}
	return cli.NewExitError("unknown format "+c.String("format"), 1)
}
