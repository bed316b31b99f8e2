package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/venicegeo/bf-snap/gpt"
	"github.com/venicegeo/bf-snap/graph"
	"github.com/venicegeo/bf-snap/metadata"
	"github.com/venicegeo/bf-snap/recipe"
	"github.com/venicegeo/bf-snap/runs"
	"github.com/venicegeo/bf-snap/util"
	cli "gopkg.in/urfave/cli.v1"
)

// gptConfig reads the gpt settings from the environment, overridden by any
// flags given on the command line
func gptConfig(c *cli.Context) gpt.Config {
	config := gpt.ConfigFromEnv()
	if v := c.String("gpt"); v != "" {
		config.Path = v
	}
	if v := c.String("cache"); v != "" {
		config.CacheSize = v
	}
	if v := c.String("ld-library-path"); v != "" {
		config.LibraryPath = v
	}
	if v := c.String("workdir"); v != "" {
		config.WorkDir = v
	}
	return config
}

// loadGraph builds the graph named on the command line. XML files are loaded
// as graph documents, anything else is read as a recipe.
func loadGraph(c *cli.Context) (*graph.Graph, *metadata.Record, error) {
	filename := c.Args().First()
	if filename == "" {
		return nil, nil, errors.New("a recipe or graph file is required")
	}
	if strings.EqualFold(filepath.Ext(filename), ".xml") {
		g, err := graph.LoadFile(filename)
		return g, nil, err
	}

	r, err := recipe.LoadFile(filename)
	if err != nil {
		return nil, nil, err
	}
	g, err := r.Build(context.Background(), gpt.NewRegistry(gptConfig(c)))
	if err != nil {
		return nil, nil, err
	}
	return g, r.Metadata, nil
}

func graphAction(c *cli.Context) error {
	logContext := &util.BasicLogContext{}

	g, _, err := loadGraph(c)
	if err != nil {
		return cli.NewExitError(util.LogSimpleErr(logContext, "Failed to build graph", err).Error(), 1)
	}

	if c.Bool("plot") {
		return g.Plot(c.App.Writer)
	}
	if out := c.String("out"); out != "" {
		if err = g.Save(out); err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
		util.LogInfo(logContext, fmt.Sprintf("Saved graph with %d nodes to %s", g.Len(), out))
		return nil
	}
	_, err = fmt.Fprint(c.App.Writer, g.String())
	return err
}

func runAction(c *cli.Context) error {
	logContext := &util.BasicLogContext{}

	g, record, err := loadGraph(c)
	if err != nil {
		return cli.NewExitError(util.LogSimpleErr(logContext, "Failed to build graph", err).Error(), 1)
	}

	runner := gpt.NewRunner(gptConfig(c))
	if c.Bool("record") {
		database, err := getDbConnectionFunc(logContext)
		if err != nil {
			return cli.NewExitError("Could not open database connection to record the run: "+err.Error(), 1)
		}
		defer database.Close()
		runner.OnComplete = runs.Recorder(logContext, runs.NewPostgresStore(database), record)
	}

	result, runErr := runner.Run(context.Background(), g)
	if result != nil {
		fmt.Fprint(c.App.Writer, result.Stdout)
		fmt.Fprint(c.App.ErrWriter, result.Stderr)
	}
	if runErr != nil {
		var exitErr *gpt.ExitError
		if errors.As(runErr, &exitErr) {
			if exitErr.Signaled() {
				return cli.NewExitError("gpt was terminated by a signal", 1)
			}
			return cli.NewExitError(fmt.Sprintf("gpt failed with status %d", exitErr.ExitCode), exitErr.ExitCode)
		}
		return cli.NewExitError(runErr.Error(), 1)
	}

	if basename := c.String("metadata-out"); basename != "" {
		if record == nil {
			return cli.NewExitError("--metadata-out needs a recipe with a metadata section", 1)
		}
		if _, _, err = metadata.Write(logContext, *record, basename); err != nil {
			return cli.NewExitError(err.Error(), 1)
		}
	}
	return nil
}
