// Copyright 2018, RadiantBlue Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"os"

	"github.com/venicegeo/bf-snap/util"
	cli "gopkg.in/urfave/cli.v1"
)

var gptFlags = []cli.Flag{
	cli.StringFlag{Name: "gpt", Usage: "gpt executable (default $SNAP_GPT_PATH or /opt/snap/bin/gpt)"},
	cli.StringFlag{Name: "cache, c", Usage: "gpt tile cache size (default $SNAP_GPT_CACHE or 2048M)"},
	cli.StringFlag{Name: "ld-library-path", Usage: "LD_LIBRARY_PATH for gpt (default $SNAP_LD_LIBRARY_PATH or .)"},
	cli.StringFlag{Name: "workdir", Usage: "working directory for gpt (default $SNAP_WORKDIR or .)"},
}

var commands = cli.Commands{
	cli.Command{
		Name:      "graph",
		Aliases:   []string{"g"},
		Usage:     "Build a graph document from a recipe (or load a graph) and print it",
		ArgsUsage: "<recipe.yaml|graph.xml>",
		Flags: append([]cli.Flag{
			cli.StringFlag{Name: "out, o", Usage: "save the graph to this file instead of printing it"},
			cli.BoolFlag{Name: "plot, p", Usage: "print the node/source plot instead of the XML"},
		}, gptFlags...),
		Action: graphAction,
	},
	cli.Command{
		Name:      "run",
		Aliases:   []string{"r"},
		Usage:     "Run a recipe or graph through gpt",
		ArgsUsage: "<recipe.yaml|graph.xml>",
		Flags: append([]cli.Flag{
			cli.StringFlag{Name: "metadata-out", Usage: "write the recipe's metadata sidecars to this basename"},
			cli.BoolFlag{Name: "record", Usage: "record the run in the database"},
		}, gptFlags...),
		Action: runAction,
	},
	cli.Command{
		Name:      "metadata",
		Aliases:   []string{"md"},
		Usage:     "Render a metadata record as EarthObservation XML, properties or GeoJSON",
		ArgsUsage: "<record.yaml>",
		Flags: []cli.Flag{
			cli.StringFlag{Name: "out, o", Usage: "write <out>.xml and <out>.properties instead of printing"},
			cli.StringFlag{Name: "format, f", Value: "xml", Usage: "xml, properties or geojson"},
		},
		Action: metadataAction,
	},
	cli.Command{
		Name:      "defaults",
		Aliases:   []string{"d"},
		Usage:     "Print the parameters of a gpt operator with their default values",
		ArgsUsage: "<operator>",
		Flags:     gptFlags,
		Action:    defaultsAction,
	},
	cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Launch the bf-snap webserver",
		Flags:   gptFlags,
		Action:  serveAction,
	},
	cli.Command{
		Name:      "migrate",
		Aliases:   []string{"m"},
		Usage:     "Update database schema",
		ArgsUsage: "[up|down|status|version]",
		Action:    migrateDatabaseAction,
	},
	cli.Command{
		Name:    "version",
		Aliases: []string{"v"},
		Usage:   "Print the version number of the bf-snap CLI",
		Action:  versionAction,
	},
}

func createCliApp() (app *cli.App) {
	app = cli.NewApp()
	app.Name = "bf-snap"
	app.Usage = "Build, run and describe SNAP processing graphs"
	app.Version = util.Version
	app.ErrWriter = os.Stderr
	app.Commands = commands
	return
}
