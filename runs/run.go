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

// Package runs keeps the history of gpt invocations and serves it, together
// with operator defaults and metadata rendering, over HTTP.
package runs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/venicegeo/bf-snap/gpt"
	"github.com/venicegeo/bf-snap/metadata"
	"github.com/venicegeo/bf-snap/util"
)

// DefaultListLimit is the number of runs listed when no limit is given
const DefaultListLimit = 50

// ErrNotFound is returned by a Store when no run has the requested id
var ErrNotFound = errors.New("run not found")

// Run is a recorded gpt invocation
type Run struct {
	ID         string           `json:"id"`
	PID        int              `json:"pid"`
	Args       []string         `json:"args"`
	Graph      string           `json:"graph"`
	Stdout     string           `json:"stdout"`
	Stderr     string           `json:"stderr"`
	ExitCode   int              `json:"exitCode"`
	Error      string           `json:"error,omitempty"`
	Started    time.Time        `json:"started"`
	DurationMS int64            `json:"durationMs"`
	Metadata   *metadata.Record `json:"metadata,omitempty"`
}

// Store persists runs
type Store interface {
	Insert(ctx context.Context, run Run) error
	Get(ctx context.Context, id string) (*Run, error)
	// List returns the most recent runs first
	List(ctx context.Context, limit int) ([]Run, error)
}

// FromResult converts the outcome of a gpt invocation into a Run
func FromResult(result *gpt.Result, err error) Run {
	run := Run{
		ID:         result.ID,
		PID:        result.PID,
		Args:       result.Args,
		Graph:      string(result.Graph),
		Stdout:     result.Stdout,
		Stderr:     result.Stderr,
		ExitCode:   result.ExitCode,
		Started:    result.Started.UTC(),
		DurationMS: result.Duration.Milliseconds(),
	}
	if run.Args == nil {
		run.Args = []string{}
	}
	if err != nil {
		run.Error = err.Error()
	}
	return run
}

// Recorder returns a callback suitable for gpt.Runner.OnComplete that stores
// every finished invocation. Storage failures are logged, not returned.
func Recorder(ctx util.LogContext, store Store, record *metadata.Record) func(*gpt.Result, error) {
	return func(result *gpt.Result, runErr error) {
		run := FromResult(result, runErr)
		run.Metadata = record
		if err := store.Insert(context.Background(), run); err != nil {
			util.LogSimpleErr(ctx, fmt.Sprintf("Failed to record run %s", run.ID), err)
			return
		}
		util.LogInfo(ctx, fmt.Sprintf("Recorded run %s", run.ID))
	}
}
