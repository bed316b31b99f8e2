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

// Package gpt drives the SNAP Graph Processing Tool: it runs graphs through the
// gpt executable and reads operator parameter descriptors from it.
package gpt

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/venicegeo/bf-snap/graph"
	"github.com/venicegeo/bf-snap/util"
)

// Result is the outcome of a single gpt invocation
type Result struct {
	ID       string
	PID      int
	Args     []string
	Graph    []byte
	Stdout   string
	Stderr   string
	ExitCode int
	Started  time.Time
	Duration time.Duration
}

// ExitError is returned when gpt ran but exited with a non-zero status
type ExitError struct {
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	if e.Signaled() {
		return fmt.Sprintf("gpt was terminated by a signal: %s", e.Stderr)
	}
	return fmt.Sprintf("gpt exited with status %d: %s", e.ExitCode, e.Stderr)
}

// Signaled reports whether gpt was killed instead of exiting, in which case
// ExitCode is -1
func (e *ExitError) Signaled() bool {
	return e.ExitCode < 0
}

// Runner runs graphs through gpt
type Runner struct {
	Config Config
	// OnComplete, if set, is called after every invocation that started
	OnComplete func(*Result, error)

	sessionID string
}

// NewRunner creates a Runner for the given configuration
func NewRunner(config Config) *Runner {
	return &Runner{Config: config}
}

// AppName implements util.LogContext
func (r *Runner) AppName() string {
	return util.AppName
}

// SessionID returns a Session ID, creating one if needed
func (r *Runner) SessionID() string {
	if r.sessionID == "" {
		r.sessionID, _ = util.PsuUUID()
	}
	return r.sessionID
}

// LogRootDir returns an empty string
func (r *Runner) LogRootDir() string {
	return ""
}

// Run saves the graph to a temporary file, runs gpt on it and waits for it to
// finish. The temporary file is always removed. If gpt exits non-zero the
// result is returned together with an *ExitError.
func (r *Runner) Run(ctx context.Context, g *graph.Graph) (*Result, error) {
	util.LogInfo(r, "Processing the graph")

	graphXML, err := g.Bytes()
	if err != nil {
		return nil, util.LogSimpleErr(r, "Failed to serialize graph.", err)
	}

	file, err := os.CreateTemp("", "bf-snap-graph-*.xml")
	if err != nil {
		return nil, util.LogSimpleErr(r, "Failed to create temporary graph file.", err)
	}
	path := file.Name()
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			util.LogAlert(r, fmt.Sprintf("Failed to remove temporary graph file %s: %v", path, rmErr))
		}
		util.LogInfo(r, "Done.")
	}()

	_, err = file.Write(graphXML)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return nil, util.LogSimpleErr(r, "Failed to write temporary graph file.", err)
	}

	result, err := r.execute(ctx, path)
	if result != nil {
		result.Graph = graphXML
		observeRun(result, err)
		if r.OnComplete != nil {
			r.OnComplete(result, err)
		}
	}
	return result, err
}

func (r *Runner) execute(ctx context.Context, graphPath string) (*Result, error) {
	args := []string{"-x", "-c", r.Config.CacheSize, graphPath}
	cmd := exec.CommandContext(ctx, r.Config.Path, args...)
	cmd.Dir = r.Config.WorkDir
	cmd.Env = append(os.Environ(), "LD_LIBRARY_PATH="+r.Config.LibraryPath)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	id, _ := util.PsuUUID()
	result := &Result{ID: id, Args: append([]string{r.Config.Path}, args...), Started: time.Now()}

	util.LogAudit(r, util.LogAuditInput{Actor: util.AppName, Action: "exec", Actee: r.Config.Path, Message: fmt.Sprintf("Running graph %s", graphPath), Severity: util.INFO})
	if err := cmd.Start(); err != nil {
		return nil, util.LogSimpleErr(r, "Failed to start gpt.", err)
	}
	result.PID = cmd.Process.Pid
	util.LogInfo(r, fmt.Sprintf("Process PID: %d", result.PID))

	waitErr := cmd.Wait()
	result.Duration = time.Since(result.Started)
	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	result.ExitCode = cmd.ProcessState.ExitCode()

	util.LogAudit(r, util.LogAuditInput{Actor: r.Config.Path, Action: "exit", Actee: util.AppName, Message: fmt.Sprintf("gpt exited with status %d after %v", result.ExitCode, result.Duration), Severity: util.INFO})

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil:
		return result, nil
	case ctx.Err() != nil:
		return result, ctx.Err()
	case errors.As(waitErr, &exitErr):
		return result, &ExitError{ExitCode: result.ExitCode, Stderr: result.Stderr}
	default:
		return result, waitErr
	}
}
