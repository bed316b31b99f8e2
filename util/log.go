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

package util

import (
	"io"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Severity is the severity attached to audit log entries
type Severity string

// Audit severities
const (
	DEBUG   Severity = "debug"
	INFO    Severity = "info"
	WARNING Severity = "warning"
	ERROR   Severity = "error"
)

// LogContext is implemented by anything that can identify the source of a log entry
type LogContext interface {
	AppName() string
	SessionID() string
	LogRootDir() string
}

// BasicLogContext is a LogContext with no session state of its own
type BasicLogContext struct {
	sessionID string
}

// AppName returns the application name
func (c *BasicLogContext) AppName() string {
	return AppName
}

// SessionID returns a Session ID, creating one if needed
func (c *BasicLogContext) SessionID() string {
	if c.sessionID == "" {
		c.sessionID, _ = PsuUUID()
	}
	return c.sessionID
}

// LogRootDir returns an empty string
func (c *BasicLogContext) LogRootDir() string {
	return ""
}

// LogAuditInput describes a single audited action
type LogAuditInput struct {
	Actor    string
	Action   string
	Actee    string
	Message  string
	Severity Severity
}

var (
	loggerOnce sync.Once
	baseLogger zerolog.Logger
)

// SetLogOutput replaces the log destination; intended for tests and the CLI
func SetLogOutput(w io.Writer) {
	loggerOnce.Do(func() {})
	baseLogger = newLogger(w)
}

func newLogger(w io.Writer) zerolog.Logger {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(os.Getenv(LOG_LEVEL)); err == nil && parsed != zerolog.NoLevel {
		level = parsed
	}
	zerolog.TimeFieldFormat = time.RFC3339
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func logger(ctx LogContext) *zerolog.Logger {
	loggerOnce.Do(func() {
		baseLogger = newLogger(os.Stderr)
	})
	l := baseLogger
	if ctx != nil {
		l = l.With().Str("app", ctx.AppName()).Str("session", ctx.SessionID()).Logger()
	}
	return &l
}

// LogInfo logs an informational message
func LogInfo(ctx LogContext, message string) {
	logger(ctx).Info().Msg(message)
}

// LogAlert logs a warning-level message that needs attention but is not fatal
func LogAlert(ctx LogContext, message string) {
	logger(ctx).Warn().Msg(message)
}

// LogSimpleErr logs an error along with a message, and returns an error
// combining the two
func LogSimpleErr(ctx LogContext, message string, err error) error {
	logger(ctx).Error().Err(err).Msg(message)
	return &Error{LogMsg: message + " " + errString(err), SimpleMsg: message, Cause: err}
}

// LogAudit logs an action performed by an actor against an actee
func LogAudit(ctx LogContext, input LogAuditInput) {
	event := logger(ctx).Info()
	switch input.Severity {
	case DEBUG:
		event = logger(ctx).Debug()
	case WARNING:
		event = logger(ctx).Warn()
	case ERROR:
		event = logger(ctx).Error()
	}
	event.Str("actor", input.Actor).
		Str("action", input.Action).
		Str("actee", input.Actee).
		Msg(input.Message)
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
