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
	"net/http"
)

// Error is an error carrying both a detailed message for the logs and a
// short message suitable for users
type Error struct {
	LogMsg    string
	SimpleMsg string
	Cause     error
}

func (e *Error) Error() string {
	if e.Cause == nil {
		return e.SimpleMsg
	}
	return e.SimpleMsg + ": " + e.Cause.Error()
}

// Unwrap returns the underlying cause
func (e *Error) Unwrap() error {
	return e.Cause
}

// HTTPError logs the message and writes it to the response with the given status
func HTTPError(request *http.Request, writer http.ResponseWriter, ctx LogContext, message string, status int) {
	LogAudit(ctx, LogAuditInput{Actor: request.URL.String(), Action: request.Method + " response", Actee: "client", Message: message, Severity: ERROR})
	http.Error(writer, message, status)
}
