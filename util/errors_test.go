package util

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogSimpleErr(t *testing.T) {
	// Mock
	var out bytes.Buffer
	SetLogOutput(&out)
	defer SetLogOutput(io.Discard)
	cause := errors.New("connection refused")

	// Tested code
	err := LogSimpleErr(&BasicLogContext{}, "Could not reach gpt", cause)

	// Asserts
	assert.Equal(t, "Could not reach gpt: connection refused", err.Error())
	assert.True(t, errors.Is(err, cause))
	var utilErr *Error
	assert.True(t, errors.As(err, &utilErr))
	assert.Equal(t, "Could not reach gpt", utilErr.SimpleMsg)
	assert.Contains(t, out.String(), `"level":"error"`)
	assert.Contains(t, out.String(), `"app":"bf-snap"`)
	assert.Contains(t, out.String(), `"error":"connection refused"`)
}

func TestLogAudit_Severity(t *testing.T) {
	var out bytes.Buffer
	SetLogOutput(&out)
	defer SetLogOutput(io.Discard)

	LogAudit(&BasicLogContext{}, LogAuditInput{Actor: "gpt", Action: "exit", Actee: AppName, Message: "done", Severity: WARNING})

	assert.Contains(t, out.String(), `"level":"warn"`)
	assert.Contains(t, out.String(), `"actor":"gpt"`)
}

func TestBasicLogContext_SessionIDIsStable(t *testing.T) {
	ctx := &BasicLogContext{}

	assert.NotEmpty(t, ctx.SessionID())
	assert.Equal(t, ctx.SessionID(), ctx.SessionID())
}

func TestHTTPError(t *testing.T) {
	SetLogOutput(io.Discard)
	request := httptest.NewRequest("GET", "/runs/x", nil)
	response := httptest.NewRecorder()

	HTTPError(request, response, &BasicLogContext{}, "Run not found: x", http.StatusNotFound)

	assert.Equal(t, http.StatusNotFound, response.Code)
	assert.Equal(t, "Run not found: x\n", response.Body.String())
}
