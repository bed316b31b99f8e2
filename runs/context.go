package runs

import (
	"context"

	"github.com/venicegeo/bf-snap/gpt"
	"github.com/venicegeo/bf-snap/util"
)

// OperatorRegistry looks up operator parameter descriptors
type OperatorRegistry interface {
	Descriptors(ctx context.Context, operator string) ([]gpt.ParameterDescriptor, error)
}

// Context is the state shared by the HTTP handlers
type Context struct {
	Store    Store
	Registry OperatorRegistry

	sessionID string
}

// AppName returns the application name
func (c *Context) AppName() string {
	return util.AppName
}

// SessionID returns a Session ID, creating one if needed
func (c *Context) SessionID() string {
	if c.sessionID == "" {
		c.sessionID, _ = util.PsuUUID()
	}
	return c.sessionID
}

// LogRootDir returns an empty string
func (c *Context) LogRootDir() string {
	return ""
}
