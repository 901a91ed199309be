// Package appctx holds the session-scoped application state: the current
// workspace runtime and the projects root.
package appctx

import (
	"sync"

	"github.com/lzjever/mbos-wrt/internal/core"
)

type Context struct {
	mu           sync.RWMutex
	workspace    *core.Workspace
	projectsRoot string
}

func New() *Context {
	return &Context{}
}

// Workspace returns a copy of the current workspace, or nil before it is loaded.
func (c *Context) Workspace() *core.Workspace {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.workspace == nil {
		return nil
	}
	ws := *c.workspace
	return &ws
}

func (c *Context) WorkspaceID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.workspace == nil {
		return ""
	}
	return c.workspace.ID
}

// SetWorkspace installs the workspace loaded at session bootstrap.
func (c *Context) SetWorkspace(ws core.Workspace) {
	c.mu.Lock()
	c.workspace = &ws
	c.mu.Unlock()
}

// ApplyStatus records a status reported by the remote runtime. It is a no-op
// for events about a different workspace and returns whether it applied.
func (c *Context) ApplyStatus(workspaceID string, status core.WorkspaceStatus) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.workspace == nil || c.workspace.ID != workspaceID {
		return false
	}
	c.workspace.Status = status
	return true
}

func (c *Context) ProjectsRoot() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.projectsRoot
}

func (c *Context) SetProjectsRoot(path string) {
	c.mu.Lock()
	c.projectsRoot = path
	c.mu.Unlock()
}
