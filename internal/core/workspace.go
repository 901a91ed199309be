package core

import "strings"

type WorkspaceStatus string

const (
	StatusStarting WorkspaceStatus = "STARTING"
	StatusRunning  WorkspaceStatus = "RUNNING"
	StatusStopping WorkspaceStatus = "STOPPING"
	StatusStopped  WorkspaceStatus = "STOPPED"
)

// ParseWorkspaceStatus accepts the remote status names case-insensitively.
func ParseWorkspaceStatus(s string) (WorkspaceStatus, bool) {
	switch st := WorkspaceStatus(strings.ToUpper(strings.TrimSpace(s))); st {
	case StatusStarting, StatusRunning, StatusStopping, StatusStopped:
		return st, true
	}
	return "", false
}

// IsActive reports whether the runtime is up or coming up.
func (s WorkspaceStatus) IsActive() bool {
	return s == StatusStarting || s == StatusRunning
}

type WorkspaceConfig struct {
	Name       string `json:"name"`
	DefaultEnv string `json:"defaultEnv"`
}

// Workspace is the runtime snapshot of the workspace tracked by a session.
type Workspace struct {
	ID     string          `json:"id"`
	Status WorkspaceStatus `json:"status"`
	Config WorkspaceConfig `json:"config"`
}
