package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"go.uber.org/zap"

	"github.com/lzjever/mbos-wrt/internal/api/middleware"
	"github.com/lzjever/mbos-wrt/internal/core"
	"github.com/lzjever/mbos-wrt/internal/lifecycle"
)

type WorkspaceResponse struct {
	core.Workspace
	ProjectsRoot string `json:"projects_root"`
}

type StartWorkspaceRequest struct {
	RestoreFromSnapshot bool `json:"restore_from_snapshot"`
}

// GetWorkspace returns the workspace runtime as last observed by this agent.
func (a *API) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	ws := a.app.Workspace()
	if ws == nil {
		WriteError(w, core.NewAppError(core.ErrNotReady, "workspace not loaded"))
		return
	}
	WriteJSON(w, http.StatusOK, WorkspaceResponse{Workspace: *ws, ProjectsRoot: a.app.ProjectsRoot()})
}

// StartWorkspace blocks until the remote accepted or rejected the start.
func (a *API) StartWorkspace(w http.ResponseWriter, r *http.Request) {
	var req StartWorkspaceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		WriteError(w, core.NewAppError(core.ErrBadRequest, "invalid JSON body"))
		return
	}

	if err := a.lifecycle.StartWorkspace(req.RestoreFromSnapshot).Wait(r.Context()); err != nil {
		a.log.Warn("start workspace failed",
			zap.Error(err),
			zap.String("request_id", middleware.GetRequestID(r)),
		)
		if errors.Is(err, lifecycle.ErrStopped) {
			WriteError(w, core.NewAppError(core.ErrNotReady, "lifecycle controller stopped"))
			return
		}
		WriteError(w, core.AsAppError(err))
		return
	}
	WriteAccepted(w, a.app.WorkspaceID(), "start")
}

// StopWorkspace dispatches a stop and returns without waiting for its outcome.
func (a *API) StopWorkspace(w http.ResponseWriter, r *http.Request) {
	id := a.app.WorkspaceID()
	if id == "" {
		WriteError(w, core.NewAppError(core.ErrNotReady, "workspace not loaded"))
		return
	}
	a.lifecycle.StopWorkspace()
	WriteAccepted(w, id, "stop")
}
