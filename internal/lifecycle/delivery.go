package lifecycle

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/lzjever/mbos-wrt/internal/appctx"
	"github.com/lzjever/mbos-wrt/internal/core"
	"github.com/lzjever/mbos-wrt/internal/observability"
	"github.com/lzjever/mbos-wrt/internal/subscription"
)

// StatusDelivery writes workspace/statusChanged events into the application
// context and then lets the controller react. It is the only writer of the
// workspace status after bootstrap.
func StatusDelivery(app *appctx.Context, ctrl *Controller, log *zap.Logger) subscription.Handler {
	return func(ev subscription.Event) {
		var sc subscription.StatusChange
		if err := json.Unmarshal(ev.Params, &sc); err != nil {
			log.Warn("malformed status event", zap.Error(err))
			return
		}
		status, ok := core.ParseWorkspaceStatus(sc.Status)
		if !ok {
			log.Warn("unknown workspace status", zap.String("status", sc.Status))
			return
		}
		if !app.ApplyStatus(sc.WorkspaceID, status) {
			log.Debug("status event for another workspace", zap.String("workspace_id", sc.WorkspaceID))
			return
		}
		observability.StatusEventsTotal.WithLabelValues(string(status)).Inc()
		l := observability.WorkspaceLogger(log, sc.WorkspaceID)
		if sc.Error != "" {
			l.Warn("workspace status changed", zap.String("status", sc.Status), zap.String("prev", sc.PrevStatus), zap.String("error", sc.Error))
		} else {
			l.Info("workspace status changed", zap.String("status", sc.Status), zap.String("prev", sc.PrevStatus))
		}
		ctrl.ObserveStatus(status)
	}
}

// MachineStatusLogger logs machine and server status events.
func MachineStatusLogger(log *zap.Logger) subscription.Handler {
	return func(ev subscription.Event) {
		var ms subscription.MachineStatusChange
		if err := json.Unmarshal(ev.Params, &ms); err != nil {
			log.Warn("malformed machine status event", zap.String("event", ev.Type), zap.Error(err))
			return
		}
		log.Info("machine status",
			zap.String("event", ev.Type),
			zap.String("workspace_id", ms.WorkspaceID),
			zap.String("machine", ms.MachineName),
			zap.String("server", ms.ServerName),
			zap.String("status", ms.Status),
			zap.String("error", ms.Error),
		)
	}
}

// OutputLogger forwards machine and installer output lines to the log.
func OutputLogger(log *zap.Logger) subscription.Handler {
	return func(ev subscription.Event) {
		var line subscription.LogLine
		if err := json.Unmarshal(ev.Params, &line); err != nil {
			log.Warn("malformed output event", zap.String("event", ev.Type), zap.Error(err))
			return
		}
		log.Debug(line.Text,
			zap.String("event", ev.Type),
			zap.String("machine", line.MachineName),
			zap.String("installer", line.Installer),
			zap.String("stream", line.Stream),
		)
	}
}
