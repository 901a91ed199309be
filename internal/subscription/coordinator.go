// Package subscription establishes the workspace-scoped event subscriptions the
// lifecycle controller depends on and routes the events they deliver.
package subscription

import (
	"go.uber.org/zap"

	"github.com/lzjever/mbos-wrt/internal/observability"
)

const (
	ChannelStatuses = "workspace/statuses"
	ChannelOutput   = "workspace/output"

	EventWorkspaceStatusChanged = "workspace/statusChanged"
	EventMachineStatusChanged   = "machine/statusChanged"
	EventServerStatusChanged    = "server/statusChanged"
	EventMachineLog             = "machine/log"
	EventInstallerLog           = "installer/log"

	ScopeWorkspaceID = "workspaceId"
)

// Transport issues subscriptions. Subscribe is fire-and-forget: delivery,
// retries and reconnects belong to the transport, and subscribing the same
// topic and scope twice is tolerated.
type Transport interface {
	Subscribe(channel, eventType string, scope map[string]string)
}

type Topic struct {
	Channel   string
	EventType string
}

// WorkspaceTopics is the fixed set of topics subscribed for a workspace.
var WorkspaceTopics = []Topic{
	{ChannelStatuses, EventWorkspaceStatusChanged},
	{ChannelStatuses, EventMachineStatusChanged},
	{ChannelStatuses, EventServerStatusChanged},
	{ChannelOutput, EventMachineLog},
	{ChannelOutput, EventInstallerLog},
}

type Coordinator struct {
	transport Transport
	log       *zap.Logger
}

func NewCoordinator(transport Transport, log *zap.Logger) *Coordinator {
	return &Coordinator{transport: transport, log: log}
}

// SubscribeAll subscribes every workspace topic scoped to workspaceID.
func (c *Coordinator) SubscribeAll(workspaceID string) {
	for _, t := range WorkspaceTopics {
		// Each call gets its own scope map; transports may retain it.
		scope := map[string]string{ScopeWorkspaceID: workspaceID}
		c.transport.Subscribe(t.Channel, t.EventType, scope)
		observability.SubscriptionsTotal.WithLabelValues(t.Channel, t.EventType).Inc()
	}
	c.log.Debug("subscribed to workspace events",
		zap.String("workspace_id", workspaceID),
		zap.Int("topics", len(WorkspaceTopics)),
	)
}
