package subscription

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type call struct {
	channel   string
	eventType string
	scope     map[string]string
}

type recordingTransport struct {
	mu    sync.Mutex
	calls []call
}

func (r *recordingTransport) Subscribe(channel, eventType string, scope map[string]string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, call{channel, eventType, scope})
}

func TestSubscribeAll_FixedTopicsScopedToWorkspace(t *testing.T) {
	tr := &recordingTransport{}
	NewCoordinator(tr, zap.NewNop()).SubscribeAll("workspace37")

	require.Len(t, tr.calls, 5)
	got := make(map[Topic]bool)
	for _, c := range tr.calls {
		got[Topic{c.channel, c.eventType}] = true
		assert.Equal(t, map[string]string{"workspaceId": "workspace37"}, c.scope)
	}
	for _, want := range []Topic{
		{"workspace/statuses", "workspace/statusChanged"},
		{"workspace/statuses", "machine/statusChanged"},
		{"workspace/statuses", "server/statusChanged"},
		{"workspace/output", "machine/log"},
		{"workspace/output", "installer/log"},
	} {
		assert.True(t, got[want], "missing subscription %v", want)
	}
}

func TestSubscribeAll_Repeatable(t *testing.T) {
	tr := &recordingTransport{}
	c := NewCoordinator(tr, zap.NewNop())
	c.SubscribeAll("ws-1")
	c.SubscribeAll("ws-1")
	assert.Len(t, tr.calls, 10)
}

func TestDispatcher_RoutesByType(t *testing.T) {
	d := NewDispatcher(zap.NewNop())
	var got []StatusChange
	d.Handle(EventWorkspaceStatusChanged, func(ev Event) {
		var sc StatusChange
		require.NoError(t, json.Unmarshal(ev.Params, &sc))
		got = append(got, sc)
	})

	d.Dispatch(Event{
		Channel: ChannelStatuses,
		Type:    EventWorkspaceStatusChanged,
		Params:  json.RawMessage(`{"workspaceId":"ws-1","status":"RUNNING","prevStatus":"STARTING"}`),
	})
	d.Dispatch(Event{Channel: ChannelOutput, Type: EventMachineLog, Params: json.RawMessage(`{}`)})

	require.Len(t, got, 1)
	assert.Equal(t, "RUNNING", got[0].Status)
	assert.Equal(t, "ws-1", got[0].WorkspaceID)
}
