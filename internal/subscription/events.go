package subscription

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Event is one notification delivered on a subscribed channel.
type Event struct {
	Channel string
	Type    string
	Params  json.RawMessage
}

// StatusChange is the payload of workspace/statusChanged.
type StatusChange struct {
	WorkspaceID string `json:"workspaceId"`
	Status      string `json:"status"`
	PrevStatus  string `json:"prevStatus,omitempty"`
	Error       string `json:"error,omitempty"`
}

// MachineStatusChange is the payload of machine/statusChanged and server/statusChanged.
type MachineStatusChange struct {
	WorkspaceID string `json:"workspaceId"`
	MachineName string `json:"machineName"`
	ServerName  string `json:"serverName,omitempty"`
	Status      string `json:"status"`
	Error       string `json:"error,omitempty"`
}

// LogLine is the payload of machine/log and installer/log.
type LogLine struct {
	WorkspaceID string `json:"workspaceId,omitempty"`
	MachineName string `json:"machineName"`
	Installer   string `json:"installer,omitempty"`
	Stream      string `json:"stream,omitempty"`
	Text        string `json:"text"`
}

type Handler func(Event)

// Dispatcher routes events to the handlers registered for their type.
// Events with no handler are logged at debug and dropped.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
	log      *zap.Logger
}

func NewDispatcher(log *zap.Logger) *Dispatcher {
	return &Dispatcher{handlers: make(map[string][]Handler), log: log}
}

func (d *Dispatcher) Handle(eventType string, h Handler) {
	d.mu.Lock()
	d.handlers[eventType] = append(d.handlers[eventType], h)
	d.mu.Unlock()
}

func (d *Dispatcher) Dispatch(ev Event) {
	d.mu.RLock()
	hs := d.handlers[ev.Type]
	d.mu.RUnlock()
	if len(hs) == 0 {
		d.log.Debug("unhandled event", zap.String("channel", ev.Channel), zap.String("event", ev.Type))
		return
	}
	for _, h := range hs {
		h(ev)
	}
}
