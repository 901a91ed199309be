// Package wsrpc is a JSON-RPC 2.0 over websocket event transport. Each channel
// is served by its own endpoint connection, which is redialed with backoff
// when it drops and has its subscriptions replayed.
package wsrpc

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/lzjever/mbos-wrt/internal/observability"
	"github.com/lzjever/mbos-wrt/internal/subscription"
)

const (
	jsonRPCVersion  = "2.0"
	methodSubscribe = "subscribe"
)

// Notification is a JSON-RPC 2.0 notification frame.
type Notification struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type subscribeParams struct {
	Method string            `json:"method"`
	Scope  map[string]string `json:"scope"`
}

// Dialer abstracts websocket connection creation for testing.
type Dialer interface {
	DialContext(ctx context.Context, urlStr string, header http.Header) (Conn, error)
}

// Conn abstracts a websocket connection for testing.
type Conn interface {
	ReadMessage() (int, []byte, error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

type gorillaDialer struct {
	dialer *websocket.Dialer
}

func (d *gorillaDialer) DialContext(ctx context.Context, urlStr string, header http.Header) (Conn, error) {
	conn, _, err := d.dialer.DialContext(ctx, urlStr, header)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

type Option func(*Transport)

func WithDialer(d Dialer) Option {
	return func(t *Transport) { t.dialer = d }
}

func WithBackoff(b wait.Backoff) Option {
	return func(t *Transport) { t.backoff = b }
}

// WithToken sends a bearer token on every handshake.
func WithToken(token string) Option {
	return func(t *Transport) {
		if token != "" {
			t.header.Set("Authorization", "Bearer "+token)
		}
	}
}

// Transport implements subscription.Transport.
type Transport struct {
	baseURL string
	dialer  Dialer
	header  http.Header
	backoff wait.Backoff
	onEvent func(subscription.Event)
	log     *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu        sync.Mutex
	endpoints map[string]*endpoint
}

var _ subscription.Transport = (*Transport)(nil)

// Open returns a transport whose endpoints live until ctx is done or Close is called.
// onEvent is invoked from the endpoint read loops, one goroutine per channel.
func Open(ctx context.Context, baseURL string, onEvent func(subscription.Event), log *zap.Logger, opts ...Option) *Transport {
	ctx, cancel := context.WithCancel(ctx)
	t := &Transport{
		baseURL: strings.TrimRight(baseURL, "/"),
		dialer: &gorillaDialer{dialer: &websocket.Dialer{
			HandshakeTimeout: 10 * time.Second,
		}},
		header: http.Header{},
		backoff: wait.Backoff{
			Duration: 500 * time.Millisecond,
			Factor:   2,
			Jitter:   0.1,
			Steps:    math.MaxInt32,
			Cap:      30 * time.Second,
		},
		onEvent:   onEvent,
		log:       log,
		ctx:       ctx,
		cancel:    cancel,
		endpoints: make(map[string]*endpoint),
	}
	for _, o := range opts {
		o(t)
	}
	go func() {
		<-ctx.Done()
		t.closeAll()
	}()
	return t
}

// Subscribe records the subscription on the channel's endpoint and sends it
// if the endpoint is connected. The first subscription on a channel starts
// its connection loop.
func (t *Transport) Subscribe(channel, eventType string, scope map[string]string) {
	ep, err := t.endpoint(channel)
	if err != nil {
		t.log.Error("subscribe failed", zap.String("channel", channel), zap.String("event", eventType), zap.Error(err))
		return
	}
	ep.subscribe(subscribeParams{Method: eventType, Scope: scope})
}

// Close stops every endpoint and waits for their loops to exit.
func (t *Transport) Close() {
	t.cancel()
	t.closeAll()
	t.wg.Wait()
}

func (t *Transport) closeAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for _, ep := range t.endpoints {
		ep.closeConn()
	}
}

func (t *Transport) endpoint(channel string) (*endpoint, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if ep, ok := t.endpoints[channel]; ok {
		return ep, nil
	}
	if t.ctx.Err() != nil {
		return nil, fmt.Errorf("transport closed")
	}
	u, err := url.JoinPath(t.baseURL, channel)
	if err != nil {
		return nil, fmt.Errorf("endpoint url for %s: %w", channel, err)
	}
	ep := &endpoint{
		t:       t,
		channel: channel,
		url:     u,
		keys:    make(map[string]bool),
		log:     t.log.With(zap.String("channel", channel)),
	}
	t.endpoints[channel] = ep
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ep.run(t.ctx)
	}()
	return ep, nil
}

type endpoint struct {
	t       *Transport
	channel string
	url     string
	log     *zap.Logger

	// mu guards conn and subs and serializes writes.
	mu   sync.Mutex
	conn Conn
	subs []subscribeParams
	keys map[string]bool
}

func subscriptionKey(p subscribeParams) string {
	scopeKeys := make([]string, 0, len(p.Scope))
	for k := range p.Scope {
		scopeKeys = append(scopeKeys, k)
	}
	sort.Strings(scopeKeys)
	var b strings.Builder
	b.WriteString(p.Method)
	for _, k := range scopeKeys {
		b.WriteString("|" + k + "=" + p.Scope[k])
	}
	return b.String()
}

func (e *endpoint) subscribe(p subscribeParams) {
	e.mu.Lock()
	defer e.mu.Unlock()
	key := subscriptionKey(p)
	if e.keys[key] {
		// Already recorded, and already sent if a connection is up.
		return
	}
	e.keys[key] = true
	e.subs = append(e.subs, p)
	if e.conn != nil {
		if err := e.send(p); err != nil {
			e.log.Warn("send subscribe failed, will replay on reconnect", zap.String("event", p.Method), zap.Error(err))
		}
	}
}

// send must be called with mu held.
func (e *endpoint) send(p subscribeParams) error {
	params, err := json.Marshal(p)
	if err != nil {
		return err
	}
	frame, err := json.Marshal(Notification{JSONRPC: jsonRPCVersion, Method: methodSubscribe, Params: params})
	if err != nil {
		return err
	}
	return e.conn.WriteMessage(websocket.TextMessage, frame)
}

func (e *endpoint) closeConn() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.conn != nil {
		_ = e.conn.Close()
		e.conn = nil
	}
}

func (e *endpoint) run(ctx context.Context) {
	backoff := e.t.backoff
	first := true
	for {
		if !first {
			observability.TransportReconnectsTotal.WithLabelValues(e.channel).Inc()
			delay := backoff.Step()
			select {
			case <-ctx.Done():
				return
			case <-time.After(delay):
			}
		}
		first = false

		conn, err := e.t.dialer.DialContext(ctx, e.url, e.t.header)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			e.log.Warn("dial failed", zap.String("url", e.url), zap.Error(err))
			continue
		}
		backoff = e.t.backoff
		e.attach(conn)
		e.log.Info("endpoint connected", zap.String("url", e.url))

		e.readLoop(ctx, conn)
		e.closeConn()
		if ctx.Err() != nil {
			return
		}
		e.log.Warn("endpoint disconnected")
	}
}

func (e *endpoint) attach(conn Conn) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.conn = conn
	for _, p := range e.subs {
		if err := e.send(p); err != nil {
			e.log.Warn("replay subscribe failed", zap.String("event", p.Method), zap.Error(err))
			return
		}
	}
}

func (e *endpoint) readLoop(ctx context.Context, conn Conn) {
	for {
		if ctx.Err() != nil {
			return
		}
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() == nil {
				e.log.Debug("read error", zap.Error(err))
			}
			return
		}
		var n Notification
		if err := json.Unmarshal(data, &n); err != nil {
			e.log.Warn("malformed frame", zap.Error(err))
			continue
		}
		if n.Method == "" {
			// Responses to requests; this transport only sends notifications.
			continue
		}
		if e.t.onEvent != nil {
			e.t.onEvent(subscription.Event{Channel: e.channel, Type: n.Method, Params: n.Params})
		}
	}
}
