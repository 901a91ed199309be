// Package lifecycle drives the current workspace through start and stop in
// response to the application becoming ready and to observed status changes.
//
// All reactions run on a single consumer goroutine (Run). Each queued task,
// including the remote calls it makes, completes before the next one starts.
package lifecycle

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/lzjever/mbos-wrt/internal/appctx"
	"github.com/lzjever/mbos-wrt/internal/async"
	"github.com/lzjever/mbos-wrt/internal/core"
	"github.com/lzjever/mbos-wrt/internal/observability"
)

// ErrStopped is returned by futures whose task was queued after the controller stopped.
var ErrStopped = errors.New("lifecycle controller stopped")

// RuntimeClient is the subset of the workspace runtime API the controller uses.
type RuntimeClient interface {
	GetSettings(ctx context.Context) (map[string]string, error)
	StartByID(ctx context.Context, id, envName string, restoreFromSnapshot bool) error
	Stop(ctx context.Context, id string) error
}

type Subscriber interface {
	SubscribeAll(workspaceID string)
}

type Config struct {
	ProjectsRoot string
	QueueSize    int
}

type task struct {
	run   func(ctx context.Context)
	abort func()
}

type Controller struct {
	client RuntimeClient
	app    *appctx.Context
	subs   Subscriber
	log    *zap.Logger

	queue   chan task
	stopped chan struct{}
	ready   chan struct{}

	// Owned by the Run goroutine.
	initialized   bool
	stopRequested bool
}

func New(client RuntimeClient, app *appctx.Context, subs Subscriber, cfg Config, log *zap.Logger) *Controller {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	app.SetProjectsRoot(cfg.ProjectsRoot)
	return &Controller{
		client:  client,
		app:     app,
		subs:    subs,
		log:     log,
		queue:   make(chan task, cfg.QueueSize),
		stopped: make(chan struct{}),
		ready:   make(chan struct{}),
	}
}

// Run consumes queued tasks until ctx is done.
func (c *Controller) Run(ctx context.Context) {
	c.log.Info("lifecycle controller started")
	defer c.drain()
	for {
		select {
		case <-ctx.Done():
			c.log.Info("lifecycle controller stopping")
			return
		case t := <-c.queue:
			t.run(ctx)
		}
	}
}

func (c *Controller) drain() {
	close(c.stopped)
	for {
		select {
		case t := <-c.queue:
			if t.abort != nil {
				t.abort()
			}
		default:
			return
		}
	}
}

func (c *Controller) enqueue(t task) bool {
	select {
	case <-c.stopped:
		return false
	default:
	}
	select {
	case c.queue <- t:
		return true
	case <-c.stopped:
		return false
	}
}

// Initialized signals that the application context holds the current
// workspace. Nothing is acted on before this signal.
func (c *Controller) Initialized() {
	c.enqueue(task{run: func(ctx context.Context) {
		if !c.initialized {
			c.initialized = true
			close(c.ready)
		}
		c.handleWorkspaceState(ctx)
	}})
}

// Ready is closed once the initialized signal has been handled.
func (c *Controller) Ready() <-chan struct{} {
	return c.ready
}

// ObserveStatus is called by the event delivery path after it recorded a new
// status in the application context.
func (c *Controller) ObserveStatus(status core.WorkspaceStatus) {
	c.enqueue(task{run: func(ctx context.Context) {
		if !c.initialized {
			c.log.Debug("status observed before initialization, ignoring", zap.String("status", string(status)))
			return
		}
		c.handleWorkspaceState(ctx)
	}})
}

// StartWorkspace starts the current workspace with its default environment.
// The future resolves when the remote accepts the start request; reaching
// RUNNING is observed through the status subscription.
func (c *Controller) StartWorkspace(restoreFromSnapshot bool) *async.Future {
	f, resolve := async.New()
	ok := c.enqueue(task{
		run:   func(ctx context.Context) { resolve(c.start(ctx, restoreFromSnapshot)) },
		abort: func() { resolve(ErrStopped) },
	})
	if !ok {
		resolve(ErrStopped)
	}
	return f
}

// StopWorkspace requests a stop of the current workspace. The outcome is
// observed through status events only.
func (c *Controller) StopWorkspace() {
	c.enqueue(task{run: c.stop})
}

func (c *Controller) handleWorkspaceState(ctx context.Context) {
	ws := c.app.Workspace()
	if ws == nil {
		c.log.Warn("no current workspace in application context")
		return
	}
	log := observability.WorkspaceLogger(c.log, ws.ID).With(zap.String("status", string(ws.Status)))

	switch ws.Status {
	case core.StatusStarting, core.StatusRunning:
		c.subs.SubscribeAll(ws.ID)
		observability.LifecycleActionsTotal.WithLabelValues("subscribe").Inc()

	case core.StatusStopping, core.StatusStopped:
		if c.stopRequested {
			log.Debug("stop was requested by this session, not auto-starting")
			return
		}
		settings, err := c.client.GetSettings(ctx)
		if err != nil {
			// Treated as "do not auto-start".
			log.Warn("fetch settings failed, skipping auto-start", zap.Error(err))
			observability.LifecycleActionsTotal.WithLabelValues("auto_start_skipped").Inc()
			return
		}
		if !core.AutoStartEnabled(settings) {
			log.Info("auto-start disabled")
			return
		}
		log.Info("auto-starting workspace")
		observability.LifecycleActionsTotal.WithLabelValues("auto_start").Inc()
		if err := c.start(ctx, false); err != nil {
			log.Error("auto-start failed", zap.Error(err))
		}

	default:
		log.Warn("unknown workspace status")
	}
}

// start subscribes before dispatching so that no early status event is missed.
func (c *Controller) start(ctx context.Context, restoreFromSnapshot bool) error {
	ws := c.app.Workspace()
	if ws == nil {
		return core.NewAppError(core.ErrNotReady, "no current workspace")
	}
	c.subs.SubscribeAll(ws.ID)

	c.stopRequested = false
	observability.LifecycleActionsTotal.WithLabelValues("start").Inc()
	if err := c.client.StartByID(ctx, ws.ID, ws.Config.DefaultEnv, restoreFromSnapshot); err != nil {
		return err
	}
	observability.WorkspaceLogger(c.log, ws.ID).Info("start accepted",
		zap.String("environment", ws.Config.DefaultEnv),
		zap.Bool("restore", restoreFromSnapshot),
	)
	return nil
}

func (c *Controller) stop(ctx context.Context) {
	id := c.app.WorkspaceID()
	if id == "" {
		c.log.Warn("stop requested without a current workspace")
		return
	}
	log := observability.WorkspaceLogger(c.log, id)
	c.stopRequested = true
	observability.LifecycleActionsTotal.WithLabelValues("stop").Inc()
	if err := c.client.Stop(ctx, id); err != nil {
		c.stopRequested = false
		log.Error("stop failed", zap.Error(err))
		return
	}
	log.Info("stop accepted")
}
