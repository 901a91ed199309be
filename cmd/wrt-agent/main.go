package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/lzjever/mbos-wrt/internal/api"
	"github.com/lzjever/mbos-wrt/internal/appctx"
	"github.com/lzjever/mbos-wrt/internal/core"
	"github.com/lzjever/mbos-wrt/internal/lifecycle"
	"github.com/lzjever/mbos-wrt/internal/observability"
	"github.com/lzjever/mbos-wrt/internal/runtimeclient"
	"github.com/lzjever/mbos-wrt/internal/subscription"
	"github.com/lzjever/mbos-wrt/internal/wsrpc"
)

func main() {
	var cfg api.Config
	if err := envconfig.Process("", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, _ := observability.NewLogger(cfg.LogLevel)
	defer log.Sync()

	// Replace global logger
	zap.ReplaceGlobals(log)

	reg := prometheus.DefaultRegisterer
	observability.RegisterAll(reg)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	runtime := runtimeclient.New(cfg.APIURL, runtimeclient.Options{
		Token:         cfg.APIToken,
		RatePerSecond: cfg.APIRate,
		Timeout:       cfg.APITimeout,
	}, log)

	app := appctx.New()
	ws, err := loadWorkspace(ctx, runtime, cfg.WorkspaceID, log)
	if err != nil {
		log.Fatal("load workspace failed", zap.String("workspace_id", cfg.WorkspaceID), zap.Error(err))
	}
	app.SetWorkspace(*ws)

	// Handlers are registered once the controller exists; nothing is
	// delivered before the first subscription.
	dispatcher := subscription.NewDispatcher(log)
	transport := wsrpc.Open(ctx, cfg.EventsURL, dispatcher.Dispatch, log, wsrpc.WithToken(cfg.APIToken))
	defer transport.Close()

	ctrl := lifecycle.New(runtime, app, subscription.NewCoordinator(transport, log), lifecycle.Config{
		ProjectsRoot: cfg.ProjectsRoot,
		QueueSize:    cfg.EventQueue,
	}, log)

	dispatcher.Handle(subscription.EventWorkspaceStatusChanged, lifecycle.StatusDelivery(app, ctrl, log))
	dispatcher.Handle(subscription.EventMachineStatusChanged, lifecycle.MachineStatusLogger(log))
	dispatcher.Handle(subscription.EventServerStatusChanged, lifecycle.MachineStatusLogger(log))
	dispatcher.Handle(subscription.EventMachineLog, lifecycle.OutputLogger(log))
	dispatcher.Handle(subscription.EventInstallerLog, lifecycle.OutputLogger(log))

	ctrlDone := make(chan struct{})
	go func() {
		defer close(ctrlDone)
		ctrl.Run(ctx)
	}()
	ctrl.Initialized()

	// Agent API server
	apiHandler := api.NewAPI(app, ctrl, log)
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      apiHandler.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.APITimeout + 5*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Metrics server
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{
		Addr:    cfg.MetricsAddr,
		Handler: mux,
	}

	go func() {
		log.Info("metrics server starting", zap.String("addr", cfg.MetricsAddr))
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("metrics server failed", zap.Error(err))
		}
	}()

	go func() {
		log.Info("agent server starting", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("agent server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down agent")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	_ = srv.Shutdown(shutdownCtx)
	_ = metricsSrv.Shutdown(shutdownCtx)

	select {
	case <-ctrlDone:
	case <-shutdownCtx.Done():
		log.Warn("lifecycle controller did not stop in time")
	}

	log.Info("agent stopped")
}

// loadWorkspace fetches the current workspace, retrying while the master is unreachable.
func loadWorkspace(ctx context.Context, c *runtimeclient.Client, id string, log *zap.Logger) (*core.Workspace, error) {
	var ws *core.Workspace
	backoff := wait.Backoff{Duration: time.Second, Factor: 2, Jitter: 0.1, Steps: 6, Cap: 30 * time.Second}
	err := wait.ExponentialBackoffWithContext(ctx, backoff, func(ctx context.Context) (bool, error) {
		got, err := c.GetWorkspace(ctx, id)
		if err == nil {
			ws = got
			return true, nil
		}
		var appErr *core.AppError
		if errors.As(err, &appErr) && (appErr.Code == core.ErrNotFound || appErr.Code == core.ErrBadRequest) {
			return false, err
		}
		log.Warn("workspace not loaded yet, retrying", zap.Error(err))
		return false, nil
	})
	if err != nil {
		return nil, err
	}
	return ws, nil
}
