// Command gameserver wires the Format Registry, Handler Dispatcher,
// Connection Server, Session Manager, and Command Dispatcher together with
// the shipped AMF0 format and demo handlers/commands, then serves until an
// interrupt or SIGTERM is received.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alxayo/go-arcade/internal/command"
	"github.com/alxayo/go-arcade/internal/command/schema"
	"github.com/alxayo/go-arcade/internal/config"
	"github.com/alxayo/go-arcade/internal/demo"
	"github.com/alxayo/go-arcade/internal/dispatch"
	"github.com/alxayo/go-arcade/internal/events"
	"github.com/alxayo/go-arcade/internal/gameserver"
	"github.com/alxayo/go-arcade/internal/logging"
	"github.com/alxayo/go-arcade/internal/metrics"
	"github.com/alxayo/go-arcade/internal/playerregistry"
	"github.com/alxayo/go-arcade/internal/session"
	"github.com/alxayo/go-arcade/internal/wire"
	wireamf0 "github.com/alxayo/go-arcade/internal/wireformats/amf0"
)

func main() {
	opts, err := config.Load(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	logging.Init()
	if !logging.SetLevel(opts.LogLevel) {
		fmt.Printf("warning: invalid log level %q, using default\n", opts.LogLevel)
	}
	log := logging.Default().WithTag("cmd.gameserver")

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	eventMgr := events.NewManager(opts.HookConcurrency, log)
	if opts.HookStdioFormat != "" {
		eventMgr.SetStdioHook(events.NewStdioHook("stdio", opts.HookStdioFormat))
	}

	players := playerregistry.NewInMemory()

	formatRegistry := wire.NewRegistry(log)
	formatRegistry.Register(wireamf0.New())

	handlerDispatcher := dispatch.NewDispatcher(log)
	if err := handlerDispatcher.Register(demo.EchoHandler{}); err != nil {
		log.Error("failed to register demo handler", "handler", "echo", "error", err)
		os.Exit(1)
	}
	if err := handlerDispatcher.Register(demo.PingHandler{}); err != nil {
		log.Error("failed to register demo handler", "handler", "ping", "error", err)
		os.Exit(1)
	}

	sessionMgr := session.NewManager(session.Options{
		CleanupInterval:       opts.SweepInterval,
		SingleSessionDuration: opts.SessionDuration,
		Lifetime:              opts.SessionLifetimeCap,
		Logger:                log,
		Events:                eventMgr,
		Metrics:               m,
	})
	if err := sessionMgr.Start(); err != nil {
		log.Error("failed to start session manager", "error", err)
		os.Exit(1)
	}

	commandDispatcher := command.NewDispatcher(schema.Options{
		IgnoreUnknownKeys: opts.IgnoreUnknownKeys,
		Lenient:           opts.LenientValidation,
	}, m, log)
	if err := commandDispatcher.Register(demo.WhoAmICommand{}); err != nil {
		log.Error("failed to register demo command", "command", "whoami", "error", err)
		os.Exit(1)
	}

	server := gameserver.New(
		gameserver.Config{ListenAddr: opts.ListenAddr},
		formatRegistry,
		handlerDispatcher,
		players,
		eventMgr,
		m,
		log,
	)

	if err := server.Start(); err != nil {
		log.Error("failed to start gameserver", "error", err)
		os.Exit(1)
	}
	log.Info("gameserver started", "addr", server.Addr().String())

	metricsSrv := &http.Server{
		Addr:    opts.MetricsAddr,
		Handler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server error", "error", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		if err := server.Stop(); err != nil {
			log.Error("gameserver stop error", "error", err)
		}
		if err := sessionMgr.Shutdown(shutdownCtx); err != nil {
			log.Error("session manager shutdown error", "error", err)
		}
		if err := eventMgr.Close(); err != nil {
			log.Error("event manager shutdown error", "error", err)
		}
		_ = metricsSrv.Close()
		close(done)
	}()

	select {
	case <-done:
		log.Info("gameserver stopped cleanly")
	case <-shutdownCtx.Done():
		log.Error("forced exit after shutdown timeout")
	}
}
