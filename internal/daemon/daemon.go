// Package daemon wires the State Store, Process Supervisor, Scheduler Loop,
// Request Handlers, and optional debug/event-mirror components into a single
// running instance. Both cmd/pueued (the standalone daemon binary) and the
// CLI's "daemon" subcommand (for local dev, grounded on 88lin-divinesense's
// single cobra root command that boots server state synchronously) call Run.
package daemon

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pueued/pueue-go/internal/api"
	"github.com/pueued/pueue-go/internal/auth"
	"github.com/pueued/pueue-go/internal/config"
	"github.com/pueued/pueue-go/internal/events"
	"github.com/pueued/pueue-go/internal/handlers"
	"github.com/pueued/pueue-go/internal/logger"
	"github.com/pueued/pueue-go/internal/metrics"
	"github.com/pueued/pueue-go/internal/scheduler"
	"github.com/pueued/pueue-go/internal/socket"
	"github.com/pueued/pueue-go/internal/store"
	"github.com/pueued/pueue-go/internal/supervisor"
)

// Run boots every daemon component and blocks until ctx is cancelled, then
// drains the control socket and tasks before returning. Callers own signal
// handling: cancel ctx on SIGINT/SIGTERM.
func Run(ctx context.Context, cfg *config.Config) error {
	log := logger.Get()
	log.Info().Msg("starting pueue-go daemon")

	for _, dir := range []string{cfg.Daemon.RuntimeDir, cfg.Daemon.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create daemon directory %s: %w", dir, err)
		}
	}

	bus := events.NewBus()

	st := store.New(filepath.Join(cfg.Daemon.RuntimeDir, "state.json"))
	st.SetNotifier(bus)
	if err := st.Load(); err != nil {
		return fmt.Errorf("failed to load persisted state: %w", err)
	}

	sv := supervisor.New()

	policy := &scheduler.RestartPolicy{
		MaxAttempts:    cfg.Scheduler.RestartMaxAttempts,
		InitialBackoff: cfg.Scheduler.RestartInitialBackoff,
		MaxBackoff:     cfg.Scheduler.RestartMaxBackoff,
		BackoffFactor:  cfg.Scheduler.RestartBackoffFactor,
		JitterFactor:   0.2,
	}
	sched := scheduler.New(st, sv, cfg.Daemon.LogDir, cfg.Scheduler.TickInterval, policy)

	dispatcher := handlers.NewDispatcher(st, sv, cfg.Daemon.LogDir)

	var handshake *auth.Handshake
	if cfg.Auth.Enabled {
		handshake = auth.New(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	}

	ln, err := socket.Listen(cfg.Daemon.SocketPath, dispatcher, handshake)
	if err != nil {
		return fmt.Errorf("failed to bind control socket: %w", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var redisClient *redis.Client
	if cfg.Events.RedisAddr != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Events.RedisAddr,
			Password: cfg.Events.RedisPassword,
			DB:       cfg.Events.RedisDB,
		})

		mirror := events.NewRedisMirror(redisClient)
		_, mirrorCh := bus.Subscribe()
		go mirror.Run(runCtx, mirrorCh)

		heartbeat := events.NewHeartbeat(redisClient, cfg.Events.HeartbeatInterval)
		heartbeat.Start(runCtx)
	}

	if cfg.Debug.Enabled {
		debugServer := api.NewServer(&cfg.Debug, st, bus)
		debugServer.Start(runCtx)
		go func() {
			if err := api.ListenAndServe(runCtx, cfg.Debug.Addr, debugServer); err != nil {
				log.Error().Err(err).Msg("debug HTTP server error")
			}
		}()
	}

	go reportTaskGauges(runCtx, st)

	sched.Start()
	go func() {
		if err := ln.Serve(); err != nil {
			log.Info().Err(err).Msg("control socket listener stopped")
		}
	}()
	bus.Ready()

	log.Info().Str("socket", cfg.Daemon.SocketPath).Msg("daemon ready")

	<-ctx.Done()

	log.Info().Msg("shutting down")
	bus.ShuttingDown()
	cancel()

	_ = ln.Close()
	sched.Stop()

	pollInterval := 100 * time.Millisecond
	maxPolls := int(cfg.Scheduler.ShutdownTimeout / pollInterval)
	sv.ShutdownAll(func() bool {
		time.Sleep(pollInterval)
		return true
	}, maxPolls)

	if redisClient != nil {
		_ = redisClient.Close()
	}

	log.Info().Msg("daemon stopped")
	return nil
}

// reportTaskGauges periodically refreshes the per-group/per-status task
// count gauges from a State Store snapshot, since those are cheaper to
// recompute on a timer than to keep incrementally accurate across every
// individual task mutation.
func reportTaskGauges(ctx context.Context, st *store.Store) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			counts := make(map[[2]string]int)
			for _, t := range st.Tasks() {
				counts[[2]string{t.Group, t.Status.Kind.String()}]++
			}
			for key, count := range counts {
				metrics.SetTasksByStatus(key[0], key[1], float64(count))
			}
		}
	}
}
