package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"

	"github.com/theleeeo/pgjobq/app"
	"github.com/theleeeo/pgjobq/config"
	"github.com/theleeeo/pgjobq/gen/jobs/v1"
	"github.com/theleeeo/pgjobq/jobqueue"
	"github.com/theleeeo/pgjobq/metrics"
	"github.com/theleeeo/pgjobq/server"
	"github.com/theleeeo/pgjobq/store"
)

func workerCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Run worker slots, leader tasks and the ops servers until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runWorker(cmd.Context(), c)
		},
	}

	flags := cmd.Flags()
	flags.Int("concurrency", 0, "jobs executed at once by this process")
	flags.StringSlice("names", nil, "only claim jobs with these names")
	flags.String("http-addr", "", "ops HTTP listen address, empty to disable")
	flags.String("grpc-addr", "", "gRPC listen address, empty to disable")
	flags.String("schedules", "", "path to the periodic schedules file")
	configFlags(flags, map[string]string{
		"worker.concurrency": "concurrency",
		"worker.names":       "names",
		"http_addr":          "http-addr",
		"grpc_addr":          "grpc-addr",
		"schedules_path":     "schedules",
	})
	return cmd
}

func workCmd(c *cli) *cobra.Command {
	var once bool
	cmd := &cobra.Command{
		Use:   "work",
		Short: "Run worker slots only, or drain the queue once with --once",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pool, err := newPool(ctx, c.cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("database: %w", err)
			}
			defer pool.Close()

			w, err := newWorker(c, store.NewPostgresStore(pool), nil)
			if err != nil {
				return err
			}

			if !once {
				return w.Run(ctx)
			}
			n, err := w.Drain(ctx)
			c.log.Info("queue drained", "attempts", n)
			return err
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "work until nothing is claimable, then exit")
	cmd.Flags().StringSlice("names", nil, "only claim jobs with these names")
	configFlags(cmd.Flags(), map[string]string{"worker.names": "names"})
	return cmd
}

// newWorker builds a worker with the built-in handlers registered.
func newWorker(c *cli, st store.Store, m *metrics.Metrics) (*jobqueue.Worker, error) {
	handlers := jobqueue.NewRegistry()
	a := app.New(app.Config{Logger: c.log, WebhookTimeout: c.cfg.Webhook.Timeout})
	if err := a.Register(handlers); err != nil {
		return nil, err
	}

	wc := c.cfg.Worker
	return jobqueue.NewWorker(st, handlers, jobqueue.WorkerConfig{
		Concurrency:     wc.Concurrency,
		PollInterval:    wc.PollInterval,
		Names:           wc.Names,
		JobTimeout:      wc.JobTimeout,
		ShutdownTimeout: wc.ShutdownTimeout,
		Backoff:         wc.Backoff.Strategy(),
		Logger:          c.log,
		Metrics:         m,
	}), nil
}

func runWorker(ctx context.Context, c *cli) error {
	cfg := c.cfg
	log := c.log

	schedules, err := loadSchedules(cfg.SchedulesPath)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := newPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	st := store.NewPostgresStore(pool)
	q := jobqueue.NewQueue(st, m)

	// Everything that can fail is built before the first goroutine starts,
	// so an error never leaves a worker running against a closed pool.
	w, err := newWorker(c, st, m)
	if err != nil {
		return err
	}

	var le *jobqueue.LeaderElector
	if cfg.Leader.Enabled {
		if le, err = newLeader(q, st, schedules, c, m); err != nil {
			return err
		}
	} else if len(schedules) > 0 {
		log.Warn("leader election disabled, periodic schedules will not run", "schedules", len(schedules))
	}

	var srv *http.Server
	if cfg.HTTPAddr != "" {
		ops := server.NewHTTPServer(q, reg, log)
		if le != nil {
			ops.WithLeader(le)
		}
		srv = ops.NewServer(cfg.HTTPAddr)
	}

	var (
		gs  *grpc.Server
		lis net.Listener
	)
	if cfg.GRPCAddr != "" {
		if lis, err = net.Listen("tcp", cfg.GRPCAddr); err != nil {
			return fmt.Errorf("grpc listen: %w", err)
		}
		gs = grpc.NewServer()
		jobs.RegisterJobServiceServer(gs, server.NewJobServer(q))
		reflection.Register(gs)
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return w.Run(ctx)
	})

	if le != nil {
		g.Go(func() error {
			if err := le.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				return err
			}
			return nil
		})
	}

	if srv != nil {
		g.Go(func() error {
			log.Info("ops server listening", "addr", cfg.HTTPAddr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("ops server: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Worker.ShutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	if gs != nil {
		g.Go(func() error {
			log.Info("gRPC server listening", "addr", lis.Addr().String())
			return gs.Serve(lis)
		})
		g.Go(func() error {
			<-ctx.Done()
			gs.GracefulStop()
			return nil
		})
	}

	err = g.Wait()
	log.Info("shut down", slog.Any("error", err))
	return err
}

func newLeader(q *jobqueue.Queue, st *store.PostgresStore, schedules []jobqueue.Schedule, c *cli, m *metrics.Metrics) (*jobqueue.LeaderElector, error) {
	lc := c.cfg.Leader
	le, err := jobqueue.NewLeaderElector(st, jobqueue.LeaderElectorConfig{
		LockName: lc.LockName,
		Logger:   c.log,
		Metrics:  m,
	})
	if err != nil {
		return nil, err
	}

	le.AddTask("reaper", jobqueue.ReaperTask(st, lc.ReapInterval, lc.StaleAfter, c.log, m))

	if len(schedules) > 0 {
		clock, err := jobqueue.NewClock(q, schedules, c.log)
		if err != nil {
			return nil, err
		}
		le.AddTask("clock", jobqueue.ClockTask(clock))
	}
	return le, nil
}

func loadSchedules(path string) ([]jobqueue.Schedule, error) {
	s, err := config.LoadSchedules(path)
	if err != nil {
		return nil, fmt.Errorf("load schedules: %w", err)
	}
	return s.Jobqueue()
}
