package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/oklog/run"

	"github.com/cadenceworks/foreman/internal/config"
	"github.com/cadenceworks/foreman/internal/worker"
	"github.com/cadenceworks/foreman/pkg/database"
	"github.com/cadenceworks/foreman/pkg/runtime"
)

const (
	docWorker = `Run a foreman worker daemon`
)

type optsWorker struct {
	optsGeneral
	optsDatabase

	Config string `long:"config" env:"CONFIG" description:"Path to worker yaml config"`
}

func (c *optsWorker) Execute(args []string) error {
	// This main runs a worker: it heartbeats, claims tasks whose reservations
	// can be granted, executes them and monitors for lost workers.
	//
	// The stock binary ships with an empty handler registry, so it only ever
	// does liveness and retention work. Deployments that execute tasks embed
	// the worker and register their handlers:
	//
	//	reg := runtime.NewRegistry()
	//	reg.Register("archive", archiveHandler)
	//	worker.NewDaemon(db, reg, cfg).Start()
	setupLogging(c.Debug)

	cfg, err := config.LoadWorker(c.Config)
	if err != nil {
		return err
	}
	if c.DatabaseURL != "" {
		cfg.DatabaseURL = c.DatabaseURL
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = defaultDatabaseURL
	}

	db, err := database.NewPostgres(&database.Options{URL: cfg.DatabaseURL})
	if err != nil {
		return err
	}
	defer db.Close()

	d := worker.NewDaemon(db, runtime.NewRegistry(), cfg)

	var g run.Group
	g.Add(func() error {
		return d.Start()
	}, func(error) {
		d.Stop()
	})

	done := make(chan struct{})
	g.Add(func() error {
		sig := make(chan os.Signal, 2)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(sig)
		select {
		case s := <-sig:
			if s == syscall.SIGTERM {
				// graceful: stop claiming, let in-flight tasks run out
				d.Drain()
			} else {
				// interrupt: cancel in-flight bodies, converge their rows
				// after at most the grace interval
				d.Interrupt()
			}
			return nil
		case <-done:
			return nil
		}
	}, func(error) {
		close(done)
	})

	return g.Run()
}
