package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/etnz/depositplan/server"
	"github.com/etnz/depositplan/store"
	"github.com/google/subcommands"
)

type serveCmd struct {
	addr    string
	noStore bool
}

func (*serveCmd) Name() string     { return "serve" }
func (*serveCmd) Synopsis() string { return "serve the allocation API over HTTP" }
func (*serveCmd) Usage() string {
	return `dpa serve [-addr <host:port>] [-no-store]

  Starts an HTTP server exposing:

    GET  /health         health check
    POST /api/allocate   allocate deposits, body: {"portfolios", "plans", "deposits"}
    POST /api/validate   validate the same body
    GET  /api/runs       list saved runs
    GET  /api/runs/{id}  allocations of a saved run

  Every allocation is saved in the history database unless -no-store is set.
`
}

func (c *serveCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.addr, "addr", "", "Address to listen on, defaults to the configured server address")
	f.BoolVar(&c.noStore, "no-store", false, "Do not save allocation runs")
}

func (c *serveCmd) Execute(ctx context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return subcommands.ExitFailure
	}
	log := Logger(cfg)

	addr := c.addr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	var s *store.Store
	if !c.noStore {
		if s, err = store.Open(ctx, cfg.Database, log); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
		defer s.Close()
	}

	srv := server.New(server.Config{Addr: addr, Log: log, Store: s})

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()

	select {
	case err := <-errc:
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return subcommands.ExitFailure
		}
	}
	return subcommands.ExitSuccess
}
