package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/zeusync/futbolin/internal/core/observability/log"
	"github.com/zeusync/futbolin/internal/injector"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "futbolin:", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, cleanup, err := injector.InitializeApp()
	if err != nil {
		return err
	}
	defer cleanup()

	app.Logger.Info("Starting futbolin",
		log.String("addr", app.Config.Server.Addr),
		log.Int("tick_rate", app.Config.Server.TickRate),
		log.Uint64("seed", app.Config.Seed),
	)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.Runner.Run(ctx) })
	g.Go(func() error { return app.Server.Run(ctx) })

	err = g.Wait()
	app.Logger.Info("Stopped futbolin", log.Uint64("ticks", app.Match.TickCount()))
	return err
}
