package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/yungbote/config-center/internal/app"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	a, err := app.New(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init app: %v\n", err)
		os.Exit(1)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- a.Run() }()

	select {
	case err = <-errCh:
		if err != nil {
			a.Log.Error("Server failed", "error", err)
		}
	case <-ctx.Done():
		a.Log.Info("Shutting down...")
	}

	if cerr := a.Close(context.Background()); cerr != nil {
		fmt.Fprintf(os.Stderr, "Shutdown error: %v\n", cerr)
	}
	if err != nil {
		os.Exit(1)
	}
}
