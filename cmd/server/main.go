// Command server runs the sentiment chat: the chat page, /predict with a cache in front
// of the classifier, the /speak TTS proxy, /ws and the metrics endpoints.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/charlesng35/aidemo/internal/app"
	"github.com/charlesng35/aidemo/internal/security"
	"github.com/charlesng35/aidemo/pkg/logger"
)

// generous enough for a /speak call that is waiting on the TTS service
const shutdownTimeout = 15 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	err := run(ctx, os.Args[1:])
	if err != nil && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, generated, err := app.Startup("aidemo-server", "chat", args, os.Stdout)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	log := logger.WithModule("bootstrap")
	stack, err := bootstrapRuntime(cfg, log)
	if err != nil {
		return err
	}
	defer stack.Shutdown(context.Background(), log)

	security.New(stack.DB, cfg, generated).Run(ctx).Log(logger.WithModule("security"))

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           stack.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	// Shutdown does not track hijacked websocket connections
	srv.RegisterOnShutdown(stack.Hub.Close)

	return app.Serve(ctx, srv, shutdownTimeout)
}
