// Command portfolio serves the project page, the code name generator and the blog.
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

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:]); err != nil && !errors.Is(err, flag.ErrHelp) {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	cfg, generated, err := app.Startup("aidemo-portfolio", "portfolio", args, os.Stdout)
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

	return app.Serve(ctx, &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Portfolio.Port),
		Handler:           stack.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}, 10*time.Second)
}
