// Command treasure-island plays the Treasure Island text adventure in the terminal.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/charlesng35/aidemo/internal/adventure"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		noColor      bool
		restartDelay time.Duration
	)

	root := &cobra.Command{
		Use:   "treasure-island",
		Short: "Play the Treasure Island text adventure",
		Long: `Find the treasure by answering each prompt with the letter shown.
Answers are case-insensitive. Losing shows the game over screen and starts again;
finding the treasure ends the game. Press Ctrl-D to quit.`,
		Version:      version,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			color := !noColor && os.Getenv("NO_COLOR") == ""
			game, err := adventure.NewGame(adventure.TreasureIsland(), cmd.InOrStdin(), cmd.OutOrStdout(),
				adventure.WithRenderer(adventure.NewRenderer(color)),
				adventure.WithRestartDelay(restartDelay),
			)
			if err != nil {
				return err
			}

			result, err := game.Run(cmd.Context())
			if err != nil {
				return err
			}
			if result == adventure.Quit {
				fmt.Fprintln(cmd.OutOrStdout(), "\nGoodbye!")
			}
			return nil
		},
	}
	root.Flags().BoolVar(&noColor, "no-color", false, "disable coloured output")
	root.Flags().DurationVar(&restartDelay, "restart-delay", adventure.DefaultRestartDelay, "pause after a lost round")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "treasure-island %s\n", version)
		},
	})
	return root
}
