package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/saulo-duarte/chronos-goals/internal/config"
	"github.com/saulo-duarte/chronos-goals/internal/container"
	"github.com/saulo-duarte/chronos-goals/internal/router"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API in the foreground",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (defaults to HTTP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := config.Load()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		s.HTTPAddr = serveAddr
	}

	c, err := container.New(ctx, s)
	if err != nil {
		return err
	}
	defer c.Close()

	return router.Serve(ctx, s.HTTPAddr, router.FromContainer(c))
}
