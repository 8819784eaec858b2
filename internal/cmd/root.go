// Package cmd builds the tnfsd cobra command tree: flag parsing and
// process lifecycle around internal/server.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/FujiNetWIFI/tnfsd/internal/config"
	"github.com/FujiNetWIFI/tnfsd/internal/server"
	"github.com/FujiNetWIFI/tnfsd/internal/tnfslog"
)

// Root returns the tnfsd root command, flags bound to config.Default().
func Root() *cobra.Command {
	opts := config.Default()

	root := &cobra.Command{
		Use:   "tnfsd",
		Short: "TNFS network file-service daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), opts)
		},
	}
	opts.BindFlags(root.Flags())
	return root
}

func run(ctx context.Context, opts config.Options) error {
	if opts.Root == "" {
		return fmt.Errorf("tnfsd: --root is required")
	}
	level, err := logrus.ParseLevel(opts.LogLevel)
	if err != nil {
		return fmt.Errorf("tnfsd: invalid --log-level %q: %w", opts.LogLevel, err)
	}
	tnfslog.SetLevel(level)

	srv, err := server.New(opts)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	tnfslog.Logf(tnfslog.Plain("cmd"), "serving %s on udp :%d", opts.Root, opts.UDPPort)
	return srv.Run(ctx)
}
