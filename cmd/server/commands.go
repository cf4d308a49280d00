package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/vfsd/internal/infrastructure/config"
	"github.com/GriffinCanCode/AgentOS/vfsd/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/vfsd/internal/infrastructure/server"
	"github.com/GriffinCanCode/AgentOS/vfsd/internal/vfs"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "vfsd",
		Short:         "In-memory virtual filesystem with a shell and HTTP API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newServeCmd(), newShellCmd(), newTreeCmd())
	return root
}

func newServeCmd() *cobra.Command {
	var (
		port string
		host string
		dev  bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the filesystem API, terminal sessions and change stream",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if dev {
				cfg.Logging.Development = true
				cfg.Logging.Level = "debug"
			}

			logger, err := logging.New(logging.Config{
				Level:       cfg.Logging.Level,
				Development: cfg.Logging.Development,
			})
			if err != nil {
				return fmt.Errorf("failed to create logger: %w", err)
			}

			srv, err := server.NewServer(cfg, logger)
			if err != nil {
				return err
			}
			defer srv.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if err := srv.Run(ctx); err != nil {
				logger.Error("Server error", zap.Error(err))
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&port, "port", "8000", "server port")
	cmd.Flags().StringVar(&host, "host", "0.0.0.0", "listen host")
	cmd.Flags().BoolVar(&dev, "dev", false, "development logging")
	return cmd
}

func newShellCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Run an interactive shell against a fresh filesystem",
		RunE: func(cmd *cobra.Command, _ []string) error {
			core, err := loadCore()
			if err != nil {
				return err
			}
			interactive := isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
			return runREPL(cmd.Context(), core, cmd.InOrStdin(), cmd.OutOrStdout(), interactive)
		},
	}
}

func newTreeCmd() *cobra.Command {
	var (
		format string
		path   string
	)
	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the seeded tree as json, yaml or toml",
		RunE: func(cmd *cobra.Command, _ []string) error {
			core, err := loadCore()
			if err != nil {
				return err
			}
			item := core.Store.GetItemByPath(vfs.ParsePath(path))
			if item == nil {
				return fmt.Errorf("%s: %w", path, vfs.ErrNotFound)
			}
			data, err := vfs.Encode(item, vfs.Format(format))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "output format (json, yaml, toml)")
	cmd.Flags().StringVarP(&path, "path", "p", "/", "id-path of the subtree")
	return cmd
}

// loadCore builds a filesystem for local commands; logs go to stderr
func loadCore() (*server.Core, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return server.NewCore(cfg, logger, nil, nil)
}
