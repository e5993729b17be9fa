package main

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/docscrub/cmd/docscrub/commands"
	"github.com/walteh/docscrub/cmd/docscrub/opts"
	"github.com/walteh/docscrub/pkg/config"
	"gitlab.com/tozd/go/errors"
)

// rootFlags are shared by every command
type rootFlags struct {
	configFile string
	debug      bool
}

// newRootCmd builds the command tree. Options are filled in before any
// subcommand runs, once flags are parsed.
func newRootCmd(console io.Writer) *cobra.Command {
	flags := &rootFlags{}
	o := &opts.RootOpts{}

	rootCmd := &cobra.Command{
		Use:   "docscrub",
		Short: "Sanitize office documents before they are shared",
		Long: `docscrub normalizes the visible text of DOCX, PPTX, XLSX and plain-text
documents, optionally corrects it with a grammar service, and clears authoring
metadata from Office, OpenDocument and PDF files.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := setupLogging(cmd.Context(), flags.debug)
			cmd.SetContext(ctx)

			built, err := newRootOpts(ctx, flags, console)
			if err != nil {
				return err
			}
			*o = *built
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return o.Close()
		},
	}

	addRootFlags(rootCmd, flags)

	rootCmd.AddCommand(
		commands.NewSanitizeCmd(o),
		commands.NewInspectCmd(o),
		newVersionCmd(o),
	)

	return rootCmd
}

// newRootOpts loads the config and wires the gate and engine
func newRootOpts(ctx context.Context, flags *rootFlags, console io.Writer) (*opts.RootOpts, error) {
	cfg, err := loadConfig(ctx, flags.configFile)
	if err != nil {
		return nil, errors.Errorf("loading config: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Str("config", cfg.String()).Msg("configuration ready")

	return opts.Build(ctx, cfg, console)
}

// loadConfig reads path, or the default dotfile when path is empty. A
// missing dotfile means defaults.
func loadConfig(ctx context.Context, path string) (*config.Config, error) {
	if path != "" {
		return config.Load(ctx, path)
	}
	if _, err := os.Stat(config.DotFile); errors.Is(err, os.ErrNotExist) {
		return config.Default(), nil
	}
	return config.Load(ctx, config.DotFile)
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, flags *rootFlags) {
	cmd.PersistentFlags().StringVarP(&flags.configFile, "config", "c", "", "config file path (default .docscrub when present)")
	cmd.PersistentFlags().BoolVarP(&flags.debug, "debug", "d", false, "enable debug logging")
}

// setupLogging attaches a stderr logger to ctx
func setupLogging(ctx context.Context, debug bool) context.Context {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).With().Timestamp().Logger()
	return logger.WithContext(ctx)
}
