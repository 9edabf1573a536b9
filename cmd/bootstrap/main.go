// cmd/bootstrap/main.go
//
// This is the launcher binary. It reads its settings from BOOTSTRAP_*
// environment variables (or bootstrap.yaml), boots the configured entry
// point and hands it every command-line argument untouched.
//
// Exit status: 0 when the entry point returns, 1 with a single "Error:" line
// when the launch itself fails. A panic inside the application is re-raised
// as-is and ends the process the way any Go panic does.

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/kingrea/bootstrap/internal/config"
	"github.com/kingrea/bootstrap/internal/logging"
	"github.com/kingrea/bootstrap/launcher"
)

// VersionModule is a built-in entry point printing the launcher version.
const VersionModule = "github.com/kingrea/bootstrap/version"

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdin, stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(stderr, "Error: %s\n", err)
		if errors.Is(err, launcher.ErrMainClassNotSpecified) {
			fmt.Fprintln(stderr)
			fmt.Fprint(stderr, usage(stderr))
		}
		return 1
	}
	return 0
}

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:                "bootstrap [arguments...]",
		Short:              "Launch a packaged application",
		Long:               "bootstrap scans library directories for package archives and runs the configured entry point with the given arguments.",
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceErrors:      true,
		SilenceUsage:       true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return launch(cmd.Context(), args, stdin, stdout, stderr)
		},
	}
	cmd.CompletionOptions.DisableDefaultCmd = true
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	return cmd
}

func launch(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	cfg, err := config.Load(config.LoadOptions{})
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg, stderr)
	if err != nil {
		return err
	}
	defer logger.Close()
	logger.Debug("launching bootstrap", "version", version(), "config", cfg.Path)

	registry := launcher.NewRegistry()
	registry.MustRegister(VersionModule, launcher.Symbols{
		"Main": func(args []string) { fmt.Fprintln(stdout, "bootstrap", version()) },
	})

	b := launcher.New(
		launcher.WithLogger(logger.Logger),
		launcher.WithRegistry(registry),
		launcher.WithArchiveSuffix(cfg.ArchiveSuffix),
		launcher.WithStdio(stdin, stdout, stderr),
	)
	for _, dir := range cfg.LibraryDirs {
		if err := b.AddLibraryDirectory(dir); err != nil {
			return err
		}
	}
	for _, dir := range cfg.ResourceDirs {
		if err := b.AddResourceDirectory(dir); err != nil {
			return err
		}
	}
	return b.Run(ctx, cfg.MainClass, args)
}

func version() string {
	bi, ok := debug.ReadBuildInfo()
	if !ok || bi.Main.Version == "" {
		return "(devel)"
	}
	return bi.Main.Version
}
