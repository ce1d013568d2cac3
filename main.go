package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/dmitriyb/zcmlload/internal/config"
	"github.com/dmitriyb/zcmlload/internal/loader"
	"github.com/dmitriyb/zcmlload/internal/registry"
	"github.com/dmitriyb/zcmlload/internal/security"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run parses flags and dispatches to the appropriate subcommand.
// It returns the exit code. Extracted from main() for testability.
func run(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("zcmlload", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	cfgPath := fs.String("config", config.DefaultPath, "settings file path")
	features := fs.StringArrayP("feature", "f", nil, "feature to declare before loading (repeatable)")
	dryRun := fs.Bool("dry-run", false, "parse and validate without executing actions")
	system := fs.Bool("system", false, "load inside a system-user interaction")
	logLevel := fs.String("log-level", "info", "log level")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 1
	}

	subcmds := fs.Args()
	if len(subcmds) == 0 {
		fmt.Fprintln(stderr, "usage: zcmlload [flags] <subcommand> [file]")
		fmt.Fprintln(stderr, "subcommands: validate, load, features")
		return 1
	}

	switch subcmds[0] {
	case "validate", "load", "features":
		// valid subcommand, continue below
	default:
		fmt.Fprintf(stderr, "unknown subcommand: %q\n", subcmds[0])
		fmt.Fprintln(stderr, "subcommands: validate, load, features")
		return 1
	}
	if len(subcmds) > 2 {
		fmt.Fprintf(stderr, "unexpected argument: %q\n", subcmds[2])
		return 1
	}

	logger := config.InitLogging(*logLevel, stderr)

	var (
		cfg *config.Config
		err error
	)
	if fs.Changed("config") {
		cfg, err = config.Load(*cfgPath)
	} else {
		cfg, err = config.LoadOptional(*cfgPath)
	}
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return 1
	}

	if len(subcmds) == 2 {
		cfg.File = subcmds[1]
	}
	cfg.Features = append(cfg.Features, *features...)
	if *system {
		cfg.SystemInteraction = true
	}
	if fs.Changed("log-level") {
		cfg.LogLevel = *logLevel
	}

	if err := config.Validate(cfg); err != nil {
		logger.Error("config validation failed", "error", err)
		return 1
	}
	if cfg.LogLevel != "" {
		logger = config.InitLogging(cfg.LogLevel, stderr)
	}

	execute := subcmds[0] == "load" && cfg.ShouldExecute() && !*dryRun

	reg, opts := newLoad(cfg, execute, logger)
	c, err := loader.Load(context.Background(), cfg.File, opts...)
	if err != nil {
		logger.Error("failed to load configuration", "file", cfg.File, "error", err)
		return 1
	}

	switch subcmds[0] {
	case "validate":
		fmt.Fprintln(stdout, "configuration is valid")
	case "features":
		for _, f := range c.Features() {
			fmt.Fprintln(stdout, f)
		}
	case "load":
		if !execute {
			fmt.Fprintf(stdout, "loaded %s: %d actions pending (not executed)\n", cfg.File, len(c.Actions()))
			return 0
		}
		fmt.Fprintf(stdout, "loaded %s: %d actions executed\n", cfg.File, c.Executed())
		for _, u := range reg.Provided() {
			fmt.Fprintf(stdout, "utility %s\n", u)
		}
	}

	return 0
}

// newLoad builds the component registry and loader options for cfg.
// Components listed in the settings file become static factories for the
// <utility> directive. With a system interaction the registry only accepts
// registrations made inside it.
func newLoad(cfg *config.Config, execute bool, logger *slog.Logger) (*registry.Registry, []loader.Option) {
	factories := make(registry.Factories, len(cfg.Components))
	for key, value := range cfg.Components {
		factories[key] = func(context.Context) (any, error) { return value, nil }
	}

	opts := []loader.Option{
		loader.WithFeatures(cfg.Features...),
		loader.WithExecute(execute),
		loader.WithLogger(logger),
	}
	regOpts := []registry.Option{registry.WithLogger(logger.With("component", "registry"))}
	if cfg.SystemInteraction {
		m := security.NewManager()
		regOpts = append(regOpts, registry.WithGuard(m, registry.ManageServices))
		opts = append(opts, loader.WithSystemInteraction(m))
	}

	reg := registry.New(regOpts...)
	opts = append(opts, loader.WithDirectives(registry.RegisterDirectives(reg, factories)))
	return reg, opts
}
