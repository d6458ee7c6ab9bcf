// Package main is the entry point for the quote image generator.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/huugof/quote-images/internal/cli"
	"github.com/huugof/quote-images/internal/config"
	"github.com/huugof/quote-images/internal/logging"
	"github.com/huugof/quote-images/internal/project"
)

const usage = `Usage: quotecard [-root dir] [-marker file] [command]

Commands:
  (none)                          interactive menu
  generate                        render every quote file in the data directory
  rotate                          rotate every image in the output directory by 180 degrees
  adhoc -quote text [-speaker s]  render a single quote
`

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("quotecard", flag.ContinueOnError)
	fs.SetOutput(out)
	fs.Usage = func() {
		fmt.Fprint(out, usage)
		fs.PrintDefaults()
	}
	rootFlag := fs.String("root", "", "project root (default: nearest parent directory holding the marker file)")
	marker := fs.String("marker", project.DefaultMarker, "file that marks the project root")
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	root := *rootFlag
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		root, _ = project.FindRoot(wd, *marker)
	}

	cfg, err := config.Load(root)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, closeLog := logging.New(&logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       config.Resolve(root, cfg.Log.File.Path),
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	defer closeLog()
	slog.SetDefault(logger)

	if root == "" {
		logger.Warn("project root not found", slog.String("marker", *marker))
	} else {
		logger.Debug("using project root", slog.String("root", root))
	}

	app := cli.New(root, cfg, in, out, logger)

	rest := fs.Args()
	if len(rest) == 0 {
		return app.Run()
	}
	switch rest[0] {
	case "generate":
		return app.Generate()
	case "rotate":
		return app.Rotate()
	case "adhoc":
		sub := flag.NewFlagSet("adhoc", flag.ContinueOnError)
		sub.SetOutput(out)
		quote := sub.String("quote", "", "quote text")
		speaker := sub.String("speaker", "", "author or speaker (optional)")
		if err := sub.Parse(rest[1:]); err != nil {
			return err
		}
		_, err := app.AdHoc(*quote, *speaker)
		return err
	default:
		fs.Usage()
		return fmt.Errorf("unknown command %q", rest[0])
	}
}
