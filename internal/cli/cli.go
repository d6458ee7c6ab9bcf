// Package cli is the interactive front end: a numbered menu over batch
// generation, rotation and ad-hoc generation.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/huugof/quote-images/internal/build"
	"github.com/huugof/quote-images/internal/config"
	"github.com/huugof/quote-images/internal/fonts"
	"github.com/huugof/quote-images/internal/project"
	"github.com/huugof/quote-images/internal/render"
	"github.com/huugof/quote-images/internal/rotate"
)

const (
	ChoiceGenerate = "1"
	ChoiceRotate   = "2"
	ChoiceAdHoc    = "3"
	ChoiceExit     = "4"
)

const menu = `
Quote Image Generator
=====================
1. Generate images from folder (quote files)
2. Rotate images
3. Generate ad-hoc quote image
4. Exit
`

// App runs the operations against one project root. An empty root means
// discovery failed; every operation then reports project.ErrRootNotFound.
type App struct {
	root   string
	cfg    *config.Config
	logger *slog.Logger
	in     *bufio.Reader
	out    io.Writer
	opts   []fonts.Option

	gen      *render.Generator
	fontsSet *fonts.Set
}

// New builds an App reading answers from in and writing prompts to out.
// opts are passed to the font provider.
func New(root string, cfg *config.Config, in io.Reader, out io.Writer, logger *slog.Logger, opts ...fonts.Option) *App {
	if logger == nil {
		logger = slog.Default()
	}
	return &App{
		root:   root,
		cfg:    cfg,
		logger: logger,
		in:     bufio.NewReader(in),
		out:    out,
		opts:   append([]fonts.Option{fonts.WithLogger(logger)}, opts...),
	}
}

// Run shows the menu until the user exits or input ends. Operation errors
// are printed and the menu shown again.
func (a *App) Run() error {
	for {
		fmt.Fprint(a.out, menu)
		choice, ok := a.prompt("\nEnter your choice (1-4): ")
		if !ok {
			return nil
		}

		var err error
		switch choice {
		case ChoiceGenerate:
			err = a.Generate()
		case ChoiceRotate:
			err = a.Rotate()
		case ChoiceAdHoc:
			err = a.promptAdHoc()
		case ChoiceExit:
			fmt.Fprintln(a.out, "Goodbye!")
			return nil
		default:
			fmt.Fprintln(a.out, "Invalid choice. Please try again.")
		}
		if err != nil {
			fmt.Fprintf(a.out, "Error: %v\n", err)
		}
	}
}

// Generate renders every quote file in the data directory.
func (a *App) Generate() error {
	if a.root == "" {
		return project.ErrRootNotFound
	}
	gen, err := a.generator()
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Generating images from folder...")
	result, err := build.Execute(build.Config{
		DataDir:    config.Resolve(a.root, a.cfg.Paths.Data),
		OutputDir:  a.outputDir(),
		Format:     a.cfg.Canvas.Format,
		CanvasHash: build.CanvasHash(gen.Canvas()),
		FontsHash:  build.FontsHash(a.fontsSet),
	}, gen, a.logger)
	if err != nil {
		return err
	}

	for _, src := range result.Sources {
		fmt.Fprintf(a.out, "%s: %d of %d records written\n", src.Source, len(src.Written), src.Records)
	}
	fmt.Fprintf(a.out, "Generated %d images from %d records", result.ImagesWritten, result.RecordsParsed)
	if result.Failures > 0 || result.FileErrors > 0 {
		fmt.Fprintf(a.out, " (%d failed, %d unreadable files)", result.Failures, result.FileErrors)
	}
	fmt.Fprintln(a.out)
	return nil
}

// Rotate turns every image in the output directory upside down.
func (a *App) Rotate() error {
	if a.root == "" {
		return project.ErrRootNotFound
	}
	dir := a.outputDir()
	result, err := rotate.Dir(dir, a.logger)
	if err != nil {
		return err
	}
	if result.Files == 0 {
		fmt.Fprintf(a.out, "No files found in %s\n", dir)
		return nil
	}
	fmt.Fprintf(a.out, "Rotated %d images", result.Rotated)
	if result.Failed > 0 {
		fmt.Fprintf(a.out, ", %d errors", result.Failed)
	}
	if result.Skipped > 0 {
		fmt.Fprintf(a.out, ", %d skipped", result.Skipped)
	}
	fmt.Fprintln(a.out)
	return nil
}

// AdHoc renders one quote into the output directory.
func (a *App) AdHoc(quote, speaker string) (string, error) {
	if a.root == "" {
		return "", project.ErrRootNotFound
	}
	gen, err := a.generator()
	if err != nil {
		return "", err
	}
	path, err := build.AdHoc(a.outputDir(), a.cfg.Canvas.Format, gen, quote, speaker)
	if err != nil {
		return "", err
	}
	fmt.Fprintf(a.out, "Image generated: %s\n", path)
	return path, nil
}

func (a *App) promptAdHoc() error {
	fmt.Fprintln(a.out, "Generate Ad-hoc Quote Image")
	fmt.Fprintln(a.out, strings.Repeat("-", 30))

	quote, _ := a.prompt("Enter the quote: ")
	if quote == "" {
		return build.ErrEmptyQuote
	}
	speaker, _ := a.prompt("Enter the author/speaker (optional): ")
	_, err := a.AdHoc(quote, speaker)
	return err
}

// prompt prints label and returns the trimmed answer. ok is false once
// input is exhausted and nothing was typed.
func (a *App) prompt(label string) (string, bool) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		a.logger.Error("failed to read input", slog.Any("error", err))
		return "", false
	}
	if errors.Is(err, io.EOF) && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}

func (a *App) outputDir() string {
	return config.Resolve(a.root, a.cfg.Paths.Output)
}

// generator builds the renderer once per App; fonts are resolved on first use.
func (a *App) generator() (*render.Generator, error) {
	if a.gen != nil {
		return a.gen, nil
	}
	canvas, err := a.canvas()
	if err != nil {
		return nil, err
	}
	a.fontsSet = fonts.Resolve(a.cfg.Fonts.Quote, a.cfg.Fonts.Speaker, a.cfg.FontSearchPaths(a.root), a.logger)
	provider := fonts.NewProvider(a.fontsSet, a.opts...)
	a.gen = render.NewGenerator(canvas, provider, a.logger)
	return a.gen, nil
}

func (a *App) canvas() (render.Canvas, error) {
	bg, err := render.ParseColor(a.cfg.Canvas.Background)
	if err != nil {
		return render.Canvas{}, fmt.Errorf("canvas.background: %w", err)
	}
	fg, err := render.ParseColor(a.cfg.Canvas.Foreground)
	if err != nil {
		return render.Canvas{}, fmt.Errorf("canvas.foreground: %w", err)
	}
	return render.Canvas{Width: a.cfg.Canvas.Width, Height: a.cfg.Canvas.Height, Background: bg, Foreground: fg}, nil
}
