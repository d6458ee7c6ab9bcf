package build

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/huugof/quote-images/internal/manifest"
	"github.com/huugof/quote-images/internal/quotes"
	"github.com/huugof/quote-images/internal/util"
)

const (
	DefaultFormat = "png"
	// AdHocNameLimit is how many leading runes of an ad-hoc quote name its file.
	AdHocNameLimit = 20
)

var (
	ErrDataDirMissing = errors.New("data directory not found")
	ErrEmptyQuote     = errors.New("quote cannot be empty")
)

// Generator renders one record, saving it when outputPath is not empty.
type Generator interface {
	Generate(rec quotes.Record, outputPath string) (image.Image, error)
}

type Config struct {
	DataDir   string
	OutputDir string
	// Format is the output extension, png when empty.
	Format string
	// CanvasHash and FontsHash are copied into the manifest.
	CanvasHash string
	FontsHash  string
}

type Result struct {
	Sources       []*SourceResult
	FileErrors    int
	RecordsParsed int
	ImagesWritten int
	// ImagesRemoved counts stale images of reprocessed sources that were deleted.
	ImagesRemoved int
	Failures      int
	ManifestPath  string
}

type SourceResult struct {
	Source        string
	Records       int
	Written       []Image
	Failed        int
	FailedIndices []int
}

type Image struct {
	Name  string
	Index int
}

// Execute renders every quote file in cfg.DataDir into cfg.OutputDir. Bad
// files and failed records are logged and counted, not returned.
func Execute(cfg Config, gen Generator, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if info, err := os.Stat(cfg.DataDir); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrDataDirMissing, cfg.DataDir)
	}

	loaded, err := quotes.Load(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", cfg.DataDir, err)
	}

	result := &Result{FileErrors: len(loaded.Errors)}
	for _, msg := range loaded.Errors {
		logger.Warn("skipping quote file", slog.String("error", msg))
	}
	if len(loaded.Sources) == 0 {
		logger.Info("no quote files found", slog.String("dir", cfg.DataDir))
		return result, nil
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return nil, err
	}

	manifestPath := filepath.Join(cfg.OutputDir, manifest.FileName)
	man, err := manifest.Load(manifestPath)
	if err != nil {
		logger.Warn("ignoring unreadable manifest", slog.String("path", manifestPath), slog.Any("error", err))
		man = nil
	}
	if man == nil {
		man = manifest.New()
	}
	man.CanvasHash = cfg.CanvasHash
	man.FontsHash = cfg.FontsHash

	for _, src := range loaded.Sources {
		logger.Info("processing quote file", slog.String("source", filepath.Base(src.Path)), slog.Int("records", len(src.Records)))
		sr := ProcessSource(src, cfg.OutputDir, cfg.Format, gen, logger)

		sourceName := filepath.Base(src.Path)
		previous := man.DropSource(sourceName)
		// A record that fails now keeps the image and entry of an earlier run.
		for _, idx := range sr.FailedIndices {
			name := ImageName(src.Stem, idx, cfg.Format)
			if entry, ok := previous[name]; ok {
				man.Images[name] = entry
			}
		}
		for _, img := range sr.Written {
			rec := src.Records[img.Index-1]
			man.Images[img.Name] = manifest.ImageEntry{
				Source:     sourceName,
				RecordID:   src.IDs[img.Index-1],
				Index:      img.Index,
				RecordHash: util.HashFields(rec.Text, rec.Speaker),
				Speaker:    rec.Speaker,
			}
		}

		result.ImagesRemoved += removeStale(cfg.OutputDir, previous, man, logger)

		result.Sources = append(result.Sources, sr)
		result.RecordsParsed += sr.Records
		result.ImagesWritten += len(sr.Written)
		result.Failures += sr.Failed
		logger.Info("generated images from quote file",
			slog.String("source", sourceName),
			slog.Int("written", len(sr.Written)),
			slog.Int("failed", sr.Failed))
	}

	if err := manifest.Save(manifestPath, man); err != nil {
		return result, fmt.Errorf("save manifest: %w", err)
	}
	result.ManifestPath = manifestPath
	return result, nil
}

func removeStale(outputDir string, previous map[string]manifest.ImageEntry, man *manifest.Manifest, logger *slog.Logger) int {
	names := make([]string, 0, len(previous))
	for name := range previous {
		if _, ok := man.Images[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	removed := 0
	for _, name := range names {
		path := filepath.Join(outputDir, name)
		if err := os.Remove(path); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				logger.Warn("failed to remove stale image", slog.String("path", path), slog.Any("error", err))
			}
			continue
		}
		removed++
		logger.Info("removed stale image", slog.String("path", path))
	}
	return removed
}

// ProcessSource gives every record its parse-order number, failed or not.
func ProcessSource(src *quotes.Source, outputDir, format string, gen Generator, logger *slog.Logger) *SourceResult {
	sr := &SourceResult{Source: filepath.Base(src.Path), Records: len(src.Records)}
	for i, rec := range src.Records {
		name := ImageName(src.Stem, i+1, format)
		path := filepath.Join(outputDir, name)
		if _, err := gen.Generate(rec, path); err != nil {
			sr.Failed++
			sr.FailedIndices = append(sr.FailedIndices, i+1)
			logger.Error("failed to generate image",
				slog.String("source", sr.Source),
				slog.Int("index", i+1),
				slog.String("path", path),
				slog.Any("error", err))
			continue
		}
		sr.Written = append(sr.Written, Image{Name: name, Index: i + 1})
	}
	return sr
}

// ImageName is "{stem}_quote_{index:03d}.{ext}".
func ImageName(stem string, index int, format string) string {
	return fmt.Sprintf("%s_quote_%03d.%s", stem, index, normalizeFormat(format))
}

func AdHocName(quote, format string) string {
	return fmt.Sprintf("adhoc_%s.%s", util.SafeName(quote, AdHocNameLimit), normalizeFormat(format))
}

func AdHoc(outputDir, format string, gen Generator, quote, speaker string) (string, error) {
	quote = strings.TrimSpace(quote)
	if quote == "" {
		return "", ErrEmptyQuote
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outputDir, AdHocName(quote, format))
	if _, err := gen.Generate(quotes.NewRecord(quote, speaker), path); err != nil {
		return "", fmt.Errorf("generate %s: %w", path, err)
	}
	return path, nil
}

func normalizeFormat(format string) string {
	format = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(format), "."))
	if format == "" {
		return DefaultFormat
	}
	return format
}
