// Package rotate turns every image in a directory upside down in place.
package rotate

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fogleman/gg"

	"github.com/huugof/quote-images/internal/render"
)

var ErrDirMissing = errors.New("directory not found")

// Extensions are the file types Dir rewrites; anything else is skipped.
var Extensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".tiff": true,
}

type Result struct {
	Files   int
	Rotated int
	Failed  int
	Skipped int
}

// Dir rotates every supported image directly inside dir by 180 degrees and
// overwrites it. A file that fails is logged and counted.
func Dir(dir string, logger *slog.Logger) (*Result, error) {
	if logger == nil {
		logger = slog.Default()
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDirMissing, dir)
		}
		return nil, err
	}

	names := []string{}
	for _, entry := range entries {
		if entry.Type().IsRegular() {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	result := &Result{Files: len(names)}
	for _, name := range names {
		if !Extensions[strings.ToLower(filepath.Ext(name))] {
			result.Skipped++
			continue
		}
		path := filepath.Join(dir, name)
		if err := File(path); err != nil {
			result.Failed++
			logger.Error("failed to rotate image", slog.String("path", path), slog.Any("error", err))
			continue
		}
		result.Rotated++
		logger.Info("rotated image", slog.String("path", path))
	}
	return result, nil
}

// File rotates one image by 180 degrees, keeping its format.
func File(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	img, _, err := image.Decode(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return render.Save(Rotate180(img), path)
}

// Rotate180 returns img turned half a revolution about its centre.
func Rotate180(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	dc := gg.NewContext(w, h)
	dc.RotateAbout(math.Pi, float64(w)/2, float64(h)/2)
	dc.DrawImage(img, -b.Min.X, -b.Min.Y)
	return dc.Image()
}
