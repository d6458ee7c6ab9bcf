package build

import (
	"errors"
	"image"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huugof/quote-images/internal/fonts"
	"github.com/huugof/quote-images/internal/manifest"
	"github.com/huugof/quote-images/internal/quotes"
	"github.com/huugof/quote-images/internal/render"
)

type fakeGenerator struct {
	failOn map[string]bool
	seen   []quotes.Record
}

func (g *fakeGenerator) Generate(rec quotes.Record, outputPath string) (image.Image, error) {
	g.seen = append(g.seen, rec)
	if g.failOn[rec.Text] {
		return nil, errors.New("render failed")
	}
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	if outputPath != "" {
		if err := os.WriteFile(outputPath, []byte(rec.Text), 0o644); err != nil {
			return nil, err
		}
	}
	return img, nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
}

func listDir(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	names := []string{}
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names
}

func TestExecute_WritesOneImagePerRecord(t *testing.T) {
	dataDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "output")
	writeFiles(t, dataDir, map[string]string{
		"famous.csv": "quote,speaker\nBe yourself, Oscar Wilde\n\"Line one\nLine two\",Mark Twain\n\n,dropped\nNo attribution\n",
		"single.md":  "---\nspeaker: Ann\n---\nFrom markdown\n",
		"broken.md":  "no front matter",
	})
	gen := &fakeGenerator{}

	result, err := Execute(Config{DataDir: dataDir, OutputDir: outDir}, gen, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, 1, result.FileErrors)
	assert.Equal(t, 4, result.RecordsParsed)
	assert.Equal(t, 4, result.ImagesWritten)
	assert.Zero(t, result.Failures)
	assert.Equal(t, []string{
		"famous_quote_001.png",
		"famous_quote_002.png",
		"famous_quote_003.png",
		manifest.FileName,
		"single_quote_001.png",
	}, listDir(t, outDir))

	assert.Equal(t, []quotes.Record{
		{Text: "Be yourself", Speaker: "Oscar Wilde"},
		{Text: "Line one\nLine two", Speaker: "Mark Twain"},
		{Text: "Unattributed"},
		{Text: "From markdown", Speaker: "Ann"},
	}, gen.seen)

	man, err := manifest.Load(result.ManifestPath)
	require.NoError(t, err)
	require.Len(t, man.Images, 4)
	entry := man.Images["famous_quote_002.png"]
	assert.Equal(t, "famous.csv", entry.Source)
	assert.Equal(t, "famous-002", entry.RecordID)
	assert.Equal(t, 2, entry.Index)
	assert.Equal(t, "Mark Twain", entry.Speaker)
	assert.Equal(t, "single", man.Images["single_quote_001.png"].RecordID)
}

func TestExecute_IsolatesRecordFailures(t *testing.T) {
	dataDir := t.TempDir()
	outDir := t.TempDir()
	writeFiles(t, dataDir, map[string]string{
		"a.csv": "header\nfirst,A\nboom,B\nthird,C\n",
	})
	gen := &fakeGenerator{failOn: map[string]bool{"boom": true}}

	result, err := Execute(Config{DataDir: dataDir, OutputDir: outDir, Format: "JPG"}, gen, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, 3, result.RecordsParsed)
	assert.Equal(t, 2, result.ImagesWritten)
	assert.Equal(t, 1, result.Failures)
	require.Len(t, result.Sources, 1)
	assert.Equal(t, []Image{{Name: "a_quote_001.jpg", Index: 1}, {Name: "a_quote_003.jpg", Index: 3}}, result.Sources[0].Written)
}

func TestExecute_KeepsManifestEntriesOfOtherSources(t *testing.T) {
	dataDir := t.TempDir()
	outDir := t.TempDir()
	writeFiles(t, dataDir, map[string]string{"a.csv": "header\nonly,A\n"})

	prev := manifest.New()
	prev.Images["old_quote_001.png"] = manifest.ImageEntry{Source: "old.csv", Index: 1}
	prev.Images["a_quote_009.png"] = manifest.ImageEntry{Source: "a.csv", Index: 9}
	require.NoError(t, manifest.Save(filepath.Join(outDir, manifest.FileName), prev))

	result, err := Execute(Config{DataDir: dataDir, OutputDir: outDir, CanvasHash: "c", FontsHash: "f"}, &fakeGenerator{}, discardLogger())
	require.NoError(t, err)

	man, err := manifest.Load(result.ManifestPath)
	require.NoError(t, err)
	assert.Contains(t, man.Images, "old_quote_001.png")
	assert.Contains(t, man.Images, "a_quote_001.png")
	assert.NotContains(t, man.Images, "a_quote_009.png")
	assert.Equal(t, "c", man.CanvasHash)
	assert.Equal(t, "f", man.FontsHash)
}

func TestExecute_RemovesStaleImages(t *testing.T) {
	dataDir := t.TempDir()
	outDir := t.TempDir()
	writeFiles(t, dataDir, map[string]string{"a.csv": "header\none,A\ntwo,B\nthree,C\n"})

	first, err := Execute(Config{DataDir: dataDir, OutputDir: outDir}, &fakeGenerator{}, discardLogger())
	require.NoError(t, err)
	assert.Equal(t, 3, first.ImagesWritten)
	assert.Zero(t, first.ImagesRemoved)

	writeFiles(t, dataDir, map[string]string{"a.csv": "header\none,A\n"})
	second, err := Execute(Config{DataDir: dataDir, OutputDir: outDir}, &fakeGenerator{}, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, 2, second.ImagesRemoved)
	assert.Equal(t, []string{"a_quote_001.png", manifest.FileName}, listDir(t, outDir))
}

func TestExecute_FailedRecordKeepsEarlierImage(t *testing.T) {
	dataDir := t.TempDir()
	outDir := t.TempDir()
	writeFiles(t, dataDir, map[string]string{"a.csv": "header\none,A\ntwo,B\n"})

	_, err := Execute(Config{DataDir: dataDir, OutputDir: outDir}, &fakeGenerator{}, discardLogger())
	require.NoError(t, err)

	gen := &fakeGenerator{failOn: map[string]bool{"two": true}}
	result, err := Execute(Config{DataDir: dataDir, OutputDir: outDir}, gen, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, 1, result.Failures)
	assert.Zero(t, result.ImagesRemoved)
	assert.Equal(t, []int{2}, result.Sources[0].FailedIndices)
	assert.FileExists(t, filepath.Join(outDir, "a_quote_002.png"))

	man, err := manifest.Load(result.ManifestPath)
	require.NoError(t, err)
	assert.Equal(t, 2, man.Images["a_quote_002.png"].Index)
}

func TestExecute_SameStemDifferentKind(t *testing.T) {
	dataDir := t.TempDir()
	outDir := t.TempDir()
	writeFiles(t, dataDir, map[string]string{
		"wisdom.csv": "header\nOne,A\nTwo,B\n",
		"wisdom.md":  "---\nspeaker: C\n---\nThree\n",
	})
	gen := &fakeGenerator{}

	result, err := Execute(Config{DataDir: dataDir, OutputDir: outDir}, gen, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, 1, result.FileErrors)
	assert.Equal(t, 2, result.ImagesWritten)
	assert.Equal(t, []string{manifest.FileName, "wisdom_quote_001.png", "wisdom_quote_002.png"}, listDir(t, outDir))

	content, err := os.ReadFile(filepath.Join(outDir, "wisdom_quote_001.png"))
	require.NoError(t, err)
	assert.Equal(t, "One", string(content))

	man, err := manifest.Load(result.ManifestPath)
	require.NoError(t, err)
	assert.Equal(t, "wisdom.csv", man.Images["wisdom_quote_001.png"].Source)
}

func TestExecute_MissingDataDir(t *testing.T) {
	_, err := Execute(Config{DataDir: filepath.Join(t.TempDir(), "data"), OutputDir: t.TempDir()}, &fakeGenerator{}, discardLogger())
	assert.ErrorIs(t, err, ErrDataDirMissing)
}

func TestExecute_NoQuoteFiles(t *testing.T) {
	dataDir := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "output")
	writeFiles(t, dataDir, map[string]string{"readme.txt": "nothing here"})

	result, err := Execute(Config{DataDir: dataDir, OutputDir: outDir}, &fakeGenerator{}, discardLogger())
	require.NoError(t, err)

	assert.Zero(t, result.ImagesWritten)
	assert.NoDirExists(t, outDir)
}

func TestExecute_WithRenderer(t *testing.T) {
	dataDir := t.TempDir()
	outDir := t.TempDir()
	writeFiles(t, dataDir, map[string]string{
		"quotes.csv": "quote,speaker\nBe yourself, Oscar Wilde\n\"Line one\nLine two\",Mark Twain\nStay hungry,NULL\n",
	})
	canvas := render.Canvas{Width: 200, Height: 150, Background: color.White, Foreground: color.Black}
	gen := render.NewGenerator(canvas, fonts.NewProvider(nil, fonts.WithLogger(discardLogger())), discardLogger())

	result, err := Execute(Config{DataDir: dataDir, OutputDir: outDir}, gen, discardLogger())
	require.NoError(t, err)

	assert.Equal(t, 3, result.ImagesWritten)
	for i := 1; i <= 3; i++ {
		f, err := os.Open(filepath.Join(outDir, ImageName("quotes", i, "png")))
		require.NoError(t, err)
		cfg, _, err := image.DecodeConfig(f)
		f.Close()
		require.NoError(t, err)
		assert.Equal(t, 200, cfg.Width)
		assert.Equal(t, 150, cfg.Height)
	}
}

func TestImageName(t *testing.T) {
	assert.Equal(t, "quotes_quote_001.png", ImageName("quotes", 1, ""))
	assert.Equal(t, "quotes_quote_042.jpg", ImageName("quotes", 42, ".JPG"))
	assert.Equal(t, "quotes_quote_1000.png", ImageName("quotes", 1000, "png"))
}

func TestAdHoc(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "output")
	gen := &fakeGenerator{}

	path, err := AdHoc(outDir, "png", gen, "  Be yourself; everyone else is already taken.  ", "NULL")
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outDir, "adhoc_Be_yourself__everyon.png"), path)
	assert.FileExists(t, path)
	assert.Equal(t, []quotes.Record{{Text: "Be yourself; everyone else is already taken."}}, gen.seen)
}

func TestAdHoc_Errors(t *testing.T) {
	_, err := AdHoc(t.TempDir(), "png", &fakeGenerator{}, "   ", "")
	assert.ErrorIs(t, err, ErrEmptyQuote)

	gen := &fakeGenerator{failOn: map[string]bool{"boom": true}}
	_, err = AdHoc(t.TempDir(), "png", gen, "boom", "")
	assert.Error(t, err)
}

func TestFingerprints(t *testing.T) {
	white := render.Canvas{Width: 10, Height: 10, Background: color.White, Foreground: color.Black}
	black := render.Canvas{Width: 10, Height: 10, Background: color.Black, Foreground: color.White}
	assert.NotEqual(t, CanvasHash(white), CanvasHash(black))
	assert.Equal(t, CanvasHash(white), CanvasHash(white))

	dir := t.TempDir()
	fontPath := filepath.Join(dir, "A.ttf")
	require.NoError(t, os.WriteFile(fontPath, []byte("one"), 0o644))
	first := FontsHash(&fonts.Set{Quote: []string{fontPath}})
	require.NoError(t, os.WriteFile(fontPath, []byte("two"), 0o644))
	assert.NotEqual(t, first, FontsHash(&fonts.Set{Quote: []string{fontPath}}))
	assert.Equal(t, FontsHash(&fonts.Set{}), FontsHash(&fonts.Set{}))
}
