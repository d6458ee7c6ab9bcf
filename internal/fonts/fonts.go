// Package fonts resolves font files on disk and hands out measurable faces,
// falling back to the embedded Go Regular font whenever a file is missing or
// unusable.
package fonts

import (
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/huugof/quote-images/internal/layout"
)

const DPI = 72

// DefaultName identifies the embedded fallback font.
const DefaultName = "default"

var extensions = []string{".ttf", ".TTF"}

var defaultFont *truetype.Font

func init() {
	var err error
	defaultFont, err = truetype.Parse(goregular.TTF)
	if err != nil {
		panic(fmt.Errorf("parse default font: %w", err))
	}
}

// Set is the outcome of resolving font names against search directories.
// An empty Quote slice or Speaker path means the default font.
type Set struct {
	Quote   []string
	Speaker string
}

// UsesDefault reports whether quote text falls back to the default font.
func (s *Set) UsesDefault() bool {
	return len(s.Quote) == 0
}

// Resolve looks up every quote font name and the speaker font name in the
// search directories, in order. The first directory holding a name wins.
func Resolve(quoteNames []string, speakerName string, searchPaths []string, logger *slog.Logger) *Set {
	if logger == nil {
		logger = slog.Default()
	}
	set := &Set{}
	for _, name := range quoteNames {
		if path := find(name, searchPaths); path != "" {
			set.Quote = append(set.Quote, path)
		}
	}
	if speakerName != "" {
		set.Speaker = find(speakerName, searchPaths)
	}

	if set.UsesDefault() {
		logger.Warn("no decorative fonts found, using default font",
			slog.Any("search_paths", searchPaths))
	} else {
		logger.Info("resolved decorative fonts", slog.Int("count", len(set.Quote)))
	}
	if set.Speaker == "" {
		logger.Debug("speaker font not found, using default font", slog.String("name", speakerName))
	}
	return set
}

func find(name string, searchPaths []string) string {
	for _, dir := range searchPaths {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			continue
		}
		for _, ext := range extensions {
			candidate := filepath.Join(dir, name+ext)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
	}
	return ""
}

// Option configures a Provider.
type Option func(*Provider)

// WithChooser replaces the random pick of a quote font. choose receives the
// number of candidates and returns an index in [0, n).
func WithChooser(choose func(n int) int) Option {
	return func(p *Provider) {
		p.choose = choose
	}
}

// WithLogger sets the logger used for load warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		p.logger = logger
	}
}

type faceKey struct {
	path string
	size float64
}

// Provider turns a resolved Set into faces. It implements layout.FaceSource.
type Provider struct {
	set    *Set
	choose func(n int) int
	logger *slog.Logger

	mu     sync.Mutex
	parsed map[string]*truetype.Font
	failed map[string]error
	faces  map[faceKey]*Face
}

// NewProvider creates a provider for set. A nil set means default fonts only.
func NewProvider(set *Set, opts ...Option) *Provider {
	if set == nil {
		set = &Set{}
	}
	p := &Provider{
		set:    set,
		choose: rand.Intn,
		logger: slog.Default(),
		parsed: map[string]*truetype.Font{},
		failed: map[string]error{},
		faces:  map[faceKey]*Face{},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Set returns the resolved font set.
func (p *Provider) Set() *Set {
	return p.set
}

// QuoteFace picks one of the decorative fonts at random on every call.
func (p *Provider) QuoteFace(size float64) layout.Face {
	if p.set.UsesDefault() {
		return p.Load("", size)
	}
	idx := p.choose(len(p.set.Quote))
	if idx < 0 || idx >= len(p.set.Quote) {
		idx = 0
	}
	return p.Load(p.set.Quote[idx], size)
}

// SpeakerFace always uses the resolved speaker font.
func (p *Provider) SpeakerFace(size float64) layout.Face {
	return p.Load(p.set.Speaker, size)
}

// Load returns a face for the font file at path. An empty path, or a file
// that cannot be read or parsed, yields the default font for this call; the
// path stays in the set. A broken file is read and reported once.
func (p *Provider) Load(path string, size float64) *Face {
	p.mu.Lock()
	defer p.mu.Unlock()

	f, err := p.parse(path)
	if err != nil {
		path = ""
		f = defaultFont
	}

	key := faceKey{path: path, size: size}
	if face, ok := p.faces[key]; ok {
		return face
	}
	face := newFace(f, nameOf(path), size)
	p.faces[key] = face
	return face
}

func (p *Provider) parse(path string) (*truetype.Font, error) {
	if path == "" {
		return defaultFont, nil
	}
	if f, ok := p.parsed[path]; ok {
		return f, nil
	}
	if err, ok := p.failed[path]; ok {
		return nil, err
	}
	f, err := readFont(path)
	if err != nil {
		p.failed[path] = err
		p.logger.Warn("font load failed, using default font",
			slog.String("path", path),
			slog.Any("error", err))
		return nil, err
	}
	p.parsed[path] = f
	return f, nil
}

func readFont(path string) (*truetype.Font, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read font %s: %w", path, err)
	}
	f, err := truetype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse font %s: %w", path, err)
	}
	return f, nil
}

func nameOf(path string) string {
	if path == "" {
		return DefaultName
	}
	base := filepath.Base(path)
	return base[:len(base)-len(filepath.Ext(base))]
}

// Face is one font at one pixel size.
type Face struct {
	Name string
	Size float64
	face font.Face
}

func newFace(f *truetype.Font, name string, size float64) *Face {
	return &Face{
		Name: name,
		Size: size,
		face: truetype.NewFace(f, &truetype.Options{Size: size, DPI: DPI, Hinting: font.HintingFull}),
	}
}

// Measure returns the advance width of text and the distance from the top of
// the ascender line to the lowest inked pixel.
func (f *Face) Measure(text string) (float64, float64) {
	advance := font.MeasureString(f.face, text)
	bounds, _ := font.BoundString(f.face, text)
	descent := math.Max(0, float64(bounds.Max.Y)/64)
	return float64(advance) / 64, f.Ascent() + descent
}

func (f *Face) Ascent() float64 {
	return float64(f.face.Metrics().Ascent) / 64
}

func (f *Face) FontFace() font.Face {
	return f.face
}
