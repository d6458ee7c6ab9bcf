package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fogleman/gg"

	"github.com/huugof/quote-images/internal/layout"
	"github.com/huugof/quote-images/internal/logging"
	"github.com/huugof/quote-images/internal/quotes"
)

const (
	MarginXRatio = 0.02
	MarginYRatio = 0.05

	SpeakerPrefix = "— "
	// SpeakerGap is the extra space above the speaker line, in speaker line heights.
	SpeakerGap = 0.5
)

type Canvas struct {
	Width      int
	Height     int
	Background color.Color
	Foreground color.Color
}

func (c Canvas) ContentBox() (float64, float64) {
	marginX := int(float64(c.Width) * MarginXRatio)
	marginY := int(float64(c.Height) * MarginYRatio)
	return float64(c.Width - 2*marginX), float64(c.Height - 2*marginY)
}

func DisplayText(text string, hasSpeaker bool) string {
	if hasSpeaker && !strings.HasPrefix(text, quotes.QuoteMark) {
		return quotes.QuoteMark + text + quotes.QuoteMark
	}
	return text
}

type PlacedLine struct {
	Text  string
	X     float64
	Y     float64
	Width float64
	Face  layout.Face
}

type Placement struct {
	StartY      float64
	BlockHeight float64
	Lines       []PlacedLine
	Speaker     *PlacedLine
}

// Place centres every line horizontally and the whole block, quote lines and
// speaker together, vertically.
func Place(canvas Canvas, lay layout.Layout, speaker string) Placement {
	width := float64(canvas.Width)
	block := layout.BlockHeight(lay.Quote, len(lay.Lines), lay.Speaker, speaker)
	pl := Placement{
		StartY:      (float64(canvas.Height) - block) / 2,
		BlockHeight: block,
	}

	lineHeight := layout.LineHeight(lay.Quote)
	y := pl.StartY
	for _, line := range lay.Lines {
		w, _ := lay.Quote.Measure(line)
		pl.Lines = append(pl.Lines, PlacedLine{Text: line, X: (width - w) / 2, Y: y, Width: w, Face: lay.Quote})
		y += lineHeight
	}

	if speaker != "" {
		_, speakerHeight := lay.Speaker.Measure(speaker)
		y += speakerHeight * SpeakerGap
		text := SpeakerPrefix + speaker
		w, _ := lay.Speaker.Measure(text)
		pl.Speaker = &PlacedLine{Text: text, X: (width - w) / 2, Y: y, Width: w, Face: lay.Speaker}
	}
	return pl
}

type Generator struct {
	canvas Canvas
	faces  layout.FaceSource
	logger *slog.Logger
}

func NewGenerator(canvas Canvas, faces layout.FaceSource, logger *slog.Logger) *Generator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Generator{canvas: canvas, faces: faces, logger: logger}
}

func (g *Generator) Canvas() Canvas {
	return g.canvas
}

func (g *Generator) Layout(rec quotes.Record) layout.Layout {
	maxWidth, maxHeight := g.canvas.ContentBox()
	return layout.Fit(g.faces, DisplayText(rec.Text, rec.HasSpeaker()), rec.Speaker, maxWidth, maxHeight)
}

func (g *Generator) Generate(rec quotes.Record, outputPath string) (image.Image, error) {
	lay := g.Layout(rec)
	g.logger.Log(context.Background(), logging.LevelTrace, "fitted layout",
		slog.Int("steps", lay.Steps),
		slog.Int("quote_size", lay.QuoteSize),
		slog.Any("lines", lay.Lines))
	if !lay.Fits {
		g.logger.Debug("quote overflows content box at minimum size",
			slog.Int("size", lay.QuoteSize),
			slog.Int("lines", len(lay.Lines)))
	}

	img, err := Draw(g.canvas, Place(g.canvas, lay, rec.Speaker))
	if err != nil {
		return nil, err
	}

	if outputPath != "" {
		if err := Save(img, outputPath); err != nil {
			return nil, err
		}
		g.logger.Info("saved image",
			slog.String("path", outputPath),
			slog.Int("quote_size", lay.QuoteSize),
			slog.Int("speaker_size", lay.SpeakerSize))
	}
	return img, nil
}

func Draw(canvas Canvas, pl Placement) (image.Image, error) {
	if canvas.Width <= 0 || canvas.Height <= 0 {
		return nil, fmt.Errorf("invalid canvas size %dx%d", canvas.Width, canvas.Height)
	}
	dc := gg.NewContext(canvas.Width, canvas.Height)
	dc.SetColor(orDefault(canvas.Background, color.White))
	dc.Clear()
	dc.SetColor(orDefault(canvas.Foreground, color.Black))

	lines := pl.Lines
	if pl.Speaker != nil {
		lines = append(lines[:len(lines):len(lines)], *pl.Speaker)
	}
	for _, line := range lines {
		if line.Text == "" {
			continue
		}
		dc.SetFontFace(line.Face.FontFace())
		dc.DrawString(line.Text, line.X, line.Y+line.Face.Ascent())
	}
	return dc.Image(), nil
}

func orDefault(c, fallback color.Color) color.Color {
	if c == nil {
		return fallback
	}
	return c
}

// Save encodes img to path, choosing the encoder from the extension. Nothing
// is written when encoding fails, so an existing file survives.
func Save(img image.Image, path string) error {
	var buf bytes.Buffer
	if err := Encode(&buf, img, filepath.Ext(path)); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}
