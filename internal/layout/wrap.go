package layout

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/image/font"
)

const (
	MinCharsPerLine = 10
	ShrinkFactor    = 0.9
	// EstimateSample is the glyph whose width stands in for an average character.
	EstimateSample = "x"
)

// Face measures text set in one font at one pixel size.
type Face interface {
	// Measure returns the advance width of text and the height of its bounding
	// box measured from the top of the ascender line.
	Measure(text string) (width, height float64)
	Ascent() float64
	FontFace() font.Face
}

// Wrap breaks text into lines no wider than maxWidth when measured with face.
// Explicit newlines always start a new paragraph and blank paragraphs yield one
// empty line. Words are never split, so a single long word may overflow.
func Wrap(text string, face Face, maxWidth float64) []string {
	lines := []string{}
	for _, paragraph := range strings.Split(text, "\n") {
		if strings.TrimSpace(paragraph) == "" {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, wrapParagraph(paragraph, face, maxWidth)...)
	}
	return lines
}

func wrapParagraph(paragraph string, face Face, maxWidth float64) []string {
	width := charsPerLine(face, maxWidth)
	wrapped := greedyWrap(paragraph, width)
	for _, line := range wrapped {
		w, _ := face.Measure(line)
		if w > maxWidth && utf8.RuneCountInString(line) > MinCharsPerLine {
			return greedyWrap(paragraph, int(float64(width)*ShrinkFactor))
		}
	}
	return wrapped
}

func charsPerLine(face Face, maxWidth float64) int {
	charWidth, _ := face.Measure(EstimateSample)
	if charWidth <= 0 {
		return MinCharsPerLine
	}
	return max(MinCharsPerLine, int(maxWidth/charWidth))
}

// greedyWrap packs whitespace-separated words into lines of at most width
// runes. Words longer than width get a line of their own.
func greedyWrap(paragraph string, width int) []string {
	width = max(width, 1)
	words := strings.Fields(paragraph)
	lines := []string{}
	var current strings.Builder
	currentLen := 0
	for _, word := range words {
		wordLen := utf8.RuneCountInString(word)
		if currentLen > 0 && currentLen+1+wordLen > width {
			lines = append(lines, current.String())
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(word)
		currentLen += wordLen
	}
	if currentLen > 0 {
		lines = append(lines, current.String())
	}
	return lines
}
