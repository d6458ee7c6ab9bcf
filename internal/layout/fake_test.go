package layout

import (
	"unicode/utf8"

	"golang.org/x/image/font"
)

// fakeFace is a monospace face: every rune advances size*0.5 pixels unless
// widths overrides it, and every line is size pixels tall.
type fakeFace struct {
	size   float64
	widths map[rune]float64
}

func (f fakeFace) Measure(text string) (float64, float64) {
	if f.widths == nil {
		return float64(utf8.RuneCountInString(text)) * f.size * 0.5, f.size
	}
	w := 0.0
	for _, r := range text {
		if rw, ok := f.widths[r]; ok {
			w += rw
		} else {
			w += f.widths[0]
		}
	}
	return w, f.size
}

func (f fakeFace) Ascent() float64     { return f.size * 0.8 }
func (f fakeFace) FontFace() font.Face { return nil }

type fakeSource struct {
	quoteSizes   []float64
	speakerSizes []float64
}

func (s *fakeSource) QuoteFace(size float64) Face {
	s.quoteSizes = append(s.quoteSizes, size)
	return fakeFace{size: size}
}

func (s *fakeSource) SpeakerFace(size float64) Face {
	s.speakerSizes = append(s.speakerSizes, size)
	return fakeFace{size: size}
}
