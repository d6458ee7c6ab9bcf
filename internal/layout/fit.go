package layout

import "math"

const (
	QuoteFontMax  = 120
	QuoteFontMin  = 20
	QuoteFontStep = 2

	SpeakerFontMin   = 14
	SpeakerFontRatio = 0.4

	// LineSpacing multiplies the height of LineSample to give the quote line pitch.
	LineSpacing = 1.3
	LineSample  = "Ay"
)

// FaceSource hands out faces for the quote and the speaker at a pixel size.
// QuoteFace may return a different font on every call.
type FaceSource interface {
	QuoteFace(size float64) Face
	SpeakerFace(size float64) Face
}

// Layout is the fitted result for one record.
type Layout struct {
	QuoteSize   int
	SpeakerSize int
	Lines       []string
	Quote       Face
	Speaker     Face
	// Steps counts the sizes tried, including the accepted one.
	Steps int
	// Fits is false when even QuoteFontMin overflowed the box.
	Fits bool
}

// SpeakerSizeFor derives the attribution size from the quote size.
func SpeakerSizeFor(quoteSize int) int {
	return max(SpeakerFontMin, int(math.Floor(float64(quoteSize)*SpeakerFontRatio)))
}

// LineHeight is the vertical pitch of one quote line.
func LineHeight(face Face) float64 {
	_, h := face.Measure(LineSample)
	return h * LineSpacing
}

// BlockHeight is the height of the quote lines plus, when speaker is not
// empty, twice the height of the speaker text.
func BlockHeight(quote Face, lineCount int, speakerFace Face, speaker string) float64 {
	total := float64(lineCount) * LineHeight(quote)
	if speaker != "" && speakerFace != nil {
		_, h := speakerFace.Measure(speaker)
		total += 2 * h
	}
	return total
}

// Fit searches from QuoteFontMax down to QuoteFontMin for the first size whose
// wrapped block fits maxWidth x maxHeight. speaker must already be normalised:
// empty means no attribution. When nothing fits the QuoteFontMin layout is
// returned with Fits set to false.
func Fit(src FaceSource, quote, speaker string, maxWidth, maxHeight float64) Layout {
	var lay Layout
	for size := QuoteFontMax; size >= QuoteFontMin; size -= QuoteFontStep {
		quoteFace := src.QuoteFace(float64(size))
		speakerSize := SpeakerSizeFor(size)
		speakerFace := src.SpeakerFace(float64(speakerSize))
		lines := Wrap(quote, quoteFace, maxWidth)

		lay = Layout{
			QuoteSize:   size,
			SpeakerSize: speakerSize,
			Lines:       lines,
			Quote:       quoteFace,
			Speaker:     speakerFace,
			Steps:       lay.Steps + 1,
		}
		if BlockHeight(quoteFace, len(lines), speakerFace, speaker) <= maxHeight {
			lay.Fits = true
			return lay
		}
	}
	return lay
}
