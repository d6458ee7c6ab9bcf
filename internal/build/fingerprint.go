package build

import (
	"image/color"

	"github.com/huugof/quote-images/internal/fonts"
	"github.com/huugof/quote-images/internal/render"
	"github.com/huugof/quote-images/internal/util"
)

func CanvasHash(c render.Canvas) string {
	values := []uint32{uint32(c.Width), uint32(c.Height)}
	for _, col := range []color.Color{c.Background, c.Foreground} {
		if col == nil {
			values = append(values, 0, 0, 0, 0)
			continue
		}
		r, g, b, a := col.RGBA()
		values = append(values, r, g, b, a)
	}
	return util.HashValue(values)
}

// FontsHash fingerprints the contents of every resolved font file. Missing
// files hash as their path so the value still changes when a font goes away.
func FontsHash(set *fonts.Set) string {
	parts := []string{}
	for _, path := range append(append([]string{}, set.Quote...), set.Speaker) {
		if path == "" {
			parts = append(parts, fonts.DefaultName)
			continue
		}
		sum, err := util.HashFile(path)
		if err != nil {
			parts = append(parts, path)
			continue
		}
		parts = append(parts, sum)
	}
	return util.HashFields(parts...)
}
