package fonts

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

type Weight int

const (
	Regular Weight = iota
	Bold
)

var (
	parseOnce sync.Once
	parseErr  error
	regular   *opentype.Font
	bold      *opentype.Font
)

func parseFonts() {
	regular, parseErr = opentype.Parse(goregular.TTF)
	if parseErr != nil {
		parseErr = fmt.Errorf("parse regular font: %w", parseErr)
		return
	}
	bold, parseErr = opentype.Parse(gobold.TTF)
	if parseErr != nil {
		parseErr = fmt.Errorf("parse bold font: %w", parseErr)
	}
}

// Face returns a new face of the given weight and pixel size. Faces carry
// glyph buffers and must not be shared between goroutines; the parsed fonts
// behind them are.
func Face(weight Weight, size float64) (font.Face, error) {
	parseOnce.Do(parseFonts)
	if parseErr != nil {
		return nil, parseErr
	}

	src := regular
	if weight == Bold {
		src = bold
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("new face: %w", err)
	}
	return f, nil
}
