package invoice

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	"image/png"

	"github.com/johnfercher/maroto/v2"
	imagecomp "github.com/johnfercher/maroto/v2/pkg/components/image"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/extension"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// PageFormat is the printable area one page image is fitted into.
type PageFormat struct {
	Size     pagesize.Type
	MarginMM float64
	WidthMM  float64 // content width
	HeightMM float64 // image row height, within the content height
}

// A4 fits each page image into 190 × 250 mm.
var A4 = PageFormat{
	Size:     pagesize.A4,
	MarginMM: 10,
	WidthMM:  190,
	HeightMM: 250,
}

// PageHeight is the slice height in px for an image imageWidth px wide.
func (f PageFormat) PageHeight(imageWidth int) int {
	return int(float64(imageWidth)*f.HeightMM/f.WidthMM + 0.5)
}

// WritePDF cuts img into page slices at Offsets and assembles them, one
// full-width image per page.
func WritePDF(img image.Image, format PageFormat) ([]byte, error) {
	b := img.Bounds()
	pageH := format.PageHeight(b.Dx())
	offsets := Offsets(b.Dy(), pageH)
	if len(offsets) == 0 {
		return nil, fmt.Errorf("invoice: empty image")
	}

	cfg := config.NewBuilder().
		WithPageSize(format.Size).
		WithLeftMargin(format.MarginMM).
		WithTopMargin(format.MarginMM).
		WithRightMargin(format.MarginMM).
		Build()
	m := maroto.New(cfg)

	rows := make([]core.Row, 0, len(offsets))
	for _, off := range offsets {
		data, err := pageSlice(img, off, pageH)
		if err != nil {
			return nil, err
		}
		rows = append(rows, imagecomp.NewFromBytesRow(format.HeightMM, data, extension.Png, props.Rect{
			Center:  true,
			Percent: 100,
		}))
	}
	m.AddRows(rows...)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}
	return doc.GetBytes(), nil
}

// pageSlice copies rows [top, top+height) of img onto a white page. The last
// page is padded so every page has the same scale.
func pageSlice(img image.Image, top, height int) ([]byte, error) {
	b := img.Bounds()
	page := image.NewRGBA(image.Rect(0, 0, b.Dx(), height))
	draw.Draw(page, page.Bounds(), image.White, image.Point{}, draw.Src)
	draw.Draw(page, page.Bounds(), img, image.Point{X: b.Min.X, Y: b.Min.Y + top}, draw.Src)

	var buf bytes.Buffer
	if err := png.Encode(&buf, page); err != nil {
		return nil, fmt.Errorf("encode page: %w", err)
	}
	return buf.Bytes(), nil
}
