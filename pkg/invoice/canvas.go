// Package invoice rasterizes invoice documents and assembles them into
// paginated PDF files.
package invoice

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"strings"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// Align is the horizontal alignment of text.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

// Font sizes in logical points.
const (
	SizeSmall  = 11
	SizeNormal = 13
	SizeLarge  = 18
	SizeTitle  = 26
)

var (
	ColorText  = color.RGBA{0x1f, 0x29, 0x37, 0xff}
	ColorMuted = color.RGBA{0x6b, 0x72, 0x80, 0xff}
	ColorRule  = color.RGBA{0xd1, 0xd5, 0xdb, 0xff}
	ColorBand  = color.RGBA{0xf3, 0xf4, 0xf6, 0xff}
)

// Column is one cell of a Row, sized as a fraction of the content width.
type Column struct {
	Width float64
	Align Align
}

type op func(dst *image.RGBA)

// Canvas lays out a document top to bottom. Drawing is recorded and replayed
// onto an image of the final height by Image.
type Canvas struct {
	width  int // logical px
	scale  float64
	margin int

	y     int // logical px
	align Align
	bold  bool
	size  float64
	color color.Color

	ops   []op
	faces map[faceKey]font.Face
}

// NewCanvas creates a canvas of the given logical width, rendered at scale.
func NewCanvas(width int, scale float64) *Canvas {
	if width <= 0 {
		width = 800
	}
	if scale <= 0 {
		scale = 1
	}
	return &Canvas{
		width:  width,
		scale:  scale,
		margin: 40,
		y:      40,
		size:   SizeNormal,
		color:  ColorText,
		faces:  map[faceKey]font.Face{},
	}
}

// SetAlign sets text alignment for following lines.
func (c *Canvas) SetAlign(a Align) *Canvas {
	c.align = a
	return c
}

// SetBold enables or disables bold text.
func (c *Canvas) SetBold(on bool) *Canvas {
	c.bold = on
	return c
}

// SetFontSize sets the text size in logical points.
func (c *Canvas) SetFontSize(size float64) *Canvas {
	c.size = size
	return c
}

// SetColor sets the text color.
func (c *Canvas) SetColor(col color.Color) *Canvas {
	c.color = col
	return c
}

// Text writes s, wrapping at the content width.
func (c *Canvas) Text(s string) *Canvas {
	face := c.face()
	for _, line := range wrap(face, s, c.px(c.contentWidth())) {
		c.line(face, line, c.margin, c.contentWidth(), c.align)
	}
	return c
}

// TextF writes a formatted line.
func (c *Canvas) TextF(format string, args ...any) *Canvas {
	return c.Text(fmt.Sprintf(format, args...))
}

// KeyValue prints key on the left and value on the right of one line.
func (c *Canvas) KeyValue(key, value string) *Canvas {
	face := c.face()
	c.draw(face, key, c.margin, c.contentWidth(), AlignLeft)
	c.draw(face, value, c.margin, c.contentWidth(), AlignRight)
	c.y += c.lineHeight(face)
	return c
}

// Row prints one table row; each value is clipped to its column.
func (c *Canvas) Row(cols []Column, values ...string) *Canvas {
	face := c.face()
	x := c.margin
	for i, col := range cols {
		w := int(col.Width * float64(c.contentWidth()))
		if i < len(values) {
			c.draw(face, clip(face, values[i], c.px(w-8)), x+4, w-8, col.Align)
		}
		x += w
	}
	c.y += c.lineHeight(face)
	return c
}

// Band fills a full-width background strip of height h at the cursor.
func (c *Canvas) Band(h int, col color.Color) *Canvas {
	c.rect(c.margin, c.y, c.contentWidth(), h, col)
	return c
}

// Separator draws a thin full-width rule.
func (c *Canvas) Separator() *Canvas {
	c.y += 6
	c.rect(c.margin, c.y, c.contentWidth(), 1, ColorRule)
	c.y += 8
	return c
}

// Gap advances the cursor by h logical px.
func (c *Canvas) Gap(h int) *Canvas {
	c.y += h
	return c
}

// Height returns the document height in logical px.
func (c *Canvas) Height() int {
	return c.y + c.margin
}

// Image renders the document on white.
func (c *Canvas) Image() *image.RGBA {
	w := c.px(c.width)
	h := c.px(c.Height())
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)
	for _, o := range c.ops {
		o(img)
	}
	return img
}

// PNG encodes the rendered document.
func (c *Canvas) PNG(w io.Writer) error {
	return png.Encode(w, c.Image())
}

func (c *Canvas) contentWidth() int {
	return c.width - 2*c.margin
}

func (c *Canvas) px(v int) int {
	return int(float64(v)*c.scale + 0.5)
}

func (c *Canvas) lineHeight(face font.Face) int {
	return int(float64(face.Metrics().Height.Ceil())/c.scale+0.5) + 4
}

func (c *Canvas) line(face font.Face, s string, x, w int, a Align) {
	c.draw(face, s, x, w, a)
	c.y += c.lineHeight(face)
}

func (c *Canvas) draw(face font.Face, s string, x, w int, a Align) {
	if s == "" {
		return
	}
	src := image.NewUniform(c.color)
	left := c.px(x)
	width := c.px(w)
	baseline := c.px(c.y) + face.Metrics().Ascent.Ceil()

	c.ops = append(c.ops, func(dst *image.RGBA) {
		d := &font.Drawer{Dst: dst, Src: src, Face: face}
		adv := d.MeasureString(s).Ceil()
		dx := left
		switch a {
		case AlignCenter:
			dx = left + (width-adv)/2
		case AlignRight:
			dx = left + width - adv
		}
		d.Dot = fixed.P(dx, baseline)
		d.DrawString(s)
	})
}

func (c *Canvas) rect(x, y, w, h int, col color.Color) {
	r := image.Rect(c.px(x), c.px(y), c.px(x+w), c.px(y+h))
	src := image.NewUniform(col)
	c.ops = append(c.ops, func(dst *image.RGBA) {
		draw.Draw(dst, r, src, image.Point{}, draw.Over)
	})
}

// face returns a face of the current style. Faces are not safe for
// concurrent use, so each canvas keeps its own.
func (c *Canvas) face() font.Face {
	key := faceKey{bold: c.bold, size: c.size * c.scale}
	if f, ok := c.faces[key]; ok {
		return f
	}
	f := newFace(key)
	c.faces[key] = f
	return f
}

type faceKey struct {
	bold bool
	size float64
}

var (
	fontOnce  sync.Once
	regular   *opentype.Font
	boldFont  *opentype.Font
	fontError error
)

func newFace(key faceKey) font.Face {
	fontOnce.Do(func() {
		regular, fontError = opentype.Parse(goregular.TTF)
		if fontError == nil {
			boldFont, fontError = opentype.Parse(gobold.TTF)
		}
	})
	if fontError != nil {
		panic(fmt.Sprintf("invoice: embedded fonts: %v", fontError))
	}

	src := regular
	if key.bold {
		src = boldFont
	}
	f, err := opentype.NewFace(src, &opentype.FaceOptions{Size: key.size, DPI: 72, Hinting: font.HintingFull})
	if err != nil {
		panic(fmt.Sprintf("invoice: font face: %v", err))
	}
	return f
}

// wrap breaks s into lines no wider than max px.
func wrap(face font.Face, s string, max int) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		cur := words[0]
		for _, w := range words[1:] {
			next := cur + " " + w
			if font.MeasureString(face, next).Ceil() > max {
				lines = append(lines, cur)
				cur = w
				continue
			}
			cur = next
		}
		lines = append(lines, cur)
	}
	return lines
}

func clip(face font.Face, s string, max int) string {
	if font.MeasureString(face, s).Ceil() <= max {
		return s
	}
	r := []rune(s)
	for len(r) > 0 && font.MeasureString(face, string(r)+"...").Ceil() > max {
		r = r[:len(r)-1]
	}
	return string(r) + "..."
}
