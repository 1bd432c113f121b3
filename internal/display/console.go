// Package display provides a text cursor on top of a pixel display. The
// drawing of glyphs is left to the back-end font library.
package display

import "strings"

// Glyphs draws text in some fixed font.
type Glyphs interface {
	// DrawText draws s with its top-left corner at (x, y) and returns the
	// horizontal advance in pixels.
	DrawText(x, y int16, s string) int16
	// LineHeight is the vertical advance of one text line.
	LineHeight() int16
}

// Canvas is a monochrome pixel buffer.
type Canvas interface {
	SetPixel(x, y int16, on bool)
}

// Console keeps a text cursor. A newline moves the cursor back to column 0
// and down one line.
type Console struct {
	glyphs Glyphs
	x, y   int16
}

func NewConsole(g Glyphs) *Console {
	return &Console{glyphs: g}
}

func (c *Console) SetCursor(x, y int16) {
	c.x, c.y = x, y
}

func (c *Console) Cursor() (x, y int16) {
	return c.x, c.y
}

func (c *Console) Print(s string) {
	for {
		i := strings.IndexByte(s, '\n')
		if i < 0 {
			break
		}
		c.write(s[:i])
		c.x = 0
		c.y += c.glyphs.LineHeight()
		s = s[i+1:]
	}
	c.write(s)
}

func (c *Console) Println(s string) {
	c.Print(s + "\n")
}

func (c *Console) write(s string) {
	if s == "" {
		return
	}
	c.x += c.glyphs.DrawText(c.x, c.y, s)
}

// FillRect sets every pixel of the w×h rectangle at (x, y) to on.
func FillRect(c Canvas, x, y, w, h int16, on bool) {
	for j := y; j < y+h; j++ {
		for i := x; i < x+w; i++ {
			c.SetPixel(i, j, on)
		}
	}
}
