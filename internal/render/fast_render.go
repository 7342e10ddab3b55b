package render

import (
	"image/color"
	"math"
)

// FastRenderer draws simple primitives straight into an RGBA pixel buffer.
// This bypasses gg.Context for the shapes drawn thousands of times per frame
// (particle discs, full-screen tints). The destination is assumed opaque, so
// blended pixels are written with alpha 255.
type FastRenderer struct {
	buffer []byte
	width  int
	height int
	stride int // bytes per row (width * 4 for RGBA)
}

// NewFastRenderer wraps buffer, or allocates one if nil.
func NewFastRenderer(width, height int, buffer []byte) *FastRenderer {
	if buffer == nil {
		buffer = make([]byte, width*height*4)
	}
	return &FastRenderer{
		buffer: buffer,
		width:  width,
		height: height,
		stride: width * 4,
	}
}

// Buffer returns the underlying pixel buffer
func (r *FastRenderer) Buffer() []byte {
	return r.buffer
}

// Clear fills the entire buffer with a solid color
func (r *FastRenderer) Clear(c color.RGBA) {
	for i := 0; i+3 < len(r.buffer); i += 4 {
		r.buffer[i] = c.R
		r.buffer[i+1] = c.G
		r.buffer[i+2] = c.B
		r.buffer[i+3] = c.A
	}
}

// blend mixes c over the pixel at idx: result = src * srcA + dst * (1 - srcA)
func (r *FastRenderer) blend(idx int, c color.RGBA, srcA, invA float64) {
	r.buffer[idx] = uint8(float64(c.R)*srcA + float64(r.buffer[idx])*invA)
	r.buffer[idx+1] = uint8(float64(c.G)*srcA + float64(r.buffer[idx+1])*invA)
	r.buffer[idx+2] = uint8(float64(c.B)*srcA + float64(r.buffer[idx+2])*invA)
	r.buffer[idx+3] = 255
}

// BlendPixel sets a pixel with alpha blending and bounds checking
func (r *FastRenderer) BlendPixel(x, y int, c color.RGBA) {
	if x < 0 || x >= r.width || y < 0 || y >= r.height || c.A == 0 {
		return
	}
	idx := y*r.stride + x*4
	if c.A == 255 {
		r.buffer[idx] = c.R
		r.buffer[idx+1] = c.G
		r.buffer[idx+2] = c.B
		r.buffer[idx+3] = 255
		return
	}
	srcA := float64(c.A) / 255.0
	r.blend(idx, c, srcA, 1-srcA)
}

// FillRectBlend fills a rectangle with alpha blending, clipped to the buffer
func (r *FastRenderer) FillRectBlend(x, y, w, h int, c color.RGBA) {
	if c.A == 0 {
		return
	}

	x1 := max(0, x)
	y1 := max(0, y)
	x2 := min(r.width, x+w)
	y2 := min(r.height, y+h)
	if x1 >= x2 || y1 >= y2 {
		return
	}

	srcA := float64(c.A) / 255.0
	invA := 1.0 - srcA
	for py := y1; py < y2; py++ {
		rowStart := py * r.stride
		for px := x1; px < x2; px++ {
			r.blend(rowStart+px*4, c, srcA, invA)
		}
	}
}

// FillCircleBlend draws a filled, alpha-blended disc
func (r *FastRenderer) FillCircleBlend(cx, cy int, radius float64, c color.RGBA) {
	if c.A == 0 || radius <= 0 {
		return
	}

	rad := int(radius + 0.5)
	radSq := radius * radius
	srcA := float64(c.A) / 255.0
	invA := 1.0 - srcA

	y1 := max(0, cy-rad)
	y2 := min(r.height, cy+rad+1)

	for py := y1; py < y2; py++ {
		dy := float64(py - cy)
		dySq := dy * dy
		if dySq > radSq {
			continue
		}
		xExtent := math.Sqrt(radSq - dySq)
		x1 := max(0, cx-int(xExtent+0.5))
		x2 := min(r.width, cx+int(xExtent+0.5)+1)

		rowStart := py * r.stride
		for px := x1; px < x2; px++ {
			dx := float64(px - cx)
			if dx*dx+dySq <= radSq {
				r.blend(rowStart+px*4, c, srcA, invA)
			}
		}
	}
}

// HorizontalLineBlend draws a one-pixel blended horizontal line
func (r *FastRenderer) HorizontalLineBlend(x1, x2, y int, c color.RGBA) {
	if y < 0 || y >= r.height {
		return
	}
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	r.FillRectBlend(x1, y, x2-x1+1, 1, c)
}
