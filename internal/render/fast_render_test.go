package render

import (
	"image/color"
	"testing"
)

func TestFastRendererClear(t *testing.T) {
	r := NewFastRenderer(4, 3, nil)
	r.Clear(color.RGBA{10, 20, 30, 255})

	buf := r.Buffer()
	if len(buf) != 4*3*4 {
		t.Fatalf("buffer len %d", len(buf))
	}
	for i := 0; i < len(buf); i += 4 {
		if buf[i] != 10 || buf[i+1] != 20 || buf[i+2] != 30 || buf[i+3] != 255 {
			t.Fatalf("pixel %d = %v", i/4, buf[i:i+4])
		}
	}
}

func TestFastRendererBlendPixel(t *testing.T) {
	tests := []struct {
		name string
		c    color.RGBA
		want uint8
	}{
		{"opaque", color.RGBA{200, 0, 0, 255}, 200},
		{"transparent", color.RGBA{200, 0, 0, 0}, 0},
		{"half", color.RGBA{200, 0, 0, 128}, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewFastRenderer(2, 2, nil)
			r.Clear(color.RGBA{0, 0, 0, 255})
			r.BlendPixel(1, 1, tt.c)

			got := r.Buffer()[(1*2+1)*4]
			if d := int(got) - int(tt.want); d < -1 || d > 1 {
				t.Errorf("red = %d, want ~%d", got, tt.want)
			}
			if r.Buffer()[0] != 0 {
				t.Error("neighbour pixel changed")
			}
		})
	}
}

func TestFastRendererClipping(t *testing.T) {
	r := NewFastRenderer(8, 8, nil)
	white := color.RGBA{255, 255, 255, 255}

	// None of these may panic.
	r.BlendPixel(-1, 0, white)
	r.BlendPixel(8, 8, white)
	r.FillRectBlend(-4, -4, 6, 6, white)
	r.FillRectBlend(100, 100, 5, 5, white)
	r.FillCircleBlend(7, 7, 20, white)
	r.FillCircleBlend(-50, -50, 3, white)
	r.HorizontalLineBlend(10, -10, 3, white)
	r.HorizontalLineBlend(0, 5, 99, white)

	if r.Buffer()[0] != 255 {
		t.Error("clipped rect should still cover the origin")
	}
}

func TestFillCircleBlendShape(t *testing.T) {
	r := NewFastRenderer(21, 21, nil)
	r.Clear(color.RGBA{0, 0, 0, 255})
	r.FillCircleBlend(10, 10, 5, color.RGBA{255, 0, 0, 255})

	at := func(x, y int) uint8 { return r.Buffer()[(y*21+x)*4] }
	if at(10, 10) != 255 || at(14, 10) != 255 || at(10, 6) != 255 {
		t.Error("disc interior not filled")
	}
	if at(16, 10) != 0 || at(14, 14) != 0 {
		t.Error("pixels outside the radius were filled")
	}
}
