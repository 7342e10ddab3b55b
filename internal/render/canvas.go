package render

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"sync"

	"fish-hunt/internal/game"
	"fish-hunt/internal/vmath"

	"github.com/fogleman/gg"
	"github.com/go-gl/mathgl/mgl64"
)

// ErrBadSize is returned for a canvas with a non-positive dimension.
var ErrBadSize = errors.New("render: canvas size must be positive")

// Scenery layout in world units.
const (
	groundNear  = 5.0    // x of the ground/water edge nearest the eye
	groundFar   = -400.0 // x of the horizon edge
	groundWidth = 400.0  // y half-extent
	fishLength  = 1.6
	fishHeight  = 0.6
	barrelLen   = 1.2
)

var (
	skyTop     = color.RGBA{96, 160, 220, 255}
	skyHorizon = color.RGBA{200, 228, 245, 255}
	sandColor  = color.NRGBA{222, 196, 140, 255}
	waterColor = color.NRGBA{30, 96, 160, 170}
	rippleTint = color.NRGBA{220, 240, 255, 70}
	fishColor  = color.NRGBA{240, 120, 40, 255}
	gunColor   = color.NRGBA{40, 36, 32, 255}
	signPost   = vmath.Vec3{-4, -5, 0}
)

// Canvas is a software game.Renderer. Draw calls land in a back buffer; the
// completed frame is copied to a front buffer at EndFrame so readers on other
// goroutines never see a half-drawn frame.
type Canvas struct {
	width  int
	height int

	img  *image.RGBA
	dc   *gg.Context
	fast *FastRenderer
	sky  []byte // pre-rendered background, copied in at BeginFrame

	cam  game.CameraState
	view vmath.Camera

	faces Faces

	frameMu sync.RWMutex
	front   []byte
	frames  uint64
}

// NewCanvas creates a canvas of the given size. fontPath may be empty.
func NewCanvas(width, height int, fontPath string) (*Canvas, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrBadSize
	}

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	c := &Canvas{
		width:  width,
		height: height,
		img:    img,
		dc:     gg.NewContextForRGBA(img),
		fast:   NewFastRenderer(width, height, img.Pix),
		front:  make([]byte, len(img.Pix)),
		faces:  LoadFaces(fontPath, float64(height)/30, float64(height)/9),
	}
	c.sky = c.renderSky()
	c.SetCamera(game.CameraState{Eye: game.Eye, Target: game.FadeInTarget, Aspect: c.Aspect(), Fov: game.FovFadeIn})
	return c, nil
}

// renderSky builds the vertical sky gradient once.
func (c *Canvas) renderSky() []byte {
	sky := make([]byte, len(c.img.Pix))
	for y := 0; y < c.height; y++ {
		t := float64(y) / float64(c.height)
		px := color.RGBA{
			lerp8(skyTop.R, skyHorizon.R, t),
			lerp8(skyTop.G, skyHorizon.G, t),
			lerp8(skyTop.B, skyHorizon.B, t),
			255,
		}
		row := y * c.width * 4
		for x := 0; x < c.width; x++ {
			i := row + x*4
			sky[i], sky[i+1], sky[i+2], sky[i+3] = px.R, px.G, px.B, px.A
		}
	}
	return sky
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.height }

// Aspect returns width / height.
func (c *Canvas) Aspect() float64 { return float64(c.width) / float64(c.height) }

// BeginFrame clears the back buffer to the sky.
func (c *Canvas) BeginFrame() {
	copy(c.img.Pix, c.sky)
}

// EndFrame publishes the back buffer.
func (c *Canvas) EndFrame() {
	c.frameMu.Lock()
	copy(c.front, c.img.Pix)
	c.frames++
	c.frameMu.Unlock()
}

// Frames returns how many frames were published.
func (c *Canvas) Frames() uint64 {
	c.frameMu.RLock()
	defer c.frameMu.RUnlock()
	return c.frames
}

// Pixels returns the live back buffer (RGBA, row-major). Only valid on the
// frame goroutine between EndFrame and the next BeginFrame.
func (c *Canvas) Pixels() []byte {
	return c.img.Pix
}

// Image returns a copy of the last published frame.
func (c *Canvas) Image() *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, c.width, c.height))
	c.frameMu.RLock()
	copy(out.Pix, c.front)
	c.frameMu.RUnlock()
	return out
}

// EncodePNG writes the last published frame as PNG.
func (c *Canvas) EncodePNG(w io.Writer) error {
	return png.Encode(w, c.Image())
}

// SetCamera places the view for subsequent draw calls.
func (c *Canvas) SetCamera(cam game.CameraState) {
	if cam.Aspect <= 0 {
		cam.Aspect = c.Aspect()
	}
	c.cam = cam
	c.view = cam.Camera()
}

// project maps a world point to pixels. depth is the distance from the eye.
func (c *Canvas) project(p vmath.Vec3) (x, y, depth float64, ok bool) {
	ndc, ok := c.view.Project(p)
	if !ok || ndc[2] < -1 || ndc[2] > 1 {
		return 0, 0, 0, false
	}
	x, y = c.ndcToPixel(ndc[0], ndc[1])
	return x, y, p.Sub(c.cam.Eye).Len(), true
}

func (c *Canvas) ndcToPixel(x, y float64) (float64, float64) {
	return (x + 1) / 2 * float64(c.width), (1 - y) / 2 * float64(c.height)
}

// pixelsPerUnit is the on-screen size of one world unit at depth.
func (c *Canvas) pixelsPerUnit(depth float64) float64 {
	if depth <= 0 {
		return 0
	}
	return float64(c.height) / (2 * math.Tan(mgl64.DegToRad(c.cam.Fov)/2) * depth)
}

// fillPlane fills the horizontal quad at height z between groundNear and groundFar.
func (c *Canvas) fillPlane(z float64, col color.NRGBA) {
	corners := [4]vmath.Vec3{
		{groundNear, -groundWidth, z},
		{groundNear, groundWidth, z},
		{groundFar, groundWidth, z},
		{groundFar, -groundWidth, z},
	}
	n := 0
	for _, p := range corners {
		x, y, _, ok := c.project(p)
		if !ok {
			continue
		}
		if n == 0 {
			c.dc.MoveTo(x, y)
		} else {
			c.dc.LineTo(x, y)
		}
		n++
	}
	if n < 3 {
		c.dc.ClearPath()
		return
	}
	c.dc.ClosePath()
	c.dc.SetColor(col)
	c.dc.Fill()
}

// DrawMesh draws a stylised stand-in for the named model.
func (c *Canvas) DrawMesh(mesh game.Mesh, pos vmath.Vec3, rot vmath.Quat, alpha float64) {
	if alpha <= 0 {
		return
	}
	switch mesh {
	case game.MeshSand:
		c.fillPlane(0, withAlpha(sandColor, alpha))
	case game.MeshStart:
		c.drawStartButton(alpha)
	case game.MeshSign:
		c.drawSign(alpha)
	case game.MeshFish:
		c.drawFish(pos, rot, alpha)
	case game.MeshShotgun:
		c.drawShotgun(pos, rot, alpha)
	}
}

func (c *Canvas) drawStartButton(alpha float64) {
	x0, y0 := c.ndcToPixel(game.StartRect.X0, game.StartRect.Y1)
	x1, y1 := c.ndcToPixel(game.StartRect.X1, game.StartRect.Y0)
	w, h := x1-x0, y1-y0

	c.dc.DrawRoundedRectangle(x0, y0, w, h, h/4)
	c.dc.SetRGBA(0.1, 0.35, 0.55, 0.85*alpha)
	c.dc.Fill()

	c.dc.SetFontFace(c.faces.Small)
	c.dc.SetRGBA(1, 1, 1, alpha)
	c.dc.DrawStringAnchored("START", x0+w/2, y0+h/2, 0.5, 0.35)
}

func (c *Canvas) drawSign(alpha float64) {
	bx, by, depth, okBase := c.project(signPost)
	tx, ty, _, okTop := c.project(signPost.Add(vmath.Vec3{0, 0, 2.5}))
	if !okBase || !okTop {
		return
	}
	ppu := c.pixelsPerUnit(depth)

	c.dc.SetLineWidth(math.Max(1, 0.15*ppu))
	c.dc.SetRGBA255(110, 80, 50, int(255*alpha))
	c.dc.DrawLine(bx, by, tx, ty)
	c.dc.Stroke()

	w, h := 3*ppu, 1.2*ppu
	c.dc.DrawRectangle(tx-w/2, ty-h, w, h)
	c.dc.SetRGBA255(150, 110, 70, int(255*alpha))
	c.dc.Fill()

	c.dc.SetFontFace(c.faces.Small)
	c.dc.SetRGBA(1, 1, 1, alpha)
	c.dc.DrawStringAnchored("FISH HUNT", tx, ty-h/2, 0.5, 0.35)
}

func (c *Canvas) drawFish(pos vmath.Vec3, rot vmath.Quat, alpha float64) {
	x, y, depth, ok := c.project(pos)
	if !ok {
		return
	}
	ppu := c.pixelsPerUnit(depth)

	// Heading: the body axis projected onto the screen.
	angle := 0.0
	if hx, hy, _, ok := c.project(pos.Add(vmath.Rotate(rot, vmath.Vec3{1, 0, 0}))); ok {
		angle = math.Atan2(hy-y, hx-x)
	}

	rx := math.Max(2, fishLength/2*ppu)
	ry := math.Max(1, fishHeight/2*ppu)

	c.dc.Push()
	c.dc.Translate(x, y)
	c.dc.Rotate(angle)
	c.dc.SetColor(withAlpha(fishColor, alpha))
	c.dc.DrawEllipse(0, 0, rx, ry)
	c.dc.Fill()
	c.dc.MoveTo(-rx*0.8, 0)
	c.dc.LineTo(-rx*1.4, -ry)
	c.dc.LineTo(-rx*1.4, ry)
	c.dc.ClosePath()
	c.dc.Fill()
	c.dc.Pop()
}

func (c *Canvas) drawShotgun(pos vmath.Vec3, rot vmath.Quat, alpha float64) {
	forward := vmath.Rotate(rot, game.GunForward)
	bx, by, depth, okBase := c.project(pos)
	mx, my, _, okMuzzle := c.project(pos.Add(forward.Mul(barrelLen)))
	if !okBase || !okMuzzle {
		return
	}

	c.dc.SetLineCapRound()
	c.dc.SetLineWidth(math.Max(2, 0.08*c.pixelsPerUnit(depth)))
	c.dc.SetColor(withAlpha(gunColor, alpha))
	c.dc.DrawLine(bx, by, mx, my)
	c.dc.Stroke()
}

// DrawParticles draws each instance as a blended disc on the fast path.
func (c *Canvas) DrawParticles(instances []game.Particle) {
	for i := range instances {
		p := &instances[i]
		x, y, depth, ok := c.project(p.Position)
		if !ok {
			continue
		}
		radius := math.Max(1, p.Scale*c.pixelsPerUnit(depth))
		col := color.RGBA{
			R: unit8(p.Color[0]),
			G: unit8(p.Color[1]),
			B: unit8(p.Color[2]),
			A: 220,
		}
		c.fast.FillCircleBlend(int(x), int(y), radius, col)
	}
}

// DrawWater draws the translucent water plane at level with moving ripples.
func (c *Canvas) DrawWater(t, level float64) {
	c.fillPlane(level, waterColor)

	// Ripple bands drift toward the eye.
	const spacing = 6.0
	offset := math.Mod(t*1.5, spacing)
	ripple := color.RGBA{rippleTint.R, rippleTint.G, rippleTint.B, rippleTint.A}
	for k := 0; k < 12; k++ {
		wx := groundNear - 2 - float64(k)*spacing + offset
		_, y, _, ok := c.project(vmath.Vec3{wx, 0, level})
		if !ok {
			continue
		}
		c.fast.HorizontalLineBlend(0, c.width-1, int(y), ripple)
	}
}

// DrawFullscreenTint blends c over the whole frame.
func (c *Canvas) DrawFullscreenTint(col game.Color) {
	if col.A <= 0 {
		return
	}
	c.fast.FillRectBlend(0, 0, c.width, c.height, color.RGBA{
		R: unit8(col.R),
		G: unit8(col.G),
		B: unit8(col.B),
		A: unit8(col.A),
	})
}

// DrawOverlayImage draws a text banner into r (NDC).
func (c *Canvas) DrawOverlayImage(o game.Overlay, r game.Rect) {
	x0, y0 := c.ndcToPixel(r.X0, r.Y1)
	x1, y1 := c.ndcToPixel(r.X1, r.Y0)
	w, h := x1-x0, y1-y0

	c.dc.DrawRoundedRectangle(x0, y0, w, h, h/6)
	c.dc.SetRGBA(0, 0, 0, 0.55)
	c.dc.Fill()

	c.dc.SetFontFace(c.faces.Large)
	c.dc.SetRGBA(1, 1, 1, 1)
	c.dc.DrawStringAnchored(overlayText(o), x0+w/2, y0+h/2, 0.5, 0.35)
}

func overlayText(o game.Overlay) string {
	switch o {
	case game.OverlayPressAnyKey:
		return "PRESS ANY KEY"
	case game.OverlayGameOver:
		return "GAME OVER"
	case game.OverlayYouWin:
		return "YOU WIN"
	default:
		return ""
	}
}

func withAlpha(c color.NRGBA, alpha float64) color.NRGBA {
	c.A = uint8(float64(c.A) * math.Min(1, alpha))
	return c
}

// unit8 maps [0, 1] to [0, 255], clamping.
func unit8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 255
	}
	return uint8(v*255 + 0.5)
}

func lerp8(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}
