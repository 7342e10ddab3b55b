// Command player runs the game in a desktop window.
package main

import (
	"errors"
	"log"
	"os"
	"strings"

	"fish-hunt/internal/audio"
	"fish-hunt/internal/config"
	"fish-hunt/internal/game"
	"fish-hunt/internal/render"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/joho/godotenv"
)

// mouseButtons maps ebiten buttons to the director's button keys.
var mouseButtons = []struct {
	button ebiten.MouseButton
	key    game.Key
}{
	{ebiten.MouseButtonLeft, game.Mouse1},
	{ebiten.MouseButtonRight, game.Mouse2},
	{ebiten.MouseButtonMiddle, game.Mouse3},
}

// errQuit ends RunGame when Escape is pressed on the title scene.
var errQuit = errors.New("quit")

// windowGame adapts the director to ebiten's Update/Draw/Layout loop.
type windowGame struct {
	engine *game.Engine
	canvas *render.Canvas

	width, height    int
	cursorX, cursorY int
	keys             []ebiten.Key
}

// Update polls edges from ebiten into the director, then runs one frame.
func (g *windowGame) Update() error {
	g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
	for _, k := range g.keys {
		if k == ebiten.KeyEscape && g.engine.Scene() == game.ScenePressAnyKey {
			return errQuit
		}
		g.engine.PushInput(game.InputEvent{Action: game.ActionPress, Key: keyName(k)})
	}
	g.keys = inpututil.AppendJustReleasedKeys(g.keys[:0])
	for _, k := range g.keys {
		g.engine.PushInput(game.InputEvent{Action: game.ActionRelease, Key: keyName(k)})
	}

	for _, m := range mouseButtons {
		if inpututil.IsMouseButtonJustPressed(m.button) {
			g.engine.PushInput(game.InputEvent{Action: game.ActionPress, Key: m.key})
		}
		if inpututil.IsMouseButtonJustReleased(m.button) {
			g.engine.PushInput(game.InputEvent{Action: game.ActionRelease, Key: m.key})
		}
	}

	if x, y := ebiten.CursorPosition(); x != g.cursorX || y != g.cursorY {
		g.cursorX, g.cursorY = x, y
		nx, ny := game.PixelToNDC(float64(x), float64(y), g.width, g.height)
		g.engine.PushInput(game.InputEvent{Action: game.ActionMove, X: nx, Y: ny})
	}

	g.engine.RunFrame()
	return nil
}

// Draw presents the frame rendered by the last Update.
func (g *windowGame) Draw(screen *ebiten.Image) {
	screen.WritePixels(g.canvas.Pixels())
}

func (g *windowGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.width, g.height
}

func keyName(k ebiten.Key) game.Key {
	return game.Key(strings.ToLower(k.String()))
}

func main() {
	if err := godotenv.Load("../.env"); err != nil {
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	}

	appConfig := config.Load()
	videoCfg := appConfig.Video
	audioCfg := appConfig.Audio

	canvas, err := render.NewCanvas(videoCfg.Width, videoCfg.Height, os.Getenv("FONT_PATH"))
	if err != nil {
		log.Fatalf("❌ Canvas: %v", err)
	}

	var sink game.Audio = game.SilentAudio{}
	if audioCfg.Enabled {
		lib := audio.LoadLibrary(audioCfg.CueDir, game.AllCues(), audioCfg.SampleRate)
		if p, err := audio.NewPlayer(lib, audioCfg.Volume); err != nil {
			log.Printf("⚠️ Audio disabled: %v", err)
		} else {
			defer p.Close()
			sink = p
		}
	}

	engine := game.NewEngine(game.EngineConfig{
		Aspect: videoCfg.Aspect(),
		Limits: game.ResourceLimits{
			MaxParticles: appConfig.Limits.MaxParticles,
			MaxSmoke:     appConfig.Limits.MaxSmoke,
		},
		Step: game.NewStepPolicy(appConfig.Sim.FixedStepHz),
		Seed: appConfig.Sim.Seed,
	}, game.NewSystemTime(), canvas, sink)

	if err := engine.StartEventLog(appConfig.EventLog.Path); err != nil {
		log.Printf("⚠️ Event log disabled: %v", err)
	}
	defer engine.StopEventLog()

	ebiten.SetWindowSize(videoCfg.Width, videoCfg.Height)
	ebiten.SetWindowTitle("Fish Hunt")
	ebiten.SetTPS(videoCfg.FPS)

	g := &windowGame{
		engine:  engine,
		canvas:  canvas,
		width:   videoCfg.Width,
		height:  videoCfg.Height,
		cursorX: -1,
		cursorY: -1,
	}

	log.Printf("🎮 Window %dx%d @ %d FPS", videoCfg.Width, videoCfg.Height, videoCfg.FPS)
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, errQuit) {
		log.Printf("❌ %v", err)
	}
	log.Println("👋 Goodbye!")
}
