package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"fish-hunt/internal/api"
	"fish-hunt/internal/audio"
	"fish-hunt/internal/capture"
	"fish-hunt/internal/config"
	"fish-hunt/internal/game"
	"fish-hunt/internal/render"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env file from parent directory
	if err := godotenv.Load("../.env"); err != nil {
		// Try current directory as fallback
		if err := godotenv.Load(".env"); err != nil {
			log.Println("💡 No .env file found, using environment variables only")
		}
	} else {
		log.Println("✅ Loaded environment from ../.env")
	}

	log.Println("🎮 ================================")
	log.Println("🎮  FISH HUNT - HEADLESS DRIVER")
	log.Println("🎮 ================================")

	appConfig := config.Load()
	videoCfg := appConfig.Video
	audioCfg := appConfig.Audio
	serverCfg := appConfig.Server

	log.Printf("🎮 Config: %dx%d @ %d FPS, step %s", videoCfg.Width, videoCfg.Height, videoCfg.FPS, stepName(appConfig.Sim.FixedStepHz))

	canvas, err := render.NewCanvas(videoCfg.Width, videoCfg.Height, os.Getenv("FONT_PATH"))
	if err != nil {
		log.Fatalf("❌ Canvas: %v", err)
	}

	// Audio: live speaker output plus, when recording, a mixer feeding ffmpeg.
	var sink game.Audio = game.SilentAudio{}
	var mixer *audio.Mixer
	var player *audio.Player
	if audioCfg.Enabled {
		lib := audio.LoadLibrary(audioCfg.CueDir, game.AllCues(), audioCfg.SampleRate)
		outputs := audio.Tee{}

		if p, err := audio.NewPlayer(lib, audioCfg.Volume); err != nil {
			log.Printf("⚠️ Speaker output disabled: %v", err)
		} else {
			player = p
			outputs = append(outputs, player)
		}
		if appConfig.Record.Path != "" {
			mixer = audio.NewMixer(lib, audioCfg.Volume, videoCfg.FPS)
			outputs = append(outputs, mixer)
		}
		if len(outputs) > 0 {
			sink = outputs
		}
	} else {
		log.Println("🔇 Audio disabled")
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
	} else if appConfig.EventLog.Path != "" {
		log.Printf("📝 Event log: %s", appConfig.EventLog.Path)
	}

	var recorder *capture.Recorder
	if appConfig.Record.Path != "" {
		var src capture.AudioSource
		if mixer != nil {
			src = mixer
		}
		recorder, err = capture.NewRecorder(capture.Options{
			Path:       appConfig.Record.Path,
			Width:      videoCfg.Width,
			Height:     videoCfg.Height,
			FPS:        videoCfg.FPS,
			Bitrate:    appConfig.Record.Bitrate,
			Buffer:     appConfig.Record.Buffer,
			SampleRate: audioCfg.SampleRate,
		}, src)
		if err != nil {
			log.Printf("⚠️ Recording disabled: %v", err)
			recorder = nil
		}
	}

	engine.SetCallbacks(
		func(from, to game.SceneKind) {
			api.ObserveTransition(from, to)
		},
		func(d time.Duration, snap *game.FrameSnapshot) {
			api.ObserveFrame(d, snap)
			if recorder != nil {
				// The frame goroutine owns the back buffer, which now holds the presented frame.
				recorder.SubmitFrame(canvas.Pixels())
			}
		},
		api.ObserveEvent,
	)

	debugSrv := api.StartDebugServer(api.ObservabilityConfig{
		Enabled:       appConfig.Debug.Enabled,
		ListenAddr:    appConfig.Debug.ListenAddr,
		BasicAuthUser: appConfig.Debug.User,
		BasicAuthPass: appConfig.Debug.Pass,
	})

	serverOpts := api.ServerConfig{
		Engine:      engine,
		Frames:      canvas,
		CORSOrigins: serverCfg.CORSOrigins,
		InputToken:  serverCfg.InputToken,
	}
	if recorder != nil {
		serverOpts.Recorder = recorder
	}
	server := api.NewServer(serverOpts)
	if serverCfg.InputToken != "" {
		log.Println("🔐 Remote input requires INPUT_TOKEN")
	}

	engine.Start(videoCfg.FPS)

	go func() {
		addr := ":" + strconv.Itoa(serverCfg.Port)
		if err := server.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("✅ Server ready! Press Ctrl+C to stop.")
	<-quit

	log.Println("🛑 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️ API shutdown: %v", err)
	}
	engine.Stop()
	if recorder != nil {
		recorder.Stop()
	}
	if player != nil {
		player.Close()
	}
	engine.StopEventLog()
	if debugSrv != nil {
		debugSrv.Shutdown(ctx)
	}
	log.Println("👋 Goodbye!")
}

func stepName(hz int) string {
	if hz <= 0 {
		return "per-frame"
	}
	return strconv.Itoa(hz) + " Hz fixed"
}
