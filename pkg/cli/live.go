package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/urfave/cli/v3"

	"github.com/aura-assist/aura/pkg/audio"
	"github.com/aura-assist/aura/pkg/capture"
	"github.com/aura-assist/aura/pkg/config"
	"github.com/aura-assist/aura/pkg/haptics"
	"github.com/aura-assist/aura/pkg/live"
	"github.com/aura-assist/aura/pkg/memory"
	"github.com/aura-assist/aura/pkg/metrics"
	"github.com/aura-assist/aura/pkg/playback"
	"github.com/aura-assist/aura/pkg/session"
	"github.com/aura-assist/aura/pkg/tools"
)

func liveCommand() *cli.Command {
	var noCamera, noMic bool
	var recordPath string
	return &cli.Command{
		Name:  "live",
		Usage: "Start a live assistance session",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "no-camera",
				Usage:       "Disable the camera stream",
				Destination: &noCamera,
			},
			&cli.BoolFlag{
				Name:        "no-mic",
				Usage:       "Disable the microphone stream",
				Destination: &noMic,
			},
			&cli.StringFlag{
				Name:        "record",
				Usage:       "Dump assistant speech to a WAV file at this path",
				Destination: &recordPath,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			return runLive(ctx, cfg, logger, liveOptions{
				noCamera:   noCamera,
				noMic:      noMic,
				recordPath: recordPath,
			})
		},
	}
}

type liveOptions struct {
	noCamera   bool
	noMic      bool
	recordPath string
}

// recordingPlayer tees assistant speech into an in-memory PCM buffer and
// writes it out as a WAV file on close.
type recordingPlayer struct {
	session.Player

	path string
	log  *slog.Logger

	mu  sync.Mutex
	pcm []byte
}

func (r *recordingPlayer) Enqueue(buf audio.Buffer) float64 {
	r.mu.Lock()
	r.pcm = append(r.pcm, audio.Float32ToPCM16(buf.Samples)...)
	r.mu.Unlock()
	return r.Player.Enqueue(buf)
}

func (r *recordingPlayer) Close() {
	r.Player.Close()
	r.mu.Lock()
	pcm := r.pcm
	r.pcm = nil
	r.mu.Unlock()
	if len(pcm) == 0 {
		return
	}
	wav := audio.PCMToWAV(pcm, audio.PlaybackSampleRate, 16, 1)
	if err := os.WriteFile(r.path, wav, 0o644); err != nil {
		r.log.Error("writing speech recording failed", "path", r.path, "error", err)
		return
	}
	r.log.Info("assistant speech recorded", "path", r.path)
}

func runLive(ctx context.Context, cfg config.Config, log *slog.Logger, opts liveOptions) error {
	m := metrics.New("aura")
	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", m.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil {
				log.Error("metrics server failed", "error", err)
			}
		}()
	}

	store := memory.NewStore()
	if err := store.LoadFile(cfg.DataPath); err != nil {
		return err
	}
	store.SetOnChange(func(snap memory.Snapshot) {
		if err := memory.SaveSnapshot(cfg.DataPath, snap); err != nil {
			log.Error("persisting memory failed", "error", err)
		}
	})

	device, err := playback.OpenDevice(audio.PlaybackSampleRate, 1)
	if err != nil {
		return err
	}
	var player session.Player = playback.NewScheduler(nil, device, m)
	if opts.recordPath != "" {
		player = &recordingPlayer{Player: player, path: opts.recordPath, log: log}
	}

	controller := session.NewController(session.Options{
		Dial: func(ctx context.Context, instruction string) (session.Transport, error) {
			return live.Connect(ctx, live.Config{
				APIKey:         cfg.APIKey,
				Model:          cfg.Model,
				Instruction:    instruction,
				Tools:          tools.Declarations(),
				VoiceName:      cfg.Voice,
				Endpoint:       cfg.Endpoint,
				ConnectTimeout: cfg.ConnectTimeout,
				Logger:         log,
				Metrics:        m,
			})
		},
		NewCapture: func(sender live.Sender, onError func(error)) (session.Capture, error) {
			pipeOpts := capture.PipelineOptions{
				FrameInterval: cfg.FrameInterval(),
				Logger:        log,
				Metrics:       m,
				OnError:       onError,
			}
			if !opts.noMic {
				mic, err := capture.OpenMic()
				if err != nil {
					return nil, err
				}
				pipeOpts.Mic = mic
			}
			if !opts.noCamera {
				camera, err := capture.OpenCamera(capture.CameraOptions{
					Device:    cfg.CameraDevice,
					FrameRate: cfg.FrameRate,
					Quality:   cfg.FrameQuality,
				})
				if err != nil {
					if pipeOpts.Mic != nil {
						_ = pipeOpts.Mic.Close()
					}
					return nil, err
				}
				pipeOpts.Camera = camera
			}
			return capture.NewPipeline(sender, pipeOpts), nil
		},
		Store:   store,
		Player:  player,
		Haptics: haptics.LogDriver{Logger: log},
		Dialer:  tools.ExecDialer{},
		OnCaption: func(text string) {
			if text != "" {
				log.Info("caption", "text", text)
			}
		},
		Logger:  log,
		Metrics: m,
	})

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-sigCtx.Done()
		controller.Close()
	}()

	log.Info("starting live session", "model", cfg.Model)
	if err := controller.Run(sigCtx); err != nil {
		log.Error("session ended", "message", controller.UserMessage(), "error", err)
		return err
	}
	log.Info("session closed")
	return nil
}
