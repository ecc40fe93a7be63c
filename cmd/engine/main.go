// Command engine is the demo entrypoint: it wires config, the preset
// registry, compositor, arranger, and Maestro scheduler together and
// drains the resulting command queue to a logging stand-in for the
// real-time audio engine (spec §6's "external collaborator").
package main

import (
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"runtime"

	"github.com/cartomix/maestro/internal/arranger"
	"github.com/cartomix/maestro/internal/asyncpool"
	"github.com/cartomix/maestro/internal/automix"
	"github.com/cartomix/maestro/internal/compositor"
	"github.com/cartomix/maestro/internal/config"
	"github.com/cartomix/maestro/internal/engine"
	"github.com/cartomix/maestro/internal/maestro"
	"github.com/cartomix/maestro/internal/progression"
	"github.com/cartomix/maestro/internal/registry"
)

func main() {
	cfg := config.Parse()

	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	if err := os.MkdirAll(cfg.MelodyDir, 0o755); err != nil {
		logger.Error("failed to create melody directory", "path", cfg.MelodyDir, "error", err)
		os.Exit(1)
	}

	reg := registry.New(logger)
	logger.Info("preset registry discovered kinds", "count", len(reg.Names()), "kinds", reg.Names())

	comp, err := compositor.New(cfg.MelodyDir, logger, nil)
	if err != nil {
		logger.Error("failed to load melodies", "dir", cfg.MelodyDir, "error", err)
		os.Exit(1)
	}
	if names := comp.Names(); len(names) > 0 {
		if err := comp.Start(names[0]); err != nil {
			logger.Warn("failed to start initial melody", "error", err)
		}
	} else {
		logger.Warn("no melodies loaded; melodic zones will render silence", "dir", cfg.MelodyDir)
	}

	poolSize := cfg.WorkerPoolSize
	if poolSize <= 0 {
		poolSize = runtime.NumCPU()
	}
	pool := asyncpool.New(poolSize, logger)
	logger.Info("async offload pool ready", "max_concurrent", poolSize)
	_ = pool // reserved for a future offload of harmony.Describe / automix.Autoset (spec §5 "may be dispatched")

	synth := progression.New(cfg.Genre, cfg.Temperature, nil)
	mixer := automix.NewAutoMixer(cfg.SampleRate)
	arr := arranger.New(comp, synth, mixer, cfg.TargetLUFS, logger)

	queue := engine.NewCommandQueue(cfg.CommandQueueCap, logger)
	sched := maestro.New(logger, reg, arr, queue, cfg.BlockBeats, 1)

	sched.EnterZone("ambient", []string{"dual_oscillator_drone", "filtered_noise_bed"}, nil)
	sched.EnterZone("lead", nil, map[string]string{
		"melody": "clipped_sine_lead",
		"bass":   "sample_player_voice",
		"piano":  "fm_chorus_pad",
	})

	go drainQueue(queue, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutting down", "signal", sig)

	sched.LeaveZone("lead")
	sched.LeaveZone("ambient")
}

// drainQueue stands in for the real-time audio engine's consumer side
// (spec §5: "bounded, non-blocking on the audio side"); this demo just
// logs each command rather than rendering audio, since the DSP I/O
// server is outside the core's scope (spec §1).
func drainQueue(queue *engine.CommandQueue, logger *slog.Logger) {
	for {
		cmd, ok := queue.Dequeue()
		if !ok {
			time.Sleep(5 * time.Millisecond)
			continue
		}
		logger.Debug("audio command", "kind", cmd.Kind, "preset", cmd.Preset, "params", cmd.Params)
	}
}
