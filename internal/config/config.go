// Package config holds the core's runtime configuration: the handful of
// knobs the engine actually needs (spec §10.3), parsed once by
// cmd/engine via flag, matching the teacher's config.Config + Parse()
// shape. No network port, no auth, no data directory — the core
// persists nothing (spec §6).
package config

import (
	"flag"
	"os"

	"github.com/cartomix/maestro/internal/arranger"
	"github.com/cartomix/maestro/internal/automix"
)

// Config is the set of values every core package's constructor accepts
// explicitly; packages never read flags or the environment themselves.
type Config struct {
	SampleRate      int     // audio sample rate, Hz
	BlockSize       int     // DSP render block size, samples
	TargetLUFS      float64 // automix target loudness
	BlockBeats      float64 // maestro scheduler quantum, beats
	MelodyDir       string  // directory of JSONC melody files (internal/compositor)
	Genre           string  // progression.Synth genre template
	Temperature     float64 // progression.Synth Markov temperature [0,1]
	WorkerPoolSize  int     // internal/asyncpool concurrent offload cap; <=0 means NumCPU
	LogLevel        string  // debug, info, warn, error
	CommandQueueCap int     // internal/engine.CommandQueue capacity
}

// Parse reads command-line flags into a Config. cmd/engine is the only
// caller; every other package takes a Config (or narrower) through its
// constructor (spec §10.3).
func Parse() *Config {
	cfg := &Config{}

	flag.IntVar(&cfg.SampleRate, "sample-rate", 48000, "audio sample rate in Hz")
	flag.IntVar(&cfg.BlockSize, "block-size", 512, "DSP render block size in samples")
	flag.Float64Var(&cfg.TargetLUFS, "target-lufs", automix.DefaultTargetLUFS, "auto-mixer target integrated loudness")
	flag.Float64Var(&cfg.BlockBeats, "block-beats", arranger.DefaultBlockBeats, "scheduler quantum in beats")
	flag.StringVar(&cfg.MelodyDir, "melody-dir", defaultMelodyDir(), "directory of JSONC melody files")
	flag.StringVar(&cfg.Genre, "genre", "pop", "progression genre template (pop, rock, blues, jazz, classical, funk)")
	flag.Float64Var(&cfg.Temperature, "temperature", 0.3, "progression Markov-fallback temperature [0,1]")
	flag.IntVar(&cfg.WorkerPoolSize, "worker-pool-size", 0, "max concurrent offloaded analysis/mix tasks (0 = NumCPU)")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "log level (debug, info, warn, error)")
	flag.IntVar(&cfg.CommandQueueCap, "command-queue-capacity", 256, "bounded audio command queue capacity")

	flag.Parse()
	return cfg
}

func defaultMelodyDir() string {
	if dir := os.Getenv("MAESTRO_MELODY_DIR"); dir != "" {
		return dir
	}
	return "./melodies"
}
