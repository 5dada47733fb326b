package logging

import (
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"agentpoker/internal/config"
)

var activeWriter io.Writer = os.Stdout

// Init installs the global zerolog logger per cfg: level, pretty console
// output for local runs, optional sampling, and an optional size-capped
// log file in place of stdout.
func Init(cfg config.LogConfig) {
	level := zerolog.InfoLevel
	if parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(cfg.Level))); err == nil {
		level = parsed
	}

	var output io.Writer = os.Stdout
	if cfg.File != "" {
		w, err := newSizeLimitedWriter(cfg.File, cfg.MaxMB)
		if err != nil {
			log.Error().Err(err).Str("path", cfg.File).Msg("open log file failed; falling back to stdout")
		} else {
			output = w
		}
	}
	activeWriter = output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: output}
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
}

// Writer returns the underlying sink Init configured, for other logging
// front ends (httplog's slog bridge) to share.
func Writer() io.Writer {
	return activeWriter
}
