package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/kumbirai/my-kasi-bet/internal/config"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var (
	writerMu sync.RWMutex
	writer   io.Writer = os.Stdout
	closer   io.Closer
)

// Init configures the global zerolog logger. When cfg.File is set, output is
// teed to a rotating file alongside stdout.
func Init(cfg config.LogConfig) error {
	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var sink io.Writer = os.Stdout
	var fileCloser io.Closer
	if cfg.File != "" {
		fw, err := newRotatingWriter(cfg.File, cfg.MaxMB, cfg.MaxBackups)
		if err != nil {
			return err
		}
		sink = io.MultiWriter(os.Stdout, fw)
		fileCloser = fw
	}

	output := sink
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: sink}
	}

	zerolog.SetGlobalLevel(level)
	ctx := zerolog.New(output).With().Timestamp()
	if cfg.Service != "" {
		ctx = ctx.Str("service", cfg.Service)
	}
	logger := ctx.Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger

	writerMu.Lock()
	if closer != nil {
		_ = closer.Close()
	}
	writer = sink
	closer = fileCloser
	writerMu.Unlock()
	return nil
}

// Writer returns the raw sink used by the global logger, for components that
// log through log/slog (HTTP request logs).
func Writer() io.Writer {
	writerMu.RLock()
	defer writerMu.RUnlock()
	return writer
}

func Close() error {
	writerMu.Lock()
	defer writerMu.Unlock()
	if closer == nil {
		return nil
	}
	err := closer.Close()
	closer = nil
	writer = os.Stdout
	return err
}
