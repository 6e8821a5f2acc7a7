package logger

import (
	"io"
	"os"

	"github.com/go-kratos/kratos/v2/log"
)

// Config captures runtime metadata used to annotate logs.
type Config struct {
	Service string
	Version string
	Env     string
	Level   string
}

// New builds a leveled kratos logger writing key/value lines to w.
func New(w io.Writer, cfg Config) log.Logger {
	if w == nil {
		w = os.Stdout
	}
	host, _ := os.Hostname()

	logger := log.With(log.NewStdLogger(w),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
		"service", cfg.Service,
		"version", cfg.Version,
		"env", cfg.Env,
		"host", host,
	)
	return log.NewFilter(logger, log.FilterLevel(log.ParseLevel(cfg.Level)))
}
