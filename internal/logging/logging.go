package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/keerthana777z/health-risk-demo/internal/config"
)

// New builds the application logger from config. When a log file is
// configured, output goes to both stderr and the file.
func New(cfg config.LogConfig) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	if cfg.File != "" {
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.WithError(err).Warn("cannot open log file, logging to stderr only")
		} else {
			log.SetOutput(io.MultiWriter(os.Stderr, f))
		}
	}

	return log
}
