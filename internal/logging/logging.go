package logging

import (
	"os"

	"github.com/funnytourism/tourism-api/internal/config"
	"github.com/sirupsen/logrus"
)

// Setup configures the global logrus logger.
func Setup(cfg config.LogConfig) {
	logrus.SetOutput(os.Stdout)
	if cfg.Format == "text" {
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		logrus.WithField("level", cfg.Level).Warn("unknown log level, using info")
		level = logrus.InfoLevel
	}
	logrus.SetLevel(level)
}
