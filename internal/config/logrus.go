package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

var logg *logrus.Logger

func init() {
	logg = logrus.New()
	logg.SetFormatter(&logrus.JSONFormatter{})
	logg.SetOutput(os.Stdout)
	logg.SetLevel(parseLevel(os.Getenv("LOG_LEVEL")))
}

// Logger returns the process-wide structured logger.
func Logger() *logrus.Logger {
	return logg
}

func parseLevel(v string) logrus.Level {
	if v == "" {
		return logrus.InfoLevel
	}
	lvl, err := logrus.ParseLevel(v)
	if err != nil {
		return logrus.InfoLevel
	}
	return lvl
}
