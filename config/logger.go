package config

import (
	"os"

	"github.com/sirupsen/logrus"
)

func NewLogger(c App) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stdout)
	if c.Env == "dev" {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	} else {
		log.SetFormatter(&logrus.JSONFormatter{})
	}
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}
