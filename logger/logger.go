// Package logger wraps logrus behind the minimal interface the scheduler,
// experiments, and swarm packages depend on, so none of them need to import
// logrus directly.
package logger

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Logger is satisfied by *Entry and lets callers that only need formatted
// logging avoid a direct logrus dependency.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// New returns a Logger tagged with component, logging at level (one of
// logrus's level names; invalid names fall back to Info) to stderr in text
// format.
func New(component, level string) Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)

	return log.WithField("component", component)
}
