// Package logging configures the logrus logger used across ec2ctl.
package logging

import (
	"io"

	log "github.com/sirupsen/logrus"
)

// New returns a logger writing to w at the given level and format ("text" or "json")
func New(w io.Writer, level, format string) (*log.Logger, error) {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		return nil, err
	}

	logger := log.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)

	if format == "json" {
		logger.SetFormatter(&log.JSONFormatter{})
	} else {
		logger.SetFormatter(&log.TextFormatter{
			DisableTimestamp: lvl < log.DebugLevel,
		})
	}

	return logger, nil
}
