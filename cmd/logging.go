package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// newLogger builds the run logger. A log file gets JSON lines; otherwise
// logs go to stderr, except in the interactive form where they would tear
// the screen and are dropped.
func newLogger(verbose, interactive bool, logFile string) (*logrus.Logger, func() error, error) {
	log := logrus.New()
	log.SetLevel(logrus.WarnLevel)
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	closeLog := func() error { return nil }
	switch {
	case logFile != "":
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		log.SetOutput(f)
		log.SetFormatter(&logrus.JSONFormatter{})
		closeLog = f.Close
	case interactive:
		log.SetOutput(io.Discard)
	default:
		log.SetOutput(os.Stderr)
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	return log, closeLog, nil
}
