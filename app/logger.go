package app

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// InitLogger configures logrus with optional file output. Logs go to stderr
// by default so they never mix with the report on stdout.
func InitLogger(logfile, level string) error {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
		DisableQuote:  true,
		PadLevelText:  true,
	})
	logrus.SetOutput(os.Stderr)

	if level != "" {
		lvl, err := logrus.ParseLevel(level)
		if err != nil {
			return fmt.Errorf("invalid log level %q: %w", level, err)
		}
		logrus.SetLevel(lvl)
	}

	if logfile != "" {
		file, err := os.OpenFile(logfile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err == nil {
			logrus.SetOutput(file)
		} else {
			logrus.Warn("Failed to open log file, logging to stderr")
		}
	}
	return nil
}

// detachStderrLogs discards log output that would go to stderr, such as while
// the interactive view owns the terminal. A configured log file keeps
// receiving entries. The returned func restores the previous output.
func detachStderrLogs() (restore func()) {
	logger := logrus.StandardLogger()
	prev := logger.Out
	if prev == os.Stderr {
		logger.SetOutput(io.Discard)
	}
	return func() { logger.SetOutput(prev) }
}
