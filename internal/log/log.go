package log

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// LoggerOptions tunes the logger created by New.
type LoggerOptions struct {
	// Verbose enables progress messages. Warnings and errors are always
	// written.
	Verbose bool

	// Prefix identifies the program in every line.
	Prefix string

	// Output defaults to stderr, since stdout carries the plugin
	// response.
	Output io.Writer
}

// New creates a logger writing plain text lines.
func New(options LoggerOptions) *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	if options.Output != nil {
		logger.SetOutput(options.Output)
	}

	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp:       true,
		DisableLevelTruncation: true,
	})

	logger.SetLevel(logrus.WarnLevel)
	if options.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	entry := logrus.NewEntry(logger)
	if options.Prefix != "" {
		entry = entry.WithField("plugin", options.Prefix)
	}

	return entry
}
