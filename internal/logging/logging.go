// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package logging builds the diagnostic logger shared by the CLI and the
// search client. User-facing status lines are not logged; commands write
// them directly to their output writer.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New returns a logger writing to stderr. format "json" selects the JSON
// formatter; anything else uses text. verbose lowers the level to debug.
func New(verbose bool, format string) *logrus.Entry {
	return NewWithWriter(os.Stderr, verbose, format)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, verbose bool, format string) *logrus.Entry {
	l := logrus.New()
	l.Out = w

	if format == "json" {
		l.Formatter = &logrus.JSONFormatter{}
	} else {
		l.Formatter = &logrus.TextFormatter{DisableTimestamp: true}
	}

	l.Level = logrus.WarnLevel
	if verbose {
		l.Level = logrus.DebugLevel
	}

	return l.WithField("app", "pubmed-query")
}

// Discard returns a logger that drops everything. Packages use it when the
// caller passes no logger.
func Discard() *logrus.Entry {
	l := logrus.New()
	l.Out = io.Discard
	return logrus.NewEntry(l)
}
