package ddbstore

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"
)

type slogLogger struct {
	l *slog.Logger
}

// NewSlogLogger adapts l for use as the BadgerDB logger.
func NewSlogLogger(l *slog.Logger) badger.Logger {
	return &slogLogger{l: l.With("component", "badger")}
}

func (s *slogLogger) Errorf(format string, args ...any) {
	s.l.Error(message(format, args))
}

func (s *slogLogger) Warningf(format string, args ...any) {
	s.l.Warn(message(format, args))
}

func (s *slogLogger) Infof(format string, args ...any) {
	s.l.Info(message(format, args))
}

func (s *slogLogger) Debugf(format string, args ...any) {
	s.l.Debug(message(format, args))
}

// badger terminates its messages with a newline
func message(format string, args []any) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
