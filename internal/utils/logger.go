package utils

import (
	"log/slog"
	"os"
)

type Logger struct {
	*slog.Logger
}

// NewLogger builds a JSON slog logger at the given level ("debug", "info",
// "warn", "error"); unknown levels fall back to info.
func NewLogger(level string) *Logger {
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(level)); err != nil {
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return &Logger{Logger: slog.New(handler)}
}

func (l *Logger) Fatal(msg string, args ...any) {
	l.Error(msg, args...)
	os.Exit(1)
}
