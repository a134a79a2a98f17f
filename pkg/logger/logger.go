// Package logger provides opinionated logging capabilities for entropy
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger returns a console logger writing to stdout.
func NewLogger(debug bool) *zap.Logger {
	return newLogger(os.Stdout, debug, zapcore.CapitalColorLevelEncoder)
}

// NewLoggerTo returns an uncoloured console logger writing to w. The terminal
// client uses this to keep log lines off the screen it draws on.
func NewLoggerTo(w io.Writer, debug bool) *zap.Logger {
	return newLogger(w, debug, zapcore.CapitalLevelEncoder)
}

func newLogger(w io.Writer, debug bool, levelEncoder zapcore.LevelEncoder) *zap.Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "time"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = levelEncoder

	level := zap.InfoLevel
	if debug {
		level = zap.DebugLevel
	}

	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderConfig),
		zapcore.AddSync(w),
		level,
	)

	return zap.New(core, zap.AddCaller())
}

// Truncate shortens s for log previews, flattening newlines.
func Truncate(s string, maxLen int) string {
	out := make([]rune, 0, maxLen)
	for _, r := range s {
		if len(out) == maxLen {
			return string(out) + "..."
		}
		if r == '\n' {
			r = ' '
		}
		out = append(out, r)
	}
	return string(out)
}
