package sptr

import (
	"io"
	"log/slog"
	"reflect"
)

// Destroyer is implemented by payloads that need to release resources
// when their last owner goes away.
type Destroyer interface {
	Destroy()
}

// logger is the package logger; nil means slog.Default().
var logger *slog.Logger

// SetLogger replaces the package logger. nil restores slog.Default().
func SetLogger(l *slog.Logger) {
	logger = l
}

func log() *slog.Logger {
	if logger != nil {
		return logger
	}
	return slog.Default()
}

// teardown destroys the payload at p. It is handed to the control block
// and runs exactly once, after the strong count reached zero.
//
// The self-reference observer is dropped last so the payload's own hook
// can still see it, expired.
func teardown[T any](p *T) {
	switch v := any(p).(type) {
	case Destroyer:
		v.Destroy()
	case io.Closer:
		if err := v.Close(); err != nil {
			log().Warn("sptr: payload close failed",
				slog.String("type", reflect.TypeFor[*T]().String()),
				slog.Any("error", err))
		}
	}
	if sb, ok := any(p).(selfBinder); ok {
		sb.releaseSelf()
	}
}
