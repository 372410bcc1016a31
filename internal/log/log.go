package log

import (
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelError
	LevelNone
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelError:
		return "ERROR"
	case LevelNone:
		return "NONE"
	default:
		return "UNKNOWN"
	}
}

func LevelFromString(s string) Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return LevelDebug
	case "INFO":
		return LevelInfo
	case "ERROR":
		return LevelError
	case "NONE":
		return LevelNone
	default:
		return LevelDebug
	}
}

// Logger is a leveled printf-style logger backed by zap. Components receive
// it by injection so tests can point it at a buffer or silence it entirely.
type Logger struct {
	sugar *zap.SugaredLogger
	level Level
}

func New(out io.Writer, level Level) *Logger {
	cfg := zap.NewDevelopmentEncoderConfig()
	cfg.TimeKey = "ts"
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(cfg),
		zapcore.AddSync(out),
		zapcore.DebugLevel,
	)
	return &Logger{
		sugar: zap.New(core).Sugar(),
		level: level,
	}
}

func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.level <= LevelDebug {
		l.sugar.Debugf(format, v...)
	}
}

func (l *Logger) Infof(format string, v ...interface{}) {
	if l.level <= LevelInfo {
		l.sugar.Infof(format, v...)
	}
}

func (l *Logger) Warnf(format string, v ...interface{}) {
	if l.level <= LevelInfo {
		l.sugar.Warnf(format, v...)
	}
}

func (l *Logger) Errorf(format string, v ...interface{}) {
	if l.level <= LevelError {
		l.sugar.Errorf(format, v...)
	}
}

func (l *Logger) SetLevel(level Level) {
	l.level = level
}

func (l *Logger) Level() Level {
	return l.level
}
