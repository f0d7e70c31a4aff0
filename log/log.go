//
// Tencent is pleased to support the open source community by making trpc-agent-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-agent-go is licensed under the Apache License Version 2.0.
//
//

// Package log provides the process-wide logger used by docstudio.
package log

import (
	"context"
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log level constants
const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
	LevelFatal = "fatal"
)

// Output format constants.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var zapLevel = zap.NewAtomicLevelAt(zapcore.InfoLevel)

// Default is the logger behind the package helpers.
// Any value implementing Logger can be assigned, tests usually swap in a stub.
var Default Logger = newSugar(FormatConsole, os.Stdout, 1)

// ContextDefault backs the *Context helpers. It is one caller frame deeper
// than Default because the helpers are function variables.
var ContextDefault Logger = newSugar(FormatConsole, os.Stdout, 2)

func newSugar(format string, w io.Writer, callerSkip int) *zap.SugaredLogger {
	var enc zapcore.Encoder
	if format == FormatJSON {
		cfg := encoderConfig
		cfg.EncodeLevel = zapcore.LowercaseLevelEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		enc = zapcore.NewConsoleEncoder(encoderConfig)
	}
	return zap.New(
		zapcore.NewCore(enc, zapcore.AddSync(w), zapLevel),
		zap.AddCaller(),
		zap.AddCallerSkip(callerSkip),
	).Sugar()
}

// Configure rebuilds Default and ContextDefault with the given level,
// format ("console" or "json") and destination. A nil writer means stdout.
func Configure(level, format string, w io.Writer) {
	if w == nil {
		w = os.Stdout
	}
	SetLevel(level)
	Default = newSugar(format, w, 1)
	ContextDefault = newSugar(format, w, 2)
}

// SetLevel sets the log level to the specified level.
// Unknown levels fall back to info.
func SetLevel(level string) {
	switch level {
	case LevelDebug:
		zapLevel.SetLevel(zapcore.DebugLevel)
	case LevelInfo:
		zapLevel.SetLevel(zapcore.InfoLevel)
	case LevelWarn:
		zapLevel.SetLevel(zapcore.WarnLevel)
	case LevelError:
		zapLevel.SetLevel(zapcore.ErrorLevel)
	case LevelFatal:
		zapLevel.SetLevel(zapcore.FatalLevel)
	default:
		zapLevel.SetLevel(zapcore.InfoLevel)
	}
}

var encoderConfig = zapcore.EncoderConfig{
	TimeKey:        "ts",
	LevelKey:       "lvl",
	NameKey:        "name",
	CallerKey:      "caller",
	MessageKey:     "message",
	StacktraceKey:  "stacktrace",
	LineEnding:     zapcore.DefaultLineEnding,
	EncodeLevel:    zapcore.CapitalColorLevelEncoder,
	EncodeTime:     zapcore.RFC3339TimeEncoder,
	EncodeDuration: zapcore.SecondsDurationEncoder,
	EncodeCaller:   zapcore.ShortCallerEncoder,
}

// Logger is what the package helpers write to. *zap.SugaredLogger
// satisfies it.
type Logger interface {
	Debugf(format string, args ...any)
	Info(args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// Debugf logs at debug level in the manner of fmt.Printf.
func Debugf(format string, args ...any) {
	Default.Debugf(format, args...)
}

// Info logs at info level in the manner of fmt.Print.
func Info(args ...any) {
	Default.Info(args...)
}

// Infof logs at info level in the manner of fmt.Printf.
func Infof(format string, args ...any) {
	Default.Infof(format, args...)
}

// Warnf logs at warn level in the manner of fmt.Printf.
func Warnf(format string, args ...any) {
	Default.Warnf(format, args...)
}

// Errorf logs at error level in the manner of fmt.Printf.
func Errorf(format string, args ...any) {
	Default.Errorf(format, args...)
}

// The *Context helpers are variables so callers can route them through a
// context aware logger. The context is currently unused by the default.
var (
	DebugfContext = func(_ context.Context, format string, args ...any) {
		ContextDefault.Debugf(format, args...)
	}
	InfofContext = func(_ context.Context, format string, args ...any) {
		ContextDefault.Infof(format, args...)
	}
	WarnfContext = func(_ context.Context, format string, args ...any) {
		ContextDefault.Warnf(format, args...)
	}
	ErrorfContext = func(_ context.Context, format string, args ...any) {
		ContextDefault.Errorf(format, args...)
	}
)
