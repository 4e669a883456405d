package clog

import (
	"fmt"
	"io"
	"sync"

	"github.com/apex/log"
)

// Logging contexts used across the service. Each can be given its own output and
// level; anything without a dedicated logger falls back to the global one.
const (
	GlobalCtx   = "global"
	UploadCtx   = "upload"
	ImporterCtx = "importer"
	HTTPCtx     = "http"
)

type ContextLogger struct {
	global  *log.Logger
	loggers sync.Map // ctx name -> *log.Logger
}

func NewContextLogger(w io.WriteCloser) *ContextLogger {
	return &ContextLogger{global: newLogger(w)}
}

func newLogger(w io.WriteCloser) *log.Logger {
	return &log.Logger{Handler: NewHandler(w), Level: log.InfoLevel}
}

// AddLoggingContext gives ctx its own logger writing to w. An existing logger for ctx
// is replaced and its output closed.
func (l *ContextLogger) AddLoggingContext(ctx string, w io.WriteCloser) {
	if old, loaded := l.loggers.Swap(ctx, newLogger(w)); loaded {
		closeLogger(old)
	}
}

func (l *ContextLogger) RemoveLoggingContext(ctx string) {
	if logger, ok := l.loggers.LoadAndDelete(ctx); ok {
		closeLogger(logger)
	}
}

func (l *ContextLogger) SetLevel(ctx string, level log.Level) {
	if logger := l.lookup(ctx); logger != nil {
		logger.Level = level
	}
}

func (l *ContextLogger) SetLevelFromString(ctx, s string) error {
	level, err := log.ParseLevel(s)
	if err != nil {
		return err
	}

	l.SetLevel(ctx, level)
	return nil
}

func (l *ContextLogger) SetOutput(ctx string, w io.WriteCloser) error {
	logger := l.lookup(ctx)
	if logger == nil {
		return fmt.Errorf("no such logging context %s", ctx)
	}

	h, ok := logger.Handler.(*Handler)
	if !ok {
		return fmt.Errorf("logging context %s has no settable output", ctx)
	}

	h.SetOutput(w)
	return nil
}

// UsingCtx returns an entry tagged with ctx, written by the context's own logger when
// one was added and by the global logger otherwise.
func (l *ContextLogger) UsingCtx(ctx string) *log.Entry {
	if logger := l.contextLogger(ctx); logger != nil {
		return logger.WithField("ctx", ctx)
	}

	return l.global.WithField("ctx", ctx)
}

func (l *ContextLogger) Global() *log.Entry {
	return l.UsingCtx(GlobalCtx)
}

func (l *ContextLogger) lookup(ctx string) *log.Logger {
	if ctx == GlobalCtx {
		return l.global
	}

	return l.contextLogger(ctx)
}

func (l *ContextLogger) contextLogger(ctx string) *log.Logger {
	v, ok := l.loggers.Load(ctx)
	if !ok {
		return nil
	}

	logger, _ := v.(*log.Logger)
	return logger
}

func closeLogger(v interface{}) {
	logger, ok := v.(*log.Logger)
	if !ok {
		return
	}

	if h, ok := logger.Handler.(*Handler); ok {
		h.Close()
	}
}
