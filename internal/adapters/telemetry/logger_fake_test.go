package telemetry_test

import (
	"sync"
)

// recordingLogger is a simple test double for ports.Logger.
type recordingLogger struct {
	mu     sync.Mutex
	debugs []string
	warns  []string
	args   [][]any
}

func (l *recordingLogger) Debug(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.debugs = append(l.debugs, msg)
	l.args = append(l.args, args)
}

func (l *recordingLogger) Info(string, ...any) {}

func (l *recordingLogger) Warn(msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.warns = append(l.warns, msg)
	l.args = append(l.args, args)
}

func (l *recordingLogger) Error(error) {}
