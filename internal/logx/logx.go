// Package logx is the ambient logging surface every other package in
// this module writes through. The adapter's own "Logging" collaborator
// is a non-goal (spec.md §1), but a complete, runnable repo still needs
// one; this gives github.com/sirupsen/logrus the call sites the
// teacher's go.mod declared it for but never used.
package logx

import "github.com/sirupsen/logrus"

// Logger is the interface every package in this module depends on,
// rather than *logrus.Logger directly, so tests can swap in a recorder.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Error(msg string, fields ...any)
}

// logrusLogger adapts *logrus.Logger to Logger. fields are passed as
// alternating key/value pairs, matching the key-value style used
// throughout this module's call sites.
type logrusLogger struct {
	l *logrus.Logger
}

// New returns a Logger backed by logrus, writing text-formatted entries
// at the given level ("debug", "info", "error", ...).
func New(level string) Logger {
	l := logrus.New()
	if lvl, err := logrus.ParseLevel(level); err == nil {
		l.SetLevel(lvl)
	} else {
		l.SetLevel(logrus.InfoLevel)
	}
	return &logrusLogger{l: l}
}

func (g *logrusLogger) Debug(msg string, fields ...any) {
	g.l.WithFields(toFields(fields)).Debug(msg)
}

func (g *logrusLogger) Info(msg string, fields ...any) {
	g.l.WithFields(toFields(fields)).Info(msg)
}

func (g *logrusLogger) Error(msg string, fields ...any) {
	g.l.WithFields(toFields(fields)).Error(msg)
}

func toFields(kv []any) logrus.Fields {
	f := make(logrus.Fields, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		f[key] = kv[i+1]
	}
	return f
}

// SetLevel changes the adapter's active log level at runtime, backing
// the control-plane's "set log level" operation (spec.md §4.8,
// CTL_set_debug_level in the original source).
func (g *logrusLogger) SetLevel(level int) {
	switch {
	case level <= 0:
		g.l.SetLevel(logrus.ErrorLevel)
	case level == 1:
		g.l.SetLevel(logrus.InfoLevel)
	default:
		g.l.SetLevel(logrus.DebugLevel)
	}
}

// LevelSetter is implemented by Loggers that support runtime level
// changes (the concrete logrus-backed Logger does).
type LevelSetter interface {
	SetLevel(level int)
}

var _ LevelSetter = (*logrusLogger)(nil)
