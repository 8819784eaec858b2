// Package tnfslog provides the daemon's leveled, structured logging,
// mirroring the teacher's fs.Logf(subject, format, args...) convention
// (see backend/local/local.go call sites) on top of logrus.
package tnfslog

import (
	"github.com/sirupsen/logrus"
)

// Subject is anything a log line is about — a session, a handle, a path —
// and knows how to describe itself.
type Subject interface {
	String() string
}

var std = logrus.StandardLogger()

// SetLevel adjusts the package-wide log level (wired to the daemon's
// --log-level flag, internal/config).
func SetLevel(level logrus.Level) { std.SetLevel(level) }

// Logf logs at Info level, tagging the line with subject's description.
func Logf(subject Subject, format string, args ...interface{}) {
	std.WithField("subject", subject.String()).Infof(format, args...)
}

// Debugf logs at Debug level.
func Debugf(subject Subject, format string, args ...interface{}) {
	std.WithField("subject", subject.String()).Debugf(format, args...)
}

// Errorf logs at Error level.
func Errorf(subject Subject, format string, args ...interface{}) {
	std.WithField("subject", subject.String()).Errorf(format, args...)
}

// stringSubject adapts a plain string to Subject so call sites that have
// no richer object (e.g. the server's own startup log lines) can still use
// Logf/Debugf/Errorf.
type stringSubject string

func (s stringSubject) String() string { return string(s) }

// Plain wraps s as a Subject.
func Plain(s string) Subject { return stringSubject(s) }
