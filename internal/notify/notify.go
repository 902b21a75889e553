// Package notify is the transient user-message surface: toasts raised
// by cart and checkout events. Callers fire and forget.
package notify

import (
	"log/slog"
	"time"
)

type Severity string

const (
	Success Severity = "success"
	Error   Severity = "error"
	Info    Severity = "info"
)

// DefaultDuration is how long a toast stays up when the caller does
// not care.
const DefaultDuration = 3 * time.Second

// Notifier displays a message to the shopper. No return value; a
// notifier must never block the caller.
type Notifier interface {
	Notify(message string, severity Severity, duration time.Duration)
}

// Logger is a Notifier that only records messages, for headless runs
// and tests.
type Logger struct {
	Log *slog.Logger
}

func (l Logger) Notify(message string, severity Severity, duration time.Duration) {
	l.Log.Info("toast", "message", message, "severity", string(severity), "duration", duration)
}

// Func adapts a function to the Notifier interface.
type Func func(message string, severity Severity, duration time.Duration)

func (f Func) Notify(message string, severity Severity, duration time.Duration) {
	f(message, severity, duration)
}
