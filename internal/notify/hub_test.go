package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newStubbedHub returns a hub whose dismiss timers are collected
// instead of scheduled, so tests control time.
func newStubbedHub() (*Hub, *[]func()) {
	h := NewHub()
	var pending []func()
	h.after = func(_ time.Duration, fn func()) {
		pending = append(pending, fn)
	}
	return h, &pending
}

func TestHub_NotifyStacksToasts(t *testing.T) {
	h, _ := newStubbedHub()

	h.Notify("Coat added to your bag", Success, 3*time.Second)
	h.Notify("That promo code is not valid", Error, 3*time.Second)

	active := h.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "Coat added to your bag", active[0].Message)
	assert.Equal(t, Success, active[0].Severity)
	assert.Equal(t, Error, active[1].Severity)
	assert.NotEqual(t, active[0].ID, active[1].ID)
}

func TestHub_AutoDismiss(t *testing.T) {
	h, pending := newStubbedHub()

	h.Notify("one", Info, time.Second)
	h.Notify("two", Info, time.Second)
	require.Len(t, h.Active(), 2)

	(*pending)[0]() // first toast's timer fires

	active := h.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "two", active[0].Message)

	(*pending)[0]() // firing again is harmless
	assert.Len(t, h.Active(), 1)
}

func TestHub_ZeroDurationGetsDefault(t *testing.T) {
	h := NewHub()
	var scheduled time.Duration
	h.after = func(d time.Duration, _ func()) { scheduled = d }

	h.Notify("hello", Info, 0)

	assert.Equal(t, DefaultDuration, scheduled)
}

func TestFuncAdapter(t *testing.T) {
	var gotMessage string
	var gotSeverity Severity
	n := Func(func(message string, severity Severity, _ time.Duration) {
		gotMessage = message
		gotSeverity = severity
	})

	n.Notify("hi", Success, time.Second)

	assert.Equal(t, "hi", gotMessage)
	assert.Equal(t, Success, gotSeverity)
}
