package notify

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Toast is one live message in the stack.
type Toast struct {
	ID       string
	Message  string
	Severity Severity
	RaisedAt time.Time
}

// Hub keeps the currently visible toasts so the web layer can render
// them. Each toast auto-dismisses after its duration on a
// fire-and-forget timer; there is no cancellation and rapid repeated
// notifications simply stack.
type Hub struct {
	mu     sync.Mutex
	toasts []Toast
	now    func() time.Time
	after  func(time.Duration, func()) // swapped out in tests
}

func NewHub() *Hub {
	return &Hub{
		now: time.Now,
		after: func(d time.Duration, fn func()) {
			time.AfterFunc(d, fn)
		},
	}
}

func (h *Hub) Notify(message string, severity Severity, duration time.Duration) {
	if duration <= 0 {
		duration = DefaultDuration
	}
	toast := Toast{
		ID:       uuid.NewString(),
		Message:  message,
		Severity: severity,
		RaisedAt: h.now(),
	}

	h.mu.Lock()
	h.toasts = append(h.toasts, toast)
	h.mu.Unlock()

	h.after(duration, func() { h.dismiss(toast.ID) })
}

// Active returns the toasts currently on screen, oldest first.
func (h *Hub) Active() []Toast {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]Toast, len(h.toasts))
	copy(out, h.toasts)
	return out
}

func (h *Hub) dismiss(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for i, t := range h.toasts {
		if t.ID == id {
			h.toasts = append(h.toasts[:i], h.toasts[i+1:]...)
			return
		}
	}
}
