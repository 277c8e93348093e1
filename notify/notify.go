// Package notify is the fire-and-forget notification channel between the
// game engine and whatever is showing messages to the player.
package notify

import (
	"fmt"
	"log/slog"
	"sync"
)

// Level classifies a notification for display.
type Level string

const (
	Info    Level = "info"
	Success Level = "success"
	Error   Level = "error"
)

// Notification is one transient message. Title is optional.
type Notification struct {
	Level   Level  `json:"level"`
	Title   string `json:"title,omitempty"`
	Message string `json:"message"`
}

// Notifier accepts notifications. Implementations must never block the
// caller and never return an error to it; a dropped message is acceptable,
// a stalled game action is not.
type Notifier interface {
	Notify(Notification)
}

// Logger writes notifications to a slog.Logger. The headless default.
type Logger struct {
	Log *slog.Logger
}

// Notify implements Notifier.
func (l Logger) Notify(n Notification) {
	log := l.Log
	if log == nil {
		log = slog.Default()
	}
	switch n.Level {
	case Error:
		log.Error(n.Message, "title", n.Title)
	default:
		log.Info(n.Message, "title", n.Title, "level", string(n.Level))
	}
}

// Hub buffers notifications for a single renderer. Delivery is FIFO; when
// the buffer is full the oldest pending message is dropped to make room, so
// a slow or absent renderer can never back-pressure the game.
type Hub struct {
	mu       sync.Mutex
	ch       chan Notification
	attached bool
}

// NewHub returns a Hub buffering up to size pending notifications.
func NewHub(size int) *Hub {
	if size <= 0 {
		size = 16
	}
	return &Hub{ch: make(chan Notification, size)}
}

// Notify implements Notifier.
func (h *Hub) Notify(n Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for {
		select {
		case h.ch <- n:
			return
		default:
			// Full: drop the oldest and retry.
			select {
			case <-h.ch:
			default:
			}
		}
	}
}

// Attach registers the single active renderer and returns its feed. A
// second Attach fails until Detach is called.
func (h *Hub) Attach() (<-chan Notification, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.attached {
		return nil, fmt.Errorf("a notification renderer is already attached")
	}
	h.attached = true
	return h.ch, nil
}

// Detach releases the renderer slot. Pending notifications stay queued for
// the next renderer.
func (h *Hub) Detach() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.attached = false
}
