package notification

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// toastTTL is how long a toast stays visible before it dismisses itself.
const toastTTL = 4 * time.Second

// Toast types.
const (
	TypeSuccess = "success"
	TypeError   = "error"
)

// Toast is a transient operator notification. At most one toast is active at
// a time; publishing a new one replaces the current one immediately.
type Toast struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Sink receives every published toast, e.g. to push it over WebSocket.
type Sink interface {
	Publish(toast Toast)
}

// Center holds the single active toast and auto-dismisses it after four
// seconds. Replacement resets the clock.
type Center struct {
	mu     sync.Mutex
	active *Toast
	timer  *time.Timer
	ttl    time.Duration
	sinks  []Sink
	now    func() time.Time
}

// NewCenter creates a toast center. Sinks are optional.
func NewCenter(sinks ...Sink) *Center {
	return &Center{
		ttl:   toastTTL,
		sinks: sinks,
		now:   time.Now,
	}
}

// Success publishes a success toast.
func (c *Center) Success(message string) {
	c.publish(TypeSuccess, message)
}

// Error publishes an error toast.
func (c *Center) Error(message string) {
	c.publish(TypeError, message)
}

// Current returns the active toast, or nil when none is showing.
func (c *Center) Current() *Toast {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active == nil {
		return nil
	}
	if c.now().After(c.active.ExpiresAt) {
		c.active = nil
		return nil
	}
	copied := *c.active
	return &copied
}

// Dismiss drops the active toast before its time runs out.
func (c *Center) Dismiss() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.clearLocked()
}

func (c *Center) publish(toastType, message string) {
	now := c.now()
	toast := Toast{
		ID:        uuid.NewString(),
		Type:      toastType,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}

	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.active = &toast
	id := toast.ID
	c.timer = time.AfterFunc(c.ttl, func() { c.expire(id) })
	c.mu.Unlock()

	for _, sink := range c.sinks {
		sink.Publish(toast)
	}
}

// expire clears the toast only if it is still the one the timer was armed
// for; a replacement published in the meantime stays.
func (c *Center) expire(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.active != nil && c.active.ID == id {
		c.clearLocked()
	}
}

func (c *Center) clearLocked() {
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.active = nil
}
