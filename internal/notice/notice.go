package notice

import (
	"context"
	"sort"
	"sync"
	"time"
)

// DefaultTTL is how long a notice stays visible before it dismisses itself.
const DefaultTTL = 3 * time.Second

type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notice is a transient, dismissible user notification.
type Notice struct {
	ID        uint64    `json:"id"`
	Level     Level     `json:"level"`
	Message   string    `json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Center stores notices until they expire or are dismissed.
type Center struct {
	mu     sync.RWMutex
	ttl    time.Duration
	now    func() time.Time
	nextID uint64
	items  map[uint64]Notice
}

func NewCenter(ttl time.Duration) *Center {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Center{
		ttl:   ttl,
		now:   time.Now,
		items: make(map[uint64]Notice),
	}
}

func (c *Center) Push(level Level, message string) Notice {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.nextID++
	now := c.now()
	n := Notice{
		ID:        c.nextID,
		Level:     level,
		Message:   message,
		CreatedAt: now,
		ExpiresAt: now.Add(c.ttl),
	}
	c.items[n.ID] = n
	return n
}

// Active returns the unexpired notices, oldest first.
func (c *Center) Active() []Notice {
	c.mu.RLock()
	defer c.mu.RUnlock()

	now := c.now()
	out := make([]Notice, 0, len(c.items))
	for _, n := range c.items {
		if now.Before(n.ExpiresAt) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Dismiss removes a notice before it expires.
func (c *Center) Dismiss(id uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.items[id]; !ok {
		return false
	}
	delete(c.items, id)
	return true
}

// Purge drops expired notices and returns how many were removed.
func (c *Center) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	removed := 0
	for id, n := range c.items {
		if !now.Before(n.ExpiresAt) {
			delete(c.items, id)
			removed++
		}
	}
	return removed
}

// Run purges expired notices every interval until ctx is done.
func (c *Center) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.Purge()
		}
	}
}
