// Package session maps browser sessions to their own widget.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/qrsheet/internal/ui/notifier"
	"github.com/leapstack-labs/qrsheet/internal/widget"
)

// Cookie and value names.
const (
	CookieName = "qrsheet"
	WidgetKey  = "widget_id"
)

// DefaultTTL is how long an unused widget is kept.
const DefaultTTL = 30 * time.Minute

// Entry is one browser's widget and the notifier feeding its SSE stream.
type Entry struct {
	ID       string
	Widget   *widget.Widget
	Notifier *notifier.Notifier

	lastSeen time.Time
}

// Config holds configuration for a Registry.
type Config struct {
	Store sessions.Store
	TTL   time.Duration
	// Widget is the template for new widgets. OnChange is replaced.
	Widget widget.Options
	Logger *slog.Logger
}

// Registry owns the widgets of all live browser sessions.
type Registry struct {
	store   sessions.Store
	ttl     time.Duration
	options widget.Options
	logger  *slog.Logger
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]*Entry
}

// NewRegistry creates a registry.
func NewRegistry(cfg Config) *Registry {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Registry{
		store:   cfg.Store,
		ttl:     ttl,
		options: cfg.Widget,
		logger:  logger,
		now:     time.Now,
		entries: make(map[string]*Entry),
	}
}

// Lookup returns the entry for the request's session, creating the widget
// (and setting the cookie) when there is none yet. It must be called before
// anything is written to w.
func (r *Registry) Lookup(w http.ResponseWriter, req *http.Request) (*Entry, error) {
	// Get tolerates an undecodable cookie by returning a fresh session
	// alongside the error; the error is only worth a debug line.
	sess, err := r.store.Get(req, CookieName)
	if err != nil {
		r.logger.Debug("discarding invalid session cookie", "error", err)
	}
	if sess == nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	if id, ok := sess.Values[WidgetKey].(string); ok {
		if e := r.get(id); e != nil {
			return e, nil
		}
	}

	e := r.create()
	sess.Values[WidgetKey] = e.ID
	if err := sess.Save(req, w); err != nil {
		r.remove(e.ID)
		return nil, fmt.Errorf("save session: %w", err)
	}
	return e, nil
}

func (r *Registry) get(id string) *Entry {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok {
		return nil
	}
	e.lastSeen = r.now()
	return e
}

func (r *Registry) create() *Entry {
	e := &Entry{
		ID:       uuid.NewString(),
		Notifier: notifier.New(),
	}
	opts := r.options
	opts.OnChange = func(c widget.Change) {
		e.Notifier.Broadcast(EventsFor(c))
	}
	e.Widget = widget.New(opts)

	r.mu.Lock()
	e.lastSeen = r.now()
	r.entries[e.ID] = e
	r.mu.Unlock()

	r.logger.Debug("widget created", "widget_id", e.ID)
	return e
}

func (r *Registry) remove(id string) {
	r.mu.Lock()
	e, ok := r.entries[id]
	delete(r.entries, id)
	r.mu.Unlock()
	if ok {
		e.Widget.Close()
	}
}

// Len returns the number of live widgets.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Sweep closes and forgets widgets unused for longer than the TTL.
// Widgets with an open SSE stream count as used.
func (r *Registry) Sweep() int {
	now := r.now()

	r.mu.Lock()
	var expired []*Entry
	for id, e := range r.entries {
		if e.Notifier.Listeners() > 0 {
			e.lastSeen = now
			continue
		}
		if now.Sub(e.lastSeen) > r.ttl {
			expired = append(expired, e)
			delete(r.entries, id)
		}
	}
	r.mu.Unlock()

	for _, e := range expired {
		e.Widget.Close()
		r.logger.Debug("widget evicted", "widget_id", e.ID)
	}
	return len(expired)
}

// Run sweeps periodically until ctx is cancelled, then closes every widget.
func (r *Registry) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.Close()
			return nil
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// Close closes every widget, which releases running camera sessions.
func (r *Registry) Close() {
	r.mu.Lock()
	entries := r.entries
	r.entries = make(map[string]*Entry)
	r.mu.Unlock()

	for _, e := range entries {
		e.Widget.Close()
	}
}

// EventsFor maps widget changes to notifier events.
func EventsFor(c widget.Change) notifier.Event {
	var ev notifier.Event
	if c&widget.ChangeEditor != 0 {
		ev |= notifier.EventEditor
	}
	if c&widget.ChangeQR != 0 {
		ev |= notifier.EventQR
	}
	if c&widget.ChangeScan != 0 {
		ev |= notifier.EventScan
	}
	return ev
}
