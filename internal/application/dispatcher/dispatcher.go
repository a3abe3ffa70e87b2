package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/garyjia/tkdn-compliance/internal/domain/event"
)

// ErrClosed is returned by Dispatch after Close
var ErrClosed = errors.New("dispatcher is closed")

// Dispatcher routes submission events to registered subscribers
type Dispatcher interface {
	// Subscribe registers a named handler for an event type
	Subscribe(eventType event.Type, name string, handler Handler)

	// Dispatch runs every handler synchronously and joins their errors
	Dispatch(ctx context.Context, evt *event.Event) error

	// DispatchAsync runs handlers in the background, detached from ctx cancellation
	DispatchAsync(ctx context.Context, evt *event.Event)

	// HandlerNames returns the registered handler names for an event type
	HandlerNames(eventType event.Type) []string

	// Close stops accepting events and waits for async handlers
	Close() error
}

// Handler processes domain events
type Handler func(ctx context.Context, evt *event.Event) error

type registration struct {
	name    string
	handler Handler
}

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

type eventDispatcher struct {
	// mu guards handlers and closed; async dispatch registers with wg under it
	mu       sync.RWMutex
	handlers map[event.Type][]registration
	closed   bool
	logger   Logger

	wg sync.WaitGroup
}

// Option configures the dispatcher
type Option func(*eventDispatcher)

// WithLogger sets a logger for the dispatcher
func WithLogger(logger Logger) Option {
	return func(d *eventDispatcher) {
		d.logger = logger
	}
}

// NewDispatcher creates a new event dispatcher
func NewDispatcher(opts ...Option) Dispatcher {
	d := &eventDispatcher{
		handlers: make(map[event.Type][]registration),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Subscribe registers a named handler for an event type
func (d *eventDispatcher) Subscribe(eventType event.Type, name string, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if name == "" {
		name = fmt.Sprintf("handler-%d", len(d.handlers[eventType]))
	}
	d.handlers[eventType] = append(d.handlers[eventType], registration{name: name, handler: handler})

	d.logInfo("Handler registered", "event_type", eventType, "handler_name", name)
}

// Dispatch runs every handler in registration order. A failing handler does not stop the others.
func (d *eventDispatcher) Dispatch(ctx context.Context, evt *event.Event) error {
	regs, ok := d.snapshot(evt.Type)
	if !ok {
		return ErrClosed
	}

	var errs []error
	for _, reg := range regs {
		if err := d.safeExecute(ctx, evt, reg); err != nil {
			errs = append(errs, fmt.Errorf("handler %s failed: %w", reg.name, err))
		}
	}

	return errors.Join(errs...)
}

// DispatchAsync runs each handler in its own goroutine
func (d *eventDispatcher) DispatchAsync(ctx context.Context, evt *event.Event) {
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		d.logError("Cannot dispatch async event, dispatcher is closed",
			"event_type", evt.Type,
			"event_id", evt.ID,
		)
		return
	}
	regs := append([]registration(nil), d.handlers[evt.Type]...)
	// Close cannot reach wg.Wait until this Add is done
	d.wg.Add(len(regs))
	d.mu.RUnlock()

	// Request contexts end when the response is written
	bg := context.WithoutCancel(ctx)

	for _, reg := range regs {
		go func(r registration) {
			defer d.wg.Done()
			_ = d.safeExecute(bg, evt, r)
		}(reg)
	}
}

// HandlerNames returns the registered handler names for an event type
func (d *eventDispatcher) HandlerNames(eventType event.Type) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	names := make([]string, 0, len(d.handlers[eventType]))
	for _, reg := range d.handlers[eventType] {
		names = append(names, reg.name)
	}
	return names
}

// Close shuts down the dispatcher and waits for async handlers to complete
func (d *eventDispatcher) Close() error {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return fmt.Errorf("dispatcher already closed")
	}
	d.closed = true
	d.mu.Unlock()

	d.logInfo("Closing dispatcher, waiting for async handlers")
	d.wg.Wait()
	d.logInfo("Dispatcher closed")

	return nil
}

// snapshot copies the handlers for eventType; ok is false once the dispatcher is closed
func (d *eventDispatcher) snapshot(eventType event.Type) (regs []registration, ok bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return nil, false
	}
	return append([]registration(nil), d.handlers[eventType]...), true
}

// safeExecute runs a handler with panic recovery and logs any failure
func (d *eventDispatcher) safeExecute(ctx context.Context, evt *event.Event, reg registration) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
		if err != nil {
			d.logError("Handler error",
				"event_type", evt.Type,
				"event_id", evt.ID,
				"submission_id", evt.SubmissionID,
				"handler_name", reg.name,
				"error", err,
			)
		}
	}()

	return reg.handler(ctx, evt)
}

func (d *eventDispatcher) logInfo(msg string, kv ...interface{}) {
	if d.logger != nil {
		d.logger.Info(msg, kv...)
	}
}

func (d *eventDispatcher) logError(msg string, kv ...interface{}) {
	if d.logger != nil {
		d.logger.Error(msg, kv...)
	}
}
