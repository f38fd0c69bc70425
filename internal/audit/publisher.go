package audit

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var droppedTotal = promauto.NewCounter(prometheus.CounterOpts{
	Name: "sigil_audit_dropped_total",
	Help: "Audit events dropped because the async buffer was full.",
})

// Sink persists audit events. Implementations must be safe for
// concurrent use.
type Sink interface {
	Append(ctx context.Context, event Event) error
}

// Publisher assigns identity to events and hands them to a sink. By
// default Emit appends synchronously; WithAsyncBuffer switches to a
// buffered channel drained by a background worker, so emission never
// blocks the request path.
type Publisher struct {
	sink   Sink
	logger *slog.Logger
	inbox  chan Event
	done   chan struct{}
	once   sync.Once
}

type Option func(*Publisher)

// WithAsyncBuffer enables non-blocking emission through a channel of
// the given size. Events that arrive while the buffer is full are
// dropped and counted.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.inbox = make(chan Event, size)
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func NewPublisher(sink Sink, opts ...Option) *Publisher {
	p := &Publisher{
		sink:   sink,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.inbox != nil {
		p.done = make(chan struct{})
		go p.run()
	}
	return p
}

// Emit records the event. A zero ID and zero At are filled in here so
// callers only set what they know. In async mode a full buffer drops
// the event and returns an error; callers log it and move on.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	if p.inbox == nil {
		return p.sink.Append(ctx, event)
	}

	select {
	case p.inbox <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		droppedTotal.Inc()
		p.logger.Warn("audit event dropped",
			"kind", event.Kind,
			"subject", event.Subject,
		)
		return errors.New("audit buffer full")
	}
}

func (p *Publisher) run() {
	defer close(p.done)
	for event := range p.inbox {
		if err := p.sink.Append(context.Background(), event); err != nil {
			p.logger.Warn("audit append failed",
				"kind", event.Kind,
				"error", err,
			)
		}
	}
}

// Close stops the async worker after draining buffered events. It is a
// no-op in sync mode and safe to call more than once.
func (p *Publisher) Close() {
	p.once.Do(func() {
		if p.inbox == nil {
			return
		}
		close(p.inbox)
		<-p.done
	})
}
