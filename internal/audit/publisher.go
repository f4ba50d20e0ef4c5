package audit

import (
	"context"

	"github.com/google/uuid"

	"caseledger/pkg/domain"
	"caseledger/pkg/requestcontext"
)

// Store persists audit events. It is append-only and interface-driven so
// tests can swap sinks easily.
type Store interface {
	Append(ctx context.Context, event Event) error
	ListByPrincipal(ctx context.Context, principal domain.Principal) ([]Event, error)
	ListRecent(ctx context.Context, limit int) ([]Event, error)
}

// Publisher captures structured audit events. Append happens synchronously in
// the caller's transaction; committed events are additionally mirrored onto
// an optional channel for downstream sinks (see Worker). The two phases are
// split so a rolled-back transaction never reaches the stream: Emit appends
// inside the transaction, Mirror runs after commit.
type Publisher struct {
	store Store
	tee   chan<- Event
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithTee mirrors committed events onto ch. The send is non-blocking: a slow
// or full sink never delays a mutation, it just drops the mirror copy.
func WithTee(ch chan<- Event) Option {
	return func(p *Publisher) {
		p.tee = ch
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{store: store}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Emit fills in the event envelope and appends it, returning the enriched
// event so the caller can Mirror it once its transaction commits. Callers
// invoke Emit only after all guards have passed and their writes have been
// applied, inside the same transaction, so append and mutation commit or
// fail together.
func (p *Publisher) Emit(ctx context.Context, event Event) (Event, error) {
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.Category == "" {
		event.Category = Action(event.Action).Category()
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if err := p.store.Append(ctx, event); err != nil {
		return Event{}, err
	}
	return event, nil
}

// Mirror tees a committed event onto the stream channel. Call it only after
// the transaction that appended the event has committed; a rolled-back
// mutation must never reach the sink.
func (p *Publisher) Mirror(event Event) {
	if p.tee == nil {
		return
	}
	select {
	case p.tee <- event:
	default:
	}
}

// ListByPrincipal returns events recorded for actions by the given principal.
func (p *Publisher) ListByPrincipal(ctx context.Context, principal domain.Principal) ([]Event, error) {
	return p.store.ListByPrincipal(ctx, principal)
}

// ListRecent returns the most recent events across all principals.
func (p *Publisher) ListRecent(ctx context.Context, limit int) ([]Event, error) {
	return p.store.ListRecent(ctx, limit)
}
