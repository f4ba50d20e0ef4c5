package audit

import "context"

// Sink receives audit events outside the transactional store, e.g. a message
// stream consumed by external monitoring and indexing.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Worker drains audit events from a channel into a sink. It keeps background
// publishing testable without wiring queue implementations into services.
type Worker struct {
	sink  Sink
	inbox <-chan Event
}

func NewWorker(sink Sink, inbox <-chan Event) *Worker {
	return &Worker{sink: sink, inbox: inbox}
}

func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event := <-w.inbox:
			if err := w.sink.Publish(ctx, event); err != nil {
				return err
			}
		}
	}
}
