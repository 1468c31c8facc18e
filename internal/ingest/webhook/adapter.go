package webhook

import (
	"context"

	"github.com/corelens/rca-engine/internal/events"
)

// Adapter drains a Receiver's ring buffer as a finite ingest.Adapter
// sequence: one Next call per currently-buffered event. It does not
// block waiting for events that haven't arrived yet - the receiver
// keeps accepting webhooks concurrently, and a later Drain picks up
// whatever has accumulated since.
type Adapter struct {
	receiver *Receiver
}

// NewAdapter wraps receiver as an ingest.Adapter.
func NewAdapter(receiver *Receiver) *Adapter {
	return &Adapter{receiver: receiver}
}

// Next implements ingest.Adapter.
func (a *Adapter) Next(ctx context.Context) (events.RawRecord, bool, error) {
	select {
	case <-ctx.Done():
		return nil, false, ctx.Err()
	default:
	}

	rec, ok := a.receiver.buffer.Pop()
	if !ok {
		return nil, false, nil
	}
	return rec, true, nil
}

// Extensions implements ingest.Adapter. The webhook receiver is
// file-less.
func (a *Adapter) Extensions() []string { return nil }
