// Package realtime funnels externally confirmed member change notifications
// into the member store. The bridge is the only writer into the cache
// besides the optimistic lifecycle, and it always writes through the store's
// ingestion entrypoint.
package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/loftable/teamsync/internal/domain"
	"github.com/rs/zerolog"
)

// Sink receives ingested events. Satisfied by the member store.
type Sink interface {
	Ingest(workspaceID uuid.UUID, event domain.MemberEvent)
}

// EventSource delivers member change notifications scoped to a workspace.
// The returned stop function tears the underlying subscription down; the
// channel closes afterwards.
type EventSource interface {
	Subscribe(ctx context.Context, workspaceID uuid.UUID) (<-chan domain.MemberEvent, func(), error)
}

// Bridge maintains at most one active subscription per workspace id and
// applies received events to the sink in receipt order.
type Bridge struct {
	mu     sync.Mutex
	source EventSource
	sink   Sink
	subs   map[uuid.UUID]func()
	wg     sync.WaitGroup
	log    zerolog.Logger
}

// NewBridge creates a bridge between the event source and the sink.
func NewBridge(source EventSource, sink Sink, log zerolog.Logger) *Bridge {
	return &Bridge{
		source: source,
		sink:   sink,
		subs:   make(map[uuid.UUID]func()),
		log:    log.With().Str("component", "realtime_bridge").Logger(),
	}
}

// Subscribe starts live updates for the workspace. Subscribing twice for the
// same workspace id is a no-op.
func (b *Bridge) Subscribe(ctx context.Context, workspaceID uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[workspaceID]; ok {
		return nil
	}

	events, stop, err := b.source.Subscribe(ctx, workspaceID)
	if err != nil {
		return fmt.Errorf("subscribe workspace %s: %w", workspaceID, err)
	}
	b.subs[workspaceID] = stop

	b.wg.Add(1)
	go b.consume(workspaceID, events)

	b.log.Debug().Str("workspace_id", workspaceID.String()).Msg("Realtime subscription started")
	return nil
}

// A single consumer goroutine per subscription keeps per-workspace events
// applied in receipt order.
func (b *Bridge) consume(workspaceID uuid.UUID, events <-chan domain.MemberEvent) {
	defer b.wg.Done()
	for event := range events {
		b.sink.Ingest(workspaceID, event)
	}
}

// Unsubscribe tears down the workspace's subscription. Unsubscribing a
// workspace without one is a no-op.
func (b *Bridge) Unsubscribe(workspaceID uuid.UUID) {
	b.mu.Lock()
	stop, ok := b.subs[workspaceID]
	if ok {
		delete(b.subs, workspaceID)
	}
	b.mu.Unlock()

	if ok {
		stop()
		b.log.Debug().Str("workspace_id", workspaceID.String()).Msg("Realtime subscription stopped")
	}
}

// Subscribed reports whether the workspace has an active subscription.
func (b *Bridge) Subscribed(workspaceID uuid.UUID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.subs[workspaceID]
	return ok
}

// Close tears down every subscription and waits for the consumers to drain.
func (b *Bridge) Close() {
	b.mu.Lock()
	stops := make([]func(), 0, len(b.subs))
	for id, stop := range b.subs {
		stops = append(stops, stop)
		delete(b.subs, id)
	}
	b.mu.Unlock()

	for _, stop := range stops {
		stop()
	}
	b.wg.Wait()
}
