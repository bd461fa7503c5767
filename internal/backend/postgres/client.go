// Package postgres implements the backend boundary against a Postgres
// database, adapting the row-level schema the remote service exposes. After
// every successful member write it publishes a change event so other
// connected clients converge.
package postgres

import (
	"context"

	"github.com/loftable/teamsync/internal/backend"
	"github.com/loftable/teamsync/internal/domain"
	"github.com/rs/zerolog"
)

// Client is the Postgres implementation of the full backend surface.
type Client struct {
	db     *DB
	events backend.EventSink
	log    zerolog.Logger
}

var _ backend.Client = (*Client)(nil)

// NewClient creates a backend client. events may be nil when no realtime
// fan-out is wanted (tests, offline tools).
func NewClient(db *DB, events backend.EventSink, log zerolog.Logger) *Client {
	return &Client{
		db:     db,
		events: events,
		log:    log.With().Str("component", "postgres_backend").Logger(),
	}
}

// publish fans a member event out to other clients. Publish failures must
// not fail the write that already committed; they are logged and dropped.
func (c *Client) publish(ctx context.Context, event domain.MemberEvent) {
	if c.events == nil {
		return
	}
	if err := c.events.PublishMemberEvent(ctx, event); err != nil {
		c.log.Warn().Err(err).
			Str("workspace_id", event.WorkspaceID.String()).
			Str("event_type", string(event.Type)).
			Msg("Failed to publish member event")
	}
}
