package eventpublisher

import (
	"context"
	"encoding/json"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/olekh/ledgerd/internal/domain"
)

// LogPublisher implements usecase.EventPublisher by writing events to the
// structured log. Events get a ULID when the caller did not assign one,
// so downstream consumers can order and deduplicate them.
type LogPublisher struct {
	logger zerolog.Logger
}

// NewLogPublisher creates a new LogPublisher.
func NewLogPublisher(logger zerolog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the event.
func (p *LogPublisher) Publish(ctx context.Context, event *domain.Event) error {
	if event.ID == "" {
		event.ID = ulid.Make().String()
	}

	payload, err := json.Marshal(event.Payload)
	if err != nil {
		return err
	}

	p.logger.Info().
		Str("event_id", event.ID).
		Str("event_type", event.Type).
		Time("occurred_at", event.OccurredAt).
		RawJSON("payload", payload).
		Msg("event published")

	return nil
}
