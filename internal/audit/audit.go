package audit

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/kev405/toolflow-backend/internal/mq"
)

// Channel is the broker channel audit events are published to.
const Channel = "toolflow.audit"

// Event records a state change performed by an authenticated actor.
type Event struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	Entity     string    `json:"entity"`
	EntityID   int64     `json:"entity_id"`
	ActorID    int64     `json:"actor_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher emits audit events to a broker. Publishing is fire-and-forget:
// a broker failure is logged, never surfaced to the request that caused the
// event. A Publisher with a nil broker only logs.
type Publisher struct {
	broker mq.Broker
	log    *slog.Logger
}

func NewPublisher(broker mq.Broker, log *slog.Logger) *Publisher {
	if log == nil {
		log = slog.Default()
	}
	return &Publisher{broker: broker, log: log}
}

// Record publishes one audit event for the given action on an entity.
func (p *Publisher) Record(ctx context.Context, action, entity string, entityID, actorID int64) {
	event := Event{
		ID:         uuid.NewString(),
		Action:     action,
		Entity:     entity,
		EntityID:   entityID,
		ActorID:    actorID,
		OccurredAt: time.Now(),
	}

	p.log.InfoContext(ctx, "audit event",
		"action", action, "entity", entity, "entity_id", entityID, "actor_id", actorID)

	if p.broker == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.log.ErrorContext(ctx, "marshal audit event", "error", err)
		return
	}
	attrs := map[string]string{"action": action, "entity": entity}
	if _, err := p.broker.Publish(ctx, Channel, data, attrs); err != nil {
		p.log.ErrorContext(ctx, "publish audit event", "error", err)
	}
}
