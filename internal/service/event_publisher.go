package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/gema-lms-api/internal/observability"
)

// GamificationEvent is broadcast whenever a student earns XP or unlocks something.
type GamificationEvent struct {
	Type       string                 `json:"type"`
	StudentID  uint                   `json:"student_id"`
	CourseID   *uint                  `json:"course_id,omitempty"`
	XP         int                    `json:"xp"`
	Attributes map[string]interface{} `json:"attributes,omitempty"`
	Source     string                 `json:"source"`
	OccurredAt time.Time              `json:"occurred_at"`
}

// EventPublisher fans gamification events out to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, event GamificationEvent)
}

type eventPublisher struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	nodeID       string
	now          func() time.Time
}

// NewEventPublisher publishes to the Redis channel "<base>:gamification" and the NATS
// subject "<base>.gamification". Either transport may be nil.
func NewEventPublisher(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) EventPublisher {
	channel := ""
	subject := ""
	if channelBase != "" {
		channel = channelBase + ":gamification"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".gamification"
	}

	return &eventPublisher{
		redis:        redisClient,
		redisChannel: channel,
		nats:         natsConn,
		natsSubject:  subject,
		logger:       logger.With().Str("component", "event_publisher").Logger(),
		nodeID:       uuid.NewString(),
		now:          time.Now,
	}
}

// Publish never fails the caller; broker errors are logged.
func (p *eventPublisher) Publish(ctx context.Context, event GamificationEvent) {
	event.Source = p.nodeID
	if event.OccurredAt.IsZero() {
		event.OccurredAt = p.now().UTC()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn().Err(err).Str("event", event.Type).Msg("failed to encode gamification event")
		return
	}

	published := false
	if p.redis != nil && p.redisChannel != "" {
		if err := p.redis.Publish(ctx, p.redisChannel, payload).Err(); err != nil {
			p.logger.Warn().Err(err).Str("event", event.Type).Msg("failed to publish gamification event to redis")
		} else {
			published = true
		}
	}

	if p.nats != nil && p.natsSubject != "" {
		if err := p.nats.Publish(p.natsSubject, payload); err != nil {
			p.logger.Warn().Err(err).Str("event", event.Type).Msg("failed to publish gamification event to nats")
		} else {
			published = true
		}
	}

	if published {
		observability.EventsPublished().WithLabelValues(event.Type).Inc()
	}
}
