package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/mabteam/poimap/internal/core/domain"
)

// Subjects carrying POI change events. SubjectAll matches every one of them.
const (
	SubjectAdded   = "poi.added"
	SubjectDeleted = "poi.deleted"
	SubjectCleared = "poi.cleared"
	SubjectAll     = "poi.>"

	StreamName = "POI_CHANGES"
)

// Publisher implements ports.EventPublisher using NATS JetStream.
type Publisher struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	now  func() time.Time
}

// NewPublisher connects to NATS and makes sure the POI stream exists.
func NewPublisher(url string) (*Publisher, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}

	if err := ensureStream(js); err != nil {
		conn.Close()
		return nil, err
	}

	return &Publisher{conn: conn, js: js, now: time.Now}, nil
}

func ensureStream(js nats.JetStreamContext) error {
	cfg := &nats.StreamConfig{
		Name:      StreamName,
		Subjects:  []string{SubjectAll},
		Retention: nats.LimitsPolicy,
		MaxAge:    24 * time.Hour,
		Storage:   nats.FileStorage,
	}
	if _, err := js.AddStream(cfg); err != nil {
		// Stream may already exist, try update
		if _, err := js.UpdateStream(cfg); err != nil {
			return fmt.Errorf("ensure stream %s: %w", cfg.Name, err)
		}
	}
	return nil
}

func (p *Publisher) PublishPOIAdded(ctx context.Context, poi *domain.POI) error {
	return p.publish(ctx, SubjectAdded, domain.POIEvent{Type: domain.POIAdded, POI: poi, ID: poi.ID})
}

func (p *Publisher) PublishPOIDeleted(ctx context.Context, id string) error {
	return p.publish(ctx, SubjectDeleted, domain.POIEvent{Type: domain.POIDeleted, ID: id})
}

func (p *Publisher) PublishPOIsCleared(ctx context.Context) error {
	return p.publish(ctx, SubjectCleared, domain.POIEvent{Type: domain.POICleared})
}

func (p *Publisher) publish(ctx context.Context, subject string, event domain.POIEvent) error {
	event.OccurredAt = p.now().UTC()
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = p.js.Publish(subject, data, nats.Context(ctx))
	return err
}

// Conn exposes the underlying connection, e.g. for health checks.
func (p *Publisher) Conn() *nats.Conn {
	return p.conn
}

// Close drains and closes the connection.
func (p *Publisher) Close() {
	_ = p.conn.Drain()
}

// RawConn creates a plain NATS connection for subscribing (e.g. WebSocket relay).
func RawConn(url string) (*nats.Conn, error) {
	return nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
}
