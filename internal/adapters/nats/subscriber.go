package natsadapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/kulturapass/kulturapass/internal/core/domain"
)

// RoutePlannedConsumer is the durable name and queue group shared by every
// process consuming route-planned events, so each event is handled once.
const RoutePlannedConsumer = "route-plan-processor"

// Subscriber implements ports.EventSubscriber using NATS JetStream.
type Subscriber struct {
	conn *nats.Conn
	js   nats.JetStreamContext
	subs []*nats.Subscription
}

// NewSubscriber creates a subscriber with its own NATS connection.
func NewSubscriber(url string) (*Subscriber, error) {
	conn, err := RawConn(url)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}
	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("jetstream: %w", err)
	}
	return &Subscriber{conn: conn, js: js}, nil
}

// AckAction is the acknowledgement a consumed message receives.
type AckAction int

const (
	Ack AckAction = iota
	Nak
	Term
)

// HandleRoutePlanned decodes one route-planned payload and runs handler on it.
// Undecodable payloads are terminated; handler failures are redelivered.
func HandleRoutePlanned(ctx context.Context, data []byte, handler func(ctx context.Context, event *domain.RoutePlanned) error) AckAction {
	var event domain.RoutePlanned
	if err := json.Unmarshal(data, &event); err != nil {
		return Term
	}
	if err := handler(ctx, &event); err != nil {
		return Nak
	}
	return Ack
}

// SubscribeRoutePlanned delivers every route-planned event to handler.
// Instances share one queue group; messages the handler rejects are
// redelivered up to three times.
func (s *Subscriber) SubscribeRoutePlanned(ctx context.Context, handler func(ctx context.Context, event *domain.RoutePlanned) error) error {
	sub, err := s.js.QueueSubscribe(RoutePlannedSubject+".>", RoutePlannedConsumer, func(msg *nats.Msg) {
		switch HandleRoutePlanned(ctx, msg.Data, handler) {
		case Term:
			_ = msg.Term()
		case Nak:
			_ = msg.Nak()
		default:
			_ = msg.Ack()
		}
	},
		nats.Durable(RoutePlannedConsumer),
		nats.ManualAck(),
		nats.MaxDeliver(3),
	)
	if err != nil {
		return err
	}
	s.subs = append(s.subs, sub)
	return nil
}

// Close unsubscribes and drains.
func (s *Subscriber) Close() {
	for _, sub := range s.subs {
		_ = sub.Unsubscribe()
	}
	_ = s.conn.Drain()
}
