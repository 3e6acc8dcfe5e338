package push

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"just-landed/tracker/internal/constants"
	"just-landed/tracker/internal/logging"
)

const (
	notifyQueue = "push.notify"
	tokenQueue  = "push.tokens"
)

// Message is one push notification handed to the delivery worker fleet.
type Message struct {
	Type  constants.PushType `json:"type"`
	Body  string             `json:"body"`
	Sound string             `json:"sound,omitempty"`
	Extra map[string]string  `json:"extra,omitempty"`
}

// Sender is the push capability the services consume. Delivery itself is
// out of process; publishing is fire-and-forget.
type Sender interface {
	Notify(ctx context.Context, token string, msg Message) error
	RegisterToken(ctx context.Context, token string) error
	DeregisterToken(ctx context.Context, token string) error
}

// Publisher queues push work on RabbitMQ durable queues.
type Publisher struct {
	conn    *amqp.Connection
	channel *amqp.Channel
}

var _ Sender = (*Publisher)(nil)

func NewPublisher(amqpURL string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	for _, queue := range []string{notifyQueue, tokenQueue} {
		_, err = ch.QueueDeclare(
			queue,
			true,  // durable
			false, // autoDelete
			false, // exclusive
			false, // noWait
			nil,
		)
		if err != nil {
			ch.Close()
			conn.Close()
			return nil, fmt.Errorf("failed to declare queue %s: %w", queue, err)
		}
	}

	return &Publisher{conn: conn, channel: ch}, nil
}

type notifyEnvelope struct {
	Token   string  `json:"token"`
	Message Message `json:"message"`
	SentAt  int64   `json:"sent_at"`
}

type tokenEnvelope struct {
	Action string `json:"action"` // "register" or "deregister"
	Token  string `json:"token"`
}

// Notify queues a notification for the given device token. Failures are
// logged and returned but never block the caller's pipeline.
func (p *Publisher) Notify(ctx context.Context, token string, msg Message) error {
	if token == "" {
		return nil
	}
	return p.publish(ctx, notifyQueue, notifyEnvelope{
		Token:   token,
		Message: msg,
		SentAt:  time.Now().Unix(),
	})
}

func (p *Publisher) RegisterToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return p.publish(ctx, tokenQueue, tokenEnvelope{Action: "register", Token: token})
}

func (p *Publisher) DeregisterToken(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return p.publish(ctx, tokenQueue, tokenEnvelope{Action: "deregister", Token: token})
}

func (p *Publisher) publish(ctx context.Context, queue string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Push: failed to marshal payload", "queue", queue, "error", err.Error())
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx,
		"",    // default exchange
		queue, // routing key
		false, // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		},
	)
	if err != nil {
		logging.Error("Push: failed to publish", "queue", queue, "error", err.Error())
		return err
	}
	return nil
}

func (p *Publisher) Close() error {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}
