package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/medscan/medscan-golang/internal/models"
)

// OrderEvent is the message published on every order status change. The
// created event carries an empty previousStatus.
type OrderEvent struct {
	EventID        string             `json:"eventId"`
	OrderID        int64              `json:"orderId"`
	OrderNumber    string             `json:"orderNumber"`
	UserID         int64              `json:"userId"`
	Status         models.OrderStatus `json:"status"`
	PreviousStatus models.OrderStatus `json:"previousStatus,omitempty"`
	TotalAmount    models.Money       `json:"totalAmount"`
	OccurredAt     time.Time          `json:"occurredAt"`
}

// Publisher pushes order events onto a RabbitMQ queue.
type Publisher struct {
	conn      *amqp.Connection
	channel   *amqp.Channel
	queueName string
}

// NewPublisher connects to RabbitMQ and declares the durable order queue.
func NewPublisher(amqpURL, queueName string) (*Publisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	if _, err := ch.QueueDeclare(queueName, true, false, false, false, nil); err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue %s: %w", queueName, err)
	}

	return &Publisher{conn: conn, channel: ch, queueName: queueName}, nil
}

// PublishOrderStatus publishes one event for the order's latest transition.
func (p *Publisher) PublishOrderStatus(ctx context.Context, o *models.Order, previous models.OrderStatus) error {
	event := OrderEvent{
		EventID:        uuid.NewString(),
		OrderID:        o.ID,
		OrderNumber:    o.OrderNumber,
		UserID:         o.UserID,
		Status:         o.Status,
		PreviousStatus: previous,
		TotalAmount:    o.TotalAmount,
		OccurredAt:     time.Now(),
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	err = p.channel.PublishWithContext(ctx,
		"",          // exchange
		p.queueName, // routing key (queue name)
		false,       // mandatory
		false,       // immediate
		amqp.Publishing{
			DeliveryMode: amqp.Persistent,
			ContentType:  "application/json",
			MessageId:    event.EventID,
			Body:         body,
		})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	log.Printf("Published %s event for order %s", o.Status, o.OrderNumber)
	return nil
}

// Close shuts down the channel and connection.
func (p *Publisher) Close() {
	if p.channel != nil {
		p.channel.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
