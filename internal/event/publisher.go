package event

import (
	"encoding/json"
	"log"
	"time"

	"github.com/streadway/amqp"
)

// Routing keys for attempt lifecycle notifications. Consumers (email, SMS,
// in-app fan-out) bind on these.
const (
	TopicAttemptStarted   = "assessment.attempt.started"
	TopicSubmittedPending = "assessment.attempt.submitted.pending"
	TopicGradedPassed     = "assessment.attempt.graded.passed"
	TopicGradedFailed     = "assessment.attempt.graded.failed"
	TopicFlagged          = "assessment.attempt.flagged"
	TopicSkillsUpdated    = "assessment.skills.recalculated"
)

type EventPublisher struct {
	conn     *amqp.Connection
	channel  *amqp.Channel
	exchange string
}

func NewEventPublisher(amqpURL, exchange string) (*EventPublisher, error) {
	conn, err := amqp.Dial(amqpURL)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, err
	}
	err = ch.ExchangeDeclare(
		exchange,
		"topic",
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return nil, err
	}
	return &EventPublisher{conn: conn, channel: ch, exchange: exchange}, nil
}

// Publish emits one event, best-effort. Nil receivers are allowed so the
// service runs without a broker; failures are logged by callers, never
// rolled into the originating transaction.
func (p *EventPublisher) Publish(eventType string, payload interface{}) error {
	if p == nil {
		return nil
	}
	event := map[string]interface{}{
		"type":      eventType,
		"payload":   payload,
		"timestamp": time.Now().UTC(),
	}
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}

	log.Printf("[EVENT] %s", eventType)

	return p.channel.Publish(
		p.exchange,
		eventType, // routing key
		false,
		false,
		amqp.Publishing{
			ContentType: "application/json",
			Body:        body,
		},
	)
}

func (p *EventPublisher) Close() {
	if p == nil {
		return
	}
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}
