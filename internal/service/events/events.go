// Package events publishes configuration changes so the crawl engine can
// react without polling the database.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"
)

const (
	ActionMonitorCreated = "MONITOR_CREATED"
	ActionMonitorUpdated = "MONITOR_UPDATED"
	ActionMonitorDeleted = "MONITOR_DELETED"
	ActionMonitorPaused  = "MONITOR_PAUSED"
	ActionMonitorResumed = "MONITOR_RESUMED"
	ActionAlertUpserted  = "ALERT_UPSERTED"

	SchemaVersion = 1

	writeTimeout = 10 * time.Second
)

// Change describes one committed mutation. Key is the monitor id or the
// alert target and is used as the partition key.
type Change struct {
	Action        string `json:"action"`
	Key           string `json:"key"`
	UserEmail     string `json:"user_email,omitempty"`
	OccurredAt    int64  `json:"occurred_at"`
	SchemaVersion int    `json:"schema_version"`
}

func NewChange(action, key, userEmail string) Change {
	return Change{
		Action:        action,
		Key:           key,
		UserEmail:     userEmail,
		OccurredAt:    time.Now().Unix(),
		SchemaVersion: SchemaVersion,
	}
}

// Publisher writes changes to a Kafka topic.
type Publisher struct {
	writer *kafka.Writer
	topic  string
}

// NewPublisher configures a synchronous writer for a comma-separated
// broker list. No connection is made until the first publish.
func NewPublisher(brokers, topic string) (*Publisher, error) {
	if brokers == "" {
		return nil, errors.New("brokers cannot be empty")
	}
	if topic == "" {
		return nil, errors.New("topic cannot be empty")
	}

	brokerList := strings.Split(brokers, ",")
	for i := range brokerList {
		brokerList[i] = strings.TrimSpace(brokerList[i])
	}

	w := &kafka.Writer{
		Addr:                   kafka.TCP(brokerList...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           writeTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}

	slog.Info("kafka publisher configured", "brokers", brokerList, "topic", topic)
	return &Publisher{writer: w, topic: topic}, nil
}

func (p *Publisher) Publish(ctx context.Context, c Change) error {
	payload, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal change: %w", err)
	}

	msg := kafka.Message{
		Key:   []byte(c.Key),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "schema_version", Value: []byte(fmt.Sprintf("%d", c.SchemaVersion))},
			{Key: "action", Value: []byte(c.Action)},
		},
		Time: time.Unix(c.OccurredAt, 0),
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("write to %s: %w", p.topic, err)
	}
	return nil
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Discard is used when no brokers are configured.
type Discard struct{}

func (Discard) Publish(context.Context, Change) error { return nil }
func (Discard) Close() error                          { return nil }
