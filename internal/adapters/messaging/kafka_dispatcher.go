package messaging

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"spsc-coopfund/internal/core/services"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// Event types carried in the "event" header
const (
	EventSettlement  = "settlement"
	EventDueReminder = "due_reminder"
)

// messageWriter is the part of *kafka.Writer the dispatcher uses
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaDispatcher publishes settlement events keyed by member id, so every
// event of one member lands on the same partition in order.
type KafkaDispatcher struct {
	writer messageWriter
	topic  string
	logger *zap.Logger
}

// NewKafkaDispatcher creates a dispatcher writing to topic on brokers
func NewKafkaDispatcher(brokers []string, topic string, logger *zap.Logger) *KafkaDispatcher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		Logger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Debug(fmt.Sprintf(msg, args...))
		}),
		ErrorLogger: kafka.LoggerFunc(func(msg string, args ...interface{}) {
			logger.Warn(fmt.Sprintf(msg, args...))
		}),
	}

	logger.Info("kafka dispatcher initialized",
		zap.Strings("brokers", brokers),
		zap.String("topic", topic),
	)
	return newKafkaDispatcher(writer, topic, logger)
}

func newKafkaDispatcher(writer messageWriter, topic string, logger *zap.Logger) *KafkaDispatcher {
	return &KafkaDispatcher{writer: writer, topic: topic, logger: logger}
}

func (d *KafkaDispatcher) Name() string { return "kafka" }

// SendSettlement publishes a settlement notice
func (d *KafkaDispatcher) SendSettlement(ctx context.Context, notice services.SettlementNotice) error {
	return d.publish(ctx, EventSettlement, notice.MemberID, notice)
}

// SendDueReminder publishes a due reminder
func (d *KafkaDispatcher) SendDueReminder(ctx context.Context, reminder services.DueReminder) error {
	return d.publish(ctx, EventDueReminder, reminder.MemberID, reminder)
}

func (d *KafkaDispatcher) publish(ctx context.Context, event, key string, payload interface{}) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s event: %w", event, err)
	}

	err = d.writer.WriteMessages(ctx, kafka.Message{
		Key:     []byte(key),
		Value:   value,
		Time:    time.Now(),
		Headers: []kafka.Header{{Key: "event", Value: []byte(event)}},
	})
	if err != nil {
		return fmt.Errorf("publish %s to %s: %w", event, d.topic, err)
	}
	return nil
}

// Close flushes pending messages and closes the writer
func (d *KafkaDispatcher) Close() error {
	return d.writer.Close()
}
