package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"fence-shop-backend/internal/domain"
)

// OrderEvent: сообщение в топик заказов.
type OrderEvent struct {
	Type  string        `json:"type"`
	Order *domain.Order `json:"order"`
	TS    int64         `json:"ts"`
}

// messageWriter: часть kafka.Writer, которой пользуется Kafka.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Kafka публикует заказы для учётной системы. Ключ сообщения: id заказа.
type Kafka struct {
	writer  messageWriter
	timeout time.Duration
}

// NewKafka создаёт продьюсер; brokers: список host:port через запятую.
func NewKafka(brokers, topic string) *Kafka {
	var addrs []string
	for _, a := range strings.Split(brokers, ",") {
		a = strings.TrimSpace(a)
		if a != "" {
			addrs = append(addrs, a)
		}
	}
	return &Kafka{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(addrs...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireAll,
		},
		timeout: 5 * time.Second,
	}
}

func newKafkaWithWriter(w messageWriter) *Kafka {
	return &Kafka{writer: w, timeout: 5 * time.Second}
}

// OrderCreated пишет событие синхронно, но не дольше timeout.
func (k *Kafka) OrderCreated(ctx context.Context, o *domain.Order) error {
	b, err := json.Marshal(OrderEvent{Type: "order.created", Order: o, TS: o.CreatedAt.UnixMilli()})
	if err != nil {
		return fmt.Errorf("marshal: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), k.timeout)
	defer cancel()
	if err := k.writer.WriteMessages(ctx, kafka.Message{Key: []byte(o.ID), Value: b}); err != nil {
		return fmt.Errorf("kafka write: %w", err)
	}
	return nil
}

func (k *Kafka) Close() error { return k.writer.Close() }
