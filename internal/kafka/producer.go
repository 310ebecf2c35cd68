package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Gunvolt24/autoagent/internal/domain"
	"github.com/Gunvolt24/autoagent/internal/ports"
	"github.com/Gunvolt24/autoagent/pkg/metrics"
)

var _ ports.LeadForwarder = (*Producer)(nil)

// writer — минимальный контракт над kafka.Writer для подмены в тестах.
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// ProducerConfig — параметры публикации заявок.
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	WriteTimeout time.Duration
}

// Producer — пересылка заявок в дашборд через топик; ключ сообщения — leadId,
// поэтому повторы одной заявки попадают в одну партицию.
type Producer struct {
	writer    writer
	topic     string
	closeOnce sync.Once
}

func NewProducer(cfg ProducerConfig) *Producer {
	wt := cfg.WriteTimeout
	if wt <= 0 {
		wt = 10 * time.Second
	}
	return &Producer{
		writer: &kafka.Writer{
			Addr:                   kafka.TCP(cfg.Brokers...),
			Topic:                  cfg.Topic,
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			WriteTimeout:           wt,
			AllowAutoTopicCreation: true,
		},
		topic: cfg.Topic,
	}
}

// Forward — опубликовать заявку; возвращается после подтверждения брокером.
func (p *Producer) Forward(ctx context.Context, lead domain.ForwardedLead) error {
	value, err := json.Marshal(lead)
	if err != nil {
		return fmt.Errorf("marshal lead: %w", err)
	}
	if err := p.writer.WriteMessages(ctx, kafka.Message{Key: []byte(lead.LeadID), Value: value}); err != nil {
		return fmt.Errorf("publish lead: %w", err)
	}
	metrics.KafkaMessagesProduced.WithLabelValues(p.topic).Inc()
	return nil
}

// Close — сбросить буферы и закрыть writer.
func (p *Producer) Close() (retErr error) {
	p.closeOnce.Do(func() {
		retErr = p.writer.Close()
	})
	return retErr
}
