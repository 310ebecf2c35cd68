package kafka

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Gunvolt24/autoagent/internal/domain"
	"github.com/Gunvolt24/autoagent/internal/ports"
	"github.com/Gunvolt24/autoagent/pkg/metrics"
)

var _ ports.MessageConsumer = (*Consumer)(nil)

// reader — часть kafka.Reader, нужная консьюмеру.
type reader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Config() kafka.ReaderConfig
	Close() error
}

// messageSaver — приём заявки из сообщения (usecase.IngestService).
// Ошибка с domain.ErrInvalidLead означает, что повтор бесполезен.
type messageSaver interface {
	SaveFromMessage(ctx context.Context, raw []byte) error
}

const (
	defaultProcessTimeout = 5 * time.Second
	defaultRetryInitial   = time.Second
	defaultRetryMax       = 30 * time.Second
	maxRedeliveryPause    = 500 * time.Millisecond
)

// Consumer — читатель топика заявок для дашборда: at-least-once, ручной коммит.
type Consumer struct {
	reader         reader
	saver          messageSaver
	log            ports.Logger
	processTimeout time.Duration
	fetchRetry     *backoff
	closeOnce      sync.Once
}

// NewConsumer — конструктор; нулевые таймауты заменяются значениями по умолчанию.
func NewConsumer(cfg *ConsumerConfig, saver messageSaver, log ports.Logger) *Consumer {
	return newConsumer(kafka.NewReader(cfg.ReaderConfig()), saver, log,
		orDefault(cfg.ProcessTimeout, defaultProcessTimeout),
		newBackoff(orDefault(cfg.RetryInitial, defaultRetryInitial), orDefault(cfg.RetryMax, defaultRetryMax), time.Now().UnixNano()),
	)
}

func newConsumer(r reader, saver messageSaver, log ports.Logger, processTimeout time.Duration, retry *backoff) *Consumer {
	return &Consumer{reader: r, saver: saver, log: log, processTimeout: processTimeout, fetchRetry: retry}
}

// Run — цикл до отмены контекста. Сохранённая или отвергнутая заявка коммитится,
// временная ошибка оставляет оффсет на месте.
func (c *Consumer) Run(ctx context.Context) error {
	rc := c.reader.Config()
	c.log.Infof(ctx, "lead consumer started topic=%s group_id=%s brokers=%v", rc.Topic, rc.GroupID, rc.Brokers)

	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			wait := c.fetchRetry.next()
			c.log.Warnf(ctx, "lead fetch failed topic=%s retry_in=%s err=%v", rc.Topic, wait, err)
			if !sleepCtx(ctx, wait) {
				return ctx.Err()
			}
			continue
		}
		c.fetchRetry.reset()
		metrics.KafkaMessagesConsumed.WithLabelValues(rc.Topic).Inc()

		if c.ingest(ctx, rc.Topic, msg) {
			c.commit(ctx, msg)
			continue
		}
		sleepCtx(ctx, c.fetchRetry.jitter(min(c.fetchRetry.initial, maxRedeliveryPause)))
	}
}

// ingest — передать сообщение в сервис; true, если оффсет можно коммитить.
func (c *Consumer) ingest(ctx context.Context, topic string, msg kafka.Message) bool {
	pctx, cancel := context.WithTimeout(ctx, c.processTimeout)
	defer cancel()

	err := c.saver.SaveFromMessage(pctx, msg.Value)
	if err == nil {
		metrics.KafkaMessagesProcessed.WithLabelValues(topic).Inc()
		return true
	}

	metrics.KafkaMessagesFailed.WithLabelValues(topic).Inc()
	if errors.Is(err, domain.ErrInvalidLead) {
		c.log.Warnf(ctx, "lead message rejected offset=%d key=%s err=%v", msg.Offset, msg.Key, err)
		return true
	}
	c.log.Warnf(ctx, "lead message not stored offset=%d err=%v", msg.Offset, err)
	return false
}

// commit — ошибка коммита только логируется: повторная доставка безопасна, запись идёт через upsert.
func (c *Consumer) commit(ctx context.Context, msg kafka.Message) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.log.Warnf(ctx, "lead commit failed offset=%d err=%v", msg.Offset, err)
	}
}

// Close — закрыть reader; повторный вызов ничего не делает.
func (c *Consumer) Close() (err error) {
	c.closeOnce.Do(func() { err = c.reader.Close() })
	return err
}

func orDefault(d, def time.Duration) time.Duration {
	if d <= 0 {
		return def
	}
	return d
}
