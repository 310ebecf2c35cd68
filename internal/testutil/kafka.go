//go:build integration

package testutil

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// UniqueTopicAndGroup — свои топик и группа на каждый тест, например
// "leads-itc-ingest-3f2a9c1b" и "leads-itc-ingest-3f2a9c1b-dashboard".
func UniqueTopicAndGroup(base string) (topic, group string) {
	topic = base + "-" + uuid.NewString()[:8]
	return topic, topic + "-dashboard"
}

// EnsureTopic — создаёт топик с одной партицией через контроллер кластера
// и ждёт его появления в метаданных. Уже существующий топик не ошибка.
// broker: "host:port", "PLAINTEXT://host:port" или список через запятую.
func EnsureTopic(ctx context.Context, broker, topic string) error {
	addr := bootstrapAddr(broker)

	conn, err := kafka.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial %s: %w", addr, err)
	}
	controller, err := conn.Controller()
	_ = conn.Close()
	if err != nil {
		return fmt.Errorf("find controller: %w", err)
	}

	admin, err := kafka.DialContext(ctx, "tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	if err != nil {
		return fmt.Errorf("dial controller: %w", err)
	}
	defer admin.Close()

	err = admin.CreateTopics(kafka.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1})
	if err != nil && !errors.Is(err, kafka.TopicAlreadyExists) {
		return fmt.Errorf("create topic %s: %w", topic, err)
	}
	return waitForPartitions(ctx, addr, topic, 5*time.Second)
}

func bootstrapAddr(raw string) string {
	first, _, _ := strings.Cut(raw, ",")
	first = strings.TrimSpace(first)
	if u, err := url.Parse(first); err == nil && u.Host != "" {
		return u.Host
	}
	return first
}

func waitForPartitions(ctx context.Context, addr, topic string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tick := time.NewTicker(200 * time.Millisecond)
	defer tick.Stop()

	var lastErr error
	for {
		conn, err := kafka.DialContext(ctx, "tcp", addr)
		if err == nil {
			var parts []kafka.Partition
			parts, err = conn.ReadPartitions(topic)
			_ = conn.Close()
			if err == nil && len(parts) > 0 {
				return nil
			}
		}
		lastErr = err

		select {
		case <-ctx.Done():
			return fmt.Errorf("topic %q not ready: %w", topic, errors.Join(ctx.Err(), lastErr))
		case <-tick.C:
		}
	}
}
