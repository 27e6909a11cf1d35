package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"afrilink/internal/config"
)

// messageWriter is satisfied by *kafka.Conn
type messageWriter interface {
	SetWriteDeadline(t time.Time) error
	WriteMessages(msgs ...kafka.Message) (int, error)
}

// publishTimeout bounds one Publish call including retries.
const publishTimeout = 10 * time.Second

// KafkaPublisher writes the event envelope to the partition leader with retries.
type KafkaPublisher struct {
	writer     messageWriter
	maxRetries int
	backoff    time.Duration
	timeout    time.Duration
}

func CreateKafkaProducer(conf config.KafkaConfig) (*kafka.Conn, error) {
	return kafka.DialLeader(context.Background(), "tcp", conf.BrokerAddress, conf.BrokerTopic, conf.BrokerPartition)
}

func NewKafkaPublisher(conn *kafka.Conn) *KafkaPublisher {
	return newKafkaPublisher(conn, time.Second)
}

func newKafkaPublisher(w messageWriter, backoff time.Duration) *KafkaPublisher {
	return &KafkaPublisher{writer: w, maxRetries: 3, backoff: backoff, timeout: publishTimeout}
}

// Publish gives up when ctx is done or after publishTimeout, whichever comes first.
func (p *KafkaPublisher) Publish(ctx context.Context, key, eventType string, data interface{}) error {
	jsonMsg, err := json.Marshal(Message{EventType: eventType, Data: data})
	if err != nil {
		return fmt.Errorf("failed to marshal Kafka message: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	msg := kafka.Message{Key: []byte(key), Value: jsonMsg}
	for i := 0; i < p.maxRetries; i++ {
		err = p.write(ctx, msg)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return fmt.Errorf("failed to write Kafka message: %w", ctx.Err())
		}
		log.Ctx(ctx).Warn().Err(err).Str("component", "KafkaPublisher").
			Msgf("failed to write Kafka message (attempt %d/%d)", i+1, p.maxRetries)
		if i == p.maxRetries-1 {
			break
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("failed to write Kafka message: %w", ctx.Err())
		case <-time.After(p.backoff * time.Duration(i+1)):
		}
	}

	return fmt.Errorf("failed to write Kafka message after %d attempts: %w", p.maxRetries, err)
}

// write sets the connection deadline from ctx and stops waiting once ctx is done.
func (p *KafkaPublisher) write(ctx context.Context, msg kafka.Message) error {
	if deadline, ok := ctx.Deadline(); ok {
		if err := p.writer.SetWriteDeadline(deadline); err != nil {
			return err
		}
	}
	done := make(chan error, 1)
	go func() {
		_, err := p.writer.WriteMessages(msg)
		done <- err
	}()
	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
