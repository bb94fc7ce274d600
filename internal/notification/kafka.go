package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/RachdianZulkarnain/final-project-api/internal/domain"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

var ErrProducerClosed = errors.New("producer closed")

// Envelope wraps every event published to the notification topic.
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   time.Time       `json:"occurred_at"`
	Producer     string          `json:"producer"`
	Payload      json.RawMessage `json:"payload"`
}

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer buffers messages in a channel and writes them from a single
// goroutine started by Start.
type Producer struct {
	w        messageWriter
	inbox    chan kafka.Message
	stopping chan struct{}
	stopOnce sync.Once
	closeCh  chan struct{}
	loggerf  func(format string, args ...interface{})
}

func NewProducer(brokers []string, topic string, buf int, loggerf func(format string, args ...interface{})) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		BatchTimeout: 50 * time.Millisecond,
	}
	return newProducer(w, buf, loggerf)
}

func newProducer(w messageWriter, buf int, loggerf func(format string, args ...interface{})) *Producer {
	if loggerf == nil {
		loggerf = func(string, ...interface{}) {}
	}
	return &Producer{
		w:        w,
		inbox:    make(chan kafka.Message, buf),
		stopping: make(chan struct{}),
		closeCh:  make(chan struct{}),
		loggerf:  loggerf,
	}
}

// Start runs the write loop until Close is called or ctx is cancelled.
// Buffered messages are flushed before the writer is closed.
func (p *Producer) Start(ctx context.Context) {
	go func() {
		defer close(p.closeCh)
		for {
			select {
			case <-ctx.Done():
				p.Close()
				p.drain()
				return
			case <-p.stopping:
				p.drain()
				return
			case m := <-p.inbox:
				p.write(m)
			}
		}
	}()
}

// Publish queues a message. It blocks while the buffer is full.
func (p *Producer) Publish(ctx context.Context, key, value []byte, headers ...kafka.Header) error {
	select {
	case <-p.stopping:
		return ErrProducerClosed
	default:
	}
	msg := kafka.Message{Key: key, Value: value, Time: time.Now(), Headers: headers}
	select {
	case p.inbox <- msg:
		return nil
	case <-p.stopping:
		return ErrProducerClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting messages. It is safe to call more than once.
func (p *Producer) Close() {
	p.stopOnce.Do(func() { close(p.stopping) })
}

func (p *Producer) WaitClosed() { <-p.closeCh }

func (p *Producer) drain() {
	for {
		select {
		case m := <-p.inbox:
			p.write(m)
		default:
			if err := p.w.Close(); err != nil {
				p.loggerf("level=error msg=failed to close kafka writer err=%v", err)
			}
			return
		}
	}
}

func (p *Producer) write(m kafka.Message) {
	if err := p.w.WriteMessages(context.Background(), m); err != nil {
		p.loggerf("level=error msg=failed to publish event key=%s err=%v", m.Key, err)
	}
}

type Publisher interface {
	Publish(ctx context.Context, key, value []byte, headers ...kafka.Header) error
}

// KafkaNotifier publishes each notification as an Envelope keyed by
// recipient, so one user's events stay ordered within a partition.
type KafkaNotifier struct {
	pub      Publisher
	producer string
	now      func() time.Time
}

func NewKafkaNotifier(pub Publisher, producer string) *KafkaNotifier {
	return &KafkaNotifier{pub: pub, producer: producer, now: time.Now}
}

func (k *KafkaNotifier) Send(ctx context.Context, recipientID int64, templateID domain.NotificationType, data map[string]any) error {
	payload, err := json.Marshal(Event{Type: templateID, RecipientID: recipientID, Data: data})
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	env := Envelope{
		EventID:      uuid.NewString(),
		EventType:    string(templateID),
		EventVersion: 1,
		OccurredAt:   k.now().UTC(),
		Producer:     k.producer,
		Payload:      payload,
	}
	value, err := json.Marshal(env)
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	key := []byte(strconv.FormatInt(recipientID, 10))
	return k.pub.Publish(ctx, key, value, kafka.Header{Key: "event_type", Value: []byte(templateID)})
}
