package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

// Типы доменных событий бронирования
const (
	TypeBookingCreated       = "booking.created"
	TypeBookingClaimed       = "booking.claimed"
	TypeBookingStatusChanged = "booking.status_changed"
	TypeBookingCancelled     = "booking.cancelled"
)

// Заголовки сообщений
const (
	headerEventID   = "event-id"
	headerEventType = "event-type"
	headerSource    = "source"
)

var (
	// ErrProducerClosed возвращается при публикации после закрытия продюсера
	ErrProducerClosed = errors.New("events: producer is closed")

	// ErrPublish возвращается при ошибке публикации события
	ErrPublish = errors.New("events: failed to publish event")
)

// Event доменное событие бронирования
// Key события - ID бронирования: события одного бронирования
// попадают в одну партицию и сохраняют порядок
type Event struct {
	Type      string      `json:"type"`
	BookingID int64       `json:"bookingId"`
	Payload   interface{} `json:"payload,omitempty"`
	At        time.Time   `json:"at"`
}

// Producer публикует события бронирований в Kafka
type Producer struct {
	writer *kafka.Writer
	source string
	closed bool
}

// NewProducer создает продюсер событий
// Балансировка по hash от ключа сохраняет порядок событий одного бронирования
func NewProducer(brokers []string, topic string, source string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("%w: at least one broker is required", ErrPublish)
	}
	if topic == "" {
		return nil, fmt.Errorf("%w: topic cannot be empty", ErrPublish)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		BatchTimeout: 50 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(string, ...interface{}) {}),
	}

	return &Producer{writer: writer, source: source}, nil
}

// Publish публикует событие
// Вызывающая сторона трактует ошибку как некритичную: публикация
// событий не должна блокировать основной поток бронирования
func (p *Producer) Publish(ctx context.Context, event Event) error {
	if p.closed {
		return ErrProducerClosed
	}

	if event.At.IsZero() {
		event.At = time.Now().UTC()
	}

	value, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: marshal event: %v", ErrPublish, err)
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.BookingID, 10)),
		Value: value,
		Headers: []kafka.Header{
			{Key: headerEventID, Value: []byte(uuid.NewString())},
			{Key: headerEventType, Value: []byte(event.Type)},
			{Key: headerSource, Value: []byte(p.source)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: %v", ErrPublish, err)
	}

	return nil
}

// Close закрывает продюсер
func (p *Producer) Close() error {
	p.closed = true
	return p.writer.Close()
}
