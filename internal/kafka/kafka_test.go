package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/Domenick1991/seatledger/internal/domain"
	"github.com/segmentio/kafka-go"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

type fakeWriter struct {
	messages []kafka.Message
	err      error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

func TestProducer_Publish(t *testing.T) {
	writer := &fakeWriter{}
	producer := &Producer{writer: writer, logger: testLogger()}
	ticket := &domain.Ticket{OrderCode: "TKT-1", FlightID: 1, SeatID: 7, CustomerEmail: "a@example.com", Status: domain.TicketStatusSuccess, Price: 100}

	err := producer.Publish(context.Background(), "ticket-events", ticket.OrderCode, NewTicketEvent(EventTicketPaid, ticket, time.Now()))

	require.NoError(t, err)
	require.Len(t, writer.messages, 1)
	assert.Equal(t, "ticket-events", writer.messages[0].Topic)
	assert.Equal(t, []byte("TKT-1"), writer.messages[0].Key)

	var event TicketEvent
	require.NoError(t, json.Unmarshal(writer.messages[0].Value, &event))
	assert.Equal(t, EventTicketPaid, event.Type)
	assert.Equal(t, "SUCCESS", event.Status)
	assert.NotEmpty(t, event.ID)
}

func TestProducer_PublishError(t *testing.T) {
	producer := &Producer{writer: &fakeWriter{err: errors.New("broker down")}, logger: testLogger()}

	err := producer.Publish(context.Background(), "alerts", "TKT-1", NewIntegrityAlert("TKT-1", "SUCCESS", 1, "", "unknown order", time.Now()))

	assert.ErrorContains(t, err, "broker down")
}

type fakeReader struct {
	messages  []kafka.Message
	committed []kafka.Message
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.messages) == 0 {
		return kafka.Message{}, context.Canceled
	}
	msg := r.messages[0]
	r.messages = r.messages[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

func TestConsumer_CommitsEvenWhenHandlerFails(t *testing.T) {
	reader := &fakeReader{messages: []kafka.Message{{Offset: 1}, {Offset: 2}}}
	consumer := &Consumer{reader: reader, logger: testLogger()}

	var handled int
	err := consumer.Consume(context.Background(), func(_ context.Context, msg kafka.Message) error {
		handled++
		if msg.Offset == 1 {
			return errors.New("bad payload")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, handled)
	assert.Len(t, reader.committed, 2)
}
