package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/unilift/backend/internal/services"
)

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type fakeReader struct {
	msgs      []kafka.Message
	committed []kafka.Message
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.msgs) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	msg := r.msgs[0]
	r.msgs = r.msgs[1:]
	return msg, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

type recordingMailer struct {
	sent []services.Message
	err  error
}

func (m *recordingMailer) Send(_ context.Context, msg services.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}

func TestProducerSend(t *testing.T) {
	w := &fakeWriter{}
	p := NewProducerWithWriter(w, zap.NewNop())

	msg := services.Message{To: "a@medicaps.ac.in", Subject: "S", Body: "B"}
	require.NoError(t, p.Send(context.Background(), msg))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("a@medicaps.ac.in"), w.msgs[0].Key)

	var event MailEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &event))
	assert.Equal(t, msg, event.Message)
	assert.NotEmpty(t, event.ID)
}

func TestProducerSend_Error(t *testing.T) {
	p := NewProducerWithWriter(&fakeWriter{err: errors.New("broker down")}, zap.NewNop())
	err := p.Send(context.Background(), services.Message{To: "a@medicaps.ac.in"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker down")
}

func TestConsumerRun(t *testing.T) {
	good, err := json.Marshal(MailEvent{ID: "1", Message: services.Message{To: "a@medicaps.ac.in", Subject: "S", Body: "B"}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		msgs:   []kafka.Message{{Value: []byte("not json"), Offset: 1}, {Value: good, Offset: 2}},
		cancel: cancel,
	}
	mailer := &recordingMailer{}
	c := NewConsumerWithReader(reader, mailer, time.Second, zap.NewNop())

	require.NoError(t, c.Run(ctx))
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "a@medicaps.ac.in", mailer.sent[0].To)
	assert.Len(t, reader.committed, 2)
}
