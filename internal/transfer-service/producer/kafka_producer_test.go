package producer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/wallet-transfer-service/pkg/contracts/events"
)

// fakeWriter captura mensagens e permite injetar falha de escrita
type fakeWriter struct {
	mu   sync.Mutex
	msgs []kafka.Message
	err  error
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.msgs)
}

func testEvent() events.TransferCompleted {
	return events.TransferCompleted{
		TransferID:    "abc-1",
		FromAccountID: 1001,
		ToAccountID:   1002,
		Amount:        250.00,
		Status:        "success",
		CorrelationID: "corr-1",
	}
}

func TestPublishTransferCompleted(t *testing.T) {
	ctx := context.Background()

	t.Run("writes keyed event to the main topic", func(t *testing.T) {
		main, dlq := &fakeWriter{}, &fakeWriter{}
		p := NewKafkaPublisher(main, dlq, zap.NewNop())

		require.NoError(t, p.PublishTransferCompleted(ctx, testEvent()))
		require.Equal(t, 1, main.count())
		assert.Equal(t, 0, dlq.count())

		msg := main.msgs[0]
		assert.Equal(t, []byte("abc-1"), msg.Key)
		var out events.TransferCompleted
		require.NoError(t, json.Unmarshal(msg.Value, &out))
		assert.Equal(t, "abc-1", out.TransferID)
		assert.NotZero(t, out.TsUnixMs)
	})

	t.Run("failed publish is routed to the dlq", func(t *testing.T) {
		main := &fakeWriter{err: errors.New("broker down")}
		dlq := &fakeWriter{}
		p := NewKafkaPublisher(main, dlq, zap.NewNop())

		require.NoError(t, p.PublishTransferCompleted(ctx, testEvent()))
		require.Equal(t, 1, dlq.count())
		assert.Equal(t, []byte("abc-1"), dlq.msgs[0].Key)
	})

	t.Run("dlq failure surfaces the original error", func(t *testing.T) {
		main := &fakeWriter{err: errors.New("broker down")}
		dlq := &fakeWriter{err: errors.New("dlq down")}
		p := NewKafkaPublisher(main, dlq, zap.NewNop())

		err := p.PublishTransferCompleted(ctx, testEvent())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "broker down")
	})
}
