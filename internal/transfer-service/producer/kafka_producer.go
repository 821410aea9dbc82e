package producer

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	kshared "github.com/radieske/wallet-transfer-service/internal/shared/kafka"
	"github.com/radieske/wallet-transfer-service/pkg/contracts/events"
)

// KafkaPublisher publica transfer_completed; publicação que falha é roteada
// pro tópico DLQ em vez de se perder
type KafkaPublisher struct {
	writer kshared.MessageWriter
	dlq    kshared.MessageWriter
	log    *zap.Logger
}

func NewKafkaPublisher(writer, dlq kshared.MessageWriter, log *zap.Logger) *KafkaPublisher {
	return &KafkaPublisher{writer: writer, dlq: dlq, log: log}
}

func (p *KafkaPublisher) PublishTransferCompleted(ctx context.Context, e events.TransferCompleted) error {
	e.TsUnixMs = time.Now().UnixMilli()
	b, _ := json.Marshal(e)

	err := kshared.WriteJSON(ctx, p.writer, e.TransferID, b)
	if err == nil {
		return nil
	}

	p.log.Warn("publish transfer_completed failed, routing to dlq",
		zap.String("transferId", e.TransferID),
		zap.Error(err),
	)
	if derr := kshared.WriteJSON(ctx, p.dlq, e.TransferID, b); derr != nil {
		return fmt.Errorf("publish transfer_completed: %w (dlq: %v)", err, derr)
	}
	return nil
}
