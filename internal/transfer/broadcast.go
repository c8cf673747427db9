package transfer

import (
	"context"
	"errors"
	"log/slog"
)

// ErrBroadcastFailed reports that handing a fully signed transaction to
// the settlement layer failed. The transaction stays in Broadcast
// status; the operator retries out of band.
var ErrBroadcastFailed = errors.New("transaction broadcast failed")

// Broadcaster submits a fully authorized transfer to the external
// settlement layer once its signature threshold is met.
type Broadcaster interface {
	SubmitForBroadcast(ctx context.Context, txID, payload string, signatures []Signature) error
}

// LoggerBroadcaster is a stub settlement connector that records
// submissions in the logger.
type LoggerBroadcaster struct {
	logger *slog.Logger
}

// NewLoggerBroadcaster constructs a logging broadcaster stub.
func NewLoggerBroadcaster(logger *slog.Logger) *LoggerBroadcaster {
	return &LoggerBroadcaster{logger: logger}
}

// SubmitForBroadcast writes the submission to the structured logger.
func (b *LoggerBroadcaster) SubmitForBroadcast(_ context.Context, txID, _ string, signatures []Signature) error {
	if b == nil || b.logger == nil {
		return nil
	}
	b.logger.Info("submit for broadcast", "tx_id", txID, "signatures", len(signatures))
	return nil
}
