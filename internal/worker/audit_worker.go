package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"pdfchat/internal/events"
	"pdfchat/internal/model"
	"pdfchat/internal/repository"
)

// AuditWorker consumes document lifecycle events and persists them as audit
// rows. It runs only when both the events queue and the MySQL backend are
// configured.
type AuditWorker struct {
	conn      *amqp.Connection
	repo      *repository.AuditRepository
	queueName string
	logger    *zap.Logger

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewAuditWorker(conn *amqp.Connection, repo *repository.AuditRepository, queueName string, logger *zap.Logger) *AuditWorker {
	return &AuditWorker{
		conn:      conn,
		repo:      repo,
		queueName: queueName,
		logger:    logger,
	}
}

func (w *AuditWorker) Start(ctx context.Context) error {
	if w.cancel != nil {
		return nil
	}

	workerCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	ch, err := w.conn.Channel()
	if err != nil {
		cancel()
		return fmt.Errorf("open worker channel failed: %w", err)
	}

	_, err = ch.QueueDeclare(
		w.queueName,
		true,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("declare worker queue failed: %w", err)
	}

	deliveries, err := ch.Consume(
		w.queueName,
		"",
		false,
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		_ = ch.Close()
		cancel()
		return fmt.Errorf("consume queue failed: %w", err)
	}

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer ch.Close()

		for {
			select {
			case <-workerCtx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					return
				}

				var evt events.DocumentEvent
				if err := json.Unmarshal(d.Body, &evt); err != nil {
					w.logger.Warn("decode document event failed", zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}

				record := model.AuditRecord{
					EventType:  evt.Type,
					DocumentID: evt.DocumentID,
					Filename:   evt.Filename,
					Chunks:     evt.Chunks,
					OccurredAt: evt.OccurredAt,
				}
				if err := w.repo.Create(&record); err != nil {
					w.logger.Warn("persist audit record failed",
						zap.String("document_id", evt.DocumentID),
						zap.Error(err))
					_ = d.Nack(false, false)
					continue
				}

				_ = d.Ack(false)
			}
		}
	}()

	return nil
}

func (w *AuditWorker) Close() {
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()
}
