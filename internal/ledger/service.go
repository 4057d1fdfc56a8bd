// Package ledger orchestrates transaction writes across the record store
// and the optional event broker.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"pftrack/internal/amqp"
	"pftrack/internal/core"
	"pftrack/internal/id"
	"pftrack/internal/log"
	"pftrack/internal/store"
)

// Service writes locally first and publishes change events best-effort: a
// broker failure never fails the request, the record is already saved.
type Service struct {
	store      *store.Store
	amqpClient *amqp.Client
}

func New(s *store.Store, amqpClient *amqp.Client) *Service {
	return &Service{
		store:      s,
		amqpClient: amqpClient,
	}
}

// List returns the user's transactions in stored order.
func (s *Service) List(ctx context.Context, userID string) []core.Transaction {
	return s.store.ListTransactions(ctx, userID)
}

// Save persists a transaction. A transaction without an id is a creation:
// it gets a fresh id and lands at the front of the list. One with an
// existing id replaces that record in place. An absent category defaults
// to "General".
func (s *Service) Save(ctx context.Context, userID string, tx core.Transaction) (core.Transaction, error) {
	action := amqp.ActionUpdated
	if tx.ID == "" {
		tx.ID = id.New()
		action = amqp.ActionCreated
	}
	if strings.TrimSpace(tx.Category) == "" {
		tx.Category = core.DefaultCategory
	}
	if err := tx.Validate(); err != nil {
		return core.Transaction{}, err
	}

	if err := s.store.SaveTransaction(ctx, userID, tx); err != nil {
		return core.Transaction{}, fmt.Errorf("save transaction: %w", err)
	}

	s.publish(ctx, userID, tx.ID, action)
	return tx, nil
}

// Delete removes a transaction. An unknown id is a no-op, and still
// publishes nothing surprising: consumers rebuild from the stored list.
func (s *Service) Delete(ctx context.Context, userID, txID string) error {
	if err := s.store.DeleteTransaction(ctx, userID, txID); err != nil {
		return fmt.Errorf("delete transaction: %w", err)
	}
	s.publish(ctx, userID, txID, amqp.ActionDeleted)
	return nil
}

func (s *Service) publish(ctx context.Context, userID, txID, action string) {
	if s.amqpClient == nil {
		return
	}
	if err := s.amqpClient.PublishTransactionEvent(ctx, userID, txID, action); err != nil {
		slog.ErrorContext(ctx, "Failed to publish transaction event",
			log.FieldUserID, userID,
			log.FieldTxID, txID,
			log.FieldAction, action,
			log.FieldError, err)
	}
}

// Seed inserts the sample records the empty dashboard offers, dated today.
func (s *Service) Seed(ctx context.Context, userID string) ([]core.Transaction, error) {
	today := time.Now().Format(core.DateFormat)
	samples := []core.Transaction{
		{Date: today, Description: "Salary", Category: "Income", Amount: decimal.NewFromInt(2500), Type: core.Income},
		{Date: today, Description: "Groceries", Category: "Food", Amount: decimal.NewFromFloat(85.5), Type: core.Expense},
		{Date: today, Description: "Transport", Category: "Travel", Amount: decimal.NewFromInt(20), Type: core.Expense},
	}

	out := make([]core.Transaction, 0, len(samples))
	for _, tx := range samples {
		saved, err := s.Save(ctx, userID, tx)
		if err != nil {
			return out, fmt.Errorf("seed sample data: %w", err)
		}
		out = append(out, saved)
	}
	return out, nil
}

// Close releases the store and the broker connection.
func (s *Service) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
