// Package worker maintains per-user CSV snapshots of the stored
// transaction lists, driven by change events with a periodic full pass as
// a catch-up.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"pftrack/internal/amqp"
	"pftrack/internal/core"
	"pftrack/internal/export"
	"pftrack/internal/store"
)

// ExportWorker rebuilds snapshots from the record store. Events carry only
// identifiers, the store is the source of truth.
type ExportWorker struct {
	store     *store.Store
	exportDir string
}

func NewExportWorker(s *store.Store, exportDir string) *ExportWorker {
	return &ExportWorker{
		store:     s,
		exportDir: exportDir,
	}
}

// HandleEvent processes a single transaction change event.
func (w *ExportWorker) HandleEvent(ctx context.Context, event *amqp.TransactionEvent) error {
	slog.InfoContext(ctx, "Processing transaction event",
		"user_id", event.UserID,
		"transaction_id", event.TransactionID,
		"action", event.Action)
	return w.ExportUser(ctx, event.UserID)
}

// ExportUser writes the user's snapshot, date-ascending.
func (w *ExportWorker) ExportUser(ctx context.Context, userID string) error {
	txs := w.store.ListTransactions(ctx, userID)
	sorted := core.SortBy(txs, core.SortDate, core.Asc)

	path := filepath.Join(w.exportDir, url.PathEscape(userID)+".csv")
	if err := export.WriteFile(path, sorted); err != nil {
		return fmt.Errorf("export user %s: %w", userID, err)
	}

	slog.InfoContext(ctx, "Snapshot written", "user_id", userID, "count", len(sorted), "path", path)
	return nil
}

// ExportAll rebuilds snapshots for every user with stored transactions.
func (w *ExportWorker) ExportAll(ctx context.Context) error {
	userIDs, err := w.store.UserIDs(ctx)
	if err != nil {
		return fmt.Errorf("list users: %w", err)
	}
	for _, uid := range userIDs {
		if err := w.ExportUser(ctx, uid); err != nil {
			slog.ErrorContext(ctx, "Snapshot failed", "user_id", uid, "error", err)
		}
	}
	return nil
}

// Run consumes change events and performs a full pass every interval,
// until ctx is done. The AMQP client may be nil, leaving only the
// periodic pass.
func (w *ExportWorker) Run(ctx context.Context, client *amqp.Client, interval time.Duration) error {
	g, gctx := errgroup.WithContext(ctx)

	if client != nil {
		g.Go(func() error {
			err := client.ConsumeTransactionEvents(gctx, func(event *amqp.TransactionEvent) error {
				return w.HandleEvent(gctx, event)
			})
			if err == context.Canceled {
				return nil
			}
			return err
		})
	}

	g.Go(func() error {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-ticker.C:
				if err := w.ExportAll(gctx); err != nil {
					slog.ErrorContext(gctx, "Periodic export failed", "error", err)
				}
			}
		}
	})

	return g.Wait()
}
