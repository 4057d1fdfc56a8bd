package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"pftrack/internal/core"
	"pftrack/internal/log"
)

// Store is the record store: the session record, per-user transaction
// lists and the theme, persisted through a KV adapter. Readers receive
// copies; writers replace the full value. There is no field-level update
// at this boundary.
type Store struct {
	kv KV
}

func New(kv KV) *Store {
	return &Store{kv: kv}
}

// readJSON decodes the value under key into dst. Absent, unreadable or
// corrupt values report false; corruption is a debug-level event, never an
// error, favoring availability over detection. A mistyped value can leave
// a partial decode in dst, so callers must discard dst on false.
func (s *Store) readJSON(ctx context.Context, key string, dst any) bool {
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		slog.DebugContext(ctx, "Record read failed, using default", log.FieldKey, key, log.FieldError, err)
		return false
	}
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		slog.DebugContext(ctx, "Record parse failed, using default", log.FieldKey, key, log.FieldError, err)
		return false
	}
	return true
}

func (s *Store) writeJSON(ctx context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, string(raw)); err != nil {
		return fmt.Errorf("persist %s: %w", key, err)
	}
	return nil
}

// GetAuth returns the persisted session, or the anonymous state when
// absent or unparsable.
func (s *Store) GetAuth(ctx context.Context) core.AuthState {
	var auth core.AuthState
	if !s.readJSON(ctx, authKey, &auth) {
		return core.Anonymous()
	}
	return auth
}

// SetAuth replaces the persisted session.
func (s *Store) SetAuth(ctx context.Context, next core.AuthState) error {
	return s.writeJSON(ctx, authKey, next)
}

// ListTransactions returns the user's full list in stored order, empty
// when absent or unparsable.
func (s *Store) ListTransactions(ctx context.Context, userID string) []core.Transaction {
	var txs []core.Transaction
	if !s.readJSON(ctx, TxKey(userID), &txs) {
		return nil
	}
	return txs
}

// SaveTransaction replaces the record matching tx.ID in place, or inserts
// tx at the front of the list, then persists the full list.
func (s *Store) SaveTransaction(ctx context.Context, userID string, tx core.Transaction) error {
	txs := s.ListTransactions(ctx, userID)
	replaced := false
	for i := range txs {
		if txs[i].ID == tx.ID {
			txs[i] = tx
			replaced = true
			break
		}
	}
	if !replaced {
		txs = append([]core.Transaction{tx}, txs...)
	}
	return s.writeJSON(ctx, TxKey(userID), txs)
}

// DeleteTransaction removes the matching record and persists the result.
// Deleting an absent id is a no-op, not an error.
func (s *Store) DeleteTransaction(ctx context.Context, userID, id string) error {
	txs := s.ListTransactions(ctx, userID)
	next := txs[:0:0]
	for _, t := range txs {
		if t.ID != id {
			next = append(next, t)
		}
	}
	if next == nil {
		next = []core.Transaction{}
	}
	return s.writeJSON(ctx, TxKey(userID), next)
}

// Theme returns the persisted theme, "light" unless a valid "dark" or
// "light" literal is stored.
func (s *Store) Theme(ctx context.Context) string {
	raw, ok, err := s.kv.Get(ctx, themeKey)
	if err != nil || !ok {
		return "light"
	}
	if raw == "dark" || raw == "light" {
		return raw
	}
	return "light"
}

// SetTheme persists the theme literal.
func (s *Store) SetTheme(ctx context.Context, theme string) error {
	if theme != "dark" && theme != "light" {
		return fmt.Errorf("invalid theme %q", theme)
	}
	return s.kv.Set(ctx, themeKey, theme)
}

// UserIDs returns the ids of all users with a persisted transaction list.
func (s *Store) UserIDs(ctx context.Context) ([]string, error) {
	keys, err := s.kv.Keys(ctx, txPrefix)
	if err != nil {
		return nil, fmt.Errorf("list transaction keys: %w", err)
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		if uid, ok := UserIDFromKey(k); ok {
			out = append(out, uid)
		}
	}
	return out, nil
}

// Close releases the underlying adapter.
func (s *Store) Close() error {
	return s.kv.Close()
}
