// Package store implements the record store: a key-value persistence port
// holding the session record, per-user transaction lists and the theme.
//
// The KV interface is the swappable layer (memory, file, sqlite); Store
// adds the record contract on top of any KV. Reads collapse corrupt or
// unreadable values to the type's default by contract: the system never
// refuses to serve because of bad local state.
package store

import "context"

// Persisted key layout. Values are UTF-8 text, JSON-encoded except the
// theme, which is a bare literal.
const (
	authKey  = "pf_auth_v1"
	txPrefix = "pf_txs_v1_"
	themeKey = "pf_theme_v1"
)

// KV is a minimal key-value adapter. Get reports presence explicitly so
// callers can tell "absent" from "empty".
type KV interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	// Keys returns all keys with the given prefix, in unspecified order.
	Keys(ctx context.Context, prefix string) ([]string, error)
	Close() error
}

// TxKey returns the storage key for a user's transaction list.
func TxKey(userID string) string {
	return txPrefix + userID
}

// UserIDFromKey extracts the user id from a transaction-list key. The
// second result is false for keys outside the transaction namespace.
func UserIDFromKey(key string) (string, bool) {
	if len(key) <= len(txPrefix) || key[:len(txPrefix)] != txPrefix {
		return "", false
	}
	return key[len(txPrefix):], true
}
