// Package export serializes transaction sequences to CSV. It receives an
// already-sorted sequence and is responsible only for textual
// serialization and file delivery.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"pftrack/internal/core"
)

// Header is the CSV header for transaction exports.
const Header = "id,date,description,category,amount,type"

// Write writes the transactions as CSV (including header), in the order
// given.
func Write(w io.Writer, txs []core.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, tx := range txs {
		rec := []string{
			tx.ID,
			tx.Date,
			tx.Description,
			tx.Category,
			core.FormatAmount(tx.Amount),
			string(tx.Type),
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	return cw.Error()
}

// WriteFile writes a CSV snapshot atomically: temp file then rename.
func WriteFile(path string, txs []core.Transaction) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".export-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	if err := Write(tmp, txs); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", path, err)
	}
	return nil
}
