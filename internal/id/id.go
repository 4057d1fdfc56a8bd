// Package id produces unique string identifiers for new records.
package id

import "github.com/google/uuid"

// New returns a fresh identifier. Uniqueness is probabilistic: no check is
// made against existing ids, collision risk is accepted as negligible.
func New() string {
	return uuid.NewString()
}
