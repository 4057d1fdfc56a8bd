package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Income  TransactionType = "income"
	Expense TransactionType = "expense"
)

// DateFormat is the persisted calendar-date layout (no time component).
const DateFormat = "2006-01-02"

// DefaultCategory is applied when a transaction is created without one.
const DefaultCategory = "General"

type (
	TransactionType string

	// Transaction is a single income or expense record. The id is unique
	// within a user's collection and immutable once assigned.
	Transaction struct {
		ID          string          `json:"id"`
		Date        string          `json:"date"` // YYYY-MM-DD
		Description string          `json:"description"`
		Category    string          `json:"category"`
		Amount      decimal.Decimal `json:"amount"`
		Type        TransactionType `json:"type"`
	}

	// UserProfile identifies a user. ID is the lower-cased email and doubles
	// as the storage partition key; Email keeps the case as typed.
	UserProfile struct {
		ID    string `json:"id"`
		Email string `json:"email"`
	}

	// AuthState is the single process-wide session record. User is nil when
	// nobody is logged in.
	AuthState struct {
		User *UserProfile `json:"user"`
	}
)

var (
	ErrInvalidDate = errors.New("invalid date")
	ErrInvalidType = errors.New("invalid transaction type")
)

func init() {
	// Amounts persist as bare JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// IsValid reports whether the type is one of income or expense.
func (tt TransactionType) IsValid() bool {
	return tt == Income || tt == Expense
}

func (tt TransactionType) String() string {
	return string(tt)
}

// Validate checks the date layout and transaction type. Amounts are not
// constrained here: the data layer permits negative values.
func (t Transaction) Validate() error {
	if _, err := time.Parse(DateFormat, t.Date); err != nil {
		return ErrInvalidDate
	}
	if !t.Type.IsValid() {
		return ErrInvalidType
	}
	return nil
}

// Authenticated reports whether a user is present.
func (a AuthState) Authenticated() bool {
	return a.User != nil
}

// Anonymous is the cleared session state.
func Anonymous() AuthState {
	return AuthState{User: nil}
}

// NewProfile derives a profile from an email address. The partition key is
// the lower-cased email; the display form keeps the case as typed.
func NewProfile(email string) UserProfile {
	return UserProfile{
		ID:    strings.ToLower(email),
		Email: email,
	}
}
