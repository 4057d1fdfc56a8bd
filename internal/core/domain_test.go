package core

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
)

func TestTransactionValidate(t *testing.T) {
	good := Transaction{
		ID:          "t1",
		Date:        "2025-03-14",
		Description: "Groceries",
		Category:    "Food",
		Amount:      decimal.NewFromFloat(85.5),
		Type:        Expense,
	}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		name string
		tx   Transaction
	}{
		{"bad date", Transaction{Date: "14/03/2025", Type: Expense}},
		{"empty date", Transaction{Date: "", Type: Income}},
		{"bad type", Transaction{Date: "2025-03-14", Type: "transfer"}},
	}
	for _, tc := range cases {
		if err := tc.tx.Validate(); err == nil {
			t.Fatalf("%s: expected error", tc.name)
		}
	}

	// Negative amounts are permitted at the data layer.
	neg := good
	neg.Amount = decimal.NewFromInt(-5)
	if err := neg.Validate(); err != nil {
		t.Fatalf("negative amount should validate, got %v", err)
	}
}

func TestNewProfile(t *testing.T) {
	p := NewProfile("A@B.com")
	if p.ID != "a@b.com" {
		t.Fatalf("id = %q, want lower-cased email", p.ID)
	}
	if p.Email != "A@B.com" {
		t.Fatalf("email = %q, want case as typed", p.Email)
	}
}

func TestAuthState(t *testing.T) {
	if Anonymous().Authenticated() {
		t.Fatalf("anonymous state reports authenticated")
	}
	p := NewProfile("u@v.com")
	if !(AuthState{User: &p}).Authenticated() {
		t.Fatalf("state with user reports anonymous")
	}
}

func TestAmountJSONIsBareNumber(t *testing.T) {
	tx := Transaction{
		ID:     "t1",
		Date:   "2025-01-02",
		Amount: decimal.NewFromFloat(85.5),
		Type:   Expense,
	}
	raw, err := json.Marshal(tx)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var asMap map[string]any
	if err := json.Unmarshal(raw, &asMap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if _, ok := asMap["amount"].(float64); !ok {
		t.Fatalf("amount persisted as %T, want bare JSON number", asMap["amount"])
	}
}
