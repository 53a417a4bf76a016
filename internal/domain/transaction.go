package domain

import (
	"encoding/json"
	"time"
)

// Transaction is a read-only projection of a ledger entry owned by the fund service.
type Transaction struct {
	ID          string    `json:"id"`
	Description string    `json:"description"`
	Reference   string    `json:"reference"`
	Amount      float64   `json:"amount"`
	Type        string    `json:"type"` // credit | debit
	EffectiveAt time.Time `json:"effective_at"`
}

func (t Transaction) Credit() bool { return t.Type == "credit" }

// DecodeTransactions accepts either a bare JSON array or an object with a
// "transactions" array.
func DecodeTransactions(b []byte) ([]Transaction, error) {
	var list []Transaction
	if err := json.Unmarshal(b, &list); err == nil {
		return list, nil
	}
	var wrapped struct {
		Transactions []Transaction `json:"transactions"`
	}
	if err := json.Unmarshal(b, &wrapped); err != nil {
		return nil, err
	}
	return wrapped.Transactions, nil
}
