package enums

import "fmt"

// TransactionType maps to the transaction_type enum in Postgres. Every row in
// the inventory transaction log carries exactly one of these reasons.
type TransactionType string

const (
	TransactionTypePurchase   TransactionType = "PURCHASE"
	TransactionTypeAdjustment TransactionType = "ADJUSTMENT"
	TransactionTypeSale       TransactionType = "SALE"
)

var validTransactionTypes = []TransactionType{
	TransactionTypePurchase,
	TransactionTypeAdjustment,
	TransactionTypeSale,
}

// String implements fmt.Stringer.
func (t TransactionType) String() string {
	return string(t)
}

// IsValid reports whether the value matches the canonical transaction type enum.
func (t TransactionType) IsValid() bool {
	for _, candidate := range validTransactionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseTransactionType converts raw input into a TransactionType.
func ParseTransactionType(value string) (TransactionType, error) {
	for _, candidate := range validTransactionTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid transaction type %q", value)
}
