package playerlink

import (
	"fmt"
	"math"
	"strings"
)

// TransferType is the kind of deal being reported. The empty value means no
// report has named one yet.
type TransferType string

const (
	TransferTypeTransfer           TransferType = "transfer"
	TransferTypeLoan               TransferType = "loan"
	TransferTypeLoanWithOption     TransferType = "loan_with_option"
	TransferTypeLoanWithObligation TransferType = "loan_with_obligation"
	TransferTypeUnclear            TransferType = "unclear"
)

var transferTypes = map[TransferType]struct{}{
	TransferTypeTransfer:           {},
	TransferTypeLoan:               {},
	TransferTypeLoanWithOption:     {},
	TransferTypeLoanWithObligation: {},
	TransferTypeUnclear:            {},
}

// ParseTransferType accepts spaces or dashes in place of underscores. Anything
// unrecognised is unclear.
func ParseTransferType(v string) TransferType {
	key := strings.ToLower(strings.TrimSpace(v))
	key = strings.NewReplacer(" ", "_", "-", "_").Replace(key)
	if key == "" {
		return ""
	}
	if _, ok := transferTypes[TransferType(key)]; ok {
		return TransferType(key)
	}
	return TransferTypeUnclear
}

func (t TransferType) Valid() bool {
	if t == "" {
		return true
	}
	_, ok := transferTypes[t]
	return ok
}

var currencies = map[string]struct{}{"GBP": {}, "EUR": {}, "USD": {}}

// Price is a reported fee. An empty Currency means the report gave none.
type Price struct {
	Amount   float64
	Currency string
}

func (p Price) Validate() error {
	if p.Amount <= 0 || math.IsNaN(p.Amount) || math.IsInf(p.Amount, 0) {
		return fmt.Errorf("price amount must be positive, got %v", p.Amount)
	}
	if p.Currency == "" {
		return nil
	}
	if _, ok := currencies[p.Currency]; !ok {
		return fmt.Errorf("unsupported currency: %q", p.Currency)
	}
	return nil
}

// NormalizeCurrency upper-cases a currency code; unknown codes become empty.
func NormalizeCurrency(v string) string {
	code := strings.ToUpper(strings.TrimSpace(v))
	if _, ok := currencies[code]; !ok {
		return ""
	}
	return code
}
