package synth

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/synthledger/internal/model"
)

// Residuals sums posting weights per currency and returns the currencies that
// do not net to zero, plus the number of postings without units. A single
// such posting is interpolated by the ledger and absorbs every residual.
func Residuals(postings []model.Posting) (map[string]decimal.Decimal, int) {
	sums := make(map[string]decimal.Decimal)
	open := 0
	for _, p := range postings {
		w, ok := p.Weight()
		if !ok {
			open++
			continue
		}
		sums[w.Currency] = sums[w.Currency].Add(w.Number)
	}

	residuals := make(map[string]decimal.Decimal)
	for cur, sum := range sums {
		if !sum.IsZero() {
			residuals[cur] = sum
		}
	}
	return residuals, open
}

// Balanced reports whether the ledger would accept postings as one
// transaction.
func Balanced(postings []model.Posting) bool {
	residuals, open := Residuals(postings)
	switch open {
	case 0:
		return len(residuals) == 0
	case 1:
		return true
	default:
		return false
	}
}
