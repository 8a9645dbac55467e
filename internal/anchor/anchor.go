// Package anchor builds balance assertions from statement running balances
// and splices them into a chronologically ordered entry sequence.
package anchor

import (
	"slices"
	"time"

	"github.com/cleared-dev/synthledger/internal/model"
	"github.com/cleared-dev/synthledger/internal/rules"
)

// AccountResolver maps a row to the ledger account its balance belongs to.
type AccountResolver interface {
	PrimaryAccount(row model.StatementRow) string
}

type key struct {
	date     time.Time
	account  string
	currency string
}

// Collect returns the balance assertions rs asks for, in row order. Rows
// without a running balance never produce one. When several rows assert the
// same account and currency on the same date, rs.Balance.SameDate picks the
// winner.
func Collect(rows []model.StatementRow, rs *rules.RuleSet, accounts AccountResolver) []model.BalanceAssertion {
	var candidates []model.StatementRow
	switch rs.Balance.Rows {
	case rules.BalanceLast:
		for i := len(rows) - 1; i >= 0; i-- {
			if rows[i].RunningBalance != nil {
				candidates = append(candidates, rows[i])
				break
			}
		}
	case rules.BalanceAll:
		for _, row := range rows {
			if row.RunningBalance != nil {
				candidates = append(candidates, row)
			}
		}
	default:
		return nil
	}

	var out []model.BalanceAssertion
	index := make(map[key]int)
	for _, row := range candidates {
		a := assertion(row, rs, accounts)
		k := key{date: a.Date, account: a.Account, currency: a.Amount.Currency}
		i, seen := index[k]
		switch {
		case !seen:
			index[k] = len(out)
			out = append(out, a)
		case rs.Balance.SameDate == rules.SameDateLast:
			out[i] = a
		}
	}
	return out
}

func assertion(row model.StatementRow, rs *rules.RuleSet, accounts AccountResolver) model.BalanceAssertion {
	account := rs.Balance.Account
	if account == "" {
		account = accounts.PrimaryAccount(row)
	}
	currency := row.BalanceCurrency
	if currency == "" {
		currency = rs.Currency
	}
	return model.BalanceAssertion{
		Date:    row.Date.AddDate(0, 0, rs.Balance.OffsetDays),
		Account: account,
		Amount:  model.Amount{Number: *row.RunningBalance, Currency: currency},
		Line:    row.Line,
	}
}

// Insert splices a into entries immediately before the first transaction
// dated a.Date, or before the first later entry, or at the end. entries must
// be in ascending date order; existing entries are never rewritten.
func Insert(entries []model.Entry, a model.BalanceAssertion) []model.Entry {
	at := len(entries)
	for i, e := range entries {
		d := e.EntryDate()
		if d.After(a.Date) {
			at = i
			break
		}
		if _, ok := e.(model.Transaction); ok && d.Equal(a.Date) {
			at = i
			break
		}
	}
	return slices.Insert(entries, at, model.Entry(a))
}

// InsertAll inserts every assertion in turn.
func InsertAll(entries []model.Entry, assertions []model.BalanceAssertion) []model.Entry {
	for _, a := range assertions {
		entries = Insert(entries, a)
	}
	return entries
}
