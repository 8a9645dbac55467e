package rules

import (
	"errors"
	"fmt"
	"sort"

	"github.com/cleared-dev/synthledger/internal/accounts"
)

// ValidationError describes one rejected configuration field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validate rejects unknown enum values, impossible anchoring offsets and
// malformed account names. All problems are reported together.
func (rs *RuleSet) Validate() error {
	var errs []error
	add := func(field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)})
	}
	account := func(field, name string, required bool) {
		if name == "" {
			if required {
				add(field, "required")
			}
			return
		}
		if err := accounts.Validate(name); err != nil {
			add(field, "%v", err)
		}
	}

	if rs.Currency == "" {
		add("currency", "required")
	}

	account("accounts.primary", rs.Accounts.Primary, rs.Accounts.AssetPrefix == "" && len(rs.KnownAccounts) == 0)
	account("accounts.counterparty", rs.Accounts.Counterparty, true)
	account("accounts.counterparty_income", rs.Accounts.CounterpartyIncome, false)
	account("accounts.fees", rs.Accounts.Fees, false)
	account("accounts.profit_loss", rs.Accounts.ProfitLoss, false)
	account("accounts.settlement", rs.Accounts.Settlement, false)
	account("accounts.asset_prefix", rs.Accounts.AssetPrefix, false)
	account("balance.account", rs.Balance.Account, false)

	for _, label := range sortedKeys(rs.KnownAccounts) {
		account("known_accounts."+label, rs.KnownAccounts[label], true)
	}
	for _, name := range sortedKeys(rs.Commodities) {
		c := rs.Commodities[name]
		account("commodities."+name+".account", c.Account, true)
		if c.Currency == "" {
			add("commodities."+name+".currency", "required")
		}
	}

	for _, kind := range sortedKeys(rs.CostPolicies) {
		p := rs.CostPolicies[kind]
		field := "cost_policies." + kind
		switch p.Class {
		case ClassAcquisition, ClassDisposal, ClassTransfer:
		default:
			add(field+".class", "unknown class %q", p.Class)
		}
		switch p.Cost {
		case "", CostSubtotal, CostTotal:
		default:
			add(field+".cost", "unknown cost field %q", p.Cost)
		}
		switch p.Asset {
		case "", AssetPrimary, AssetSecondary:
		default:
			add(field+".asset", "unknown asset leg %q", p.Asset)
		}
		account(field+".counter", p.Counter, false)
		if p.Fees && rs.Accounts.Fees == "" {
			add(field+".fees", "accounts.fees is not configured")
		}
		if p.ProfitLoss && rs.Accounts.ProfitLoss == "" {
			add(field+".profit_loss", "accounts.profit_loss is not configured")
		}
	}

	switch rs.Balance.Rows {
	case "", BalanceNone, BalanceLast, BalanceAll:
	default:
		add("balance.rows", "unknown value %q", rs.Balance.Rows)
	}
	switch rs.Balance.SameDate {
	case "", SameDateFirst, SameDateLast:
	default:
		add("balance.same_date", "unknown value %q", rs.Balance.SameDate)
	}
	if rs.Balance.OffsetDays != 0 && rs.Balance.OffsetDays != 1 {
		add("balance.offset_days", "must be 0 or 1, got %d", rs.Balance.OffsetDays)
	}

	return errors.Join(errs...)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
