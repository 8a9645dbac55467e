// Package costbasis decides, per transaction kind, which lot and price
// information the postings of a primary row carry.
package costbasis

import (
	"github.com/shopspring/decimal"

	"github.com/cleared-dev/synthledger/internal/accounts"
	"github.com/cleared-dev/synthledger/internal/model"
	"github.com/cleared-dev/synthledger/internal/rules"
)

// Resolution is the resolved form of a primary row: the recognized-account
// leg, the counter leg, and any extra legs (profit/loss plug, fee).
type Resolution struct {
	Primary   model.Posting
	Counter   model.Posting
	Extras    []model.Posting
	Narration string // non-empty when the policy overrides the row narration
}

// Postings returns the resolved legs in output order.
func (r Resolution) Postings() []model.Posting {
	out := make([]model.Posting, 0, 2+len(r.Extras))
	out = append(out, r.Primary, r.Counter)
	return append(out, r.Extras...)
}

// Resolver applies a rule set's cost policy table.
type Resolver struct {
	rules *rules.RuleSet
}

// New returns a resolver for rs. rs is read, never modified.
func New(rs *rules.RuleSet) *Resolver {
	return &Resolver{rules: rs}
}

// PrimaryAccount returns the ledger account a row's own amount is booked to.
func (r *Resolver) PrimaryAccount(row model.StatementRow) string {
	if acct, ok := r.rules.KnownAccounts[row.Account]; ok && row.Account != "" {
		return acct
	}
	if r.rules.Accounts.AssetPrefix != "" && row.Currency != "" {
		return accounts.Join(r.rules.Accounts.AssetPrefix, accounts.Leaf(row.Currency))
	}
	return r.rules.Accounts.Primary
}

// Base returns the two-leg base of a row: its net amount on the recognized
// account and the negated amount on a counter account.
func (r *Resolver) Base(row model.StatementRow) (primary, counter model.Posting) {
	amount := row.Amount()
	primary = model.NewPosting(r.PrimaryAccount(row), amount)
	counter = model.NewPosting(r.counterAccount(row, amount.Number.IsNegative()), amount.Neg())
	return primary, counter
}

// Resolve builds the base postings of a primary row and attaches the cost
// metadata its kind's policy asks for. An unmapped kind is not an error: the
// base postings are returned with a warning.
func (r *Resolver) Resolve(row model.StatementRow) (Resolution, []model.Warning) {
	primary, counter := r.Base(row)
	res := Resolution{Primary: primary, Counter: counter}

	policy, ok := r.rules.Lookup(row.Kind)
	if !ok {
		return res, []model.Warning{{
			Kind:    model.WarningUnmappedKind,
			Line:    row.Line,
			Label:   row.Kind,
			Message: "no cost policy for transaction kind; booked without cost metadata",
		}}
	}

	var warnings []model.Warning
	switch policy.Class {
	case rules.ClassAcquisition:
		res, warnings = r.acquire(row, policy, res)
	case rules.ClassDisposal:
		res, warnings = r.dispose(row, policy, res)
	case rules.ClassTransfer:
		res = r.transfer(row, policy, res)
	}

	res.Narration = policy.Narration
	if policy.ProfitLoss {
		res.Extras = append(res.Extras, model.Plug(r.rules.Accounts.ProfitLoss))
	}
	if policy.Fees && !row.Fee.IsZero() {
		fee := model.Amount{Number: row.Fee.Abs(), Currency: r.costCurrency(row)}
		res.Extras = append(res.Extras, model.NewPosting(r.rules.Accounts.Fees, fee))
	}
	return res, warnings
}

func (r *Resolver) acquire(row model.StatementRow, p rules.Policy, res Resolution) (Resolution, []model.Warning) {
	cur := r.costCurrency(row)

	if p.Asset == rules.AssetSecondary {
		if row.Secondary == nil {
			return res, []model.Warning{missingSecondary(row)}
		}
		account, commodity, warnings := r.commodity(row, res.Primary.Account)
		units := model.Amount{Number: row.Secondary.Number.Abs(), Currency: commodity}

		price := row.Price()
		total := costField(row, p)
		switch {
		case !total.IsZero():
		case price != nil:
			total = units.Number.Mul(price.Number)
			price = nil
		default:
			total = row.Net.Abs()
		}
		res.Counter = model.NewPosting(account, units).
			WithCost(model.FixedTotal(total, cur)).
			WithPrice(price)
		return res, warnings
	}

	price := row.Price()
	total := costField(row, p)
	if total.IsZero() && price != nil {
		// Quantity times unit price; the price annotation would only repeat it.
		total = row.Net.Abs().Mul(price.Number)
		price = nil
	}
	if total.IsZero() {
		// No valuation at all: keep the placeholder counter.
		return res, nil
	}
	res.Primary = res.Primary.WithCost(model.FixedTotal(total, cur)).WithPrice(price)

	funding := row.Total.Abs()
	if funding.IsZero() {
		funding = total
		if p.Fees {
			// The fee leg is booked separately and paid from the same cash.
			funding = funding.Add(row.Fee.Abs())
		}
	}
	res.Counter = model.NewPosting(
		r.settlingAccount(row, p, false),
		model.Amount{Number: funding.Neg(), Currency: cur},
	)
	return res, nil
}

func (r *Resolver) dispose(row model.StatementRow, p rules.Policy, res Resolution) (Resolution, []model.Warning) {
	cur := r.costCurrency(row)

	if p.Asset == rules.AssetSecondary {
		if row.Secondary == nil {
			return res, []model.Warning{missingSecondary(row)}
		}
		account, commodity, warnings := r.commodity(row, res.Primary.Account)
		units := model.Amount{Number: row.Secondary.Number.Abs().Neg(), Currency: commodity}
		res.Counter = model.NewPosting(account, units).
			WithCost(model.ReduceOpenLot()).
			WithPrice(row.Price())
		return res, warnings
	}

	out := model.Amount{Number: row.Net.Abs().Neg(), Currency: row.Currency}
	res.Primary = res.Primary.WithUnits(out).
		WithCost(model.ReduceOpenLot()).
		WithPrice(row.Price())

	switch {
	case row.Secondary != nil:
		// Exchanged for another asset, which opens a new lot.
		account, commodity, warnings := r.commodity(row, res.Primary.Account)
		leg := model.NewPosting(account, model.Amount{Number: row.Secondary.Number.Abs(), Currency: commodity})
		if total := costField(row, p); !total.IsZero() {
			leg = leg.WithCost(model.FixedTotal(total, cur))
		}
		res.Counter = leg
		return res, warnings
	case !row.Total.IsZero():
		res.Counter = model.NewPosting(
			r.settlingAccount(row, p, true),
			model.Amount{Number: row.Total.Abs(), Currency: cur},
		)
	default:
		account := p.Counter
		if account == "" {
			account = r.counterAccount(row, true)
		}
		res.Counter = model.NewPosting(account, out.Neg()).WithPrice(row.Price())
	}
	return res, nil
}

func (r *Resolver) transfer(row model.StatementRow, p rules.Policy, res Resolution) Resolution {
	price := row.Price()
	res.Primary = res.Primary.WithPrice(price)
	res.Counter = res.Counter.WithPrice(price)
	if p.Counter != "" {
		res.Counter = res.Counter.WithAccount(p.Counter)
	}
	return res
}

// settlingAccount is where cash for a trade comes from or goes to.
func (r *Resolver) settlingAccount(row model.StatementRow, p rules.Policy, incoming bool) string {
	if p.Counter != "" {
		return p.Counter
	}
	if cash := r.cashAccount(); cash != "" {
		return cash
	}
	return r.counterAccount(row, incoming)
}

func (r *Resolver) cashAccount() string {
	if r.rules.Accounts.AssetPrefix != "" {
		return accounts.Join(r.rules.Accounts.AssetPrefix, accounts.Leaf(r.rules.Currency))
	}
	return r.rules.Accounts.Primary
}

// counterAccount returns the placeholder for the other side of a row.
// incoming is true when the counter leg receives money, i.e. the primary
// leg pays out.
func (r *Resolver) counterAccount(row model.StatementRow, incoming bool) string {
	if acct, ok := r.rules.KnownAccounts[row.Counterparty]; ok && row.Counterparty != "" {
		return acct
	}
	if !incoming && r.rules.Accounts.CounterpartyIncome != "" {
		return r.rules.Accounts.CounterpartyIncome
	}
	return r.rules.Accounts.Counterparty
}

// commodity resolves the secondary asset of a row to an account and symbol.
func (r *Resolver) commodity(row model.StatementRow, primaryAccount string) (account, symbol string, warnings []model.Warning) {
	name := row.Secondary.Currency
	if c, ok := r.rules.Commodities[name]; ok {
		return c.Account, c.Currency, nil
	}
	if prefix := r.rules.Accounts.AssetPrefix; prefix != "" {
		return accounts.Join(prefix, accounts.Leaf(name)), accounts.Commodity(name), nil
	}
	if len(r.rules.Commodities) > 0 {
		warnings = append(warnings, model.Warning{
			Kind:    model.WarningUnknownCommodity,
			Line:    row.Line,
			Label:   name,
			Message: "not in the commodity table; booked below " + primaryAccount,
		})
	}
	return accounts.Join(primaryAccount, accounts.Leaf(name)), accounts.Commodity(name), warnings
}

func (r *Resolver) costCurrency(row model.StatementRow) string {
	if row.PriceCurrency != "" {
		return row.PriceCurrency
	}
	return r.rules.Currency
}

func costField(row model.StatementRow, p rules.Policy) decimal.Decimal {
	if p.Cost == rules.CostSubtotal {
		return row.Subtotal.Abs()
	}
	return row.Total.Abs()
}

func missingSecondary(row model.StatementRow) model.Warning {
	return model.Warning{
		Kind:    model.WarningUnknownCommodity,
		Line:    row.Line,
		Label:   row.Kind,
		Message: "policy books a secondary asset but the row has none",
	}
}
