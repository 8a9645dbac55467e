package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Amount is a signed quantity of one currency or commodity.
type Amount struct {
	Number   decimal.Decimal
	Currency string
}

// Neg returns the amount with its sign flipped.
func (a Amount) Neg() Amount {
	return Amount{Number: a.Number.Neg(), Currency: a.Currency}
}

// Equal reports whether both number and currency match.
func (a Amount) Equal(b Amount) bool {
	return a.Currency == b.Currency && a.Number.Equal(b.Number)
}

func (a Amount) String() string {
	return fmt.Sprintf("%s %s", a.Number.String(), a.Currency)
}

// CostKind selects how a posting participates in lot accounting.
type CostKind int

const (
	CostNone CostKind = iota
	// CostReduceOpenLot consumes an existing lot at whatever cost it was booked.
	CostReduceOpenLot
	// CostFixedTotal opens a lot at an explicit total cost.
	CostFixedTotal
	// CostFixedUnit opens a lot at an explicit per-unit cost.
	CostFixedUnit
)

func (k CostKind) String() string {
	switch k {
	case CostReduceOpenLot:
		return "reduce"
	case CostFixedTotal:
		return "total"
	case CostFixedUnit:
		return "unit"
	default:
		return "none"
	}
}

// CostBasis is the lot information attached to a posting.
type CostBasis struct {
	Kind     CostKind
	Number   decimal.Decimal // unused for CostNone and CostReduceOpenLot
	Currency string
}

// ReduceOpenLot returns an empty cost that books against existing lots.
func ReduceOpenLot() CostBasis {
	return CostBasis{Kind: CostReduceOpenLot}
}

// FixedTotal returns a lot cost given as a total.
func FixedTotal(total decimal.Decimal, currency string) CostBasis {
	return CostBasis{Kind: CostFixedTotal, Number: total, Currency: currency}
}

// FixedUnit returns a lot cost given per unit.
func FixedUnit(unit decimal.Decimal, currency string) CostBasis {
	return CostBasis{Kind: CostFixedUnit, Number: unit, Currency: currency}
}

// Posting is one leg of a transaction. A nil Units is interpolated by the
// ledger (profit/loss plugs).
type Posting struct {
	Account string
	Units   *Amount
	Cost    CostBasis
	Price   *Amount // display/valuation only
}

// NewPosting returns a posting without cost or price.
func NewPosting(account string, units Amount) Posting {
	return Posting{Account: account, Units: &units}
}

// Plug returns a posting whose amount the ledger solves.
func Plug(account string) Posting {
	return Posting{Account: account}
}

// WithAccount returns a copy of p booked to account.
func (p Posting) WithAccount(account string) Posting {
	p.Account = account
	return p
}

// WithUnits returns a copy of p carrying units.
func (p Posting) WithUnits(units Amount) Posting {
	p.Units = &units
	return p
}

// WithCost returns a copy of p carrying cost.
func (p Posting) WithCost(cost CostBasis) Posting {
	p.Cost = cost
	return p
}

// WithPrice returns a copy of p carrying price; nil clears it.
func (p Posting) WithPrice(price *Amount) Posting {
	if price != nil {
		cp := *price
		price = &cp
	}
	p.Price = price
	return p
}

// Weight returns the amount a posting contributes to the transaction balance:
// a fixed lot weighs its cost, an open-lot reduction or a priced posting weighs
// units at the price, anything else weighs its units. ok is false for postings
// the ledger interpolates.
func (p Posting) Weight() (w Amount, ok bool) {
	if p.Units == nil {
		return Amount{}, false
	}
	units := *p.Units
	switch p.Cost.Kind {
	case CostFixedTotal:
		total := p.Cost.Number.Abs()
		if units.Number.IsNegative() {
			total = total.Neg()
		}
		return Amount{Number: total, Currency: p.Cost.Currency}, true
	case CostFixedUnit:
		return Amount{Number: units.Number.Mul(p.Cost.Number), Currency: p.Cost.Currency}, true
	}
	if p.Price != nil {
		return Amount{Number: units.Number.Mul(p.Price.Number), Currency: p.Price.Currency}, true
	}
	return units, true
}

// Flag marks a transaction as cleared or pending.
type Flag string

const (
	FlagCleared Flag = "*"
	FlagPending Flag = "!"
)

// Entry is either a Transaction or a BalanceAssertion.
type Entry interface {
	EntryDate() time.Time
	isEntry()
}

// Transaction is a synthesized ledger transaction.
type Transaction struct {
	Date      time.Time
	Flag      Flag
	Payee     string
	Narration string
	Postings  []Posting
	Line      int    // source line of the primary row
	SourceID  string // primary row OwnID, kept for downstream deduplication
}

func (t Transaction) EntryDate() time.Time { return t.Date }
func (Transaction) isEntry()               {}

// BalanceAssertion states an account balance at the start of Date.
type BalanceAssertion struct {
	Date    time.Time
	Account string
	Amount  Amount
	Line    int
}

func (b BalanceAssertion) EntryDate() time.Time { return b.Date }
func (BalanceAssertion) isEntry()               {}
