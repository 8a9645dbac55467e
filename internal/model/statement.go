package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementRow is one parsed statement line. Rows are handed to the engine in
// file order and never modified afterwards.
type StatementRow struct {
	Line int // 1-based line in the source file, for diagnostics
	Date time.Time

	Kind        string // institution transaction-type label
	OwnID       string
	ReferenceID string // OwnID of an earlier row this row amends
	Pending     bool

	Payee     string
	Narration string

	Account      string // own account label (IBAN, wallet), resolved via known accounts
	Counterparty string // counterparty account label

	Currency string
	Gross    decimal.Decimal
	Fee      decimal.Decimal // non-negative
	Net      decimal.Decimal

	// Valuation columns, zero when the institution does not report them.
	Subtotal      decimal.Decimal // cost before fees
	Total         decimal.Decimal // cost inclusive of fees
	UnitPrice     decimal.Decimal
	PriceCurrency string

	// Secondary is the other asset of a conversion or fund trade
	// (target coin of a Convert, fund units bought or sold).
	Secondary *Amount

	RunningBalance  *decimal.Decimal
	BalanceCurrency string

	Extra map[string]string // booking codes, origin/destination labels
}

// Amount returns the row's net amount in its own currency.
func (r StatementRow) Amount() Amount {
	return Amount{Number: r.Net, Currency: r.Currency}
}

// HasPrice reports whether the row carries a market unit price.
func (r StatementRow) HasPrice() bool {
	return !r.UnitPrice.IsZero() && r.PriceCurrency != ""
}

// Price returns the row's unit price annotation, or nil.
func (r StatementRow) Price() *Amount {
	if !r.HasPrice() {
		return nil
	}
	return &Amount{Number: r.UnitPrice, Currency: r.PriceCurrency}
}
