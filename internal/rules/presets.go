package rules

import "cmp"

// Placeholder accounts used when a statement does not identify the other side.
const (
	UnknownExpenses = "Expenses:UnknownAccount"
	UnknownIncome   = "Income:UnknownAccount"
)

// PayPal returns the rule set for PayPal activity downloads. Payments are
// settled from the PayPal balance unless a bank transfer row references them.
func PayPal(currency, account, bankAccount string) *RuleSet {
	transfer := Policy{Class: ClassTransfer}
	return &RuleSet{
		Institution: "paypal",
		Currency:    currency,
		Accounts: Accounts{
			Primary:      account,
			Counterparty: UnknownExpenses,
			Settlement:   bankAccount,
		},
		SettlementKinds: []string{"Bank Deposit to PP Account", "Algemene opname"},
		ConversionKind:  "General Currency Conversion",
		CostPolicies: map[string]Policy{
			"Express Checkout Payment":              transfer,
			"PreApproved Payment Bill User Payment": transfer,
			"Website Payment":                       transfer,
			"Mobile Payment":                        transfer,
			"General Payment":                       transfer,
			"Subscription Payment":                  transfer,
			"Payment Refund":                        transfer,
		},
		Balance: BalanceRule{Rows: BalanceLast, OffsetDays: 1, SameDate: SameDateLast},
	}
}

// CoinbaseAccounts names the accounts the Coinbase preset books to.
type CoinbaseAccounts struct {
	Assets         string // per-asset sub-accounts are created below it
	EarnIncome     string
	RewardsIncome  string
	ProfitLoss     string
	Fees           string
	ExternalWallet string // optional; unknown expense or income otherwise
}

// Coinbase returns the rule set for Coinbase transaction reports.
func Coinbase(currency string, acc CoinbaseAccounts) *RuleSet {
	return &RuleSet{
		Institution: "coinbase",
		Currency:    currency,
		Accounts: Accounts{
			Counterparty: UnknownExpenses,
			Fees:         acc.Fees,
			ProfitLoss:   acc.ProfitLoss,
			AssetPrefix:  acc.Assets,
		},
		CostPolicies: map[string]Policy{
			"Buy":            {Class: ClassAcquisition, Cost: CostSubtotal, Fees: true},
			"Sell":           {Class: ClassDisposal, Cost: CostTotal, Fees: true, ProfitLoss: true},
			"Convert":        {Class: ClassDisposal, Cost: CostSubtotal, Fees: true, ProfitLoss: true},
			"Send":           {Class: ClassDisposal, Counter: cmp.Or(acc.ExternalWallet, UnknownExpenses)},
			"Receive":        {Class: ClassAcquisition, Cost: CostTotal, Counter: cmp.Or(acc.ExternalWallet, UnknownIncome)},
			"Coinbase Earn":  {Class: ClassAcquisition, Cost: CostTotal, Counter: cmp.Or(acc.EarnIncome, UnknownIncome)},
			"Rewards Income": {Class: ClassAcquisition, Cost: CostTotal, Counter: cmp.Or(acc.RewardsIncome, UnknownIncome)},
		},
		Balance: BalanceRule{Rows: BalanceNone},
	}
}

// ASNBankAccounts names the accounts the ASN bank preset books to.
type ASNBankAccounts struct {
	Known      map[string]string // IBAN -> ledger account, own and counterparty accounts alike
	Interest   string
	ProfitLoss string
}

// ASN fund names as printed in investment narrations.
var asnFunds = map[string]Commodity{
	"ASNDuurzaamMixfondsZeerDefensief": {Account: "DuurzaamMixfondsZeerDefensief", Currency: "ASN_MIXFONDS_ZEER_DEFENSIEF"},
	"ASNDuurzaamMixfondsDefensief":     {Account: "DuurzaamMixfondsDefensief", Currency: "ASN_MIXFONDS_DEFENSIEF"},
	"ASNDuurzaamMixfondsNeutraal":      {Account: "DuurzaamMixfondsNeutraal", Currency: "ASN_MIXFONDS_NEUTRAAL"},
	"ASNDuurzaamMixfondsOffensief":     {Account: "DuurzaamMixfondsOffensief", Currency: "ASN_MIXFONDS_OFFENSIEF"},
	"ASNDuurzaamMixfondsZeerOffensief": {Account: "DuurzaamMixfondsZeerOffensief", Currency: "ASN_MIXFONDS_ZEER_OFFENSIEF"},
	"ASNMilieu&Waterfonds":             {Account: "MilieuEnWaterfonds", Currency: "ASN_MILIEU_EN_WATERFONDS"},
	"ASN-NovibMicrokredietfonds":       {Account: "Microkredietfonds", Currency: "ASN_MICROKREDIETFONDS"},
	"ASNMicrokredietfonds":             {Account: "Microkredietfonds", Currency: "ASN_MICROKREDIETFONDS"},
	"ASNDuurzaamObligatiefonds":        {Account: "Obligatiefonds", Currency: "ASN_OBLIGATIEFONDS"},
	"ASNGroenprojectenfonds":           {Account: "Groenprojectenfonds", Currency: "ASN_GROENPROJECTENFONDS"},
}

// ASNBank returns the rule set for ASN bank CSV exports. investments is the
// parent account of the fund sub-accounts; fund trades are only recognized
// when it and ProfitLoss are set.
func ASNBank(currency, investments string, acc ASNBankAccounts) *RuleSet {
	transfer := Policy{Class: ClassTransfer}
	policies := map[string]Policy{}
	for _, code := range []string{"ACC", "AF", "BEA", "BTL", "GEA", "IDB", "INC", "OVB", "STO", "VV"} {
		policies[code] = transfer
	}
	if acc.Interest != "" {
		policies["RNT"] = Policy{Class: ClassTransfer, Counter: acc.Interest}
	}

	var commodities map[string]Commodity
	if investments != "" && acc.ProfitLoss != "" {
		policies["EFF:gekocht"] = Policy{Class: ClassAcquisition, Asset: AssetSecondary, Cost: CostTotal, Narration: "Aankoop beleggen"}
		policies["EFF:verkocht"] = Policy{Class: ClassDisposal, Asset: AssetSecondary, ProfitLoss: true, Narration: "Verkoop beleggen"}
		commodities = make(map[string]Commodity, len(asnFunds))
		for name, c := range asnFunds {
			commodities[name] = Commodity{Account: investments + ":" + c.Account, Currency: c.Currency}
		}
	}

	return &RuleSet{
		Institution: "asnbank",
		Currency:    currency,
		Accounts: Accounts{
			Counterparty: UnknownExpenses,
			ProfitLoss:   acc.ProfitLoss,
		},
		KnownAccounts: acc.Known,
		Commodities:   commodities,
		CostPolicies:  policies,
		Balance:       BalanceRule{Rows: BalanceAll, OffsetDays: 0, SameDate: SameDateFirst},
	}
}

// OVChipkaart returns the rule set for OV-chipkaart travel history exports.
// bankAccount receives automatic top-ups; it may be a liability such as
// Liabilities:OvIncasso.
func OVChipkaart(currency, account, bankAccount string) *RuleSet {
	trip := Policy{Class: ClassTransfer}
	return &RuleSet{
		Institution: "ovchipkaart",
		Currency:    currency,
		Accounts: Accounts{
			Primary:      account,
			Counterparty: UnknownExpenses,
			Settlement:   bankAccount,
		},
		CostPolicies: map[string]Policy{
			"Saldo automatisch opgeladen": {Class: ClassTransfer, Counter: bankAccount},
			"Check-uit":                   trip,
			"Check-in":                    trip,
			"Reis":                        trip,
		},
		Balance:         BalanceRule{Rows: BalanceNone},
		SkipZeroAmounts: true,
	}
}
