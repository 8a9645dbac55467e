package rules

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// RuleSet is the read-only configuration of one institution. It is loaded
// before a run and never modified during it.
type RuleSet struct {
	Institution     string               `yaml:"institution"`
	Currency        string               `yaml:"currency"` // home currency
	Accounts        Accounts             `yaml:"accounts"`
	KnownAccounts   map[string]string    `yaml:"known_accounts,omitempty"`
	Commodities     map[string]Commodity `yaml:"commodities,omitempty"`
	SettlementKinds []string             `yaml:"settlement_kinds,omitempty"`
	ConversionKind  string               `yaml:"conversion_kind,omitempty"`
	CostPolicies    map[string]Policy    `yaml:"cost_policies,omitempty"`
	Balance         BalanceRule          `yaml:"balance"`
	SkipZeroAmounts bool                 `yaml:"skip_zero_amounts,omitempty"` // rows in a chain are never skipped
}

// Accounts names the target accounts of a rule set.
type Accounts struct {
	Primary            string `yaml:"primary,omitempty"`
	Counterparty       string `yaml:"counterparty"` // placeholder for unknown counterparties
	CounterpartyIncome string `yaml:"counterparty_income,omitempty"`
	Fees               string `yaml:"fees,omitempty"`
	ProfitLoss         string `yaml:"profit_loss,omitempty"`
	Settlement         string `yaml:"settlement,omitempty"`
	AssetPrefix        string `yaml:"asset_prefix,omitempty"` // per-asset sub-accounts live below it
}

// Commodity maps an instrument name as printed on a statement to its ledger
// account and symbol.
type Commodity struct {
	Account  string `yaml:"account"`
	Currency string `yaml:"currency"`
}

// PolicyClass is the closed set of cost treatments.
type PolicyClass string

const (
	ClassAcquisition PolicyClass = "acquisition"
	ClassDisposal    PolicyClass = "disposal"
	ClassTransfer    PolicyClass = "transfer"
)

// CostField selects which valuation column prices a new lot.
type CostField string

const (
	CostSubtotal CostField = "subtotal" // before fees; fees are booked separately
	CostTotal    CostField = "total"    // inclusive of fees
)

// AssetLeg says which leg carries the traded asset.
type AssetLeg string

const (
	AssetPrimary   AssetLeg = "primary"   // the row itself is denominated in the asset
	AssetSecondary AssetLeg = "secondary" // the row moves cash; the asset is StatementRow.Secondary
)

// Policy is the cost treatment for one transaction kind.
type Policy struct {
	Class      PolicyClass `yaml:"class"`
	Cost       CostField   `yaml:"cost,omitempty"`
	Asset      AssetLeg    `yaml:"asset,omitempty"`
	Fees       bool        `yaml:"fees,omitempty"`
	ProfitLoss bool        `yaml:"profit_loss,omitempty"`
	Counter    string      `yaml:"counter,omitempty"` // funding, proceeds or income account
	Narration  string      `yaml:"narration,omitempty"`
}

// BalanceRows selects which rows produce balance assertions.
type BalanceRows string

const (
	BalanceNone BalanceRows = "none"
	BalanceLast BalanceRows = "last"
	BalanceAll  BalanceRows = "all"
)

// SameDate picks the winning row when several assert the same account on the
// same date.
type SameDate string

const (
	SameDateFirst SameDate = "first"
	SameDateLast  SameDate = "last"
)

// BalanceRule configures balance anchoring.
type BalanceRule struct {
	Rows       BalanceRows `yaml:"rows"`
	OffsetDays int         `yaml:"offset_days"`
	SameDate   SameDate    `yaml:"same_date,omitempty"`
	Account    string      `yaml:"account,omitempty"`
}

// Lookup returns the cost policy for a transaction kind.
func (rs *RuleSet) Lookup(kind string) (Policy, bool) {
	p, ok := rs.CostPolicies[strings.TrimSpace(kind)]
	if !ok {
		return Policy{}, false
	}
	return p.withDefaults(), true
}

func (p Policy) withDefaults() Policy {
	if p.Cost == "" {
		p.Cost = CostTotal
	}
	if p.Asset == "" {
		p.Asset = AssetPrimary
	}
	return p
}

// Load reads a rule set from a YAML file and validates it.
func Load(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return nil, fmt.Errorf("parsing rules: %w", err)
	}
	if err := rs.Validate(); err != nil {
		return nil, fmt.Errorf("rules %s: %w", path, err)
	}
	return &rs, nil
}

// Save writes a rule set to a YAML file.
func Save(path string, rs *RuleSet) error {
	data, err := yaml.Marshal(rs)
	if err != nil {
		return fmt.Errorf("marshaling rules: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}
	return nil
}
