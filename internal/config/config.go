package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cleared-dev/synthledger/internal/rules"
)

// FileName is the project file created by init.
const FileName = "synthledger.yaml"

// Config represents the top-level synthledger.yaml configuration.
type Config struct {
	Sources []Source `yaml:"sources"`
}

// Source binds a statement format to the rule set its rows are booked with.
type Source struct {
	Name   string        `yaml:"name"`
	Format string        `yaml:"format"` // importer format, e.g. "paypal"
	Rules  rules.RuleSet `yaml:"rules"`
}

// Source returns the source with the given name, case-insensitively.
func (c *Config) Source(name string) (*Source, bool) {
	for i := range c.Sources {
		if strings.EqualFold(c.Sources[i].Name, name) {
			return &c.Sources[i], true
		}
	}
	return nil, false
}

// Names returns the source names in file order.
func (c *Config) Names() []string {
	names := make([]string, len(c.Sources))
	for i, s := range c.Sources {
		names[i] = s.Name
	}
	return names
}

// Validate checks every source and its rule set.
func (c *Config) Validate() error {
	var errs []error
	seen := make(map[string]bool, len(c.Sources))
	for i, s := range c.Sources {
		label := s.Name
		if label == "" {
			label = fmt.Sprintf("#%d", i+1)
			errs = append(errs, fmt.Errorf("source %s: name is required", label))
		}
		key := strings.ToLower(s.Name)
		if s.Name != "" && seen[key] {
			errs = append(errs, fmt.Errorf("source %s: duplicate name", label))
		}
		seen[key] = true
		if s.Format == "" {
			errs = append(errs, fmt.Errorf("source %s: format is required", label))
		}
		if err := s.Rules.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("source %s: %w", label, err))
		}
	}
	return errors.Join(errs...)
}

// Load reads a synthledger.yaml file from disk and validates it.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &cfg, nil
}

// Save writes a Config to a YAML file.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Default returns a Config with one source per built-in format, booked in
// currency. The account names are examples meant to be edited.
func Default(currency string) *Config {
	return &Config{
		Sources: []Source{
			{
				Name:   "paypal",
				Format: "paypal",
				Rules:  *rules.PayPal(currency, "Assets:PayPal", "Assets:Bank:Checking"),
			},
			{
				Name:   "coinbase",
				Format: "coinbase",
				Rules: *rules.Coinbase(currency, rules.CoinbaseAccounts{
					Assets:        "Assets:Coinbase",
					EarnIncome:    "Income:Coinbase:Earn",
					RewardsIncome: "Income:Coinbase:Rewards",
					ProfitLoss:    "Income:Coinbase:PnL",
					Fees:          "Expenses:Fees:Coinbase",
				}),
			},
			{
				Name:   "asnbank",
				Format: "asnbank",
				Rules: *rules.ASNBank(currency, "Assets:ASN:Beleggen", rules.ASNBankAccounts{
					Known: map[string]string{
						"NL00ASNB0000000000": "Assets:ASN:Betaalrekening",
					},
					Interest:   "Income:ASN:Rente",
					ProfitLoss: "Income:ASN:Beleggen:PnL",
				}),
			},
			{
				Name:   "ovchipkaart",
				Format: "ovchipkaart",
				Rules:  *rules.OVChipkaart(currency, "Assets:OVChipkaart", "Liabilities:OvIncasso"),
			},
		},
	}
}
