package accounts

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/cleared-dev/synthledger/internal/model"
)

// Separator joins account name components.
const Separator = ":"

// Validate checks that name is a well-formed ledger account:
// a known root followed by one or more capitalized components.
func Validate(name string) error {
	parts := strings.Split(name, Separator)
	if len(parts) < 2 {
		return fmt.Errorf("account %q: need a root and at least one component", name)
	}
	if _, err := TypeOf(name); err != nil {
		return err
	}
	for _, p := range parts[1:] {
		if p == "" {
			return fmt.Errorf("account %q: empty component", name)
		}
		first := []rune(p)[0]
		if !unicode.IsUpper(first) && !unicode.IsDigit(first) {
			return fmt.Errorf("account %q: component %q must start with a capital letter or digit", name, p)
		}
		if strings.ContainsFunc(p, unicode.IsSpace) {
			return fmt.Errorf("account %q: component %q contains whitespace", name, p)
		}
	}
	return nil
}

// TypeOf returns the root type of an account name.
func TypeOf(name string) (model.AccountType, error) {
	root, _, _ := strings.Cut(name, Separator)
	for _, t := range model.AccountTypes {
		if string(t) == root {
			return t, nil
		}
	}
	return "", fmt.Errorf("account %q: unknown root %q", name, root)
}

// Join builds an account name from a parent and leaf components.
// Empty components are skipped.
func Join(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, Separator)
}

// Leaf turns free text (fund names, tickers) into a valid account component:
// "ASN Milieu & Waterfonds" -> "ASNMilieuWaterfonds".
func Leaf(s string) string {
	leaf := strings.Map(func(r rune) rune {
		if r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
	if leaf == "" {
		return "Unknown"
	}
	return strings.ToUpper(leaf[:1]) + leaf[1:]
}

// Commodity turns free text into a commodity symbol:
// "ASN Duurzaam Mixfonds" -> "ASN_DUURZAAM_MIXFONDS".
func Commodity(s string) string {
	var b strings.Builder
	pendingSep := false
	for _, r := range strings.ToUpper(s) {
		if r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' {
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r)
			pendingSep = false
			continue
		}
		pendingSep = true
	}
	return b.String()
}
