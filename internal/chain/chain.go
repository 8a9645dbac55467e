// Package chain groups statement rows that describe the same real-world event.
package chain

import (
	"strings"

	"github.com/cleared-dev/synthledger/internal/model"
	"github.com/cleared-dev/synthledger/internal/rules"
)

// LinkKind classifies a linked row.
type LinkKind int

const (
	Unrecognized LinkKind = iota
	SettlementLeg
	ConversionLeg
)

func (k LinkKind) String() string {
	switch k {
	case SettlementLeg:
		return "settlement"
	case ConversionLeg:
		return "conversion"
	default:
		return "unrecognized"
	}
}

// Link is one row amending a primary row.
type Link struct {
	Row  model.StatementRow
	Kind LinkKind
}

// Chain is a primary row plus the rows that reference it, in file order.
type Chain struct {
	Primary model.StatementRow
	Links   []Link
}

// Count returns how many links are of kind k.
func (c Chain) Count(k LinkKind) int {
	n := 0
	for _, l := range c.Links {
		if l.Kind == k {
			n++
		}
	}
	return n
}

// Classifier maps a linked row's kind label to a LinkKind.
type Classifier struct {
	settlement map[string]bool
	conversion string
}

// NewClassifier builds a classifier from a rule set's link labels.
func NewClassifier(rs *rules.RuleSet) Classifier {
	c := Classifier{
		settlement: make(map[string]bool, len(rs.SettlementKinds)),
		conversion: strings.TrimSpace(rs.ConversionKind),
	}
	for _, label := range rs.SettlementKinds {
		c.settlement[strings.TrimSpace(label)] = true
	}
	return c
}

// Classify returns the link kind for a label. Statement exports are not
// consistent about trailing whitespace, so labels are compared trimmed.
func (c Classifier) Classify(label string) LinkKind {
	label = strings.TrimSpace(label)
	switch {
	case c.settlement[label]:
		return SettlementLeg
	case c.conversion != "" && label == c.conversion:
		return ConversionLeg
	default:
		return Unrecognized
	}
}

// Group scans rows in file order and returns one chain per primary row.
// A row following a primary whose ReferenceID equals the primary's OwnID is
// consumed as a link; only contiguous rows are considered. Unrecognized
// link labels are kept and reported.
func Group(rows []model.StatementRow, c Classifier) ([]Chain, []model.Warning) {
	chains := make([]Chain, 0, len(rows))
	var warnings []model.Warning

	for i := 0; i < len(rows); i++ {
		ch := Chain{Primary: rows[i]}
		id := rows[i].OwnID
		for id != "" && i+1 < len(rows) && rows[i+1].ReferenceID == id {
			i++
			next := rows[i]
			kind := c.Classify(next.Kind)
			if kind == Unrecognized {
				warnings = append(warnings, model.Warning{
					Kind:    model.WarningUnmappedKind,
					Line:    next.Line,
					Label:   next.Kind,
					Message: "unsupported row type referencing " + id + "; merged as-is",
				})
			}
			ch.Links = append(ch.Links, Link{Row: next, Kind: kind})
		}
		chains = append(chains, ch)
	}
	return chains, warnings
}
