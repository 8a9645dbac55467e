// Package engine runs one statement file's rows through grouping, synthesis
// and balance anchoring.
package engine

import (
	"cmp"
	"fmt"
	"io"
	"slices"

	"github.com/charmbracelet/log"

	"github.com/cleared-dev/synthledger/internal/anchor"
	"github.com/cleared-dev/synthledger/internal/chain"
	"github.com/cleared-dev/synthledger/internal/model"
	"github.com/cleared-dev/synthledger/internal/rules"
	"github.com/cleared-dev/synthledger/internal/synth"
)

// Result is the output of one file: entries in ascending date order, with
// balance assertions ahead of same-day transactions, and every warning
// raised while producing them.
type Result struct {
	Entries  []model.Entry
	Warnings []model.Warning
}

// Transactions returns the transaction entries of r.
func (r Result) Transactions() []model.Transaction {
	var out []model.Transaction
	for _, e := range r.Entries {
		if t, ok := e.(model.Transaction); ok {
			out = append(out, t)
		}
	}
	return out
}

// Engine extracts ledger entries for one rule set. It holds no state
// between calls.
type Engine struct {
	rules  *rules.RuleSet
	logger *log.Logger
}

// New returns an engine for rs. A nil logger discards output.
func New(rs *rules.RuleSet, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &Engine{rules: rs, logger: logger}
}

// Extract synthesizes the entries for rows, which must be in file order.
// A fatal error aborts the whole file: no entries are returned with it.
func (e *Engine) Extract(rows []model.StatementRow) (Result, error) {
	if e.rules.SkipZeroAmounts {
		rows = dropZeroAmounts(rows)
	}

	chains, warnings := chain.Group(rows, chain.NewClassifier(e.rules))
	e.logger.Debug("grouped rows", "institution", e.rules.Institution, "rows", len(rows), "chains", len(chains))

	s := synth.New(e.rules)
	entries := make([]model.Entry, 0, len(chains)+1)
	for _, ch := range chains {
		txn, w, err := s.Synthesize(ch)
		if err != nil {
			return Result{}, fmt.Errorf("synthesizing %s: %w", e.rules.Institution, err)
		}
		warnings = append(warnings, w...)
		entries = append(entries, txn)
	}

	assertions := anchor.Collect(rows, e.rules, s.Resolver())
	entries = anchor.InsertAll(entries, assertions)
	e.logger.Debug("anchored balances", "assertions", len(assertions))

	slices.SortStableFunc(warnings, func(a, b model.Warning) int {
		return cmp.Compare(a.Line, b.Line)
	})
	for _, w := range warnings {
		e.logger.Warn(w.Message, "line", w.Line, "kind", w.Kind, "label", w.Label)
	}

	return Result{Entries: entries, Warnings: warnings}, nil
}

// dropZeroAmounts returns rows without the zero-amount rows that take no part
// in a chain. A zero row that links to, or is linked from, another row is kept
// so its chain stays whole.
func dropZeroAmounts(rows []model.StatementRow) []model.StatementRow {
	referenced := make(map[string]bool)
	for _, r := range rows {
		if r.ReferenceID != "" {
			referenced[r.ReferenceID] = true
		}
	}
	return slices.DeleteFunc(slices.Clone(rows), func(r model.StatementRow) bool {
		if !r.Net.IsZero() || r.ReferenceID != "" {
			return false
		}
		return r.OwnID == "" || !referenced[r.OwnID]
	})
}
