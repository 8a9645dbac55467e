package commands

import (
	"github.com/cleared-dev/synthledger/internal/engine"
	"github.com/cleared-dev/synthledger/internal/model"
)

const dateFormat = "2006-01-02"

// fileDocument is the YAML document written for one extracted file.
type fileDocument struct {
	File     string          `yaml:"file"`
	Source   string          `yaml:"source"`
	Entries  []entryDocument `yaml:"entries"`
	Warnings []string        `yaml:"warnings,omitempty"`
}

// entryDocument is either a transaction or a balance assertion, told apart by Type.
type entryDocument struct {
	Type      string            `yaml:"type"`
	Date      string            `yaml:"date"`
	Flag      string            `yaml:"flag,omitempty"`
	Payee     string            `yaml:"payee,omitempty"`
	Narration string            `yaml:"narration,omitempty"`
	Account   string            `yaml:"account,omitempty"`
	Amount    string            `yaml:"amount,omitempty"`
	Postings  []postingDocument `yaml:"postings,omitempty"`
	SourceID  string            `yaml:"source_id,omitempty"`
	Line      int               `yaml:"line"`
}

type postingDocument struct {
	Account string `yaml:"account"`
	Units   string `yaml:"units,omitempty"` // empty: interpolated by the ledger
	Cost    string `yaml:"cost,omitempty"`
	Price   string `yaml:"price,omitempty"`
}

func newFileDocument(file, source string, r engine.Result) fileDocument {
	doc := fileDocument{File: file, Source: source, Entries: make([]entryDocument, 0, len(r.Entries))}
	for _, e := range r.Entries {
		doc.Entries = append(doc.Entries, newEntryDocument(e))
	}
	for _, w := range r.Warnings {
		doc.Warnings = append(doc.Warnings, w.String())
	}
	return doc
}

func newEntryDocument(e model.Entry) entryDocument {
	switch e := e.(type) {
	case model.Transaction:
		d := entryDocument{
			Type:      "transaction",
			Date:      e.Date.Format(dateFormat),
			Flag:      string(e.Flag),
			Payee:     e.Payee,
			Narration: e.Narration,
			SourceID:  e.SourceID,
			Line:      e.Line,
		}
		for _, p := range e.Postings {
			d.Postings = append(d.Postings, newPostingDocument(p))
		}
		return d
	case model.BalanceAssertion:
		return entryDocument{
			Type:    "balance",
			Date:    e.Date.Format(dateFormat),
			Account: e.Account,
			Amount:  e.Amount.String(),
			Line:    e.Line,
		}
	}
	return entryDocument{Date: e.EntryDate().Format(dateFormat)}
}

// newPostingDocument renders lot costs in ledger notation: {} reduces an open
// lot, {{total}} and {unit} open one.
func newPostingDocument(p model.Posting) postingDocument {
	d := postingDocument{Account: p.Account}
	if p.Units != nil {
		d.Units = p.Units.String()
	}
	cost := model.Amount{Number: p.Cost.Number, Currency: p.Cost.Currency}
	switch p.Cost.Kind {
	case model.CostReduceOpenLot:
		d.Cost = "{}"
	case model.CostFixedTotal:
		d.Cost = "{{" + cost.String() + "}}"
	case model.CostFixedUnit:
		d.Cost = "{" + cost.String() + "}"
	}
	if p.Price != nil {
		d.Price = p.Price.String()
	}
	return d
}
