package model

import "fmt"

// WarningKind classifies a non-fatal problem found while synthesizing.
type WarningKind string

const (
	WarningUnmappedKind         WarningKind = "unmapped-kind"
	WarningUnresolvedSettlement WarningKind = "unresolved-settlement"
	WarningUnknownCommodity     WarningKind = "unknown-commodity"
)

// Warning is returned alongside the entries; the affected entry is still
// produced.
type Warning struct {
	Kind    WarningKind
	Line    int
	Label   string
	Message string
}

func (w Warning) String() string {
	return fmt.Sprintf("line %d: %s %q: %s", w.Line, w.Kind, w.Label, w.Message)
}
