package synth

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// ChainShapeError reports a merge chain the synthesizer cannot fold: unpaired
// or misordered conversion legs, or a currency precondition that fails.
type ChainShapeError struct {
	Line   int
	OwnID  string
	Reason string
}

func (e *ChainShapeError) Error() string {
	return fmt.Sprintf("line %d [%s]: malformed chain: %s", e.Line, e.OwnID, e.Reason)
}

// ImbalanceError reports a synthesized transaction whose posting weights do
// not net to zero.
type ImbalanceError struct {
	Line      int
	Date      time.Time
	Residuals map[string]decimal.Decimal // currency -> non-zero residual
	Open      int                        // postings left for the ledger to solve
}

func (e *ImbalanceError) Error() string {
	currencies := make([]string, 0, len(e.Residuals))
	for cur := range e.Residuals {
		currencies = append(currencies, cur)
	}
	sort.Strings(currencies)

	parts := make([]string, 0, len(currencies))
	for _, cur := range currencies {
		parts = append(parts, e.Residuals[cur].String()+" "+cur)
	}
	msg := strings.Join(parts, ", ")
	if e.Open > 1 {
		msg = fmt.Sprintf("%d postings without units", e.Open)
	}
	return fmt.Sprintf("line %d (%s): transaction does not balance: %s",
		e.Line, e.Date.Format("2006-01-02"), msg)
}
