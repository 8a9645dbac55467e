// Package synth turns merge chains into balanced ledger transactions.
package synth

import (
	"fmt"

	"github.com/cleared-dev/synthledger/internal/chain"
	"github.com/cleared-dev/synthledger/internal/costbasis"
	"github.com/cleared-dev/synthledger/internal/model"
	"github.com/cleared-dev/synthledger/internal/rules"
)

type role int

const (
	rolePrimary role = iota
	roleCounter
	roleExtra
	roleLink
)

// leg is a posting under construction, tagged with where it came from so
// folding never depends on posting positions.
type leg struct {
	posting model.Posting
	role    role
	link    int // index into Chain.Links for roleLink
}

// Synthesizer folds merge chains into transactions for one rule set.
type Synthesizer struct {
	rules    *rules.RuleSet
	resolver *costbasis.Resolver
}

// New returns a synthesizer for rs.
func New(rs *rules.RuleSet) *Synthesizer {
	return &Synthesizer{rules: rs, resolver: costbasis.New(rs)}
}

// Resolver returns the cost-basis resolver the synthesizer uses.
func (s *Synthesizer) Resolver() *costbasis.Resolver {
	return s.resolver
}

// Synthesize produces exactly one transaction for ch. It returns a
// *ChainShapeError when linked rows cannot be folded and an *ImbalanceError
// when the result would not balance.
func (s *Synthesizer) Synthesize(ch chain.Chain) (model.Transaction, []model.Warning, error) {
	if n := ch.Count(chain.ConversionLeg); n != 0 && n != 2 {
		return model.Transaction{}, nil, s.shapeError(ch, fmt.Sprintf("expected a pair of conversion legs, got %d", n))
	}

	res, warnings := s.resolver.Resolve(ch.Primary)
	legs := s.base(ch, res)

	// Links resolve last-discovered first.
	stack := make([]int, len(ch.Links))
	for i := range ch.Links {
		stack[i] = i
	}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		switch ch.Links[top].Kind {
		case chain.SettlementLeg:
			var w *model.Warning
			legs, w = s.settle(legs, ch.Links[top].Row, top)
			if w != nil {
				warnings = append(warnings, *w)
			}
		case chain.ConversionLeg:
			if top == 0 || ch.Links[top-1].Kind != chain.ConversionLeg {
				return model.Transaction{}, nil, s.shapeError(ch, "conversion legs are not adjacent")
			}
			stack = stack[:len(stack)-1]

			var err error
			legs, err = s.convert(ch, legs, top-1, top)
			if err != nil {
				return model.Transaction{}, nil, err
			}
		case chain.Unrecognized:
			// Already merged with its own base postings.
		}
	}

	postings := make([]model.Posting, len(legs))
	for i, l := range legs {
		postings[i] = l.posting
	}
	if !Balanced(postings) {
		residuals, open := Residuals(postings)
		return model.Transaction{}, nil, &ImbalanceError{
			Line:      ch.Primary.Line,
			Date:      ch.Primary.Date,
			Residuals: residuals,
			Open:      open,
		}
	}

	txn := model.Transaction{
		Date:      ch.Primary.Date,
		Flag:      model.FlagCleared,
		Payee:     ch.Primary.Payee,
		Narration: ch.Primary.Narration,
		Postings:  postings,
		Line:      ch.Primary.Line,
		SourceID:  ch.Primary.OwnID,
	}
	if ch.Primary.Pending {
		txn.Flag = model.FlagPending
	}
	if res.Narration != "" {
		txn.Narration = res.Narration
	}
	return txn, warnings, nil
}

// base lays out the resolved primary legs followed by one entry per link.
// With a settlement leg in the chain the money did not come from the
// recognized account, so its leg is left out.
func (s *Synthesizer) base(ch chain.Chain, res costbasis.Resolution) []leg {
	legs := make([]leg, 0, 2+len(res.Extras)+2*len(ch.Links))
	if ch.Count(chain.SettlementLeg) == 0 {
		legs = append(legs, leg{posting: res.Primary, role: rolePrimary})
	}
	legs = append(legs, leg{posting: res.Counter, role: roleCounter})
	for _, p := range res.Extras {
		legs = append(legs, leg{posting: p, role: roleExtra})
	}

	for i, l := range ch.Links {
		if l.Kind == chain.Unrecognized {
			primary, counter := s.resolver.Base(l.Row)
			legs = append(legs,
				leg{posting: primary, role: roleLink, link: i},
				leg{posting: counter, role: roleLink, link: i},
			)
			continue
		}
		p := model.NewPosting(s.resolver.PrimaryAccount(l.Row), l.Row.Amount())
		legs = append(legs, leg{posting: p, role: roleLink, link: i})
	}
	return legs
}

// settle negates the settlement row's leg and books it to the settlement
// account, discharging the placeholder side of the transaction.
func (s *Synthesizer) settle(legs []leg, row model.StatementRow, link int) ([]leg, *model.Warning) {
	i := find(legs, roleLink, link)
	if i < 0 {
		return legs, nil
	}

	account := s.rules.Accounts.Settlement
	var w *model.Warning
	if account == "" {
		account = s.rules.Accounts.Counterparty
		w = &model.Warning{
			Kind:    model.WarningUnresolvedSettlement,
			Line:    row.Line,
			Label:   row.Kind,
			Message: "no settlement account configured; booked to " + account,
		}
	}

	out := append([]leg(nil), legs...)
	p := out[i].posting
	out[i].posting = p.WithUnits(p.Units.Neg()).WithAccount(account)
	return out, w
}

// convert absorbs a pair of conversion legs into the cost of the counter leg.
// The earlier leg must pay out the home currency and the later one must
// receive exactly what the counter leg holds.
func (s *Synthesizer) convert(ch chain.Chain, legs []leg, first, second int) ([]leg, error) {
	fi, si, ci := find(legs, roleLink, first), find(legs, roleLink, second), find(legs, roleCounter, 0)
	if fi < 0 || si < 0 || ci < 0 {
		return nil, s.shapeError(ch, "conversion without a counter leg")
	}
	home := *legs[fi].posting.Units
	foreign := *legs[si].posting.Units
	counter := legs[ci].posting

	if home.Currency != s.rules.Currency {
		return nil, s.shapeError(ch, fmt.Sprintf("conversion pays out %s, expected home currency %s", home.Currency, s.rules.Currency))
	}
	if counter.Units == nil || !foreign.Equal(*counter.Units) {
		return nil, s.shapeError(ch, fmt.Sprintf("conversion yields %s but the counter leg holds %s", foreign, unitsOf(counter)))
	}

	out := make([]leg, 0, len(legs)-2)
	for i, l := range legs {
		switch {
		case i == fi || i == si:
			continue
		case i == ci:
			l.posting = l.posting.WithCost(model.FixedTotal(home.Number.Abs(), home.Currency))
		case l.role == rolePrimary && l.posting.Units != nil && l.posting.Units.Currency == foreign.Currency:
			// Paid from the institution balance: the outflow was in the home currency.
			l.posting = l.posting.WithUnits(home)
		}
		out = append(out, l)
	}
	return out, nil
}

func (s *Synthesizer) shapeError(ch chain.Chain, reason string) error {
	return &ChainShapeError{Line: ch.Primary.Line, OwnID: ch.Primary.OwnID, Reason: reason}
}

func find(legs []leg, r role, link int) int {
	for i, l := range legs {
		if l.role == r && (r != roleLink || l.link == link) {
			return i
		}
	}
	return -1
}

func unitsOf(p model.Posting) string {
	if p.Units == nil {
		return "nothing"
	}
	return p.Units.String()
}
