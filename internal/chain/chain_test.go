package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cleared-dev/synthledger/internal/model"
	"github.com/cleared-dev/synthledger/internal/rules"
)

func paypalClassifier() Classifier {
	return NewClassifier(rules.PayPal("EUR", "Assets:Paypal", "Liabilities:DirectDebit"))
}

func row(line int, kind, own, ref string) model.StatementRow {
	return model.StatementRow{Line: line, Kind: kind, OwnID: own, ReferenceID: ref}
}

func TestClassify(t *testing.T) {
	c := paypalClassifier()
	assert.Equal(t, SettlementLeg, c.Classify("Bank Deposit to PP Account "))
	assert.Equal(t, SettlementLeg, c.Classify("Algemene opname"))
	assert.Equal(t, ConversionLeg, c.Classify("General Currency Conversion"))
	assert.Equal(t, Unrecognized, c.Classify("Payment Refund"))
	assert.Equal(t, Unrecognized, NewClassifier(&rules.RuleSet{}).Classify(""), "empty conversion label never matches")
}

func TestGroup_LonePrimaries(t *testing.T) {
	rows := []model.StatementRow{
		row(2, "Express Checkout Payment", "a", ""),
		row(3, "Express Checkout Payment", "b", ""),
	}
	chains, warnings := Group(rows, paypalClassifier())
	require.Len(t, chains, 2)
	assert.Empty(t, warnings)
	for _, ch := range chains {
		assert.Empty(t, ch.Links)
	}
}

func TestGroup_SettlementAndConversion(t *testing.T) {
	rows := []model.StatementRow{
		row(2, "PreApproved Payment Bill User Payment", "tx1", "63464334"),
		row(3, "Bank Deposit to PP Account ", "id1", "tx1"),
		row(4, "General Currency Conversion", "id2", "tx1"),
		row(5, "General Currency Conversion", "id3", "tx1"),
		row(6, "Express Checkout Payment", "tx2", ""),
	}
	chains, warnings := Group(rows, paypalClassifier())
	require.Len(t, chains, 2)
	assert.Empty(t, warnings)

	first := chains[0]
	assert.Equal(t, "tx1", first.Primary.OwnID)
	require.Len(t, first.Links, 3)
	assert.Equal(t, SettlementLeg, first.Links[0].Kind)
	assert.Equal(t, ConversionLeg, first.Links[1].Kind)
	assert.Equal(t, ConversionLeg, first.Links[2].Kind)
	assert.Equal(t, 2, first.Count(ConversionLeg))
	assert.Equal(t, 1, first.Count(SettlementLeg))

	assert.Equal(t, "tx2", chains[1].Primary.OwnID)
}

func TestGroup_UnrecognizedLinkWarns(t *testing.T) {
	rows := []model.StatementRow{
		row(2, "Express Checkout Payment", "tx1", ""),
		row(3, "Payment Hold", "h1", "tx1"),
	}
	chains, warnings := Group(rows, paypalClassifier())
	require.Len(t, chains, 1)
	require.Len(t, chains[0].Links, 1)
	assert.Equal(t, Unrecognized, chains[0].Links[0].Kind)

	require.Len(t, warnings, 1)
	assert.Equal(t, model.WarningUnmappedKind, warnings[0].Kind)
	assert.Equal(t, 3, warnings[0].Line)
	assert.Equal(t, "Payment Hold", warnings[0].Label)
}

func TestGroup_OnlyContiguousRowsLink(t *testing.T) {
	rows := []model.StatementRow{
		row(2, "Express Checkout Payment", "tx1", ""),
		row(3, "Express Checkout Payment", "tx2", ""),
		row(4, "Bank Deposit to PP Account", "id1", "tx1"),
	}
	chains, _ := Group(rows, paypalClassifier())
	require.Len(t, chains, 3, "a late reference is not looked back for")
}

func TestGroup_EmptyIDsNeverLink(t *testing.T) {
	rows := []model.StatementRow{
		row(2, "Check-uit", "", ""),
		row(3, "Check-uit", "", ""),
		row(4, "Check-uit", "", ""),
	}
	chains, _ := Group(rows, NewClassifier(rules.OVChipkaart("EUR", "Assets:OV", "")))
	assert.Len(t, chains, 3)
}

func TestGroup_EveryRowInExactlyOneChain(t *testing.T) {
	rows := []model.StatementRow{
		row(2, "Express Checkout Payment", "a", ""),
		row(3, "Bank Deposit to PP Account", "b", "a"),
		row(4, "Express Checkout Payment", "c", ""),
		row(5, "Payment Hold", "d", "c"),
		row(6, "General Currency Conversion", "e", "c"),
		row(7, "Express Checkout Payment", "f", "zzz"),
		row(8, "Express Checkout Payment", "g", "f"),
	}
	chains, _ := Group(rows, paypalClassifier())

	seen := make(map[int]int)
	for _, ch := range chains {
		seen[ch.Primary.Line]++
		for _, l := range ch.Links {
			seen[l.Row.Line]++
		}
	}
	require.Len(t, seen, len(rows))
	for line, n := range seen {
		assert.Equal(t, 1, n, "line %d", line)
	}
}

func TestGroup_Empty(t *testing.T) {
	chains, warnings := Group(nil, paypalClassifier())
	assert.Empty(t, chains)
	assert.Empty(t, warnings)
}

func TestLinkKindString(t *testing.T) {
	assert.Equal(t, "settlement", SettlementLeg.String())
	assert.Equal(t, "conversion", ConversionLeg.String())
	assert.Equal(t, "unrecognized", Unrecognized.String())
}
