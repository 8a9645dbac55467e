package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/cleared-dev/synthledger/internal/model"
)

// ASNBankParser parses ASN Bank CSV exports. The export has no header row.
type ASNBankParser struct{}

const (
	asnDateFormat       = "02-01-2006"
	asnMinFields        = 18
	asnColDate          = 0
	asnColOwnAccount    = 1
	asnColOtherAccount  = 2
	asnColPayee         = 3
	asnColBalanceCur    = 7
	asnColBalanceBefore = 8
	asnColCurrency      = 9
	asnColAmount        = 10
	asnColBookingCode   = 14
	asnColJournal       = 15
	asnColNarration     = 17
)

var (
	asnIdentifyRe = regexp.MustCompile(`^\d\d-\d\d-\d\d\d\d,`)
	asnFundRe     = regexp.MustCompile(`^Voor\s+u\s+([a-z]+kocht)\s+via\s+Euronext\s+Fund\s+Services:\s+(\d+ \d+)\s+Participaties\s+(.*)\s+a\s+EUR\s+(\d+ \d+).`)
)

// Format returns the parser name.
func (p *ASNBankParser) Format() string { return "asnbank" }

// Identify matches a file starting with a dd-mm-yyyy date field.
func (p *ASNBankParser) Identify(_ string, head []byte) bool {
	return asnIdentifyRe.Match(head)
}

// Parse reads an ASN export. Column 8 holds the balance before the row, so
// the balance of a row is the start-of-day balance of its date.
func (p *ASNBankParser) Parse(r io.Reader) ([]model.StatementRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	recs, lines, err := records(cr, 0)
	if err != nil {
		return nil, fmt.Errorf("reading asnbank CSV: %w", err)
	}

	var rows []model.StatementRow
	for i, rec := range recs {
		row, err := parseASNRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", lines[i], err)
		}
		row.Line = lines[i]
		rows = append(rows, row)
	}
	return rows, nil
}

func parseASNRow(rec []string) (model.StatementRow, error) {
	if len(rec) < asnMinFields {
		return model.StatementRow{}, fmt.Errorf("expected at least %d fields, got %d", asnMinFields, len(rec))
	}

	date, err := time.Parse(asnDateFormat, rec[asnColDate])
	if err != nil {
		return model.StatementRow{}, fmt.Errorf("parsing date %q: %w", rec[asnColDate], err)
	}
	amount, err := parseDecimal(rec[asnColAmount])
	if err != nil {
		return model.StatementRow{}, err
	}
	balance, err := parseDecimal(rec[asnColBalanceBefore])
	if err != nil {
		return model.StatementRow{}, err
	}

	code := strings.TrimSpace(rec[asnColBookingCode])
	row := model.StatementRow{
		Date:            date,
		Kind:            code,
		OwnID:           strings.TrimSpace(rec[asnColJournal]),
		Payee:           strings.TrimSpace(rec[asnColPayee]),
		Narration:       unquoteNarration(rec[asnColNarration]),
		Account:         strings.TrimSpace(rec[asnColOwnAccount]),
		Counterparty:    strings.TrimSpace(rec[asnColOtherAccount]),
		Currency:        strings.TrimSpace(rec[asnColCurrency]),
		Gross:           amount,
		Net:             amount,
		RunningBalance:  &balance,
		BalanceCurrency: strings.TrimSpace(rec[asnColBalanceCur]),
		Extra:           map[string]string{"booking_code": code},
	}

	if code == "EFF" {
		if err := parseFundTrade(&row); err != nil {
			return model.StatementRow{}, err
		}
	}
	return row, nil
}

// unquoteNarration strips the single quotes ASN wraps narrations in.
// "GEEN" (none) is written without them.
func unquoteNarration(s string) string {
	if len(s) < 2 || s[0] != '\'' || s[len(s)-1] != '\'' {
		return s
	}
	return s[1 : len(s)-1]
}

// parseFundTrade reads share count, fund and unit price from the narration
// of an EFF row and re-labels the kind as EFF:gekocht or EFF:verkocht.
// Narrations that do not match are left as plain EFF rows.
func parseFundTrade(row *model.StatementRow) error {
	m := asnFundRe.FindStringSubmatch(row.Narration)
	if m == nil {
		return nil
	}

	shares, err := parseDecimal(strings.Replace(m[2], " ", ".", 1))
	if err != nil {
		return fmt.Errorf("share count: %w", err)
	}
	price, err := parseDecimal(strings.Replace(m[4], " ", ".", 1))
	if err != nil {
		return fmt.Errorf("share price: %w", err)
	}

	row.Kind = "EFF:" + m[1]
	row.Secondary = &model.Amount{Number: shares, Currency: strings.ReplaceAll(m[3], " ", "")}
	row.UnitPrice = price
	row.PriceCurrency = "EUR"
	row.Total = row.Net.Abs()
	return nil
}
