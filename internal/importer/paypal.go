package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/cleared-dev/synthledger/internal/model"
)

// PayPalParser parses PayPal activity downloads (Download.CSV).
type PayPalParser struct{}

const paypalDateFormat = "02/01/2006"

var paypalColumns = []string{
	"Date", "Name", "Type", "Status", "Currency", "Gross", "Fee", "Net",
	"Transaction ID", "Reference Txn ID", "Balance", "Subject",
}

// Format returns the parser name.
func (p *PayPalParser) Format() string { return "paypal" }

// Identify matches the file name PayPal gives its downloads.
func (p *PayPalParser) Identify(name string, head []byte) bool {
	if strings.EqualFold(filepath.Base(name), "Download.CSV") {
		return true
	}
	head = bytes.TrimPrefix(head, []byte("\xef\xbb\xbf"))
	return bytes.HasPrefix(head, []byte(`"Date","Time","TimeZone","Name","Type"`))
}

// Parse reads a PayPal CSV. The export starts with a UTF-8 byte order mark
// and writes amounts with a decimal comma.
func (p *PayPalParser) Parse(r io.Reader) ([]model.StatementRow, error) {
	cr := csv.NewReader(transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	cr.FieldsPerRecord = -1

	recs, lines, err := records(cr, 0)
	if err != nil {
		return nil, fmt.Errorf("reading paypal CSV: %w", err)
	}
	if len(recs) <= 1 {
		return nil, nil
	}

	h := newHeader(recs[0])
	if err := h.require(paypalColumns...); err != nil {
		return nil, fmt.Errorf("reading paypal CSV: %w", err)
	}

	rows := make([]model.StatementRow, 0, len(recs)-1)
	for i, rec := range recs[1:] {
		row, err := parsePayPalRow(h, rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", lines[i+1], err)
		}
		row.Line = lines[i+1]
		rows = append(rows, row)
	}
	return rows, nil
}

func parsePayPalRow(h header, rec []string) (model.StatementRow, error) {
	date, err := time.Parse(paypalDateFormat, h.get(rec, "Date"))
	if err != nil {
		return model.StatementRow{}, fmt.Errorf("parsing date %q: %w", h.get(rec, "Date"), err)
	}

	var amounts [3]decimal.Decimal
	for i, col := range []string{"Gross", "Fee", "Net"} {
		if amounts[i], err = parseCommaDecimal(h.get(rec, col)); err != nil {
			return model.StatementRow{}, err
		}
	}

	row := model.StatementRow{
		Date:            date,
		Kind:            h.get(rec, "Type"),
		OwnID:           h.get(rec, "Transaction ID"),
		ReferenceID:     h.get(rec, "Reference Txn ID"),
		Pending:         strings.EqualFold(h.get(rec, "Status"), "Pending"),
		Payee:           h.get(rec, "Name"),
		Narration:       h.get(rec, "Subject"),
		Currency:        h.get(rec, "Currency"),
		Gross:           amounts[0],
		Fee:             amounts[1].Abs(),
		Net:             amounts[2],
		BalanceCurrency: h.get(rec, "Currency"),
		Extra: map[string]string{
			"time":     h.get(rec, "Time"),
			"timezone": h.get(rec, "TimeZone"),
		},
	}

	// The other party's address identifies the counterparty.
	if row.Net.IsNegative() {
		row.Counterparty = h.get(rec, "To Email Address")
	} else {
		row.Counterparty = h.get(rec, "From Email Address")
	}

	if s := h.get(rec, "Balance"); s != "" {
		balance, err := parseCommaDecimal(s)
		if err != nil {
			return model.StatementRow{}, err
		}
		row.RunningBalance = &balance
	}
	return row, nil
}
