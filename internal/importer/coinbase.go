package importer

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/synthledger/internal/model"
)

// CoinbaseParser parses Coinbase transaction reports.
type CoinbaseParser struct{}

const (
	coinbaseTimeFormat   = "2006-01-02T15:04:05Z"
	coinbaseHeaderPrefix = "Timestamp,"
)

var coinbaseColumns = []string{
	"Timestamp", "Transaction Type", "Asset", "Quantity Transacted",
	"Spot Price Currency", "Spot Price at Transaction", "Subtotal",
	"Total (inclusive of fees)", "Fees", "Notes",
}

var coinbaseConvertRe = regexp.MustCompile(`^Converted [0-9.]+ [A-Z]+ to ([0-9.]+) ([A-Z]+)$`)

// Format returns the parser name.
func (p *CoinbaseParser) Format() string { return "coinbase" }

// Identify matches the report name Coinbase generates.
func (p *CoinbaseParser) Identify(name string, head []byte) bool {
	return strings.HasPrefix(filepath.Base(name), "Coinbase-") ||
		bytes.Contains(head, []byte(coinbaseHeaderPrefix+"Transaction Type,Asset"))
}

// Parse reads a Coinbase report. The column header follows a free-text
// preamble; everything before it is skipped.
func (p *CoinbaseParser) Parse(r io.Reader) ([]model.StatementRow, error) {
	br := bufio.NewReader(r)
	skipped := 0
	for {
		peek, err := br.Peek(len(coinbaseHeaderPrefix))
		if err == nil && string(peek) == coinbaseHeaderPrefix {
			break
		}
		if _, err := br.ReadString('\n'); err != nil {
			if err == io.EOF {
				return nil, nil
			}
			return nil, fmt.Errorf("reading coinbase report: %w", err)
		}
		skipped++
	}

	cr := csv.NewReader(br)
	recs, lines, err := records(cr, skipped)
	if err != nil {
		return nil, fmt.Errorf("reading coinbase CSV: %w", err)
	}
	if len(recs) <= 1 {
		return nil, nil
	}

	h := newHeader(recs[0])
	if err := h.require(coinbaseColumns...); err != nil {
		return nil, fmt.Errorf("reading coinbase CSV: %w", err)
	}

	rows := make([]model.StatementRow, 0, len(recs)-1)
	for i, rec := range recs[1:] {
		row, err := parseCoinbaseRow(h, rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", lines[i+1], err)
		}
		row.Line = lines[i+1]
		rows = append(rows, row)
	}
	return rows, nil
}

func parseCoinbaseRow(h header, rec []string) (model.StatementRow, error) {
	ts, err := time.Parse(coinbaseTimeFormat, h.get(rec, "Timestamp"))
	if err != nil {
		return model.StatementRow{}, fmt.Errorf("parsing date %q: %w", h.get(rec, "Timestamp"), err)
	}

	qty, err := parseDecimal(h.get(rec, "Quantity Transacted"))
	if err != nil {
		return model.StatementRow{}, err
	}
	price, err := parseDecimal(h.get(rec, "Spot Price at Transaction"))
	if err != nil {
		return model.StatementRow{}, err
	}

	var optional [3]decimal.Decimal
	for i, col := range []string{"Subtotal", "Total (inclusive of fees)", "Fees"} {
		if optional[i], err = parseOptionalDecimal(h.get(rec, col)); err != nil {
			return model.StatementRow{}, err
		}
	}

	row := model.StatementRow{
		Date:          time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, time.UTC),
		Kind:          h.get(rec, "Transaction Type"),
		Narration:     h.get(rec, "Notes"),
		Currency:      h.get(rec, "Asset"),
		Gross:         qty,
		Net:           qty,
		Subtotal:      optional[0],
		Total:         optional[1],
		Fee:           optional[2].Abs(),
		UnitPrice:     price,
		PriceCurrency: h.get(rec, "Spot Price Currency"),
		Extra:         map[string]string{"timestamp": h.get(rec, "Timestamp")},
	}

	if row.Kind == "Convert" {
		m := coinbaseConvertRe.FindStringSubmatch(row.Narration)
		if m == nil {
			return model.StatementRow{}, fmt.Errorf("conversion target not found in notes %q", row.Narration)
		}
		units, err := parseDecimal(m[1])
		if err != nil {
			return model.StatementRow{}, err
		}
		row.Secondary = &model.Amount{Number: units, Currency: m[2]}
	}
	return row, nil
}
