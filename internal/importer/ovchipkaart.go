package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cleared-dev/synthledger/internal/model"
)

// OVChipkaartParser parses OV-chipkaart travel history exports.
type OVChipkaartParser struct {
	Currency string // defaults to EUR
}

const (
	ovDateFormat = "02-01-2006"
	ovTopUp      = "Saldo automatisch opgeladen"
	ovHeader     = `"Datum";"Check-in";"Vertrek";"Check-uit";"Bestemming";"Bedrag";"Transactie";"Klasse";"Product";"Opmerkingen";"Naam";"Kaartnummer"`
)

var ovColumns = []string{"Datum", "Vertrek", "Bestemming", "Bedrag", "Transactie", "Product"}

// Format returns the parser name.
func (p *OVChipkaartParser) Format() string { return "ovchipkaart" }

// Identify matches the export's fixed header.
func (p *OVChipkaartParser) Identify(_ string, head []byte) bool {
	return bytes.HasPrefix(head, []byte(ovHeader))
}

// Parse reads a travel history export. Trips are reported as positive
// amounts and become outflows; automatic top-ups keep their sign.
func (p *OVChipkaartParser) Parse(r io.Reader) ([]model.StatementRow, error) {
	cr := csv.NewReader(r)
	cr.Comma = ';'
	cr.FieldsPerRecord = -1

	recs, lines, err := records(cr, 0)
	if err != nil {
		return nil, fmt.Errorf("reading ovchipkaart CSV: %w", err)
	}
	if len(recs) <= 1 {
		return nil, nil
	}

	h := newHeader(recs[0])
	if err := h.require(ovColumns...); err != nil {
		return nil, fmt.Errorf("reading ovchipkaart CSV: %w", err)
	}

	currency := p.Currency
	if currency == "" {
		currency = "EUR"
	}

	rows := make([]model.StatementRow, 0, len(recs)-1)
	for i, rec := range recs[1:] {
		row, err := parseOVRow(h, rec, currency)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", lines[i+1], err)
		}
		row.Line = lines[i+1]
		rows = append(rows, row)
	}
	return rows, nil
}

func parseOVRow(h header, rec []string, currency string) (model.StatementRow, error) {
	date, err := time.Parse(ovDateFormat, h.get(rec, "Datum"))
	if err != nil {
		return model.StatementRow{}, fmt.Errorf("parsing date %q: %w", h.get(rec, "Datum"), err)
	}
	amount, err := parseCommaDecimal(h.get(rec, "Bedrag"))
	if err != nil {
		return model.StatementRow{}, err
	}

	kind := h.get(rec, "Transactie")
	from, to, product := h.get(rec, "Vertrek"), h.get(rec, "Bestemming"), h.get(rec, "Product")

	row := model.StatementRow{
		Date:     date,
		Kind:     kind,
		Currency: currency,
		Extra: map[string]string{
			"origin":      from,
			"destination": to,
			"product":     product,
		},
	}

	if kind == ovTopUp {
		// The destination column says where the top-up happened, e.g. "bij NS".
		row.Narration = strings.TrimSpace(kind + " " + to)
	} else {
		amount = amount.Neg()
		if from != "" && to != "" && product != "" {
			row.Narration = from + " - " + to + " - " + product
		}
	}
	row.Gross = amount
	row.Net = amount
	return row, nil
}
