package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPayPalParser_Parse(t *testing.T) {
	p := &PayPalParser{}
	rows, err := p.Parse(readFixture(t, "paypal_download.csv"))
	require.NoError(t, err)
	require.Len(t, rows, 6)

	first := rows[0]
	assert.Equal(t, 2, first.Line)
	assert.Equal(t, time.Date(2019, 8, 12, 0, 0, 0, 0, time.UTC), first.Date)
	assert.Equal(t, "Express Checkout Payment", first.Kind)
	assert.Equal(t, "1AA11111AA1111111", first.OwnID)
	assert.Empty(t, first.ReferenceID)
	assert.Equal(t, "Webshop BV", first.Payee)
	assert.Equal(t, "Order 1001", first.Narration)
	assert.Equal(t, "EUR", first.Currency)
	assert.Equal(t, "-30.00", first.Net.StringFixed(2))
	assert.Equal(t, "shop@example.com", first.Counterparty, "outgoing payments name the recipient")
	require.NotNil(t, first.RunningBalance)
	assert.Equal(t, "70.00", first.RunningBalance.StringFixed(2))
	assert.Equal(t, "EUR", first.BalanceCurrency)
	assert.False(t, first.Pending)

	deposit := rows[2]
	assert.Equal(t, "Bank Deposit to PP Account", deposit.Kind, "fields are trimmed")
	assert.Equal(t, "2BB22222BB2222222", deposit.ReferenceID)
	assert.Equal(t, rows[1].OwnID, deposit.ReferenceID)

	usd := rows[4]
	assert.Equal(t, "USD", usd.Currency)
	assert.Equal(t, "15.00", usd.Net.StringFixed(2))

	last := rows[5]
	assert.Equal(t, 7, last.Line)
	assert.True(t, last.Pending)
	assert.Equal(t, "0.50", last.Fee.StringFixed(2), "fees are stored unsigned")
	assert.Equal(t, "25.00", last.Gross.StringFixed(2))
	assert.Equal(t, "24.50", last.Net.StringFixed(2))
	assert.Equal(t, "friend@example.com", last.Counterparty, "incoming payments name the sender")
	assert.Equal(t, "09:30:00", last.Extra["time"])
}

func TestPayPalParser_EmptyFile(t *testing.T) {
	p := &PayPalParser{}
	rows, err := p.Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Nil(t, rows)

	rows, err = p.Parse(strings.NewReader("\xef\xbb\xbf\"Date\",\"Time\"\n"))
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestPayPalParser_MissingColumn(t *testing.T) {
	csv := "\"Date\",\"Name\"\n\"12/08/2019\",\"x\"\n"
	_, err := (&PayPalParser{}).Parse(strings.NewReader(csv))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing column")
}

func TestPayPalParser_BadDate(t *testing.T) {
	header := `"Date","Time","TimeZone","Name","Type","Status","Currency","Gross","Fee","Net","From Email Address","To Email Address","Transaction ID","Reference Txn ID","Receipt ID","Balance","Subject"`
	row := `"2019-08-12","","","","Express Checkout Payment","Completed","EUR","-1,00","0,00","-1,00","","","X","","","",""`
	_, err := (&PayPalParser{}).Parse(strings.NewReader(header + "\n" + row + "\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 2")
	assert.Contains(t, err.Error(), "parsing date")
}

func TestPayPalParser_EmptyBalance(t *testing.T) {
	header := `"Date","Time","TimeZone","Name","Type","Status","Currency","Gross","Fee","Net","From Email Address","To Email Address","Transaction ID","Reference Txn ID","Receipt ID","Balance","Subject"`
	row := `"12/08/2019","","","","Express Checkout Payment","Completed","EUR","-1,00","0,00","-1,00","","","X","","","",""`
	rows, err := (&PayPalParser{}).Parse(strings.NewReader(header + "\n" + row + "\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].RunningBalance)
}

func TestPayPalParser_Format(t *testing.T) {
	assert.Equal(t, "paypal", (&PayPalParser{}).Format())
}
