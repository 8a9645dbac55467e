package importer

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOVChipkaartParser_Parse(t *testing.T) {
	rows, err := (&OVChipkaartParser{}).Parse(readFixture(t, "ovchipkaart.csv"))
	require.NoError(t, err)
	require.Len(t, rows, 3)

	topUp := rows[0]
	assert.Equal(t, 2, topUp.Line)
	assert.Equal(t, time.Date(2021, 3, 29, 0, 0, 0, 0, time.UTC), topUp.Date)
	assert.Equal(t, "Saldo automatisch opgeladen", topUp.Kind)
	assert.Equal(t, "10.00", topUp.Net.StringFixed(2), "top-ups keep their sign")
	assert.Equal(t, "Saldo automatisch opgeladen bij NS", topUp.Narration)
	assert.Equal(t, "EUR", topUp.Currency)

	checkIn := rows[1]
	assert.True(t, checkIn.Net.IsZero(), "zero rows are kept by the parser")
	assert.Empty(t, checkIn.Narration, "incomplete trips get no narration")

	trip := rows[2]
	assert.Equal(t, 4, trip.Line)
	assert.Equal(t, "Check-uit", trip.Kind)
	assert.Equal(t, "-8.88", trip.Net.StringFixed(2), "trips become outflows")
	assert.Equal(t, "Eindhoven Centraal - Nijmegen - Transactiebeschrijving", trip.Narration)
	assert.Equal(t, "Nijmegen", trip.Extra["destination"])
}

func TestOVChipkaartParser_Currency(t *testing.T) {
	rows, err := (&OVChipkaartParser{Currency: "OV"}).Parse(readFixture(t, "ovchipkaart.csv"))
	require.NoError(t, err)
	require.NotEmpty(t, rows)
	assert.Equal(t, "OV", rows[0].Currency)
}

func TestOVChipkaartParser_HeaderOnly(t *testing.T) {
	rows, err := (&OVChipkaartParser{}).Parse(strings.NewReader(ovHeader + "\n"))
	require.NoError(t, err)
	assert.Nil(t, rows)
}

func TestOVChipkaartParser_MissingColumn(t *testing.T) {
	_, err := (&OVChipkaartParser{}).Parse(strings.NewReader("\"Datum\";\"Bedrag\"\n\"29-03-2021\";\"1,00\"\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), `missing column "Vertrek"`)
}
