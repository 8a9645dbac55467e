package commands_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type postingOut struct {
	Account string `yaml:"account"`
	Units   string `yaml:"units"`
	Cost    string `yaml:"cost"`
	Price   string `yaml:"price"`
}

type entryOut struct {
	Type     string       `yaml:"type"`
	Date     string       `yaml:"date"`
	Flag     string       `yaml:"flag"`
	Account  string       `yaml:"account"`
	Amount   string       `yaml:"amount"`
	Postings []postingOut `yaml:"postings"`
	Line     int          `yaml:"line"`
}

type documentOut struct {
	File     string     `yaml:"file"`
	Source   string     `yaml:"source"`
	Entries  []entryOut `yaml:"entries"`
	Warnings []string   `yaml:"warnings"`
}

func decodeDocuments(t *testing.T, out string) []documentOut {
	t.Helper()
	dec := yaml.NewDecoder(strings.NewReader(out))
	var docs []documentOut
	for {
		var d documentOut
		err := dec.Decode(&d)
		if errors.Is(err, io.EOF) {
			return docs
		}
		require.NoError(t, err)
		docs = append(docs, d)
	}
}

// newProject initializes a project and copies fixtures into its import directory.
func newProject(t *testing.T, fixtures ...string) string {
	t.Helper()
	dir := t.TempDir()
	_, _, err := runSynthledger(t, "init", dir)
	require.NoError(t, err)

	for _, f := range fixtures {
		data, err := os.ReadFile(filepath.Join("../../testdata", f))
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "import", f), data, 0o644))
	}
	return dir
}

func TestExtract_PayPal(t *testing.T) {
	dir := newProject(t, "paypal_download.csv")

	out, _, err := runSynthledger(t, "extract", "--dir", dir)
	require.NoError(t, err)

	docs := decodeDocuments(t, out)
	require.Len(t, docs, 1)
	doc := docs[0]
	assert.Equal(t, "paypal_download.csv", doc.File)
	assert.Equal(t, "paypal", doc.Source)
	assert.Empty(t, doc.Warnings)

	require.Len(t, doc.Entries, 4)
	assert.Equal(t, []string{"transaction", "transaction", "transaction", "balance"},
		[]string{doc.Entries[0].Type, doc.Entries[1].Type, doc.Entries[2].Type, doc.Entries[3].Type})

	conversion := doc.Entries[1]
	assert.Equal(t, "2019-08-13", conversion.Date)
	assert.Equal(t, 3, conversion.Line)
	assert.Equal(t, []postingOut{
		{Account: "Expenses:UnknownAccount", Units: "15 USD", Cost: "{{13.92 EUR}}"},
		{Account: "Assets:Bank:Checking", Units: "-13.92 EUR"},
	}, conversion.Postings)

	assert.Equal(t, "!", doc.Entries[2].Flag, "pending payment")

	balance := doc.Entries[3]
	assert.Equal(t, "2019-08-15", balance.Date, "anchored the day after the last row")
	assert.Equal(t, "Assets:PayPal", balance.Account)
	assert.Equal(t, "94.5 EUR", balance.Amount)
}

func TestExtract_ExplicitSourceAndFile(t *testing.T) {
	dir := newProject(t)
	file, err := filepath.Abs("../../testdata/coinbase_report.csv")
	require.NoError(t, err)

	out, _, err := runSynthledger(t, "extract", "--dir", dir, "--source", "coinbase", file)
	require.NoError(t, err)

	docs := decodeDocuments(t, out)
	require.Len(t, docs, 1)
	assert.Equal(t, "coinbase", docs[0].Source)
	require.Len(t, docs[0].Entries, 7, "no balance assertions for coinbase")

	buy := docs[0].Entries[0]
	require.NotEmpty(t, buy.Postings)
	assert.Equal(t, "Assets:Coinbase:ETH", buy.Postings[0].Account)
	assert.Equal(t, "{{30 EUR}}", buy.Postings[0].Cost)
	assert.Equal(t, "2000 EUR", buy.Postings[0].Price)
}

func TestExtract_ContinuesAfterFailure(t *testing.T) {
	dir := newProject(t, "paypal_download.csv")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "import", "notes.csv"), []byte("a,b,c\n"), 0o644))

	out, stderr, err := runSynthledger(t, "extract", "--dir", dir, "--mark-processed")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 files failed")
	assert.Contains(t, stderr, "notes.csv")

	docs := decodeDocuments(t, out)
	require.Len(t, docs, 1)
	assert.Equal(t, "paypal_download.csv", docs[0].File)

	_, err = os.Stat(filepath.Join(dir, "import", "processed", "paypal_download.csv"))
	assert.NoError(t, err, "extracted file is moved")
	_, err = os.Stat(filepath.Join(dir, "import", "notes.csv"))
	assert.NoError(t, err, "failed file stays in place")
}

func TestExtract_WithoutMarkProcessed(t *testing.T) {
	dir := newProject(t, "paypal_download.csv")

	_, _, err := runSynthledger(t, "extract", "--dir", dir)
	require.NoError(t, err)

	_, err = os.Stat(filepath.Join(dir, "import", "paypal_download.csv"))
	assert.NoError(t, err)
}

func TestExtract_ParseErrorNamesFile(t *testing.T) {
	dir := newProject(t)
	bad := filepath.Join(t.TempDir(), "broken.csv")
	require.NoError(t, os.WriteFile(bad, []byte("\"Date\",\"Name\"\n\"x\",\"y\"\n"), 0o644))

	_, stderr, err := runSynthledger(t, "extract", "--dir", dir, "--source", "paypal", bad)
	require.Error(t, err)
	assert.Contains(t, stderr, "broken.csv")
	assert.Contains(t, stderr, "missing column")
}

func TestExtract_UnknownSource(t *testing.T) {
	dir := newProject(t)
	_, _, err := runSynthledger(t, "extract", "--dir", dir, "--source", "chase")
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown source "chase"`)
}

func TestExtract_MissingConfig(t *testing.T) {
	_, _, err := runSynthledger(t, "extract", "--dir", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading config")
}

func TestExtract_NothingToDo(t *testing.T) {
	dir := newProject(t)
	out, _, err := runSynthledger(t, "extract", "--dir", dir)
	require.NoError(t, err)
	assert.Empty(t, out)
}
