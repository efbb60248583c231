package reporting

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRows() []ExportRow {
	date := time.Date(2025, 8, 15, 0, 0, 0, 0, time.UTC)
	return []ExportRow{
		{
			RecordID: 1, ProjectFRN: "FRN-1", ProjectName: "Logistics", Customer: "Acme",
			Date: date, Type: "Savings", Category: "Freight",
			Price: 1234.5, Unit: 2, Currency: "TRY", TotalPrice: 2469,
			CreatedByName: "Analyst",
		},
		{
			RecordID: 2, ProjectFRN: "FRN-1", ProjectName: "Logistics", Customer: "Acme",
			Date: date, Type: "Cost Avoidance", Category: "Warehousing",
			Price: 100, Unit: 1, Currency: "TRY", TotalPrice: 100,
			CreatedByName: "Analyst",
		},
	}
}

func TestFormatAmount_TurkishLocale(t *testing.T) {
	assert.Equal(t, "1.234,50", FormatAmount(1234.5))
	assert.Equal(t, "0,00", FormatAmount(0))
	assert.Equal(t, "1.000.000,00", FormatAmount(1000000))
	assert.Equal(t, "-12,34", FormatAmount(-12.34))
	assert.Equal(t, "100,00", FormatAmount(99.999))
	// rounding at presentation only
	assert.Equal(t, "0,13", FormatAmount(0.125))
}

func TestFormatCSV(t *testing.T) {
	out := string(FormatCSV(sampleRows()))

	require.True(t, strings.HasPrefix(out, "\xEF\xBB\xBF"), "missing UTF-8 BOM")
	lines := strings.Split(strings.TrimRight(out, "\r\n"), "\r\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "FRN;Project;Customer")
	assert.Contains(t, lines[1], "2.469,00")
	assert.Contains(t, lines[1], "2025-08-15")
	assert.Contains(t, lines[2], "Cost Avoidance")
}

func TestFormatCSV_EscapesDelimiters(t *testing.T) {
	rows := sampleRows()
	rows[0].Customer = `Acme; "Global"`
	out := string(FormatCSV(rows))
	assert.Contains(t, out, `"Acme; ""Global"""`)
}

func TestFormatExcelHTML_SummaryRow(t *testing.T) {
	out := string(FormatExcelHTML(sampleRows(), time.Date(2025, 8, 20, 10, 0, 0, 0, time.UTC)))

	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "Total TRY")
	// summary holds savings and cost avoidance side by side
	assert.Contains(t, out, "2.469,00 / 100,00")
	assert.Contains(t, out, "class=\"savings\"")
	assert.Contains(t, out, "class=\"avoidance\"")
	assert.Contains(t, out, "Generated at 2025-08-20 10:00:00")
}

func TestFormatPDFHTML_EscapesContent(t *testing.T) {
	rows := sampleRows()
	rows[0].ProjectName = "<script>alert(1)</script>"
	out := string(FormatPDFHTML(rows, time.Now()))
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, "&lt;script&gt;")
}
