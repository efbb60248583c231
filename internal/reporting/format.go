package reporting

import (
	"bytes"
	"fmt"
	"html"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/forte-savings/backend/internal/models"
)

// ExportRow is one savings record joined with project and user display
// fields, ready for rendering.
type ExportRow struct {
	RecordID      uint      `json:"record_id"`
	ProjectFRN    string    `json:"project_frn"`
	ProjectName   string    `json:"project_name"`
	Customer      string    `json:"customer"`
	Date          time.Time `json:"date"`
	Type          string    `json:"type"`
	Category      string    `json:"category"`
	Price         float64   `json:"price"`
	Unit          int       `json:"unit"`
	Currency      string    `json:"currency"`
	TotalPrice    float64   `json:"total_price"`
	CreatedByName string    `json:"created_by_name"`
}

// ExportRows loads the scoped, period-filtered records for report export,
// newest first.
func (e *Engine) ExportRows(scope Scope, period DateRange) ([]ExportRow, error) {
	var rows []ExportRow
	q := e.DB.Table("savings_records").
		Select("savings_records.id AS record_id, projects.frn AS project_frn, projects.name AS project_name, " +
			"projects.customer AS customer, savings_records.date AS date, savings_records.type AS type, " +
			"savings_records.category AS category, savings_records.price AS price, savings_records.unit AS unit, " +
			"savings_records.currency AS currency, savings_records.total_price AS total_price, " +
			"users.name AS created_by_name").
		Joins("JOIN projects ON projects.id = savings_records.project_id").
		Joins("LEFT JOIN users ON users.id = savings_records.created_by").
		Order("savings_records.date DESC, savings_records.id DESC")
	if !scope.All {
		q = q.Where("savings_records.project_id IN (?)", scope.VisibleProjectIDs(e.DB))
	}
	q = period.Apply(q, "savings_records.date")
	if err := q.Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("export rows: %w", err)
	}
	return rows, nil
}

var csvHeader = []string{
	"FRN", "Project", "Customer", "Date", "Type", "Category",
	"Price", "Unit", "Currency", "Total", "Created By",
}

// FormatCSV renders rows as semicolon-delimited CSV with a UTF-8 BOM and
// Turkish locale number formatting (comma decimal, period thousands).
// Semicolons keep the comma free for decimals, which is what spreadsheet
// applications in tr-TR locales expect.
func FormatCSV(rows []ExportRow) []byte {
	var buf bytes.Buffer
	buf.WriteString("\xEF\xBB\xBF") // UTF-8 BOM so spreadsheet apps detect the encoding
	buf.WriteString(strings.Join(csvHeader, ";"))
	buf.WriteString("\r\n")
	for _, r := range rows {
		fields := []string{
			csvEscape(r.ProjectFRN),
			csvEscape(r.ProjectName),
			csvEscape(r.Customer),
			r.Date.Format(dateLayout),
			csvEscape(r.Type),
			csvEscape(r.Category),
			FormatAmount(r.Price),
			strconv.Itoa(r.Unit),
			r.Currency,
			FormatAmount(r.TotalPrice),
			csvEscape(r.CreatedByName),
		}
		buf.WriteString(strings.Join(fields, ";"))
		buf.WriteString("\r\n")
	}
	return buf.Bytes()
}

func csvEscape(s string) string {
	if strings.ContainsAny(s, ";\"\n\r") {
		return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
	}
	return s
}

// FormatAmount renders a monetary value with Turkish separators, rounded
// to two decimals at presentation only.
func FormatAmount(v float64) string {
	neg := v < 0
	v = math.Abs(v)
	rounded := math.Round(v*100) / 100
	whole := int64(rounded)
	frac := int64(math.Round((rounded - float64(whole)) * 100))
	if frac == 100 { // rounding carried into the integer part
		whole++
		frac = 0
	}

	digits := strconv.FormatInt(whole, 10)
	var grouped strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			grouped.WriteByte('.')
		}
		grouped.WriteRune(d)
	}

	out := fmt.Sprintf("%s,%02d", grouped.String(), frac)
	if neg {
		return "-" + out
	}
	return out
}

// FormatExcelHTML renders rows as a styled HTML table served with an
// Excel content type. Not a real XLSX; spreadsheet readers accept the
// HTML form loosely and the legacy clients depend on it.
func FormatExcelHTML(rows []ExportRow, generatedAt time.Time) []byte {
	return formatHTMLTable(rows, generatedAt, "Savings Report")
}

// FormatPDFHTML renders the same table flavored for PDF-capable viewers.
func FormatPDFHTML(rows []ExportRow, generatedAt time.Time) []byte {
	return formatHTMLTable(rows, generatedAt, "Savings Report (PDF)")
}

func formatHTMLTable(rows []ExportRow, generatedAt time.Time, title string) []byte {
	var buf bytes.Buffer
	buf.WriteString("<html><head><meta charset=\"utf-8\"><style>")
	buf.WriteString("table{border-collapse:collapse;font-family:Arial,sans-serif;font-size:12px}")
	buf.WriteString("th{background:#1f3a5f;color:#fff;padding:6px 10px;border:1px solid #ccc}")
	buf.WriteString("td{padding:4px 10px;border:1px solid #ccc}")
	buf.WriteString("tr:nth-child(even){background:#f2f6fa}")
	buf.WriteString(".savings{color:#1a7f37}.avoidance{color:#9a6700}")
	buf.WriteString("tr.summary td{font-weight:bold;background:#e8edf3}")
	buf.WriteString("</style></head><body>")
	buf.WriteString("<h2>" + html.EscapeString(title) + "</h2>")
	buf.WriteString("<p>Generated at " + generatedAt.Format("2006-01-02 15:04:05") + "</p>")
	buf.WriteString("<table><tr>")
	for _, h := range csvHeader {
		buf.WriteString("<th>" + html.EscapeString(h) + "</th>")
	}
	buf.WriteString("</tr>")

	savingsTotals := make(map[string]float64)
	avoidanceTotals := make(map[string]float64)
	for _, r := range rows {
		class := "savings"
		if r.Type == models.TypeCostAvoidance {
			class = "avoidance"
			avoidanceTotals[r.Currency] += r.TotalPrice
		} else {
			savingsTotals[r.Currency] += r.TotalPrice
		}
		buf.WriteString("<tr>")
		cells := []string{
			r.ProjectFRN, r.ProjectName, r.Customer,
			r.Date.Format(dateLayout), r.Type, r.Category,
			FormatAmount(r.Price), strconv.Itoa(r.Unit), r.Currency,
			FormatAmount(r.TotalPrice), r.CreatedByName,
		}
		for i, cell := range cells {
			if i == 4 { // type column gets the color class
				buf.WriteString("<td class=\"" + class + "\">" + html.EscapeString(cell) + "</td>")
				continue
			}
			buf.WriteString("<td>" + html.EscapeString(cell) + "</td>")
		}
		buf.WriteString("</tr>")
	}

	for _, cur := range sortedCurrencies(savingsTotals, avoidanceTotals) {
		buf.WriteString("<tr class=\"summary\"><td colspan=\"8\">Total " + html.EscapeString(cur) + "</td>")
		buf.WriteString("<td>" + html.EscapeString(cur) + "</td>")
		buf.WriteString("<td>" + FormatAmount(savingsTotals[cur]) + " / " + FormatAmount(avoidanceTotals[cur]) + "</td>")
		buf.WriteString("<td>Savings / Cost Avoidance</td></tr>")
	}

	buf.WriteString("</table></body></html>")
	return buf.Bytes()
}

func sortedCurrencies(maps ...map[string]float64) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, m := range maps {
		for cur := range m {
			if _, ok := seen[cur]; !ok {
				seen[cur] = struct{}{}
				out = append(out, cur)
			}
		}
	}
	sort.Strings(out)
	return out
}
