package reporting

import (
	"fmt"
	"sort"
	"time"

	"github.com/forte-savings/backend/internal/models"
)

// Dataset is one chart series, keyed by record type and currency.
type Dataset struct {
	Label    string    `json:"label"`
	Type     string    `json:"type"`
	Currency string    `json:"currency"`
	Data     []float64 `json:"data"`
}

// TrendData is chart-ready: every dataset has exactly one value per label.
// Missing buckets are zero-filled so series never misalign.
type TrendData struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// TrendSummary totals the window per record type and currency.
type TrendSummary struct {
	Savings       map[string]float64 `json:"savings"`
	CostAvoidance map[string]float64 `json:"cost_avoidance"`
}

// Trend buckets record totals over a rolling window. 7days and 30days use
// day buckets; the month tokens use calendar-month buckets. An unknown
// token falls back to 12 months.
func (e *Engine) Trend(scope Scope, period string, now time.Time) (*TrendData, *TrendSummary, error) {
	byDay := false
	var from time.Time
	today := startOfDay(now)

	switch period {
	case "7days":
		byDay = true
		from = today.AddDate(0, 0, -6)
	case "30days":
		byDay = true
		from = today.AddDate(0, 0, -29)
	case "3months":
		from = monthStart(now).AddDate(0, -2, 0)
	case "6months":
		from = monthStart(now).AddDate(0, -5, 0)
	default: // 12months
		from = monthStart(now).AddDate(0, -11, 0)
	}

	var records []models.SavingsRecord
	q := scope.Records(e.DB).
		Select("savings_records.date, savings_records.type, savings_records.currency, savings_records.total_price").
		Where("savings_records.date BETWEEN ? AND ?", from, endOfDay(now))
	if err := q.Find(&records).Error; err != nil {
		return nil, nil, fmt.Errorf("trend records: %w", err)
	}

	labels := bucketLabels(from, now, byDay)
	index := make(map[string]int, len(labels))
	for i, l := range labels {
		index[l] = i
	}

	// Series keyed by type+currency, zero-filled across every bucket.
	series := make(map[string]*Dataset)
	summary := &TrendSummary{
		Savings:       make(map[string]float64),
		CostAvoidance: make(map[string]float64),
	}
	for _, r := range records {
		key := r.Type + "|" + r.Currency
		ds, ok := series[key]
		if !ok {
			ds = &Dataset{
				Label:    fmt.Sprintf("%s (%s)", r.Type, r.Currency),
				Type:     r.Type,
				Currency: r.Currency,
				Data:     make([]float64, len(labels)),
			}
			series[key] = ds
		}
		if i, ok := index[bucketLabel(r.Date, byDay)]; ok {
			ds.Data[i] += r.TotalPrice
		}
		switch r.Type {
		case models.TypeSavings:
			summary.Savings[r.Currency] += r.TotalPrice
		case models.TypeCostAvoidance:
			summary.CostAvoidance[r.Currency] += r.TotalPrice
		}
	}

	keys := make([]string, 0, len(series))
	for k := range series {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	datasets := make([]Dataset, 0, len(keys))
	for _, k := range keys {
		datasets = append(datasets, *series[k])
	}

	return &TrendData{Labels: labels, Datasets: datasets}, summary, nil
}

func bucketLabels(from, now time.Time, byDay bool) []string {
	var labels []string
	if byDay {
		for d := from; !d.After(now); d = d.AddDate(0, 0, 1) {
			labels = append(labels, d.Format("2006-01-02"))
		}
		return labels
	}
	end := monthStart(now)
	for m := monthStart(from); !m.After(end); m = m.AddDate(0, 1, 0) {
		labels = append(labels, m.Format("2006-01"))
	}
	return labels
}

func bucketLabel(t time.Time, byDay bool) string {
	if byDay {
		return t.Format("2006-01-02")
	}
	return t.Format("2006-01")
}

func monthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
