package reporting

import (
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/forte-savings/backend/internal/models"
)

// Engine runs the dashboard aggregations. It only ever reads; the
// denormalized Project.TotalSavings cache is maintained by the savings
// service on writes.
type Engine struct {
	DB *gorm.DB
}

func NewEngine(db *gorm.DB) *Engine {
	return &Engine{DB: db}
}

// ProjectCounts are scoped by access policy only, never period-filtered.
type ProjectCounts struct {
	Total            int64 `json:"total"`
	Active           int64 `json:"active"`
	CreatedThisYear  int64 `json:"created_this_year"`
	CreatedThisMonth int64 `json:"created_this_month"`
}

// CurrencyTotals is one pivoted row per currency. Currencies without
// records in the window are omitted, not zero-filled.
type CurrencyTotals struct {
	Currency      string  `json:"currency"`
	Savings       float64 `json:"savings"`
	CostAvoidance float64 `json:"cost_avoidance"`
	Total         float64 `json:"total"`
	RecordCount   int64   `json:"record_count"`
}

// Activity is one entry of the recent activity feed.
type Activity struct {
	Type        string    `json:"type"` // "project_created" or "record_created"
	Description string    `json:"description"`
	ProjectID   uint      `json:"project_id"`
	Timestamp   time.Time `json:"timestamp"`
}

// TopProject is a ranked project with its current-month record count.
type TopProject struct {
	ID               uint    `json:"id"`
	FRN              string  `json:"frn"`
	Name             string  `json:"name"`
	Customer         string  `json:"customer"`
	TotalSavings     float64 `json:"total_savings"`
	RecordsThisMonth int64   `json:"records_this_month"`
}

// Result is the full dashboard aggregation.
type Result struct {
	Projects         ProjectCounts    `json:"projects"`
	Savings          []CurrencyTotals `json:"savings"`
	RecentActivities []Activity       `json:"recent_activities"`
	TopProjects      []TopProject     `json:"top_projects"`
}

const activityFeedLimit = 10
const topProjectLimit = 5

// Aggregate computes the dashboard statistics for one caller. Any query
// failure aborts the whole call; there is no partial-result degradation.
func (e *Engine) Aggregate(scope Scope, period DateRange, now time.Time) (*Result, error) {
	res := &Result{}

	counts, err := e.projectCounts(scope, now)
	if err != nil {
		return nil, fmt.Errorf("project counts: %w", err)
	}
	res.Projects = counts

	byCurrency, err := e.savingsByCurrency(scope, period)
	if err != nil {
		return nil, fmt.Errorf("savings by currency: %w", err)
	}
	res.Savings = byCurrency

	activities, err := e.recentActivities(scope)
	if err != nil {
		return nil, fmt.Errorf("recent activities: %w", err)
	}
	res.RecentActivities = activities

	top, err := e.topProjects(scope, now)
	if err != nil {
		return nil, fmt.Errorf("top projects: %w", err)
	}
	res.TopProjects = top

	return res, nil
}

func (e *Engine) projectCounts(scope Scope, now time.Time) (ProjectCounts, error) {
	var c ProjectCounts
	today := startOfDay(now)
	yearStart := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, now.Location())
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	if err := scope.Projects(e.DB).Count(&c.Total).Error; err != nil {
		return c, err
	}
	if err := scope.Projects(e.DB).
		Where("projects.end_date IS NULL OR projects.end_date >= ?", today).
		Count(&c.Active).Error; err != nil {
		return c, err
	}
	if err := scope.Projects(e.DB).
		Where("projects.created_at >= ?", yearStart).
		Count(&c.CreatedThisYear).Error; err != nil {
		return c, err
	}
	if err := scope.Projects(e.DB).
		Where("projects.created_at >= ?", monthStart).
		Count(&c.CreatedThisMonth).Error; err != nil {
		return c, err
	}
	return c, nil
}

type currencyTypeRow struct {
	Currency string
	Type     string
	Sum      float64
	Count    int64
}

func (e *Engine) savingsByCurrency(scope Scope, period DateRange) ([]CurrencyTotals, error) {
	var rows []currencyTypeRow
	q := scope.Records(e.DB).
		Select("savings_records.currency as currency, savings_records.type as type, SUM(savings_records.total_price) as sum, COUNT(*) as count").
		Group("savings_records.currency, savings_records.type")
	q = period.Apply(q, "savings_records.date")
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}

	pivot := make(map[string]*CurrencyTotals)
	for _, row := range rows {
		ct, ok := pivot[row.Currency]
		if !ok {
			ct = &CurrencyTotals{Currency: row.Currency}
			pivot[row.Currency] = ct
		}
		switch row.Type {
		case models.TypeSavings:
			ct.Savings += row.Sum
		case models.TypeCostAvoidance:
			ct.CostAvoidance += row.Sum
		}
		ct.RecordCount += row.Count
	}

	out := make([]CurrencyTotals, 0, len(pivot))
	for _, ct := range pivot {
		ct.Total = ct.Savings + ct.CostAvoidance
		out = append(out, *ct)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out, nil
}

func (e *Engine) recentActivities(scope Scope) ([]Activity, error) {
	var projects []models.Project
	if err := scope.Projects(e.DB).
		Order("projects.created_at DESC").
		Limit(activityFeedLimit).
		Find(&projects).Error; err != nil {
		return nil, err
	}

	var records []models.SavingsRecord
	if err := scope.Records(e.DB).
		Preload("Project").
		Order("savings_records.created_at DESC").
		Limit(activityFeedLimit).
		Find(&records).Error; err != nil {
		return nil, err
	}

	activities := make([]Activity, 0, len(projects)+len(records))
	for _, p := range projects {
		activities = append(activities, Activity{
			Type:        "project_created",
			Description: fmt.Sprintf("Project %s (%s) created", p.FRN, p.Name),
			ProjectID:   p.ID,
			Timestamp:   p.CreatedAt,
		})
	}
	for _, r := range records {
		frn := ""
		if r.Project != nil {
			frn = r.Project.FRN
		}
		activities = append(activities, Activity{
			Type:        "record_created",
			Description: fmt.Sprintf("%s record of %.2f %s added to %s", r.Type, r.TotalPrice, r.Currency, frn),
			ProjectID:   r.ProjectID,
			Timestamp:   r.CreatedAt,
		})
	}

	sort.Slice(activities, func(i, j int) bool { return activities[i].Timestamp.After(activities[j].Timestamp) })
	if len(activities) > activityFeedLimit {
		activities = activities[:activityFeedLimit]
	}
	return activities, nil
}

func (e *Engine) topProjects(scope Scope, now time.Time) ([]TopProject, error) {
	var projects []models.Project
	if err := scope.Projects(e.DB).
		Where("projects.total_savings > 0").
		Order("projects.total_savings DESC").
		Limit(topProjectLimit).
		Find(&projects).Error; err != nil {
		return nil, err
	}

	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	out := make([]TopProject, 0, len(projects))
	for _, p := range projects {
		var count int64
		if err := e.DB.Model(&models.SavingsRecord{}).
			Where("project_id = ? AND date >= ?", p.ID, monthStart).
			Count(&count).Error; err != nil {
			return nil, err
		}
		out = append(out, TopProject{
			ID:               p.ID,
			FRN:              p.FRN,
			Name:             p.Name,
			Customer:         p.Customer,
			TotalSavings:     p.TotalSavings,
			RecordsThisMonth: count,
		})
	}
	return out, nil
}
