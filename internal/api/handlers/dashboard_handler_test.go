package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/forte-savings/backend/internal/models"
)

func TestDashboardStats(t *testing.T) {
	db := OpenTestDB(t)
	user := seedTestUser(t, db, "owner@forte.example", models.RoleUser)
	project := seedTestProject(t, db, user, "FRN-1")
	seedTestRecord(t, db, user, project.ID, models.TypeSavings, "TRY", 100, 3)
	seedTestRecord(t, db, user, project.ID, models.TypeCostAvoidance, "TRY", 50, 2)
	r := newTestRouter(db, user)

	w := doJSON(r, http.MethodGet, "/api/v1/dashboard/stats", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Projects struct {
				Total int64 `json:"total"`
			} `json:"projects"`
			Savings []struct {
				Currency      string  `json:"currency"`
				Savings       float64 `json:"savings"`
				CostAvoidance float64 `json:"cost_avoidance"`
				Total         float64 `json:"total"`
			} `json:"savings"`
		} `json:"data"`
		UserRole    string `json:"user_role"`
		GeneratedAt string `json:"generated_at"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, models.RoleUser, resp.UserRole)
	assert.NotEmpty(t, resp.GeneratedAt)
	assert.Equal(t, int64(1), resp.Data.Projects.Total)
	require.Len(t, resp.Data.Savings, 1)
	assert.Equal(t, "TRY", resp.Data.Savings[0].Currency)
	assert.Equal(t, 300.0, resp.Data.Savings[0].Savings)
	assert.Equal(t, 100.0, resp.Data.Savings[0].CostAvoidance)
	assert.Equal(t, 400.0, resp.Data.Savings[0].Total)
}

func TestDashboardStats_InvalidExplicitDates(t *testing.T) {
	db := OpenTestDB(t)
	user := seedTestUser(t, db, "owner@forte.example", models.RoleUser)
	r := newTestRouter(db, user)

	w := doJSON(r, http.MethodGet, "/api/v1/dashboard/stats?date_from=2025-13-45&date_to=2025-01-01", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/api/v1/dashboard/stats?date_from=2025-03-01&date_to=2025-01-01", "")
	assert.Equal(t, http.StatusBadRequest, w.Code, "reversed range must be rejected")
}

func TestDashboardTrendData(t *testing.T) {
	db := OpenTestDB(t)
	user := seedTestUser(t, db, "owner@forte.example", models.RoleUser)
	project := seedTestProject(t, db, user, "FRN-1")
	seedTestRecord(t, db, user, project.ID, models.TypeSavings, "TRY", 100, 1)
	r := newTestRouter(db, user)

	w := doJSON(r, http.MethodGet, "/api/v1/dashboard/trend-data", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			ChartData struct {
				Labels   []string `json:"labels"`
				Datasets []struct {
					Label string    `json:"label"`
					Data  []float64 `json:"data"`
				} `json:"datasets"`
			} `json:"chart_data"`
			Period string `json:"period"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "12months", resp.Data.Period, "period defaults to 12 months")
	assert.Len(t, resp.Data.ChartData.Labels, 12)
	for _, ds := range resp.Data.ChartData.Datasets {
		assert.Len(t, ds.Data, len(resp.Data.ChartData.Labels))
	}
}
