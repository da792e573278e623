package engine

import (
	"context"
	"log"
	"math"

	"github.com/mineops/assistant/internal/db"
)

// vizAssembler computes KPI aggregates and chart series. Each aggregate is
// fetched independently; a failing query logs and leaves its zero value so
// one broken table never blanks the whole panel.
type vizAssembler struct {
	db *db.DB
}

func (v *vizAssembler) KPIs(ctx context.Context) KPISet {
	var k KPISet

	v.scanOne(ctx, `SELECT COUNT(*) FROM mining_incidents`, &k.TotalIncidents)
	v.scanOne(ctx, `SELECT COUNT(*) FROM equipment_monitoring WHERE status = 'Critical'`, &k.CriticalAlerts)
	v.scanOne(ctx, `SELECT COALESCE(AVG(NULLIF(efficiency_percentage, 0)), 0) FROM production_metrics`, &k.AvgEfficiency)
	v.scanOne(ctx, `SELECT COALESCE(SUM(quantity_tons), 0) FROM production_metrics
		WHERE strftime('%Y-%m', metric_date) = strftime('%Y-%m', 'now')`, &k.MonthlyProduction)
	v.scanOne(ctx, `SELECT COALESCE(SUM(quantity_tons), 0) FROM production_metrics`, &k.TotalProduction)

	k.AvgEfficiency = math.Round(k.AvgEfficiency*10) / 10
	return k
}

func (v *vizAssembler) scanOne(ctx context.Context, query string, dest any) {
	if err := v.db.QueryRowContext(ctx, query).Scan(dest); err != nil {
		log.Printf("engine: kpi query failed: %v", err)
	}
}

// expectedStatuses are always present in the equipment status chart, even
// at zero, so the UI renders a stable legend.
var expectedStatuses = []string{"Critical", "Operational", "Maintenance"}

// Charts computes the chart series relevant to the question. A question
// with no chart keywords gets the full set.
func (v *vizAssembler) Charts(ctx context.Context, question string) Charts {
	charts := make(Charts)

	wantAll := true
	include := func(keywords ...string) bool {
		if containsAny(question, keywords) {
			wantAll = false
			return true
		}
		return false
	}

	selected := map[string]bool{
		ChartEfficiencyTrend:   include("efficiency"),
		ChartIncidentsTrend:    include("incident", "alert"),
		ChartProductionMetrics: include("production"),
		ChartEquipmentStatus:   include("equipment", "status"),
	}

	for name, want := range selected {
		if !want && !wantAll {
			continue
		}
		series := v.buildSeries(ctx, name)
		if series != nil {
			charts[name] = series
		}
	}
	return charts
}

func (v *vizAssembler) buildSeries(ctx context.Context, name string) ChartSeries {
	switch name {
	case ChartEfficiencyTrend:
		return v.querySeries(ctx, `SELECT strftime('%Y-%m', metric_date) AS month,
			COALESCE(AVG(NULLIF(efficiency_percentage, 0)), 0)
			FROM production_metrics
			WHERE metric_date >= date('now', '-6 months')
			GROUP BY month ORDER BY month`, false)

	case ChartIncidentsTrend:
		return v.queryLabeledSeries(ctx, `SELECT strftime('%Y-%m', incident_date) AS month,
			severity, COUNT(*)
			FROM mining_incidents
			GROUP BY month, severity ORDER BY month DESC, severity`)

	case ChartProductionMetrics:
		return v.querySeries(ctx, `SELECT strftime('%Y-%m', metric_date) AS month,
			COALESCE(SUM(quantity_tons), 0),
			COALESCE(AVG(NULLIF(efficiency_percentage, 0)), 0)
			FROM production_metrics
			GROUP BY month ORDER BY month DESC`, true)

	case ChartEquipmentStatus:
		return v.equipmentStatusSeries(ctx)
	}
	return nil
}

// querySeries scans (period, value[, secondary]) rows.
func (v *vizAssembler) querySeries(ctx context.Context, query string, withSecondary bool) ChartSeries {
	rows, err := v.db.QueryContext(ctx, query)
	if err != nil {
		log.Printf("engine: chart query failed: %v", err)
		return nil
	}
	defer rows.Close()

	var series ChartSeries
	for rows.Next() {
		var p ChartPoint
		var err error
		if withSecondary {
			err = rows.Scan(&p.Period, &p.Value, &p.Secondary)
		} else {
			err = rows.Scan(&p.Period, &p.Value)
		}
		if err != nil {
			log.Printf("engine: chart scan failed: %v", err)
			return nil
		}
		series = append(series, p)
	}
	return series
}

// queryLabeledSeries scans (period, label, value) rows.
func (v *vizAssembler) queryLabeledSeries(ctx context.Context, query string) ChartSeries {
	rows, err := v.db.QueryContext(ctx, query)
	if err != nil {
		log.Printf("engine: chart query failed: %v", err)
		return nil
	}
	defer rows.Close()

	var series ChartSeries
	for rows.Next() {
		var p ChartPoint
		var count int
		if err := rows.Scan(&p.Period, &p.Label, &count); err != nil {
			log.Printf("engine: chart scan failed: %v", err)
			return nil
		}
		p.Value = float64(count)
		series = append(series, p)
	}
	return series
}

func (v *vizAssembler) equipmentStatusSeries(ctx context.Context) ChartSeries {
	rows, err := v.db.QueryContext(ctx,
		`SELECT status, COUNT(*) FROM equipment_monitoring GROUP BY status`)
	if err != nil {
		log.Printf("engine: chart query failed: %v", err)
		return nil
	}
	defer rows.Close()

	counts := make(map[string]float64)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			log.Printf("engine: chart scan failed: %v", err)
			return nil
		}
		counts[status] = float64(count)
	}

	series := make(ChartSeries, 0, len(expectedStatuses))
	for _, status := range expectedStatuses {
		series = append(series, ChartPoint{Label: status, Value: counts[status]})
		delete(counts, status)
	}
	for status, count := range counts {
		series = append(series, ChartPoint{Label: status, Value: count})
	}
	return series
}

// filterRelevantCharts is the composer-side selection: it keeps only the
// charts the question's phrasing asks for, renaming the production series
// for the UI. It is independent of the assembler's own selection, so a
// computed chart can still be dropped here.
func filterRelevantCharts(question string, charts Charts) Charts {
	relevant := make(Charts)

	if containsAny(question, []string{"trend", "history", "over time"}) {
		if s, ok := charts[ChartIncidentsTrend]; ok {
			relevant[ChartIncidentsTrend] = s
		}
		if s, ok := charts[ChartProductionMetrics]; ok {
			relevant[ChartProductionTrend] = s
		}
	}
	if containsAny(question, []string{"equipment", "machine", "status"}) {
		if s, ok := charts[ChartEquipmentStatus]; ok {
			relevant[ChartEquipmentStatus] = s
		}
	}
	if containsAny(question, []string{"production", "output", "efficiency"}) {
		if s, ok := charts[ChartProductionMetrics]; ok {
			relevant[ChartProductionTrend] = s
		}
	}

	return relevant
}
