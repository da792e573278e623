package engine

import (
	"context"
	"testing"
	"time"
)

func TestVizAssembler_KPIs(t *testing.T) {
	d := newTestDB(t)
	seedIncidents(t, d)

	equipment := []struct {
		id     string
		status string
		eff    float64
	}{
		{"EX-210", "Critical", 45},
		{"DR-11", "Operational", 91},
		{"CR-04", "Maintenance", 0},
	}
	for _, e := range equipment {
		_, err := d.Exec(
			`INSERT INTO equipment_monitoring (equipment_id, equipment_type, status, efficiency_score)
			 VALUES (?, 'rig', ?, ?)`, e.id, e.status, e.eff)
		if err != nil {
			t.Fatalf("seeding equipment: %v", err)
		}
	}

	production := []struct {
		date string
		tons float64
		eff  float64
	}{
		{"date('now')", 1000, 85},
		{"date('now', '-40 days')", 2000, 75},
		{"date('now', '-40 days')", 500, 0}, // zero efficiency excluded from the average
	}
	for _, p := range production {
		_, err := d.Exec(
			`INSERT INTO production_metrics (metric_date, site_name, material_type, quantity_tons, efficiency_percentage)
			 VALUES (`+p.date+`, 'Mine A', 'coal', ?, ?)`, p.tons, p.eff)
		if err != nil {
			t.Fatalf("seeding production: %v", err)
		}
	}

	v := &vizAssembler{db: d}
	kpis := v.KPIs(context.Background())

	if kpis.TotalIncidents != 4 {
		t.Errorf("TotalIncidents = %d, want 4", kpis.TotalIncidents)
	}
	if kpis.CriticalAlerts != 1 {
		t.Errorf("CriticalAlerts = %d, want 1", kpis.CriticalAlerts)
	}
	if kpis.AvgEfficiency != 80.0 {
		t.Errorf("AvgEfficiency = %v, want 80.0", kpis.AvgEfficiency)
	}
	if kpis.MonthlyProduction != 1000 {
		t.Errorf("MonthlyProduction = %v, want 1000", kpis.MonthlyProduction)
	}
	if kpis.TotalProduction != 3500 {
		t.Errorf("TotalProduction = %v, want 3500", kpis.TotalProduction)
	}
}

func TestVizAssembler_KPIsEmptyDatabase(t *testing.T) {
	d := newTestDB(t)

	v := &vizAssembler{db: d}
	kpis := v.KPIs(context.Background())

	if kpis != (KPISet{}) {
		t.Errorf("expected zero KPIs on empty database, got %+v", kpis)
	}
}

func TestVizAssembler_EquipmentStatusZeroFill(t *testing.T) {
	d := newTestDB(t)

	_, err := d.Exec(
		`INSERT INTO equipment_monitoring (equipment_id, equipment_type, status, efficiency_score)
		 VALUES ('EX-210', 'Excavator', 'Operational', 90)`)
	if err != nil {
		t.Fatalf("seeding equipment: %v", err)
	}

	v := &vizAssembler{db: d}
	series := v.equipmentStatusSeries(context.Background())

	if len(series) != len(expectedStatuses) {
		t.Fatalf("expected %d statuses, got %d", len(expectedStatuses), len(series))
	}

	byLabel := make(map[string]float64)
	for _, p := range series {
		byLabel[p.Label] = p.Value
	}
	if byLabel["Operational"] != 1 {
		t.Errorf("Operational = %v, want 1", byLabel["Operational"])
	}
	if byLabel["Critical"] != 0 {
		t.Errorf("Critical = %v, want 0", byLabel["Critical"])
	}
	if byLabel["Maintenance"] != 0 {
		t.Errorf("Maintenance = %v, want 0", byLabel["Maintenance"])
	}
}

func TestVizAssembler_ChartSelection(t *testing.T) {
	d := newTestDB(t)
	seedIncidents(t, d)

	v := &vizAssembler{db: d}

	// A keyword question gets only its chart.
	charts := v.Charts(context.Background(), "show incident trend")
	if _, ok := charts[ChartIncidentsTrend]; !ok {
		t.Error("expected incidents_trend for incident question")
	}
	if _, ok := charts[ChartEquipmentStatus]; ok {
		t.Error("equipment_status should not be selected for incident question")
	}
}

func TestVizAssembler_TrendSeriesCoverAllHistory(t *testing.T) {
	d := newTestDB(t)
	seedIncidents(t, d)

	for _, date := range []string{"date('now')", "date('now', '-40 days')"} {
		_, err := d.Exec(
			`INSERT INTO production_metrics (metric_date, site_name, material_type, quantity_tons, efficiency_percentage)
			 VALUES (` + date + `, 'Mine A', 'coal', 800, 82)`)
		if err != nil {
			t.Fatalf("seeding production: %v", err)
		}
	}

	v := &vizAssembler{db: d}

	// The 8-month-old incident still contributes a month bucket.
	incidents := v.buildSeries(context.Background(), ChartIncidentsTrend)
	cutoff := time.Now().AddDate(0, -6, 0).Format("2006-01")
	old := false
	for _, p := range incidents {
		if p.Period < cutoff {
			old = true
		}
	}
	if !old {
		t.Errorf("expected a month bucket older than %s, got %v", cutoff, incidents)
	}

	// Newest month comes first.
	production := v.buildSeries(context.Background(), ChartProductionMetrics)
	if len(production) != 2 {
		t.Fatalf("expected 2 production months, got %d", len(production))
	}
	if production[0].Period <= production[1].Period {
		t.Errorf("expected newest month first, got %s then %s",
			production[0].Period, production[1].Period)
	}
}

func TestFilterRelevantCharts(t *testing.T) {
	charts := Charts{
		ChartIncidentsTrend:    {{Period: "2026-07", Label: "Critical", Value: 2}},
		ChartProductionMetrics: {{Period: "2026-07", Value: 4200, Secondary: 88}},
		ChartEquipmentStatus:   {{Label: "Critical", Value: 1}},
		ChartEfficiencyTrend:   {{Period: "2026-07", Value: 88}},
	}

	got := filterRelevantCharts("show incident trend over time", charts)
	if _, ok := got[ChartIncidentsTrend]; !ok {
		t.Error("trend question should keep incidents_trend")
	}
	if _, ok := got[ChartProductionTrend]; !ok {
		t.Error("trend question should keep production series under production_trend")
	}
	if _, ok := got[ChartEquipmentStatus]; ok {
		t.Error("trend question should drop equipment_status")
	}

	got = filterRelevantCharts("current equipment status", charts)
	if _, ok := got[ChartEquipmentStatus]; !ok {
		t.Error("status question should keep equipment_status")
	}

	got = filterRelevantCharts("production output summary", charts)
	if _, ok := got[ChartProductionTrend]; !ok {
		t.Error("production question should keep production_trend")
	}

	// Selection here is independent of assembly: efficiency_trend was
	// computed but no phrasing keeps it.
	got = filterRelevantCharts("efficiency numbers please", charts)
	if _, ok := got[ChartEfficiencyTrend]; ok {
		t.Error("efficiency_trend is never kept by the relevance filter")
	}
	if _, ok := got[ChartProductionTrend]; !ok {
		t.Error("efficiency question maps to production_trend")
	}
}
