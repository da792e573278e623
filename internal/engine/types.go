package engine

import "github.com/mineops/assistant/internal/tts"

// ResponseType tags the terminal state a query ended in.
type ResponseType string

const (
	TypeGreeting   ResponseType = "greeting"
	TypeInfo       ResponseType = "info"
	TypeAIResponse ResponseType = "ai_response"
	TypeError      ResponseType = "error"
)

// KPISet is the fixed set of aggregate operational metrics, recomputed
// fresh from the relational store on every request.
type KPISet struct {
	TotalIncidents    int     `json:"total_incidents"`
	CriticalAlerts    int     `json:"critical_alerts"`
	AvgEfficiency     float64 `json:"avg_efficiency"`
	MonthlyProduction float64 `json:"monthly_production"`
	TotalProduction   float64 `json:"total_production"`
}

// ChartPoint is a single entry in a chart series. Value carries the primary
// metric; Secondary carries a companion metric where a chart has one (the
// production trend pairs tons with efficiency).
type ChartPoint struct {
	Period    string  `json:"period,omitempty"`
	Label     string  `json:"label,omitempty"`
	Value     float64 `json:"value"`
	Secondary float64 `json:"secondary,omitempty"`
}

// ChartSeries is an ordered sequence of chart points.
type ChartSeries []ChartPoint

// Charts maps chart names to their series.
type Charts map[string]ChartSeries

// Chart names produced by the visualization assembler.
const (
	ChartIncidentsTrend    = "incidents_trend"
	ChartEquipmentStatus   = "equipment_status"
	ChartProductionMetrics = "production_metrics"
	ChartProductionTrend   = "production_trend"
	ChartEfficiencyTrend   = "efficiency_trend"
)

// DataTables is a compact tabular rendering of the structured context.
type DataTables struct {
	Summary string `json:"summary"`
	Preview string `json:"preview"`
}

// Visualizations groups everything the UI renders alongside the answer.
type Visualizations struct {
	KPIs   *KPISet     `json:"kpis,omitempty"`
	Charts Charts      `json:"charts,omitempty"`
	Tables *DataTables `json:"tables,omitempty"`
}

// Source is the provenance metadata of one semantic search hit.
type Source struct {
	Source string `json:"source"`
	Type   string `json:"type"`
	Site   string `json:"site,omitempty"`
	RowID  int    `json:"row_id,omitempty"`
	Page   int    `json:"page,omitempty"`
}

// Response is the engine's public result shape. The engine always returns a
// well-formed Response; it never raises to its caller.
type Response struct {
	Answer          string         `json:"answer"`
	Type            ResponseType   `json:"type"`
	Visualizations  Visualizations `json:"visualizations"`
	Recommendations []string       `json:"recommendations"`
	Sources         []Source       `json:"sources"`
	Language        string         `json:"language"`
	Audio           *tts.Result    `json:"audio,omitempty"`
}
