package engine

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/mineops/assistant/internal/db"
)

const (
	noDataMessage = "No relevant data found in database for this query."

	previewRows     = 10
	previewCellMax  = 50
	summarySitesMax = 5
)

// StructuredContext is the relational half of the aggregated context: a
// human-readable rendering of the rows a query plan returned, plus the raw
// rows for downstream consumers.
type StructuredContext struct {
	Text    string
	Columns []string
	Rows    []map[string]string
}

// Empty reports whether the plan returned no rows.
func (s StructuredContext) Empty() bool { return len(s.Rows) == 0 }

// contextBuilder turns an intent and filter into a SQL plan, runs it and
// renders the result. Failures degrade to an explanatory text so the
// answer generator still has something to work with.
type contextBuilder struct {
	db *db.DB
}

func (b *contextBuilder) Build(ctx context.Context, intent Intent, filter Filter) StructuredContext {
	query, args := planFor(intent, filter)

	cols, rows, err := b.runQuery(ctx, query, args)
	if err != nil {
		return StructuredContext{Text: fmt.Sprintf("Database query error: %v", err)}
	}
	if len(rows) == 0 {
		return StructuredContext{Text: noDataMessage, Columns: cols}
	}

	return StructuredContext{
		Text:    renderRows(cols, rows),
		Columns: cols,
		Rows:    rows,
	}
}

// planFor returns the SQL plan for an intent. Every plan is bounded by a
// LIMIT so the rendered context stays prompt-sized.
func planFor(intent Intent, filter Filter) (string, []any) {
	switch intent {
	case IntentIncidents:
		return `SELECT incident_date, mine_name, incident_type, severity, description,
			casualties, injuries, cost_impact, response_time_minutes
			FROM mining_incidents
			WHERE incident_date >= date('now', '-6 months')
			ORDER BY CASE severity
				WHEN 'Critical' THEN 4
				WHEN 'High' THEN 3
				WHEN 'Medium' THEN 2
				ELSE 1 END DESC,
			incident_date DESC
			LIMIT 8`, nil

	case IntentEquipmentHistory:
		return `SELECT m.equipment_id, e.equipment_type, m.maintenance_type,
			m.start_date, m.end_date, m.cost, m.downtime_hours
			FROM maintenance_repairs m
			LEFT JOIN equipment_monitoring e ON e.equipment_id = m.equipment_id
			ORDER BY m.start_date DESC
			LIMIT 6`, nil

	case IntentEquipment:
		return `SELECT equipment_id, equipment_type, status, efficiency_score,
			alerts, temperature_celsius, vibration_level, next_maintenance
			FROM equipment_monitoring
			WHERE status != 'Operational' OR efficiency_score < 80
			ORDER BY CASE status
				WHEN 'Critical' THEN 4
				WHEN 'Maintenance' THEN 3
				WHEN 'Offline' THEN 2
				ELSE 1 END DESC,
			efficiency_score ASC
			LIMIT 8`, nil

	case IntentProduction:
		where, args := productionWhere(filter)
		return `SELECT metric_date, site_name, material_type, quantity_tons,
			target_tons, efficiency_percentage, downtime_hours, cost_per_ton
			FROM production_metrics
			WHERE ` + where + `
			ORDER BY metric_date DESC, quantity_tons DESC
			LIMIT 50`, args

	case IntentFuel:
		return `SELECT equipment_id, reading_date, fuel_liters, energy_kwh, shift
			FROM fuel_energy
			WHERE reading_date >= date('now', '-7 days')
			ORDER BY reading_date DESC, energy_kwh DESC
			LIMIT 6`, nil

	case IntentQuality:
		return `SELECT site_name, metric_date, material_type, quality_grade, defects_found
			FROM quality_metrics
			WHERE metric_date >= date('now', '-30 days')
			ORDER BY metric_date DESC, defects_found DESC
			LIMIT 6`, nil

	case IntentCompliance:
		return `SELECT audit_date, site_name, compliance_score, violations,
			auditor_name, recommendations
			FROM safety_compliance
			ORDER BY audit_date DESC
			LIMIT 5`, nil

	default:
		// Mixed questions get the two most recent rows from each major
		// table, so no single table can crowd out the others.
		return `SELECT record_type, record_date, site_name, detail, description FROM (
				SELECT 'incident' AS record_type, incident_date AS record_date,
					mine_name AS site_name, severity AS detail, description
				FROM mining_incidents
				ORDER BY incident_date DESC LIMIT 2
			)
			UNION ALL
			SELECT record_type, record_date, site_name, detail, description FROM (
				SELECT 'equipment' AS record_type, date(updated_at) AS record_date,
					equipment_id AS site_name, status AS detail, alerts AS description
				FROM equipment_monitoring
				WHERE status != 'Operational'
				ORDER BY updated_at DESC LIMIT 2
			)
			UNION ALL
			SELECT record_type, record_date, site_name, detail, description FROM (
				SELECT 'production' AS record_type, metric_date AS record_date,
					site_name, CAST(quantity_tons AS TEXT) || ' tons' AS detail,
					material_type AS description
				FROM production_metrics
				ORDER BY metric_date DESC LIMIT 2
			)
			ORDER BY record_date DESC`, nil
	}
}

// productionWhere composes the WHERE clause for production queries from the
// extracted timeframe and site. The default window is the last 180 days.
func productionWhere(filter Filter) (string, []any) {
	var (
		clauses []string
		args    []any
	)

	switch filter.Timeframe {
	case TimeframeLastMonth:
		clauses = append(clauses, `strftime('%Y-%m', metric_date) = strftime('%Y-%m', date('now', '-1 month'))`)
	case TimeframeThisMonth:
		clauses = append(clauses, `strftime('%Y-%m', metric_date) = strftime('%Y-%m', 'now')`)
	case TimeframeLast30Days:
		clauses = append(clauses, `metric_date >= date('now', '-30 days')`)
	default:
		clauses = append(clauses, `metric_date >= date('now', '-180 days')`)
	}

	if filter.Site != "" {
		clauses = append(clauses, `LOWER(site_name) = ?`)
		args = append(args, filter.Site)
	}

	return strings.Join(clauses, " AND "), args
}

// runQuery executes a plan and scans every column as text. Column order is
// preserved so the preview matches the SELECT list.
func (b *contextBuilder) runQuery(ctx context.Context, query string, args []any) ([]string, []map[string]string, error) {
	rows, err := b.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}

	var records []map[string]string
	for rows.Next() {
		values := make([]sql.NullString, len(cols))
		dest := make([]any, len(cols))
		for i := range values {
			dest[i] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, err
		}

		record := make(map[string]string, len(cols))
		for i, col := range cols {
			record[col] = values[i].String
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}

	return cols, records, nil
}

// renderRows produces the summary lines and row preview that get spliced
// into the LLM prompt.
func renderRows(cols []string, rows []map[string]string) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Retrieved %d records from database.\n", len(rows))

	if sites := distinctSites(rows); len(sites) > 0 {
		b.WriteString("Sites: " + strings.Join(sites, ", ") + "\n")
	}

	if hasColumns(cols, "quantity_tons", "efficiency_percentage", "downtime_hours") {
		var tons, downtime, effSum float64
		var effCount int
		for _, r := range rows {
			tons += parseFloat(r["quantity_tons"])
			downtime += parseFloat(r["downtime_hours"])
			if eff := parseFloat(r["efficiency_percentage"]); eff > 0 {
				effSum += eff
				effCount++
			}
		}
		avgEff := 0.0
		if effCount > 0 {
			avgEff = effSum / float64(effCount)
		}
		fmt.Fprintf(&b, "Totals: %.1f tons produced, %.1f%% avg efficiency, %.1f downtime hours\n",
			tons, avgEff, downtime)
	}

	b.WriteString("\n")
	b.WriteString(strings.Join(cols, " | "))
	b.WriteString("\n")

	limit := len(rows)
	if limit > previewRows {
		limit = previewRows
	}
	for _, row := range rows[:limit] {
		cells := make([]string, len(cols))
		for i, col := range cols {
			cells[i] = truncateCell(row[col])
		}
		b.WriteString(strings.Join(cells, " | "))
		b.WriteString("\n")
	}
	if len(rows) > previewRows {
		fmt.Fprintf(&b, "... and %d more rows\n", len(rows)-previewRows)
	}

	return b.String()
}

func distinctSites(rows []map[string]string) []string {
	seen := make(map[string]bool)
	for _, r := range rows {
		if site, ok := r["site_name"]; ok && site != "" {
			seen[site] = true
		}
	}
	if len(seen) == 0 {
		return nil
	}

	sites := make([]string, 0, len(seen))
	for s := range seen {
		sites = append(sites, s)
	}
	sort.Strings(sites)
	if len(sites) > summarySitesMax {
		sites = sites[:summarySitesMax]
	}
	return sites
}

func hasColumns(cols []string, want ...string) bool {
	have := make(map[string]bool, len(cols))
	for _, c := range cols {
		have[c] = true
	}
	for _, w := range want {
		if !have[w] {
			return false
		}
	}
	return true
}

func truncateCell(s string) string {
	if len(s) > previewCellMax {
		return s[:previewCellMax] + "..."
	}
	return s
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(s, 64)
	return f
}
