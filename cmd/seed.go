package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/mineops/assistant/internal/db"
	"github.com/mineops/assistant/internal/progress"
	"github.com/mineops/assistant/internal/vectordb"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load sample operational data and build the semantic index",
	Long: `Populates the relational store with sample incidents, equipment,
production, fuel, quality and compliance records, then indexes a
summary of each record into the vector store for semantic search.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().Bool("reset", false, "clear existing data before seeding")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	reset, _ := cmd.Flags().GetBool("reset")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	if reset {
		if err := clearData(database); err != nil {
			return fmt.Errorf("clearing data: %w", err)
		}
	}

	docs, err := seedTables(database)
	if err != nil {
		return fmt.Errorf("seeding tables: %w", err)
	}
	fmt.Printf("Seeded %d records across operational tables.\n", len(docs))

	embedder, err := createEmbedderFromConfig(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\nSkipping semantic index build.\n", err)
		return nil
	}

	store, err := vectordb.NewChromemStore(embedder)
	if err != nil {
		return fmt.Errorf("creating vector store: %w", err)
	}

	reporter := progress.NewReporter()
	reporter.Start(len(docs), "Indexing records")
	for i, doc := range docs {
		if err := store.AddDocuments(ctx, []vectordb.Document{doc}); err != nil {
			reporter.Finish()
			return fmt.Errorf("indexing %s: %w", doc.ID, err)
		}
		reporter.Update(i+1, doc.Metadata.Source)
	}
	reporter.Finish()

	vectorDir := filepath.Join(cfg.DataDir, "vectordb")
	if err := os.MkdirAll(vectorDir, 0o755); err != nil {
		return fmt.Errorf("creating vector dir: %w", err)
	}
	if err := store.Persist(ctx, vectorDir); err != nil {
		return fmt.Errorf("persisting vector store: %w", err)
	}

	fmt.Printf("Indexed %d documents into %s.\n", store.Count(), vectorDir)
	return nil
}

var dataTables = []string{
	"mining_incidents", "equipment_monitoring", "production_metrics",
	"fuel_energy", "quality_metrics", "safety_compliance", "maintenance_repairs",
}

func clearData(database *db.DB) error {
	for _, table := range dataTables {
		if _, err := database.Exec("DELETE FROM " + table); err != nil {
			return err
		}
	}
	return nil
}

func day(offset int) string {
	return time.Now().AddDate(0, 0, offset).Format("2006-01-02")
}

// seedTables inserts the sample dataset and returns one indexable summary
// document per record.
func seedTables(database *db.DB) ([]vectordb.Document, error) {
	var docs []vectordb.Document

	incidents := []struct {
		date, mine, itype, severity, desc string
		injuries                          int
		cost                              float64
	}{
		{day(-3), "Mine A", "Equipment Failure", "High", "Conveyor belt CB-02 snapped during peak load, halting ore transport for four hours", 0, 45000},
		{day(-7), "Mine B", "Gas Leak", "Critical", "Methane detected above threshold in shaft 3, full evacuation of night shift", 2, 120000},
		{day(-12), "Mine A", "Slip and Fall", "Medium", "Worker slipped on wet platform near wash plant, minor injury reported", 1, 3500},
		{day(-20), "Mine C", "Vehicle Collision", "High", "Haul truck HT-17 collided with berm on ramp 2, driver unharmed", 0, 80000},
		{day(-35), "Alpha Mine", "Flooding", "Critical", "Sump pump failure flooded lower gallery, pumping operations ongoing", 0, 200000},
		{day(-50), "Mine B", "Electrical Fault", "Low", "Lighting circuit tripped in maintenance bay, reset without downtime", 0, 500},
	}
	for i, in := range incidents {
		_, err := database.Exec(
			`INSERT INTO mining_incidents (incident_date, mine_name, incident_type, severity, description, injuries, cost_impact)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			in.date, in.mine, in.itype, in.severity, in.desc, in.injuries, in.cost)
		if err != nil {
			return nil, err
		}
		docs = append(docs, vectordb.Document{
			ID: fmt.Sprintf("incident-%d", i+1),
			Content: fmt.Sprintf("%s incident at %s on %s: %s (severity %s)",
				in.itype, in.mine, in.date, in.desc, in.severity),
			Metadata: vectordb.DocumentMetadata{
				Source: "mining_incidents",
				Type:   vectordb.DocTypeIncidents,
				Site:   in.mine,
				RowID:  i + 1,
			},
		})
	}

	equipment := []struct {
		id, etype, status string
		efficiency        float64
		alerts            string
	}{
		{"EX-210", "Excavator", "Critical", 42, "Hydraulic pressure low; vibration above limit"},
		{"HT-17", "Haul Truck", "Maintenance", 0, "Scheduled brake overhaul"},
		{"CR-04", "Crusher", "Operational", 88, ""},
		{"DR-11", "Drill Rig", "Operational", 91, ""},
		{"CB-02", "Conveyor", "Offline", 0, "Belt replacement in progress"},
		{"LD-08", "Loader", "Operational", 76, "Efficiency below target"},
	}
	for i, eq := range equipment {
		_, err := database.Exec(
			`INSERT INTO equipment_monitoring (equipment_id, equipment_type, status, efficiency_score, alerts, next_maintenance)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			eq.id, eq.etype, eq.status, eq.efficiency, eq.alerts, day(14+i*7))
		if err != nil {
			return nil, err
		}
		docs = append(docs, vectordb.Document{
			ID: "equipment-" + eq.id,
			Content: fmt.Sprintf("%s %s is %s with efficiency score %.0f. %s",
				eq.etype, eq.id, eq.status, eq.efficiency, eq.alerts),
			Metadata: vectordb.DocumentMetadata{
				Source: "equipment_monitoring",
				Type:   vectordb.DocTypeEquipment,
				RowID:  i + 1,
			},
		})
	}

	sites := []string{"Mine A", "Mine B", "Mine C", "Alpha Mine"}
	materials := []string{"iron ore", "coal", "copper ore", "bauxite"}
	for d := 0; d < 28; d += 2 {
		for si, site := range sites {
			tons := 3200.0 + float64((d*37+si*211)%900)
			eff := 72.0 + float64((d*13+si*7)%23)
			_, err := database.Exec(
				`INSERT INTO production_metrics (metric_date, site_name, material_type, quantity_tons, target_tons, efficiency_percentage, downtime_hours)
				 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				day(-d), site, materials[si], tons, 4000, eff, float64(d%5))
			if err != nil {
				return nil, err
			}
		}
	}
	for si, site := range sites {
		docs = append(docs, vectordb.Document{
			ID: fmt.Sprintf("production-%d", si+1),
			Content: fmt.Sprintf("%s produces %s with daily output around 3200-4100 tons against a 4000 ton target",
				site, materials[si]),
			Metadata: vectordb.DocumentMetadata{
				Source: "production_metrics",
				Type:   vectordb.DocTypeProduction,
				Site:   site,
			},
		})
	}

	fuel := []struct {
		equipment string
		liters    float64
		kwh       float64
		shift     string
	}{
		{"EX-210", 410, 0, "day"},
		{"HT-17", 620, 0, "day"},
		{"CR-04", 0, 5200, "night"},
		{"DR-11", 180, 950, "night"},
	}
	for i, f := range fuel {
		_, err := database.Exec(
			`INSERT INTO fuel_energy (equipment_id, reading_date, fuel_liters, energy_kwh, shift)
			 VALUES (?, ?, ?, ?, ?)`,
			f.equipment, day(-i), f.liters, f.kwh, f.shift)
		if err != nil {
			return nil, err
		}
	}
	docs = append(docs, vectordb.Document{
		ID:      "fuel-summary",
		Content: "Fuel and energy consumption readings cover excavators, haul trucks, crushers and drill rigs across day and night shifts",
		Metadata: vectordb.DocumentMetadata{
			Source: "fuel_energy",
			Type:   vectordb.DocTypeFuel,
		},
	})

	quality := []struct {
		site, material, grade string
		defects               int
	}{
		{"Mine A", "iron ore", "A", 2},
		{"Mine B", "coal", "B", 7},
		{"Mine C", "copper ore", "A", 1},
	}
	for i, q := range quality {
		_, err := database.Exec(
			`INSERT INTO quality_metrics (site_name, metric_date, material_type, quality_grade, defects_found)
			 VALUES (?, ?, ?, ?, ?)`,
			q.site, day(-i*3), q.material, q.grade, q.defects)
		if err != nil {
			return nil, err
		}
		docs = append(docs, vectordb.Document{
			ID: fmt.Sprintf("quality-%d", i+1),
			Content: fmt.Sprintf("Quality inspection at %s graded %s as %s with %d defects found",
				q.site, q.material, q.grade, q.defects),
			Metadata: vectordb.DocumentMetadata{
				Source: "quality_metrics",
				Type:   vectordb.DocTypeQuality,
				Site:   q.site,
				RowID:  i + 1,
			},
		})
	}

	audits := []struct {
		site       string
		score      float64
		violations int
		auditor    string
		recs       string
	}{
		{"Mine A", 94.5, 1, "R. Okafor", "Refresh confined-space signage near shaft 1"},
		{"Mine B", 81.0, 4, "L. Chen", "Ventilation compliance requires immediate remediation in shaft 3"},
		{"Alpha Mine", 88.2, 2, "R. Okafor", "Update emergency pump maintenance schedule"},
	}
	for i, a := range audits {
		_, err := database.Exec(
			`INSERT INTO safety_compliance (audit_date, site_name, compliance_score, violations, auditor_name, recommendations)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			day(-i*14-5), a.site, a.score, a.violations, a.auditor, a.recs)
		if err != nil {
			return nil, err
		}
		docs = append(docs, vectordb.Document{
			ID: fmt.Sprintf("audit-%d", i+1),
			Content: fmt.Sprintf("Safety audit at %s scored %.1f with %d violations. %s",
				a.site, a.score, a.violations, a.recs),
			Metadata: vectordb.DocumentMetadata{
				Source: "safety_compliance",
				Type:   vectordb.DocTypeSafety,
				Site:   a.site,
				RowID:  i + 1,
			},
		})
	}

	repairs := []struct {
		equipment, mtype string
		start, end       string
		cost, downtime   float64
	}{
		{"CB-02", "Corrective", day(-2), "", 18000, 36},
		{"HT-17", "Preventive", day(-6), day(-5), 4200, 8},
		{"EX-210", "Corrective", day(-15), day(-13), 26000, 40},
		{"CR-04", "Preventive", day(-30), day(-29), 3100, 6},
	}
	for i, rp := range repairs {
		var end any
		if rp.end != "" {
			end = rp.end
		}
		_, err := database.Exec(
			`INSERT INTO maintenance_repairs (equipment_id, maintenance_type, start_date, end_date, cost, downtime_hours)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			rp.equipment, rp.mtype, rp.start, end, rp.cost, rp.downtime)
		if err != nil {
			return nil, err
		}
		docs = append(docs, vectordb.Document{
			ID: fmt.Sprintf("repair-%d", i+1),
			Content: fmt.Sprintf("%s maintenance on %s started %s costing %.0f with %.0f downtime hours",
				rp.mtype, rp.equipment, rp.start, rp.cost, rp.downtime),
			Metadata: vectordb.DocumentMetadata{
				Source: "maintenance_repairs",
				Type:   vectordb.DocTypeMaintenance,
				RowID:  i + 1,
			},
		})
	}

	return docs, nil
}
