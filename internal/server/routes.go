package server

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mineops/assistant/internal/tts"
)

func (s *Server) registerRoutes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Post("/query", s.handleQuery)
		r.Get("/health", s.handleHealth)
		r.Get("/system-status", s.handleSystemStatus)
		r.Get("/kpis", s.handleKPIs)
		r.Get("/incidents", s.handleIncidents)
		r.Get("/maintenance-alerts", s.handleMaintenanceAlerts)
		r.Get("/languages", s.handleLanguages)
		r.Get("/quick-actions", s.handleQuickActions)
		r.Get("/chat/ws", s.handleWebSocket)
	})
}

type queryRequest struct {
	Question string `json:"question"`
	Language string `json:"language"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Question == "" {
		http.Error(w, "question is required", http.StatusBadRequest)
		return
	}

	resp := s.engine.Query(r.Context(), req.Question, req.Language)

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"response": resp,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbStatus := "ok"
	if err := s.db.PingContext(r.Context()); err != nil {
		dbStatus = "error: " + err.Error()
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "healthy",
		"database":       dbStatus,
		"uptime_seconds": int(time.Since(s.started).Seconds()),
	})
}

func (s *Server) handleSystemStatus(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.QueryContext(r.Context(),
		`SELECT status, COUNT(*) FROM equipment_monitoring GROUP BY status`)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	statuses := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		statuses[status] = count
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"equipment_status": statuses,
		"checked_at":       time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleKPIs(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.engine.KPIs(r.Context()))
}

type incidentSummary struct {
	Date     string `json:"date"`
	Mine     string `json:"mine"`
	Type     string `json:"type"`
	Severity string `json:"severity"`
}

func (s *Server) handleIncidents(w http.ResponseWriter, r *http.Request) {
	limit := 5
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 50 {
			limit = n
		}
	}

	rows, err := s.db.QueryContext(r.Context(),
		`SELECT incident_date, mine_name, incident_type, severity
		 FROM mining_incidents
		 ORDER BY incident_date DESC
		 LIMIT ?`, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	incidents := []incidentSummary{}
	for rows.Next() {
		var inc incidentSummary
		if err := rows.Scan(&inc.Date, &inc.Mine, &inc.Type, &inc.Severity); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		incidents = append(incidents, inc)
	}

	writeJSON(w, http.StatusOK, incidents)
}

type maintenanceAlert struct {
	EquipmentID     string  `json:"equipment_id"`
	EquipmentType   string  `json:"equipment_type"`
	Status          string  `json:"status"`
	EfficiencyScore float64 `json:"efficiency_score"`
	NextMaintenance string  `json:"next_maintenance,omitempty"`
}

func (s *Server) handleMaintenanceAlerts(w http.ResponseWriter, r *http.Request) {
	rows, err := s.db.QueryContext(r.Context(),
		`SELECT equipment_id, equipment_type, status, efficiency_score,
		 COALESCE(next_maintenance, '')
		 FROM equipment_monitoring
		 WHERE status IN ('Critical', 'Maintenance', 'Offline')
		    OR (next_maintenance IS NOT NULL AND next_maintenance <= date('now', '+7 days'))
		 ORDER BY CASE status
			WHEN 'Critical' THEN 3
			WHEN 'Offline' THEN 2
			WHEN 'Maintenance' THEN 1
			ELSE 0 END DESC,
		 next_maintenance ASC
		 LIMIT 10`)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	defer rows.Close()

	alerts := []maintenanceAlert{}
	for rows.Next() {
		var a maintenanceAlert
		if err := rows.Scan(&a.EquipmentID, &a.EquipmentType, &a.Status, &a.EfficiencyScore, &a.NextMaintenance); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		alerts = append(alerts, a)
	}

	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) handleLanguages(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"languages": tts.SupportedLanguages(),
		"default":   "en",
	})
}

// quickActions are the canned questions the UI offers as one-click chips.
var quickActions = []string{
	"Show current equipment status",
	"Any incidents in the last week?",
	"Production summary for this month",
	"Which equipment needs maintenance?",
	"Show production efficiency trend",
}

func (s *Server) handleQuickActions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"actions": quickActions})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
