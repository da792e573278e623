package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mineops/assistant/internal/db"
	"github.com/mineops/assistant/internal/engine"
)

func newTestServer(t *testing.T) (*Server, *db.DB) {
	t.Helper()

	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	eng := engine.New(engine.Options{DB: database})
	return New(Config{Port: 0}, database, eng), database
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body map[string]string
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %q", body["status"])
	}
}

func TestCORSHeaders(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer database.Close()

	eng := engine.New(engine.Options{DB: database})
	srv := New(Config{Port: 0, AllowAll: true}, database, eng)

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestQueryEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/query",
		strings.NewReader(`{"question": "hello", "language": "en"}`))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var body struct {
		Success  bool `json:"success"`
		Response struct {
			Answer string `json:"answer"`
			Type   string `json:"type"`
		} `json:"response"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !body.Success {
		t.Error("expected success")
	}
	if body.Response.Type != "greeting" {
		t.Errorf("expected greeting, got %q", body.Response.Type)
	}
	if body.Response.Answer == "" {
		t.Error("expected non-empty answer")
	}
}

func TestQueryEndpoint_Validation(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest("POST", "/api/query", strings.NewReader(`{"language": "en"}`))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("missing question: expected 400, got %d", w.Code)
	}

	req = httptest.NewRequest("POST", "/api/query", strings.NewReader(`not json`))
	w = httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad body: expected 400, got %d", w.Code)
	}
}

func TestIncidentsEndpoint(t *testing.T) {
	srv, database := newTestServer(t)

	_, err := database.Exec(
		`INSERT INTO mining_incidents (incident_date, mine_name, incident_type, severity)
		 VALUES (date('now', '-1 day'), 'Mine A', 'Gas Leak', 'Critical'),
		        (date('now', '-2 days'), 'Mine B', 'Slip and Fall', 'Low')`)
	if err != nil {
		t.Fatalf("seeding incidents: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/incidents?limit=1", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var incidents []incidentSummary
	if err := json.Unmarshal(w.Body.Bytes(), &incidents); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(incidents) != 1 {
		t.Fatalf("expected 1 incident with limit=1, got %d", len(incidents))
	}
	if incidents[0].Mine != "Mine A" {
		t.Errorf("expected most recent incident first, got %+v", incidents[0])
	}
}

func TestMaintenanceAlertsEndpoint(t *testing.T) {
	srv, database := newTestServer(t)

	_, err := database.Exec(
		`INSERT INTO equipment_monitoring (equipment_id, equipment_type, status, efficiency_score)
		 VALUES ('EX-210', 'Excavator', 'Critical', 45),
		        ('DR-11', 'Drill', 'Operational', 92)`)
	if err != nil {
		t.Fatalf("seeding equipment: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/maintenance-alerts", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var alerts []maintenanceAlert
	if err := json.Unmarshal(w.Body.Bytes(), &alerts); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("expected 1 alert, got %d", len(alerts))
	}
	if alerts[0].EquipmentID != "EX-210" {
		t.Errorf("expected EX-210, got %s", alerts[0].EquipmentID)
	}
}

func TestKPIsEndpoint(t *testing.T) {
	srv, database := newTestServer(t)

	_, err := database.Exec(
		`INSERT INTO mining_incidents (incident_date, mine_name, incident_type, severity)
		 VALUES (date('now'), 'Mine A', 'Fire', 'High')`)
	if err != nil {
		t.Fatalf("seeding incidents: %v", err)
	}

	req := httptest.NewRequest("GET", "/api/kpis", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var kpis engine.KPISet
	if err := json.Unmarshal(w.Body.Bytes(), &kpis); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if kpis.TotalIncidents != 1 {
		t.Errorf("TotalIncidents = %d, want 1", kpis.TotalIncidents)
	}
}

func TestLanguagesEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/languages", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Languages []string `json:"languages"`
		Default   string   `json:"default"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body.Default != "en" {
		t.Errorf("default = %q, want en", body.Default)
	}
	if len(body.Languages) == 0 {
		t.Error("expected supported languages")
	}
}

func TestQuickActionsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	req := httptest.NewRequest("GET", "/api/quick-actions", nil)
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var body struct {
		Actions []string `json:"actions"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(body.Actions) != len(quickActions) {
		t.Errorf("got %d actions, want %d", len(body.Actions), len(quickActions))
	}
}
