package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/JaimeStill/fissure/internal/api"
	"github.com/JaimeStill/fissure/internal/config"
	"github.com/JaimeStill/fissure/internal/dashboard"
	"github.com/JaimeStill/fissure/internal/infrastructure"
	"github.com/JaimeStill/fissure/pkg/logging"
	"github.com/JaimeStill/fissure/pkg/routes"
)

func validConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "fissure.toml")
	content := `
[api.pagination]
default_page_size = 20
max_page_size = 100

[audit]
path = "` + filepath.ToSlash(filepath.Join(dir, "audit.json")) + `"

[storage]
path = "` + filepath.ToSlash(filepath.Join(dir, "archive")) + `"
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.LoadFile(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	return cfg
}

func setupInfra(t *testing.T, cfg *config.Config) *infrastructure.Infrastructure {
	t.Helper()
	infra, err := infrastructure.NewWithLogger(cfg, logging.Discard())
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	t.Cleanup(func() { infra.Lifecycle.Shutdown(cfg.ShutdownTimeoutDuration()) })
	return infra
}

func TestNewModule(t *testing.T) {
	cfg := validConfig(t)

	m, err := api.NewModule(cfg, setupInfra(t, cfg))
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	if m.Prefix() != "/api" {
		t.Errorf("prefix: got %s, want /api", m.Prefix())
	}
}

func TestNewRuntime(t *testing.T) {
	cfg := validConfig(t)

	runtime := api.NewRuntime(cfg, setupInfra(t, cfg))

	if runtime.Pagination.DefaultPageSize != 20 {
		t.Errorf("pagination default page size: got %d, want 20", runtime.Pagination.DefaultPageSize)
	}
	if runtime.Pagination.MaxPageSize != 100 {
		t.Errorf("pagination max page size: got %d, want 100", runtime.Pagination.MaxPageSize)
	}
	if runtime.Report.RecentLimit != 10 {
		t.Errorf("report recent limit: got %d, want 10", runtime.Report.RecentLimit)
	}
	if runtime.MaxBodySize != 64*1024 {
		t.Errorf("max body size: got %d, want 65536", runtime.MaxBodySize)
	}
	if runtime.Logger == nil {
		t.Error("runtime logger is nil")
	}
	if runtime.Audit == nil {
		t.Error("runtime audit log is nil")
	}
	if runtime.Storage == nil {
		t.Error("runtime storage is nil")
	}
	if runtime.Classifier == nil {
		t.Error("runtime classifier is nil")
	}
	if runtime.Lifecycle == nil {
		t.Error("runtime lifecycle is nil")
	}
}

func TestNewDomain(t *testing.T) {
	cfg := validConfig(t)
	runtime := api.NewRuntime(cfg, setupInfra(t, cfg))

	domain := api.NewDomain(runtime)
	if domain == nil {
		t.Fatal("NewDomain() returned nil")
	}
	if domain.Sessions == nil || domain.Access == nil || domain.Dashboard == nil {
		t.Errorf("domain has nil systems: %+v", domain)
	}
}

func TestGroups(t *testing.T) {
	cfg := validConfig(t)
	runtime := api.NewRuntime(cfg, setupInfra(t, cfg))

	got := routes.Patterns(api.Groups(api.NewDomain(runtime), runtime)...)
	want := []string{
		"POST /sessions",
		"GET /sessions/{id}",
		"POST /sessions/{id}/refine",
		"POST /sessions/{id}/retry",
		"DELETE /sessions/{id}",
		"POST /access",
		"GET /dashboard/snapshot",
		"GET /dashboard/report",
		"POST /dashboard/report/archive",
		"GET /dashboard/accesses",
		"GET /dashboard/classifications",
		"GET /archive",
		"GET /archive/download/{key...}",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("route patterns mismatch (-want +got):\n%s", diff)
	}
}

func TestModuleFlow(t *testing.T) {
	cfg := validConfig(t)
	m, err := api.NewModule(cfg, setupInfra(t, cfg))
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	do := func(method, target, body string) *httptest.ResponseRecorder {
		t.Helper()
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, target, nil)
		} else {
			req = httptest.NewRequest(method, target, strings.NewReader(body))
		}
		rec := httptest.NewRecorder()
		m.Serve(rec, req)
		return rec
	}

	rec := do("POST", "/api/access", `{"actor":"ana","granted":true,"role":"inspector"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("access: got %d, body %s", rec.Code, rec.Body)
	}

	rec = do("POST", "/api/sessions", `{"actor":"ana","text":"flecha en el centro del vano de la viga"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("open session: got %d, body %s", rec.Code, rec.Body)
	}
	var step struct {
		Session struct {
			Status string `json:"status"`
		} `json:"session"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&step); err != nil {
		t.Fatalf("decode session: %v", err)
	}
	if step.Session.Status != "resolved" {
		t.Errorf("session status: got %s, want resolved", step.Session.Status)
	}

	rec = do("GET", "/api/dashboard/snapshot", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("snapshot: got %d, body %s", rec.Code, rec.Body)
	}
	var snap dashboard.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if snap.TotalAccesses != 1 || snap.TotalClassifications != 1 || snap.LabelDistribution["arrufo"] != 1 {
		t.Errorf("unexpected snapshot %+v", snap)
	}

	rec = do("POST", "/api/dashboard/report/archive", `{"formats":["markdown"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("archive: got %d, body %s", rec.Code, rec.Body)
	}
	var archived []dashboard.Archived
	if err := json.NewDecoder(rec.Body).Decode(&archived); err != nil || len(archived) != 1 {
		t.Fatalf("decode archive: %v %+v", err, archived)
	}

	rec = do("GET", "/api/archive", "")
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), archived[0].Key) {
		t.Fatalf("archive list: got %d, body %s", rec.Code, rec.Body)
	}

	rec = do("GET", "/api/archive/download/"+archived[0].Key, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("download: got %d, body %s", rec.Code, rec.Body)
	}
	if got := rec.Header().Get("Content-Type"); got != dashboard.FormatMarkdown.ContentType() {
		t.Errorf("download content type: got %s", got)
	}
	if !strings.Contains(rec.Body.String(), "## Label distribution") {
		t.Errorf("download body missing report:\n%s", rec.Body)
	}

	rec = do("GET", "/api/archive/download/reports/missing.md", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing download: got %d, want 404", rec.Code)
	}
}

func TestModuleMalformedSessionID(t *testing.T) {
	cfg := validConfig(t)
	m, err := api.NewModule(cfg, setupInfra(t, cfg))
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	rec := httptest.NewRecorder()
	m.Serve(rec, httptest.NewRequest("GET", "/api/sessions/not-a-uuid", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("malformed id: got %d, want 404", rec.Code)
	}
}
