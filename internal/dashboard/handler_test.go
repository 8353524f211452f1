package dashboard_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/JaimeStill/fissure/internal/dashboard"
	"github.com/JaimeStill/fissure/pkg/pagination"
	"github.com/JaimeStill/fissure/pkg/routes"
)

func newMux(f fixture) *http.ServeMux {
	mux := http.NewServeMux()
	routes.Register(mux, f.sys.Handler().Routes())
	return mux
}

func serve(mux *http.ServeMux, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func TestHandlerSnapshot(t *testing.T) {
	mux := newMux(newFixture(t, sampleEvents()...))

	rec := serve(mux, "GET", "/dashboard/snapshot", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body)
	}

	var snap dashboard.Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if snap.TotalClassifications != 3 || snap.LabelDistribution["arrufo"] != 2 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
}

func TestHandlerReport(t *testing.T) {
	mux := newMux(newFixture(t, sampleEvents()...))

	tests := []struct {
		query       string
		status      int
		contentType string
		contains    string
	}{
		{"", http.StatusOK, "text/plain; charset=utf-8", "== Activity =="},
		{"?format=markdown", http.StatusOK, "text/markdown; charset=utf-8", "## Users"},
		{"?format=json", http.StatusOK, "application/json", `"generated_at"`},
		{"?format=yaml", http.StatusOK, "application/yaml", "generated_at:"},
		{"?format=pdf", http.StatusBadRequest, "application/json", "unknown report format"},
	}

	for _, tt := range tests {
		t.Run("format"+tt.query, func(t *testing.T) {
			rec := serve(mux, "GET", "/dashboard/report"+tt.query, "")
			if rec.Code != tt.status {
				t.Fatalf("status: got %d, want %d", rec.Code, tt.status)
			}
			if got := rec.Header().Get("Content-Type"); got != tt.contentType {
				t.Errorf("Content-Type = %q, want %q", got, tt.contentType)
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("body missing %q:\n%s", tt.contains, rec.Body)
			}
		})
	}
}

func TestHandlerArchive(t *testing.T) {
	mux := newMux(newFixture(t, sampleEvents()...))

	rec := serve(mux, "POST", "/dashboard/report/archive", `{"formats":["md","json"]}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body)
	}

	var archived []dashboard.Archived
	if err := json.NewDecoder(rec.Body).Decode(&archived); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(archived) != 2 || archived[0].Format != dashboard.FormatMarkdown {
		t.Errorf("archived = %+v, want markdown and json", archived)
	}

	rec = serve(mux, "POST", "/dashboard/report/archive", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("empty body status: got %d, body %s", rec.Code, rec.Body)
	}

	rec = serve(mux, "POST", "/dashboard/report/archive", `{"formats":["docx"]}`)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("unknown format status: got %d, want 400", rec.Code)
	}
}

func TestHandlerListings(t *testing.T) {
	mux := newMux(newFixture(t, sampleEvents()...))

	rec := serve(mux, "GET", "/dashboard/accesses?page_size=1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, body %s", rec.Code, rec.Body)
	}
	var accesses pagination.PageResult[dashboard.AccessRow]
	if err := json.NewDecoder(rec.Body).Decode(&accesses); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if accesses.Total != 3 || len(accesses.Data) != 1 || accesses.Data[0].Actor != "carla" {
		t.Errorf("unexpected accesses page %+v", accesses)
	}

	rec = serve(mux, "GET", "/dashboard/classifications?search=puntual", "")
	var classifications pagination.PageResult[dashboard.ClassificationRow]
	if err := json.NewDecoder(rec.Body).Decode(&classifications); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if classifications.Total != 1 || classifications.Data[0].Description != "puntada saltada" {
		t.Errorf("unexpected classifications page %+v", classifications)
	}
}

func TestHandlerCorruptLog(t *testing.T) {
	f := newFixture(t)
	if err := os.WriteFile(f.audit.Path(), []byte(`[{"actor":`), 0644); err != nil {
		t.Fatal(err)
	}
	mux := newMux(f)

	for _, target := range []string{"/dashboard/snapshot", "/dashboard/report", "/dashboard/accesses", "/dashboard/classifications"} {
		t.Run(target, func(t *testing.T) {
			rec := serve(mux, "GET", target, "")
			if rec.Code != http.StatusInternalServerError {
				t.Errorf("status: got %d, want 500", rec.Code)
			}
		})
	}
}
