package storage_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/JaimeStill/fissure/pkg/lifecycle"
	"github.com/JaimeStill/fissure/pkg/storage"
)

const azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=fissurestore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/fissurestore;"

func newLocal(t *testing.T) storage.System {
	t.Helper()
	cfg := &storage.Config{Provider: storage.ProviderLocal, Path: filepath.Join(t.TempDir(), "archive")}
	sys, err := storage.New(cfg, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if err := sys.Start(lifecycle.New()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	return sys
}

func TestNewAzureReturnsSystem(t *testing.T) {
	cfg := &storage.Config{
		Provider:         storage.ProviderAzure,
		ContainerName:    "reports",
		ConnectionString: azuriteConnString,
	}

	sys, err := storage.New(cfg, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if sys.Location() != "azure://reports" {
		t.Errorf("Location() = %q, want azure://reports", sys.Location())
	}
}

func TestNewInvalidConnectionString(t *testing.T) {
	cfg := &storage.Config{
		Provider:         storage.ProviderAzure,
		ContainerName:    "reports",
		ConnectionString: "not-a-connection-string",
	}

	_, err := storage.New(cfg, slog.Default())
	if err == nil {
		t.Fatal("expected error for invalid connection string, got nil")
	}
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := storage.New(&storage.Config{Provider: "s3"}, slog.Default())
	if !errors.Is(err, storage.ErrUnknownProvider) {
		t.Fatalf("New() error = %v, want ErrUnknownProvider", err)
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"ErrNotFound maps to 404", storage.ErrNotFound, http.StatusNotFound},
		{"ErrEmptyKey maps to 400", storage.ErrEmptyKey, http.StatusBadRequest},
		{"ErrInvalidKey maps to 400", storage.ErrInvalidKey, http.StatusBadRequest},
		{"wrapped ErrNotFound maps to 404", fmt.Errorf("operation failed: %w", storage.ErrNotFound), http.StatusNotFound},
		{"deadline maps to 504", fmt.Errorf("list: %w", context.DeadlineExceeded), http.StatusGatewayTimeout},
		{"unknown error maps to 500", fmt.Errorf("unexpected failure"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := storage.MapHTTPStatus(tt.err)
			if got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestLocalRoundTrip(t *testing.T) {
	sys := newLocal(t)
	ctx := context.Background()

	body := []byte("# Report\n")
	if err := sys.Upload(ctx, "reports/report-1.md", bytes.NewReader(body), "text/markdown"); err != nil {
		t.Fatalf("Upload() error = %v", err)
	}

	ok, err := sys.Exists(ctx, "reports/report-1.md")
	if err != nil || !ok {
		t.Fatalf("Exists() = %v, %v; want true", ok, err)
	}

	rc, err := sys.Download(ctx, "reports/report-1.md")
	if err != nil {
		t.Fatalf("Download() error = %v", err)
	}
	got, _ := io.ReadAll(rc)
	rc.Close()
	if !bytes.Equal(got, body) {
		t.Errorf("Download() = %q, want %q", got, body)
	}

	if err := sys.Delete(ctx, "reports/report-1.md"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := sys.Download(ctx, "reports/report-1.md"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Download() after delete error = %v, want ErrNotFound", err)
	}
	if err := sys.Delete(ctx, "reports/report-1.md"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want ErrNotFound", err)
	}
}

func TestLocalList(t *testing.T) {
	sys := newLocal(t)
	ctx := context.Background()

	for _, key := range []string{"reports/b.txt", "reports/a.json", "other/c.txt"} {
		if err := sys.Upload(ctx, key, bytes.NewReader([]byte("x")), "text/plain"); err != nil {
			t.Fatalf("Upload(%s) error = %v", key, err)
		}
	}

	keys, err := sys.List(ctx, "reports/")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(keys) != 2 || keys[0] != "reports/a.json" || keys[1] != "reports/b.txt" {
		t.Errorf("List() = %v, want [reports/a.json reports/b.txt]", keys)
	}
}

func TestKeyValidation(t *testing.T) {
	azure, err := storage.New(&storage.Config{
		Provider:         storage.ProviderAzure,
		ContainerName:    "reports",
		ConnectionString: azuriteConnString,
	}, slog.Default())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	systems := map[string]storage.System{
		"local": newLocal(t),
		"azure": azure,
	}

	tests := []struct {
		name    string
		key     string
		wantErr error
	}{
		{"empty key", "", storage.ErrEmptyKey},
		{"path traversal", "reports/../secrets/key", storage.ErrInvalidKey},
		{"double dot in middle", "reports/..hidden/file.md", storage.ErrInvalidKey},
		{"absolute", "/etc/passwd", storage.ErrInvalidKey},
	}

	ctx := context.Background()

	for provider, sys := range systems {
		for _, tt := range tests {
			t.Run(provider+"/"+tt.name, func(t *testing.T) {
				err := sys.Upload(ctx, tt.key, bytes.NewReader(nil), "text/plain")
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Upload() error = %v, want %v", err, tt.wantErr)
				}

				_, err = sys.Download(ctx, tt.key)
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Download() error = %v, want %v", err, tt.wantErr)
				}

				err = sys.Delete(ctx, tt.key)
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Delete() error = %v, want %v", err, tt.wantErr)
				}

				_, err = sys.Exists(ctx, tt.key)
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Exists() error = %v, want %v", err, tt.wantErr)
				}
			})
		}
	}
}
