package auditlog_test

import (
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/fissure/pkg/auditlog"
)

func TestFinalizeDefaults(t *testing.T) {
	cfg := auditlog.Config{}
	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize failed: %v", err)
	}

	if cfg.Path != "data/fissure_audit.json" {
		t.Errorf("path: got %s", cfg.Path)
	}
	if cfg.LockTimeoutDuration() != 5*time.Second {
		t.Errorf("lock_timeout: got %v", cfg.LockTimeoutDuration())
	}
	if cfg.RetryDelayDuration() != 50*time.Millisecond {
		t.Errorf("retry_delay: got %v", cfg.RetryDelayDuration())
	}
	if cfg.FileMode != "0644" || cfg.Perm() != 0o644 {
		t.Errorf("file_mode: got %s (%v)", cfg.FileMode, cfg.Perm())
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	t.Setenv("TEST_AUDIT_PATH", "/tmp/x.json")
	t.Setenv("TEST_AUDIT_LOCK", "2s")
	t.Setenv("TEST_AUDIT_MODE", "0600")

	cfg := auditlog.Config{}
	err := cfg.Finalize(&auditlog.Env{Path: "TEST_AUDIT_PATH", LockTimeout: "TEST_AUDIT_LOCK", FileMode: "TEST_AUDIT_MODE"})
	if err != nil {
		t.Fatalf("finalize failed: %v", err)
	}
	if cfg.Path != "/tmp/x.json" {
		t.Errorf("path: got %s", cfg.Path)
	}
	if cfg.LockTimeoutDuration() != 2*time.Second {
		t.Errorf("lock_timeout: got %v", cfg.LockTimeoutDuration())
	}
	if cfg.Perm() != 0o600 {
		t.Errorf("file_mode: got %v, want 0600", cfg.Perm())
	}
}

func TestFinalizeValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     auditlog.Config
		wantErr string
	}{
		{"bad lock_timeout", auditlog.Config{LockTimeout: "soon"}, "invalid lock_timeout"},
		{"negative lock_timeout", auditlog.Config{LockTimeout: "-1s"}, "lock_timeout must be positive"},
		{"bad retry_delay", auditlog.Config{RetryDelay: "x"}, "invalid retry_delay"},
		{"non-octal file_mode", auditlog.Config{FileMode: "rw-r--r--"}, "invalid file_mode"},
		{"file_mode beyond permissions", auditlog.Config{FileMode: "4755"}, "invalid file_mode"},
		{"file_mode without owner write", auditlog.Config{FileMode: "0444"}, "owner read and write"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Finalize(nil)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestMerge(t *testing.T) {
	base := auditlog.Config{Path: "a.json", LockTimeout: "1s", RetryDelay: "10ms", FileMode: "0644"}
	base.Merge(&auditlog.Config{Path: "b.json", FileMode: "0640"})

	if base.Path != "b.json" || base.LockTimeout != "1s" || base.RetryDelay != "10ms" || base.FileMode != "0640" {
		t.Errorf("merge: got %+v", base)
	}
}
