// Package auditlog persists an append-only sequence of audit events in a
// single JSON array file guarded by a host-wide advisory lock.
package auditlog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"

	"github.com/JaimeStill/fissure/pkg/lifecycle"
)

// System is the audit log store. Every Append is serialized against every
// other Append and ReadAll on the same path, across goroutines and processes.
type System interface {
	// Append adds e to the end of the log. After a nil return the event is
	// durable and visible to every later ReadAll.
	Append(ctx context.Context, e Event) error
	// ReadAll returns every stored event in append order. A missing or
	// empty file yields an empty slice.
	ReadAll(ctx context.Context) ([]Event, error)
	// Count returns the number of stored events.
	Count(ctx context.Context) (int, error)
	// Path returns the log file location.
	Path() string
	Start(lc *lifecycle.Coordinator) error
}

type store struct {
	path        string
	lockPath    string
	lockTimeout time.Duration
	retryDelay  time.Duration
	perm        os.FileMode
	logger      *slog.Logger
}

// New creates an audit log store from a finalized Config.
func New(cfg *Config, logger *slog.Logger) (System, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("audit log path required")
	}

	path, err := filepath.Abs(cfg.Path)
	if err != nil {
		return nil, fmt.Errorf("resolve audit log path: %w", err)
	}

	return &store{
		path:        path,
		lockPath:    path + ".lock",
		lockTimeout: cfg.LockTimeoutDuration(),
		retryDelay:  cfg.RetryDelayDuration(),
		perm:        cfg.Perm(),
		logger:      logger.With("system", "auditlog"),
	}, nil
}

func (s *store) Path() string {
	return s.path
}

func (s *store) Start(lc *lifecycle.Coordinator) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create audit log directory: %w", err)
	}

	lc.OnStartup(func() {
		n, err := s.Count(lc.Context())
		if err != nil {
			s.logger.Error("audit log unreadable", "path", s.path, "error", err)
			return
		}
		s.logger.Info("audit log ready", "path", s.path, "events", n)
	})

	return nil
}

func (s *store) Append(ctx context.Context, e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("%w: create directory: %w", ErrWrite, err)
	}

	unlock, err := s.lock(ctx, false)
	if err != nil {
		if errors.Is(err, ErrBusy) || ctx.Err() != nil {
			return err
		}
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}
	defer unlock()

	events, err := s.read()
	if err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	events = append(events, e)

	data, err := json.MarshalIndent(events, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %w", ErrWrite, err)
	}

	if err := writeAtomic(s.path, data, s.perm); err != nil {
		return fmt.Errorf("%w: %w", ErrWrite, err)
	}

	s.logger.Debug("event appended", "kind", e.Kind, "actor", e.Actor, "total", len(events))
	return nil
}

func (s *store) ReadAll(ctx context.Context) ([]Event, error) {
	// Without its directory there is no log and no lock file to share.
	if _, err := os.Stat(filepath.Dir(s.path)); errors.Is(err, os.ErrNotExist) {
		return []Event{}, nil
	}

	unlock, err := s.lock(ctx, true)
	if err != nil {
		return nil, err
	}
	defer unlock()

	return s.read()
}

func (s *store) Count(ctx context.Context) (int, error) {
	events, err := s.ReadAll(ctx)
	if err != nil {
		return 0, err
	}
	return len(events), nil
}

// lock acquires the sidecar lock file, shared or exclusive, retrying until
// the lock timeout elapses. The returned func releases the lock.
func (s *store) lock(ctx context.Context, shared bool) (func(), error) {
	fl := flock.New(s.lockPath)

	lockCtx, cancel := context.WithTimeout(ctx, s.lockTimeout)
	defer cancel()

	var (
		ok  bool
		err error
	)
	if shared {
		ok, err = fl.TryRLockContext(lockCtx, s.retryDelay)
	} else {
		ok, err = fl.TryLockContext(lockCtx, s.retryDelay)
	}

	switch {
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case errors.Is(err, context.DeadlineExceeded):
		return nil, fmt.Errorf("%w: lock not acquired within %s", ErrBusy, s.lockTimeout)
	case err != nil:
		return nil, fmt.Errorf("acquire lock %s: %w", s.lockPath, err)
	case !ok:
		return nil, fmt.Errorf("%w: lock not acquired within %s", ErrBusy, s.lockTimeout)
	}

	return func() {
		if err := fl.Unlock(); err != nil {
			s.logger.Warn("lock release failed", "path", s.lockPath, "error", err)
		}
	}, nil
}

// read decodes the log file. Callers must hold the lock.
func (s *store) read() ([]Event, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Event{}, nil
		}
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []Event{}, nil
	}

	var events []Event
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if events == nil {
		events = []Event{}
	}
	return events, nil
}

// writeAtomic replaces path with data by writing a synced temp file in the
// same directory and renaming it over the target with the given permissions.
func writeAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	cleanup := func() {
		tmp.Close()
		os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod temp file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename temp file: %w", err)
	}

	if d, err := os.Open(dir); err == nil {
		d.Sync()
		d.Close()
	}
	return nil
}
