package dashboard

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/JaimeStill/fissure/pkg/auditlog"
	"github.com/JaimeStill/fissure/pkg/pagination"
	"github.com/JaimeStill/fissure/pkg/storage"
)

// ArchivePrefix is the storage key prefix for archived reports.
const ArchivePrefix = "reports/"

// Archived describes one uploaded report.
type Archived struct {
	Format Format `json:"format"`
	Key    string `json:"key"`
	Size   int    `json:"size"`
}

// System answers dashboard queries over the audit log. Every call reads
// the full log; a corrupt log aborts the call with auditlog.ErrCorrupt.
type System interface {
	Handler() *Handler

	Snapshot(ctx context.Context) (Snapshot, error)
	Report(ctx context.Context, at time.Time) (Document, error)
	Export(ctx context.Context, f Format) ([]byte, error)
	// Archive renders the current report in each format and uploads it.
	// With no formats, every supported format is archived.
	Archive(ctx context.Context, formats ...Format) ([]Archived, error)
	Accesses(ctx context.Context, req pagination.PageRequest) (pagination.PageResult[AccessRow], error)
	Classifications(ctx context.Context, req pagination.PageRequest) (pagination.PageResult[ClassificationRow], error)
}

type dashboard struct {
	audit   auditlog.System
	store   storage.System
	labels  []string
	cfg     Config
	pageCfg pagination.Config
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a dashboard System. store may be nil, which disables archiving.
func New(
	audit auditlog.System,
	store storage.System,
	labels []string,
	cfg Config,
	pageCfg pagination.Config,
	logger *slog.Logger,
) System {
	return &dashboard{
		audit:   audit,
		store:   store,
		labels:  slices.Clone(labels),
		cfg:     cfg,
		pageCfg: pageCfg,
		logger:  logger.With("system", "dashboard"),
		now:     time.Now,
	}
}

func (d *dashboard) Handler() *Handler {
	return NewHandler(d, d.logger, d.pageCfg, d.cfg.Format())
}

func (d *dashboard) Snapshot(ctx context.Context) (Snapshot, error) {
	events, err := d.events(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	return Aggregate(events), nil
}

func (d *dashboard) Report(ctx context.Context, at time.Time) (Document, error) {
	events, err := d.events(ctx)
	if err != nil {
		return Document{}, err
	}
	return d.report(events, at), nil
}

func (d *dashboard) Export(ctx context.Context, f Format) ([]byte, error) {
	doc, err := d.Report(ctx, d.now())
	if err != nil {
		return nil, err
	}
	return Render(doc, f)
}

func (d *dashboard) Archive(ctx context.Context, formats ...Format) ([]Archived, error) {
	if d.store == nil {
		return nil, fmt.Errorf("%w: no archive storage configured", ErrArchive)
	}
	if len(formats) == 0 {
		formats = Formats
	}

	at := d.now().UTC()
	doc, err := d.Report(ctx, at)
	if err != nil {
		return nil, err
	}

	stamp := at.Format("20060102T150405Z")
	out := make([]Archived, len(formats))

	g, gctx := errgroup.WithContext(ctx)
	for i, f := range formats {
		g.Go(func() error {
			data, err := Render(doc, f)
			if err != nil {
				return err
			}
			key := fmt.Sprintf("%sreport-%s.%s", ArchivePrefix, stamp, f.Ext())
			if err := d.store.Upload(gctx, key, bytes.NewReader(data), f.ContentType()); err != nil {
				return fmt.Errorf("%w: %s: %w", ErrArchive, key, err)
			}
			out[i] = Archived{Format: f, Key: key, Size: len(data)}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	d.logger.Info("report archived", "count", len(out), "location", d.store.Location())
	return out, nil
}

func (d *dashboard) Accesses(ctx context.Context, req pagination.PageRequest) (pagination.PageResult[AccessRow], error) {
	events, err := d.events(ctx)
	if err != nil {
		return pagination.PageResult[AccessRow]{}, err
	}

	rows := slices.DeleteFunc(RecentAccesses(events, d.cfg.TableLimit), func(r AccessRow) bool {
		return !req.Matches(r.Actor, r.Role, r.Details)
	})
	return pagination.Slice(rows, req), nil
}

func (d *dashboard) Classifications(ctx context.Context, req pagination.PageRequest) (pagination.PageResult[ClassificationRow], error) {
	events, err := d.events(ctx)
	if err != nil {
		return pagination.PageResult[ClassificationRow]{}, err
	}

	rows := slices.DeleteFunc(RecentClassificationRows(events, d.cfg.TableLimit, d.cfg.TruncateAt), func(r ClassificationRow) bool {
		return !req.Matches(r.Actor, r.Label, r.Description)
	})
	return pagination.Slice(rows, req), nil
}

func (d *dashboard) report(events []auditlog.Event, at time.Time) Document {
	opts := d.cfg.Options(d.labels)
	return GenerateReport(Aggregate(events), RecentClassifications(events, opts.RecentLimit), at, opts)
}

func (d *dashboard) events(ctx context.Context) ([]auditlog.Event, error) {
	events, err := d.audit.ReadAll(ctx)
	if err != nil {
		if errors.Is(err, auditlog.ErrCorrupt) {
			d.logger.Error("audit log corrupt, dashboard unavailable", "path", d.audit.Path(), "error", err)
		}
		return nil, err
	}
	return events, nil
}
