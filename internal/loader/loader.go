// File: internal/loader/loader.go
package loader

import (
	"context"
	"fmt"

	"github.com/iyunix/go-meddy/internal/logging"
	"github.com/iyunix/go-meddy/internal/services/vectorstore"
)

// PointBuilder chunks and embeds text. *indexing.Indexer satisfies it.
type PointBuilder interface {
	PreparePoints(ctx context.Context, text string, metadata map[string]interface{}) ([]vectorstore.Point, error)
	Upload(ctx context.Context, points []vectorstore.Point) error
}

// Stats summarises one dataset run.
type Stats struct {
	Dataset string
	Rows    int
	Skipped int
	Failed  int
	Points  int
}

func (s Stats) String() string {
	return fmt.Sprintf("%s: %d rows -> %d chunks (%d skipped, %d failed)", s.Dataset, s.Rows, s.Points, s.Skipped, s.Failed)
}

// Loader turns dataset records into vector points and uploads them.
type Loader struct {
	builder PointBuilder
	logger  logging.Logger
}

func New(builder PointBuilder, logger logging.Logger) *Loader {
	return &Loader{builder: builder, logger: logging.OrNoOp(logger)}
}

// Prepare chunks and embeds every record. A record that fails is logged and
// left out; the run continues.
func (l *Loader) Prepare(ctx context.Context, dataset string, records []Record, skips []Skip) ([]vectorstore.Point, Stats) {
	stats := Stats{Dataset: dataset, Rows: len(records) + len(skips), Skipped: len(skips)}
	for _, s := range skips {
		l.logger.Warn("skipping dataset item", "dataset", dataset, "index", s.Index, "reason", s.Reason)
	}

	var points []vectorstore.Point
	for _, rec := range records {
		if err := ctx.Err(); err != nil {
			break
		}
		p, err := l.builder.PreparePoints(ctx, rec.Text, rec.Metadata)
		if err != nil {
			stats.Failed++
			l.logger.Error("failed processing dataset item", "dataset", dataset, "index", rec.Index, "error", err)
			continue
		}
		points = append(points, p...)
	}
	stats.Points = len(points)
	l.logger.Info("prepared points", "dataset", dataset, "points", stats.Points)
	return points, stats
}

// Upload writes all points in batches.
func (l *Loader) Upload(ctx context.Context, points []vectorstore.Point) error {
	if len(points) == 0 {
		return nil
	}
	if err := l.builder.Upload(ctx, points); err != nil {
		return fmt.Errorf("upload %d points: %w", len(points), err)
	}
	return nil
}
