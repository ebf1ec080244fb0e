package index

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/trovato-shop/trovato/internal/domain"
	"github.com/trovato-shop/trovato/internal/logger"
	"github.com/trovato-shop/trovato/internal/metrics"
)

const defaultBatchSize = 25

// Options controls one indexing run.
type Options struct {
	OnlyMissing bool // skip items that already carry a vector
	BatchSize   int
}

// Failure records one item that could not be indexed.
type Failure struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

// Report summarizes an indexing run.
type Report struct {
	Indexed   int       `json:"indexed"`
	Skipped   int       `json:"skipped"`
	ElapsedMs int64     `json:"elapsed_ms"`
	Failures  []Failure `json:"failures,omitempty"`
}

// Status is the current catalog indexing state.
type Status struct {
	Total     int `json:"total"`
	Indexed   int `json:"indexed"`
	Remaining int `json:"remaining"`
}

// Service walks the catalog and stores an embedding per item image. Items
// are processed strictly one at a time; the embedding provider is the
// bottleneck and burst traffic only earns rate limits.
type Service struct {
	catalog   Catalog
	embed     Embedder
	batchSize int
}

// New creates an indexing service.
func New(catalog Catalog, embed Embedder) *Service {
	return &Service{catalog: catalog, embed: embed, batchSize: defaultBatchSize}
}

// WithBatchSize overrides the default batch size used when a run does not
// specify one.
func (s *Service) WithBatchSize(n int) *Service {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// Run embeds catalog images in id order. One bad item never stops the run;
// it lands in the report and the walk continues.
func (s *Service) Run(ctx context.Context, opts Options) (*Report, error) {
	log := logger.FromContext(ctx)
	start := time.Now()
	batchSize := opts.BatchSize
	if batchSize <= 0 {
		batchSize = s.batchSize
	}

	if err := s.catalog.EnsureIndex(ctx); err != nil {
		return nil, fmt.Errorf("ensure index: %w", err)
	}

	ids, err := s.catalog.IDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list ids: %w", err)
	}

	report := &Report{}
	for off := 0; off < len(ids); off += batchSize {
		end := off + batchSize
		if end > len(ids) {
			end = len(ids)
		}

		items, err := s.catalog.GetMulti(ctx, ids[off:end])
		if err != nil {
			return nil, fmt.Errorf("load batch: %w", err)
		}

		for _, it := range items {
			if ctx.Err() != nil {
				report.ElapsedMs = time.Since(start).Milliseconds()
				return report, fmt.Errorf("indexing interrupted: %w", ctx.Err())
			}
			s.indexOne(ctx, it, opts.OnlyMissing, report)
		}
	}
	report.ElapsedMs = time.Since(start).Milliseconds()

	log.Info("indexing run finished",
		zap.Int("indexed", report.Indexed),
		zap.Int("skipped", report.Skipped),
		zap.Int("failed", len(report.Failures)),
		zap.Int64("elapsed_ms", report.ElapsedMs),
	)
	return report, nil
}

func (s *Service) indexOne(ctx context.Context, it domain.Item, onlyMissing bool, report *Report) {
	log := logger.FromContext(ctx)

	if onlyMissing && it.HasVector() {
		metrics.IndexedItemsTotal.WithLabelValues("skipped").Inc()
		report.Skipped++
		return
	}
	if !it.HasImage() {
		metrics.IndexedItemsTotal.WithLabelValues("failed").Inc()
		report.Failures = append(report.Failures, Failure{ID: it.ID(), Name: it.Name(), Reason: "missing image"})
		return
	}

	emb, err := s.embed.Embed(ctx, domain.ImageFromURL(it.ImageURL()))
	if err != nil {
		log.Warn("embedding failed", zap.String("id", it.ID()), zap.Error(err))
		metrics.IndexedItemsTotal.WithLabelValues("failed").Inc()
		report.Failures = append(report.Failures, Failure{ID: it.ID(), Name: it.Name(), Reason: err.Error()})
		return
	}

	if err := s.catalog.SetVector(ctx, it.ID(), emb.Embedding); err != nil {
		log.Warn("storing vector failed", zap.String("id", it.ID()), zap.Error(err))
		metrics.IndexedItemsTotal.WithLabelValues("failed").Inc()
		report.Failures = append(report.Failures, Failure{ID: it.ID(), Name: it.Name(), Reason: err.Error()})
		return
	}

	metrics.IndexedItemsTotal.WithLabelValues("ok").Inc()
	report.Indexed++
}

// Status reports indexing progress.
func (s *Service) Status(ctx context.Context) (Status, error) {
	total, indexed, err := s.catalog.Counts(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("counts: %w", err)
	}
	return Status{Total: total, Indexed: indexed, Remaining: total - indexed}, nil
}
