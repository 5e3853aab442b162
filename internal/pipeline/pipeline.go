// Package pipeline orchestrates one scan: fetch, filter, classify,
// group and emit.
package pipeline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/newswatch/internal/classify"
	"github.com/sells-group/newswatch/internal/config"
	"github.com/sells-group/newswatch/internal/dedup"
	"github.com/sells-group/newswatch/internal/model"
	"github.com/sells-group/newswatch/internal/render"
	"github.com/sells-group/newswatch/internal/seen"
	"github.com/sells-group/newswatch/internal/source"
)

// Pipeline wires the scan stages together. Sources and the classifier
// may fail per-item without aborting the run; only a failed persist of
// the seen set is fatal.
type Pipeline struct {
	cfg        *config.Config
	sources    []source.Source
	classifier classify.Classifier
	dedup      *dedup.Deduplicator
	store      seen.Store
	renderer   render.Renderer
	now        func() time.Time
}

// Report summarizes one scan for the operator.
type Report struct {
	RunID          string
	Fetched        int
	Unseen         int
	Relevant       int
	Stories        int
	Emitted        int
	FailedSources  []string
	Degraded       int
	RenderFailures int
}

// New assembles a pipeline from its stages.
func New(cfg *config.Config, sources []source.Source, classifier classify.Classifier, store seen.Store, renderer render.Renderer) *Pipeline {
	return &Pipeline{
		cfg:        cfg,
		sources:    sources,
		classifier: classifier,
		dedup:      dedup.New(cfg.Dedup.SimilarityThreshold),
		store:      store,
		renderer:   renderer,
		now:        time.Now,
	}
}

// Scan runs one batch end to end. The returned report is valid even
// when err is non-nil.
func (p *Pipeline) Scan(ctx context.Context, days int) (*Report, error) {
	report := &Report{RunID: uuid.NewString()}
	log := zap.L().With(zap.String("run_id", report.RunID))

	if days <= 0 {
		days = p.cfg.Days
	}
	since := p.now().UTC().AddDate(0, 0, -days)
	log.Info("pipeline: starting scan",
		zap.String("name", p.cfg.Name),
		zap.Int("days", days),
		zap.Int("sources", len(p.sources)),
	)

	if err := p.store.Load(ctx); err != nil {
		return report, eris.Wrap(err, "pipeline: load seen store")
	}

	raw := p.fetchAll(ctx, since, report, log)
	report.Fetched = len(raw)

	unseen := p.filterSeen(raw)
	report.Unseen = len(unseen)
	log.Info("pipeline: filtered seen urls",
		zap.Int("fetched", report.Fetched),
		zap.Int("unseen", report.Unseen),
	)

	if p.cfg.MaxItems > 0 && len(unseen) > p.cfg.MaxItems {
		log.Warn("pipeline: item count exceeds max_items, classifying anyway",
			zap.Int("items", len(unseen)),
			zap.Int("max_items", p.cfg.MaxItems),
		)
	}

	classified := p.classifyAll(ctx, unseen, report, log)

	relevant := make([]model.ClassifiedItem, 0, len(classified))
	for _, c := range classified {
		if c.Result.Relevant {
			relevant = append(relevant, c)
		}
	}
	report.Relevant = len(relevant)
	log.Info("pipeline: classified items",
		zap.Int("classified", len(classified)),
		zap.Int("relevant", report.Relevant),
	)

	groups := p.dedup.Group(relevant)
	report.Stories = len(groups)

	p.emit(ctx, groups, report, log)

	if err := p.store.Save(ctx); err != nil {
		return report, eris.Wrap(err, "pipeline: persist seen store")
	}

	log.Info("pipeline: scan complete",
		zap.Int("stories", report.Stories),
		zap.Int("emitted", report.Emitted),
		zap.Int("render_failures", report.RenderFailures),
		zap.Strings("failed_sources", report.FailedSources),
	)
	return report, nil
}

// fetchAll queries every source concurrently. A failing source is
// reported and skipped; its items are simply absent from this run.
func (p *Pipeline) fetchAll(ctx context.Context, since time.Time, report *Report, log *zap.Logger) []model.RawItem {
	results := make([][]model.RawItem, len(p.sources))
	failed := make([]bool, len(p.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range p.sources {
		g.Go(func() error {
			items, err := src.Fetch(gctx, since)
			if err != nil {
				log.Error("pipeline: source failed",
					zap.String("source", src.Name()),
					zap.Error(err),
				)
				failed[i] = true
				return nil
			}
			results[i] = items
			return nil
		})
	}
	_ = g.Wait()

	var raw []model.RawItem
	for i := range p.sources {
		if failed[i] {
			report.FailedSources = append(report.FailedSources, p.sources[i].Name())
			continue
		}
		raw = append(raw, results[i]...)
	}
	return raw
}

func (p *Pipeline) filterSeen(items []model.RawItem) []model.RawItem {
	unseen := make([]model.RawItem, 0, len(items))
	for _, item := range items {
		if !p.store.Contains(item.URL) {
			unseen = append(unseen, item)
		}
	}
	return unseen
}

// classifyAll runs the classifier with bounded concurrency, preserving
// input order. A failed classification degrades that item to
// not_relevant instead of failing the batch.
func (p *Pipeline) classifyAll(ctx context.Context, items []model.RawItem, report *Report, log *zap.Logger) []model.ClassifiedItem {
	classified := make([]model.ClassifiedItem, len(items))
	var degraded atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	limit := p.cfg.Classifier.MaxConcurrent
	if limit <= 0 {
		limit = 1
	}
	g.SetLimit(limit)

	for i, item := range items {
		g.Go(func() error {
			result, err := p.classifier.Classify(gctx, item)
			if err != nil {
				log.Warn("pipeline: classification failed, treating as not relevant",
					zap.String("url", item.URL),
					zap.Error(err),
				)
				result = model.NotRelevantResult()
				degraded.Add(1)
			}
			classified[i] = model.ClassifiedItem{Item: item, Result: result}
			return nil
		})
	}
	_ = g.Wait()

	report.Degraded = int(degraded.Load())
	return classified
}

// emit renders each story and marks its URLs seen only after a
// successful render, so a failed delivery is retried next run.
func (p *Pipeline) emit(ctx context.Context, groups []dedup.StoryGroup, report *Report, log *zap.Logger) {
	for _, g := range groups {
		item := g.Unified()
		if err := p.renderer.Render(ctx, item); err != nil {
			log.Error("pipeline: render failed, urls stay unseen",
				zap.String("headline", item.Headline),
				zap.Error(err),
			)
			report.RenderFailures++
			continue
		}
		p.store.Mark(item.URLs())
		report.Emitted++
	}

	if err := p.renderer.Finish(ctx, report.Emitted); err != nil {
		log.Error("pipeline: finish output failed", zap.Error(err))
	}
}
