package report

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Huahuatgc/ribao/internal/config"
)

// Provider fetches one category of report content. Fetch returns an error
// on any transport or shape failure; Fallback returns the fixed records
// used in its place. The aggregator is the only caller of Fallback, so the
// attempt-or-default behavior lives in exactly one place.
type Provider[T any] interface {
	Fetch(ctx context.Context, max int) (T, error)
	Fallback(max int) T
}

// Providers holds one provider per report category.
type Providers struct {
	Anime     Provider[[]AnimeEntry]
	Hotwords  Provider[[]string]
	Quote     Provider[Quote]
	Holidays  Provider[[]HolidayEntry]
	TechNews  Provider[[]string]
	WorldNews Provider[[]string]
	Greeting  Provider[string]
}

// Aggregator fans out all category fetches concurrently and assembles a
// Dataset. No single source failure aborts the batch: each failed category
// is logged and replaced by its fallback. Total wall-clock cost is the max
// of the individual fetch durations, each bounded by the client timeout.
type Aggregator struct {
	providers Providers
	cfg       config.ReportConfig
	logger    *slog.Logger
	now       func() time.Time
}

// NewAggregator creates an Aggregator. All providers must be non-nil.
func NewAggregator(cfg config.ReportConfig, providers Providers, logger *slog.Logger) *Aggregator {
	return &Aggregator{
		providers: providers,
		cfg:       cfg,
		logger:    logger.With("component", "aggregator"),
		now:       time.Now,
	}
}

// Generate builds a fresh Dataset. It always returns a complete dataset;
// it never returns an error.
func (a *Aggregator) Generate(ctx context.Context) *Dataset {
	start := a.now()
	d := &Dataset{Date: NewDateInfo(start)}

	var wg sync.WaitGroup
	run := func(fn func()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn()
		}()
	}

	run(func() { d.Anime = attempt(ctx, a.logger, "anime", a.cfg.MaxAnime, a.providers.Anime) })
	run(func() { d.Hotwords = attempt(ctx, a.logger, "hotwords", a.cfg.MaxHotwords, a.providers.Hotwords) })
	run(func() { d.Quote = attempt(ctx, a.logger, "quote", 1, a.providers.Quote) })
	run(func() { d.Holidays = attempt(ctx, a.logger, "holiday", a.cfg.MaxHolidays, a.providers.Holidays) })
	run(func() { d.TechNews = attempt(ctx, a.logger, "technews", a.cfg.MaxNews, a.providers.TechNews) })
	run(func() { d.WorldNews = attempt(ctx, a.logger, "worldnews", a.cfg.MaxNews, a.providers.WorldNews) })
	run(func() { d.Greeting = attempt(ctx, a.logger, "greeting", 1, a.providers.Greeting) })
	wg.Wait()

	a.logger.Info("report dataset assembled",
		"anime", len(d.Anime),
		"hotwords", len(d.Hotwords),
		"holidays", len(d.Holidays),
		"tech_news", len(d.TechNews),
		"world_news", len(d.WorldNews),
		"duration", a.now().Sub(start),
	)
	return d
}

// attempt runs one category fetch and substitutes the fallback on error or
// panic. A panicking provider degrades exactly like a failing one.
func attempt[T any](ctx context.Context, logger *slog.Logger, name string, max int, p Provider[T]) (out T) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("source panicked, using fallback", "source", name, "panic", fmt.Sprint(r))
			out = p.Fallback(max)
		}
	}()

	result, err := p.Fetch(ctx, max)
	if err != nil {
		logger.Warn("source failed, using fallback", "source", name, "error", err)
		return p.Fallback(max)
	}
	return result
}
