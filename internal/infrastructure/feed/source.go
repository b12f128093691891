package feed

import (
	"context"
	"fmt"
	"log/slog"

	"NewsTriage/internal/config"
	"NewsTriage/internal/domain"
	"NewsTriage/internal/ports"
	"NewsTriage/internal/scanner"
)

// StrategySource implements EntrySource via registered scanner strategies.
type StrategySource struct {
	registry   *scanner.Registry
	sources    []config.SourceConfig
	maxEntries int
	logger     *slog.Logger
}

var _ ports.EntrySource = (*StrategySource)(nil)

// NewStrategySource wires the scanner registry with config-defined sources.
func NewStrategySource(reg *scanner.Registry, sources []config.SourceConfig, maxEntries int, log *slog.Logger) *StrategySource {
	if log == nil {
		log = slog.Default()
	}
	return &StrategySource{
		registry:   reg,
		sources:    sources,
		maxEntries: maxEntries,
		logger:     log,
	}
}

// FetchEntries iterates over configured sources and executes their scanners.
// A failing source is skipped with a warning; declaration order is preserved
// in the aggregated output.
func (s *StrategySource) FetchEntries(ctx context.Context) ([]domain.FeedEntry, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}

	s.logger.Debug("fetch entries", "sources", len(s.sources))

	var aggregated []domain.FeedEntry
	for _, source := range s.sources {
		strategy, err := s.registry.Resolve(source.Scanner)
		if err != nil {
			s.logger.Warn("skipping source", "source", source.Name, "error", err)
			continue
		}

		req := scanner.Request{
			SourceName: source.Name,
			Feeds:      toScannerFeeds(source.Feeds),
			MaxEntries: s.maxEntries,
			Options:    source.Options,
		}

		results, err := strategy.Scan(ctx, req)
		if err != nil {
			s.logger.Warn("source scan failed", "source", source.Name, "error", err)
			continue
		}

		for i := range results {
			if results[i].Source == "" {
				results[i].Source = source.Name
			}
		}
		s.logger.Debug("source produced entries", "source", source.Name, "count", len(results))
		aggregated = append(aggregated, results...)
	}

	s.logger.Debug("strategy source done", "total_entries", len(aggregated))
	return aggregated, nil
}

func toScannerFeeds(cfg []config.FeedConfig) []scanner.Feed {
	feeds := make([]scanner.Feed, 0, len(cfg))
	for _, feed := range cfg {
		feeds = append(feeds, scanner.Feed{
			Name: feed.Name,
			URL:  feed.URL,
		})
	}
	return feeds
}
