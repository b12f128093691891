package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"NewsTriage/internal/domain"
	"NewsTriage/internal/ports"
	"NewsTriage/internal/state"
	"NewsTriage/internal/triage"
)

const snippetRunes = 280

// PipelineDeps wires all collaborators into the triage run.
type PipelineDeps struct {
	Source        ports.EntrySource
	State         *state.Store
	Classifier    *triage.Classifier
	Gate          *triage.RecencyGate
	Archive       ports.RecordArchive
	Notifier      ports.Notifier
	Analysis      ports.AnalysisClient
	Logger        *slog.Logger
	RetentionDays int
	EvergreenDays int
}

// Pipeline implements one triage run: collect, gate, diff state, score,
// emit. Single-threaded by design; callers must serialize runs against a
// given state-file pair.
type Pipeline struct {
	source        ports.EntrySource
	state         *state.Store
	classifier    *triage.Classifier
	gate          *triage.RecencyGate
	archive       ports.RecordArchive
	notifier      ports.Notifier
	analysis      ports.AnalysisClient
	logger        *slog.Logger
	retentionDays int
	evergreenDays int
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		source:        deps.Source,
		state:         deps.State,
		classifier:    deps.Classifier,
		gate:          deps.Gate,
		archive:       deps.Archive,
		notifier:      deps.Notifier,
		analysis:      deps.Analysis,
		logger:        logger,
		retentionDays: deps.RetentionDays,
		evergreenDays: deps.EvergreenDays,
	}
}

// collectedEntry is a FeedEntry that survived validation and the recency
// gate, annotated with its cross-run state.
type collectedEntry struct {
	entry           domain.FeedEntry
	firstSeenAt     string
	newSinceLastRun bool
}

// Run executes one triage pass and returns the emitted records in
// first-insertion order. State-write failures abort the run; sink failures
// only warn.
func (p *Pipeline) Run(ctx context.Context, now time.Time) ([]domain.ScoredRecord, error) {
	nowISO := now.UTC().Format(time.RFC3339)

	runState, err := p.state.LoadRunState()
	if err != nil {
		p.logger.Warn("no previous run state, assuming first run", "error", err)
	}
	lastRunURLs := runState.URLSet()

	firstSeen, err := p.state.LoadFirstSeen()
	if err != nil {
		p.logger.Warn("no url-first-seen store, starting empty", "error", err)
	}

	entries, err := p.source.FetchEntries(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch entries: %w", err)
	}

	var (
		collected []collectedEntry
		dropped   int
		seenNew   int
		recent    int
	)

	for _, entry := range entries {
		title := strings.TrimSpace(entry.Title)
		link := strings.TrimSpace(entry.Link)
		if title == "" || link == "" {
			dropped++
			continue
		}
		entry.Title = title
		entry.Link = link

		firstSeenAt, isNew := p.state.RecordFirstSeen(firstSeen, link)
		if isNew {
			seenNew++
		}

		// The window depends on the classifier's category output.
		catGuess := triage.Categories(entry.Title, entry.Summary)[0]
		if !p.gate.IsRecent(entry.PublishedAt, catGuess) {
			continue
		}
		recent++

		collected = append(collected, collectedEntry{
			entry:           entry,
			firstSeenAt:     firstSeenAt,
			newSinceLastRun: !lastRunURLs[link],
		})
	}

	if dropped > 0 {
		p.logger.Info("dropped entries missing title or link", "count", dropped)
	}

	// Prune before persisting, and persist first-seen before run state so a
	// later failure cannot lose the prune.
	if pruned := p.state.Prune(firstSeen, p.retentionDays); pruned > 0 {
		p.logger.Info("pruned stale urls from first-seen store", "count", pruned, "retention_days", p.retentionDays)
	}
	if err := p.state.SaveFirstSeen(firstSeen); err != nil {
		return nil, fmt.Errorf("save first-seen store: %w", err)
	}

	deduped, order := dedupeByURL(collected)

	if err := p.state.SaveRunState(state.RunState{LastRunAt: nowISO, LastRunURLs: order}); err != nil {
		return nil, fmt.Errorf("save run state: %w", err)
	}

	records := make([]domain.ScoredRecord, 0, len(order))
	for _, url := range order {
		records = append(records, p.buildRecord(deduped[url]))
	}

	p.logger.Info("run collected",
		"new_urls", seenNew,
		"recent_pre_dedupe", recent,
		"records", len(records))
	p.logCalibration(records)

	p.dispatch(ctx, records)

	return records, nil
}

// buildRecord composes one output record from the classifier evaluation and
// the entry's cross-run state.
func (p *Pipeline) buildRecord(c collectedEntry) domain.ScoredRecord {
	entry := c.entry
	eval := p.classifier.Evaluate(entry.Title, entry.Summary, entry.Source)

	var ageDays *int
	if days, ok := p.state.AgeDays(c.firstSeenAt); ok {
		ageDays = &days
	}

	return domain.ScoredRecord{
		Title:               entry.Title,
		URL:                 entry.Link,
		Source:              entry.Source,
		PublishedAt:         entry.PublishedAt,
		Feed:                entry.Feed,
		Category:            eval.Primary(),
		SecondaryCategories: eval.Secondary(),
		SignalStrength:      eval.Strength,
		TimeHorizon:         eval.Horizon,
		TriageDecision:      eval.Decision,
		SignalBullets:       eval.Reasons,
		Confidence:          eval.Confidence,
		RawScore:            eval.Score,
		Snippet:             truncateSnippet(entry.Summary),
		NewSinceLastRun:     c.newSinceLastRun,
		URLFirstSeenAt:      c.firstSeenAt,
		URLAgeDays:          ageDays,
		EvergreenResurfaced: p.state.IsEvergreen(c.firstSeenAt, p.evergreenDays),
		MatchedThemes:       eval.MatchedThemes,
	}
}

// dedupeByURL collapses entries sharing a URL. The later entry wins but the
// URL keeps its first-insertion position, so output order is the order URLs
// were first seen this run.
func dedupeByURL(entries []collectedEntry) (map[string]collectedEntry, []string) {
	byURL := make(map[string]collectedEntry, len(entries))
	order := make([]string, 0, len(entries))
	for _, c := range entries {
		if _, ok := byURL[c.entry.Link]; !ok {
			order = append(order, c.entry.Link)
		}
		byURL[c.entry.Link] = c
	}
	return byURL, order
}

func truncateSnippet(summary string) string {
	runes := []rune(summary)
	if len(runes) <= snippetRunes {
		return summary
	}
	return string(runes[:snippetRunes])
}

// logCalibration summarizes band and decision distribution so a threshold
// change that makes Medium dominate is visible in the run log.
func (p *Pipeline) logCalibration(records []domain.ScoredRecord) {
	if len(records) == 0 {
		return
	}

	bands := map[domain.SignalStrength]int{}
	decisions := map[domain.TriageDecision]int{}
	for _, r := range records {
		bands[r.SignalStrength]++
		decisions[r.TriageDecision]++
	}

	total := len(records)
	p.logger.Info("signal bands",
		"high", bands[domain.StrengthHigh],
		"medium", bands[domain.StrengthMedium],
		"low", bands[domain.StrengthLow],
		"high_pct", 100*bands[domain.StrengthHigh]/total,
		"medium_pct", 100*bands[domain.StrengthMedium]/total,
		"low_pct", 100*bands[domain.StrengthLow]/total)
	p.logger.Info("triage decisions",
		"read", decisions[domain.DecisionRead],
		"skip", decisions[domain.DecisionSkip],
		"read_pct", 100*decisions[domain.DecisionRead]/total,
		"skip_pct", 100*decisions[domain.DecisionSkip]/total)
}

// dispatch forwards the emitted records to the optional sinks. Sink
// failures never fail the run; the records file and state are already safe.
func (p *Pipeline) dispatch(ctx context.Context, records []domain.ScoredRecord) {
	if len(records) == 0 {
		return
	}

	if p.archive != nil {
		if err := p.archive.SaveRecords(ctx, records); err != nil {
			p.logger.Warn("archive records", "error", err)
		}
	}

	if p.analysis != nil {
		payload, err := json.Marshal(records)
		if err != nil {
			p.logger.Warn("marshal records for analysis", "error", err)
		} else if err := p.analysis.SendRecords(ctx, payload); err != nil {
			p.logger.Warn("send records downstream", "error", err)
		}
	}

	if p.notifier != nil {
		digest := buildDigestMessage(records)
		if digest != "" {
			if err := p.notifier.PublishDigest(ctx, digest); err != nil {
				p.logger.Warn("publish digest", "error", err)
			}
		}
	}
}

// buildDigestMessage renders the Read-decision records as a short text
// digest for notification channels.
func buildDigestMessage(records []domain.ScoredRecord) string {
	var b strings.Builder
	for _, r := range records {
		if r.TriageDecision != domain.DecisionRead {
			continue
		}
		fmt.Fprintf(&b, "- %s\n%s • %s • score %d\n%s\n\n",
			r.Title, r.SignalStrength, r.Category, r.RawScore, r.URL)
	}
	return b.String()
}
