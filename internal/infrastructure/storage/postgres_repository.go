package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"NewsTriage/internal/domain"
	"NewsTriage/internal/ports"
)

// PostgresArchive keeps a history of emitted records keyed by URL, so
// triage output stays auditable after the records file is overwritten.
type PostgresArchive struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.RecordArchive = (*PostgresArchive)(nil)

// NewPostgresArchive wires a sql.DB implementation.
func NewPostgresArchive(db *sql.DB) *PostgresArchive {
	return &PostgresArchive{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}
}

// SaveRecords upserts each record snapshot. The latest run wins per URL;
// created_at keeps the first archive time.
func (r *PostgresArchive) SaveRecords(ctx context.Context, records []domain.ScoredRecord) error {
	if r.db == nil || len(records) == 0 {
		return nil
	}

	for _, record := range records {
		query, args, err := r.builder.
			Insert("scored_records").
			Columns("url", "title", "source", "feed", "published_at",
				"category", "secondary_categories", "signal_strength",
				"time_horizon", "triage_decision", "confidence", "raw_score",
				"snippet", "new_since_last_run", "url_first_seen_at",
				"evergreen_resurfaced", "matched_themes").
			Values(record.URL, record.Title, record.Source, record.Feed, record.PublishedAt,
				record.Category, pq.Array(record.SecondaryCategories), string(record.SignalStrength),
				string(record.TimeHorizon), string(record.TriageDecision), record.Confidence, record.RawScore,
				record.Snippet, record.NewSinceLastRun, record.URLFirstSeenAt,
				record.EvergreenResurfaced, pq.Array(record.MatchedThemes)).
			Suffix(`ON CONFLICT (url) DO UPDATE
                SET title = EXCLUDED.title,
                    category = EXCLUDED.category,
                    secondary_categories = EXCLUDED.secondary_categories,
                    signal_strength = EXCLUDED.signal_strength,
                    time_horizon = EXCLUDED.time_horizon,
                    triage_decision = EXCLUDED.triage_decision,
                    confidence = EXCLUDED.confidence,
                    raw_score = EXCLUDED.raw_score,
                    snippet = EXCLUDED.snippet,
                    new_since_last_run = EXCLUDED.new_since_last_run,
                    evergreen_resurfaced = EXCLUDED.evergreen_resurfaced,
                    matched_themes = EXCLUDED.matched_themes,
                    updated_at = NOW()`).
			ToSql()
		if err != nil {
			return fmt.Errorf("build upsert for %s: %w", record.URL, err)
		}

		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert record %s: %w", record.URL, err)
		}
	}

	return nil
}

// RecentDecisions returns the archived decision per URL for the most recent
// records, newest first.
func (r *PostgresArchive) RecentDecisions(ctx context.Context, limit uint64) (map[string]domain.TriageDecision, error) {
	if r.db == nil {
		return map[string]domain.TriageDecision{}, nil
	}

	query, args, err := r.builder.
		Select("url", "triage_decision").
		From("scored_records").
		OrderBy("updated_at DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build recent decisions: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query recent decisions: %w", err)
	}
	defer rows.Close()

	result := make(map[string]domain.TriageDecision)
	for rows.Next() {
		var url, decision string
		if err := rows.Scan(&url, &decision); err != nil {
			return nil, fmt.Errorf("scan decision: %w", err)
		}
		result[url] = domain.TriageDecision(decision)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}
