package ports

import (
	"context"
	"time"

	"NewsTriage/internal/domain"
)

// EntrySource pulls raw feed entries from upstream providers.
type EntrySource interface {
	FetchEntries(ctx context.Context) ([]domain.FeedEntry, error)
}

// RecordArchive persists emitted records for audit and history.
type RecordArchive interface {
	SaveRecords(ctx context.Context, records []domain.ScoredRecord) error
}

// Notifier publishes a text digest of the run to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// AnalysisClient hands the emitted record payload to the downstream
// deep-analysis consumer. The consumer is opaque to this system.
type AnalysisClient interface {
	SendRecords(ctx context.Context, payload []byte) error
}

// Scheduler controls when runs execute in serve mode.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
