package domain

// SignalStrength is the coarse severity band derived from the raw score.
type SignalStrength string

const (
	StrengthHigh   SignalStrength = "High"
	StrengthMedium SignalStrength = "Medium"
	StrengthLow    SignalStrength = "Low"
)

// TimeHorizon is the expected urgency window for acting on an item.
type TimeHorizon string

const (
	HorizonImmediate  TimeHorizon = "Immediate"
	HorizonNearTerm   TimeHorizon = "Near-term"
	HorizonStructural TimeHorizon = "Structural"
)

// TriageDecision is the binary Read/Skip gate. Triage never emits "Act";
// that value belongs to the downstream analysis stage.
type TriageDecision string

const (
	DecisionRead TriageDecision = "Read"
	DecisionSkip TriageDecision = "Skip"
)

// Category labels applied by the classifier rules.
const (
	CategoryPolicy      = "Policy/Regulatory"
	CategoryEarnings    = "Earnings"
	CategoryGeopolitics = "Geopolitics"
	CategoryMarkets     = "Markets"
	CategoryStructural  = "Structural"
	CategoryCyclical    = "Cyclical"
	CategoryNarrative   = "Narrative/Opinion"
	CategoryNoise       = "Noise"
)

// FeedEntry is a raw syndicated entry as delivered by a feed source.
// Summary is plain text (tags stripped, entities decoded). PublishedAt is
// UTC RFC3339 or empty when no upstream field could be resolved. Entries are
// transient; only their URL identity survives into persisted state.
type FeedEntry struct {
	Title       string
	Link        string
	Summary     string
	PublishedAt string
	Source      string
	Feed        string
}

// Theme is an externally configured watch topic. WatchTriggers are exact
// phrases checked against lowercased text; KeywordsAny is the fallback
// keyword set.
type Theme struct {
	Name          string   `json:"name"`
	WatchTriggers []string `json:"watch_triggers"`
	KeywordsAny   []string `json:"keywords_any"`
}

// ScoredRecord is the output unit handed to rendering and downstream
// analysis. URL is the unique key. Mechanism stays empty here; it is filled
// in by the manual analysis stage only.
type ScoredRecord struct {
	Title               string         `json:"title"`
	URL                 string         `json:"url"`
	Source              string         `json:"source"`
	PublishedAt         string         `json:"published_at"`
	Feed                string         `json:"feed"`
	Category            string         `json:"category"`
	SecondaryCategories []string       `json:"secondary_categories"`
	SignalStrength      SignalStrength `json:"signal_strength"`
	TimeHorizon         TimeHorizon    `json:"time_horizon"`
	TriageDecision      TriageDecision `json:"triage_decision"`
	SignalBullets       []string       `json:"signal_bullets"`
	Mechanism           string         `json:"mechanism"`
	Confidence          int            `json:"confidence"`
	RawScore            int            `json:"raw_score"`
	Snippet             string         `json:"snippet"`
	NewSinceLastRun     bool           `json:"new_since_last_run"`
	URLFirstSeenAt      string         `json:"url_first_seen_at"`
	URLAgeDays          *int           `json:"url_age_days"`
	EvergreenResurfaced bool           `json:"evergreen_resurfaced"`
	MatchedThemes       []string       `json:"matched_themes"`
}
