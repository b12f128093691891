package config

import (
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv    = "NEWS_TRIAGE_CONFIG"
	databaseDSNEnv   = "DATABASE_DSN"
	downstreamKeyEnv = "DOWNSTREAM_API_KEY"
	telegramTokenEnv = "TELEGRAM_BOT_TOKEN"
	telegramChatEnv  = "TELEGRAM_CHAT_ID"
)

// Config holds high-level settings required across the application.
type Config struct {
	Logging       LoggingConfig      `yaml:"logging"`
	Database      DatabaseConfig     `yaml:"database"`
	Scheduler     SchedulerConfig    `yaml:"scheduler"`
	Triage        TriageConfig       `yaml:"triage"`
	State         StateConfig        `yaml:"state"`
	Output        OutputConfig       `yaml:"output"`
	Notifications NotificationConfig `yaml:"notifications"`
	Downstream    DownstreamConfig   `yaml:"downstream"`
	Sources       []SourceConfig     `yaml:"sources"`
}

// LoggingConfig selects the console log level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// DatabaseConfig describes the optional Postgres archive connection.
// An empty DSN disables archiving.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// SchedulerConfig defines how often serve mode repeats the run.
type SchedulerConfig struct {
	IntervalHours int `yaml:"intervalHours"`
}

// TriageConfig groups classification tunables and the paths of the two JSON
// boundary documents (scoring thresholds, active themes).
type TriageConfig struct {
	ScoringPath         string         `yaml:"scoringPath"`
	ThemesPath          string         `yaml:"themesPath"`
	EvergreenDays       int            `yaml:"evergreenDays"`
	RetentionDays       int            `yaml:"retentionDays"`
	MaxEntriesPerFeed   int            `yaml:"maxEntriesPerFeed"`
	DefaultWindowHours  int            `yaml:"defaultWindowHours"`
	CategoryWindowHours map[string]int `yaml:"categoryWindowHours"`
}

// StateConfig locates the persisted cross-run state files.
type StateConfig struct {
	FirstSeenPath string `yaml:"firstSeenPath"`
	RunStatePath  string `yaml:"runStatePath"`
}

// OutputConfig locates the emitted records document.
type OutputConfig struct {
	RecordsPath string `yaml:"recordsPath"`
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires all data required to send digests.
type TelegramConfig struct {
	BotToken string `yaml:"botToken"`
	ChatID   string `yaml:"chatId"`
}

// DownstreamConfig defines how to hand emitted records to the deep-analysis
// consumer. An empty APIKey disables the hand-off.
type DownstreamConfig struct {
	Endpoint     string `yaml:"endpoint"`
	Model        string `yaml:"model"`
	APIKey       string `yaml:"apiKey"`
	SystemPrompt string `yaml:"systemPrompt"`
}

// SourceConfig describes a single feed provider with its scanner strategy.
type SourceConfig struct {
	Name    string            `yaml:"name"`
	Scanner string            `yaml:"scanner"`
	Feeds   []FeedConfig      `yaml:"feeds"`
	Options map[string]string `yaml:"options"`
}

// FeedConfig holds one concrete feed endpoint to poll.
type FeedConfig struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()

	if len(cfg.Sources) == 0 {
		cfg.Sources = defaultConfig().Sources
	}

	return cfg
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(databaseDSNEnv); v != "" {
		c.Database.DSN = v
	}

	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}

	if v := os.Getenv(telegramChatEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}

	if v := os.Getenv(downstreamKeyEnv); v != "" {
		c.Downstream.APIKey = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.Logging.Level != "" {
		base.Logging = override.Logging
	}

	if override.Database.DSN != "" {
		base.Database = override.Database
	}

	if override.Scheduler.IntervalHours > 0 {
		base.Scheduler = override.Scheduler
	}

	if override.Triage.ScoringPath != "" {
		base.Triage.ScoringPath = override.Triage.ScoringPath
	}
	if override.Triage.ThemesPath != "" {
		base.Triage.ThemesPath = override.Triage.ThemesPath
	}
	if override.Triage.EvergreenDays > 0 {
		base.Triage.EvergreenDays = override.Triage.EvergreenDays
	}
	if override.Triage.RetentionDays > 0 {
		base.Triage.RetentionDays = override.Triage.RetentionDays
	}
	if override.Triage.MaxEntriesPerFeed > 0 {
		base.Triage.MaxEntriesPerFeed = override.Triage.MaxEntriesPerFeed
	}
	if override.Triage.DefaultWindowHours > 0 {
		base.Triage.DefaultWindowHours = override.Triage.DefaultWindowHours
	}
	if len(override.Triage.CategoryWindowHours) > 0 {
		base.Triage.CategoryWindowHours = override.Triage.CategoryWindowHours
	}

	if override.State.FirstSeenPath != "" {
		base.State.FirstSeenPath = override.State.FirstSeenPath
	}
	if override.State.RunStatePath != "" {
		base.State.RunStatePath = override.State.RunStatePath
	}

	if override.Output.RecordsPath != "" {
		base.Output = override.Output
	}

	if override.Notifications.Telegram.BotToken != "" {
		base.Notifications.Telegram.BotToken = override.Notifications.Telegram.BotToken
	}
	if override.Notifications.Telegram.ChatID != "" {
		base.Notifications.Telegram.ChatID = override.Notifications.Telegram.ChatID
	}

	if override.Downstream.Endpoint != "" {
		base.Downstream.Endpoint = override.Downstream.Endpoint
	}
	if override.Downstream.Model != "" {
		base.Downstream.Model = override.Downstream.Model
	}
	if override.Downstream.APIKey != "" {
		base.Downstream.APIKey = override.Downstream.APIKey
	}
	if override.Downstream.SystemPrompt != "" {
		base.Downstream.SystemPrompt = override.Downstream.SystemPrompt
	}

	if len(override.Sources) > 0 {
		base.Sources = override.Sources
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Logging:   LoggingConfig{Level: "info"},
		Scheduler: SchedulerConfig{IntervalHours: 24},
		Triage: TriageConfig{
			ScoringPath:        "config/scoring.json",
			ThemesPath:         "config/themes.json",
			EvergreenDays:      90,
			RetentionDays:      180,
			MaxEntriesPerFeed:  200,
			DefaultWindowHours: 48,
		},
		State: StateConfig{
			FirstSeenPath: "data/url_first_seen.json",
			RunStatePath:  "data/run_state.json",
		},
		Output: OutputConfig{RecordsPath: "output/records.json"},
		Downstream: DownstreamConfig{
			Endpoint:     "https://api.openai.com/v1/chat/completions",
			Model:        "gpt-4o-mini",
			SystemPrompt: "You receive triaged news signal records for deep analysis.",
		},
		Sources: []SourceConfig{
			{
				Name:    "wsj",
				Scanner: "rss",
				Feeds: []FeedConfig{
					{Name: "World News", URL: "https://feeds.content.dowjones.io/public/rss/RSSWorldNews"},
					{Name: "U.S. Business", URL: "https://feeds.content.dowjones.io/public/rss/WSJcomUSBusiness"},
					{Name: "Markets", URL: "https://feeds.content.dowjones.io/public/rss/RSSMarketsMain"},
					{Name: "Economy", URL: "https://feeds.content.dowjones.io/public/rss/socialeconomyfeed"},
					{Name: "Politics", URL: "https://feeds.content.dowjones.io/public/rss/socialpoliticsfeed"},
				},
			},
		},
	}
}
