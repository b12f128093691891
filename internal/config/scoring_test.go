package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadScoringMissingFileFallsBack(t *testing.T) {
	t.Parallel()

	cfg, err := LoadScoring(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatalf("expected an error signalling the fallback")
	}
	if cfg != DefaultScoring() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadScoringMalformedFallsBack(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "scoring.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadScoring(path)
	if err == nil {
		t.Fatalf("expected an error signalling the fallback")
	}
	if cfg != DefaultScoring() {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestLoadScoringOverrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "scoring.json")
	doc := `{"baseline": 40, "high_threshold": 70, "medium_threshold": 50}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadScoring(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Baseline != 40 || cfg.HighThreshold != 70 || cfg.MediumThreshold != 50 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestScoringValidateOrdering(t *testing.T) {
	t.Parallel()

	if err := DefaultScoring().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}

	bad := ScoringConfig{Baseline: 35, HighThreshold: 45, MediumThreshold: 62}
	if err := bad.Validate(); err == nil {
		t.Fatalf("misordered thresholds must be reported")
	}
}

func TestLoadThemes(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "themes.json")
	doc := `{"active_themes": [
		{"name": "Semis", "watch_triggers": ["export controls on chips"], "keywords_any": ["semiconductor", "foundry"]}
	]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	themes, err := LoadThemes(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(themes) != 1 || themes[0].Name != "Semis" {
		t.Fatalf("unexpected themes: %+v", themes)
	}
	if len(themes[0].WatchTriggers) != 1 || len(themes[0].KeywordsAny) != 2 {
		t.Fatalf("theme fields not decoded: %+v", themes[0])
	}
}

func TestLoadThemesMissingFile(t *testing.T) {
	t.Parallel()

	themes, err := LoadThemes(filepath.Join(t.TempDir(), "absent.json"))
	if err == nil {
		t.Fatalf("expected an error signalling the fallback")
	}
	if len(themes) != 0 {
		t.Fatalf("expected no themes, got %+v", themes)
	}
}
