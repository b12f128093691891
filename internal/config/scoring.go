package config

import (
	"encoding/json"
	"fmt"
	"os"

	"NewsTriage/internal/domain"
)

// ScoringConfig carries the tunable scoring thresholds. The thresholds are
// read from a standalone JSON document so they can be edited without code
// changes.
type ScoringConfig struct {
	Baseline        int `json:"baseline"`
	HighThreshold   int `json:"high_threshold"`
	MediumThreshold int `json:"medium_threshold"`
}

// DefaultScoring returns the hardcoded fallback thresholds.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		Baseline:        35,
		HighThreshold:   62,
		MediumThreshold: 45,
	}
}

// Validate reports a misordered threshold pair. Band boundaries overlap when
// high <= medium; the caller warns and proceeds, the strength mapping keeps
// its comparison order either way.
func (s ScoringConfig) Validate() error {
	if s.HighThreshold <= s.MediumThreshold {
		return fmt.Errorf("high_threshold %d must exceed medium_threshold %d", s.HighThreshold, s.MediumThreshold)
	}
	return nil
}

// LoadScoring reads scoring thresholds from path. On any failure it returns
// the defaults together with the error so the caller can surface a warning
// instead of silently swallowing the fallback.
func LoadScoring(path string) (ScoringConfig, error) {
	cfg := DefaultScoring()

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read scoring config: %w", err)
	}

	var fileCfg ScoringConfig
	if err := json.Unmarshal(raw, &fileCfg); err != nil {
		return cfg, fmt.Errorf("parse scoring config: %w", err)
	}

	if fileCfg.Baseline != 0 {
		cfg.Baseline = fileCfg.Baseline
	}
	if fileCfg.HighThreshold != 0 {
		cfg.HighThreshold = fileCfg.HighThreshold
	}
	if fileCfg.MediumThreshold != 0 {
		cfg.MediumThreshold = fileCfg.MediumThreshold
	}

	return cfg, nil
}

type themesDocument struct {
	ActiveThemes []domain.Theme `json:"active_themes"`
}

// LoadThemes reads the active theme definitions from path. On any failure it
// returns no themes together with the error; scoring then runs without theme
// boosts.
func LoadThemes(path string) ([]domain.Theme, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read themes config: %w", err)
	}

	var doc themesDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse themes config: %w", err)
	}

	return doc.ActiveThemes, nil
}
