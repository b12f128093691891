package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// RunState captures the previous run for novelty diffing. It is overwritten
// in full each run; last run wins, no history.
type RunState struct {
	LastRunAt   string   `json:"last_run_at"`
	LastRunURLs []string `json:"last_run_urls"`
}

// URLSet returns the last-run URLs as a set for membership checks.
func (rs RunState) URLSet() map[string]bool {
	set := make(map[string]bool, len(rs.LastRunURLs))
	for _, u := range rs.LastRunURLs {
		set[u] = true
	}
	return set
}

// NewSince returns the URLs from current that are absent from the previous
// run's set. Novelty is independent of first-seen age: an old evergreen URL
// that dropped out and resurfaced is still new this run.
func NewSince(current []string, previous map[string]bool) []string {
	var fresh []string
	for _, u := range current {
		if !previous[u] {
			fresh = append(fresh, u)
		}
	}
	return fresh
}

// Store persists the two cross-run maps: url→first-seen and the previous
// run's URL set. Both files are read once at run start and written once at
// run end, always via temp-write+rename.
type Store struct {
	firstSeenPath string
	runStatePath  string
	now           func() time.Time
}

// NewStore wires the state file locations.
func NewStore(firstSeenPath, runStatePath string) *Store {
	return &Store{
		firstSeenPath: firstSeenPath,
		runStatePath:  runStatePath,
		now:           time.Now,
	}
}

// LoadFirstSeen reads the url→first-seen map. A missing or unreadable file
// yields an empty map (first-run semantics) together with the error for the
// caller to log.
func (s *Store) LoadFirstSeen() (map[string]string, error) {
	m := map[string]string{}
	err := readJSON(s.firstSeenPath, &m)
	if err != nil {
		return map[string]string{}, err
	}
	return m, nil
}

// SaveFirstSeen writes the map atomically. A failure here must propagate:
// silently losing first-seen state would corrupt future dedup and aging.
func (s *Store) SaveFirstSeen(m map[string]string) error {
	return WriteJSONAtomic(s.firstSeenPath, m)
}

// LoadRunState reads the previous run's state, empty on any failure.
func (s *Store) LoadRunState() (RunState, error) {
	var rs RunState
	if err := readJSON(s.runStatePath, &rs); err != nil {
		return RunState{}, err
	}
	return rs, nil
}

// SaveRunState writes the run state atomically.
func (s *Store) SaveRunState(rs RunState) error {
	return WriteJSONAtomic(s.runStatePath, rs)
}

// RecordFirstSeen returns the first-seen timestamp for url, inserting now
// when the url is absent. The second return reports a fresh insertion.
func (s *Store) RecordFirstSeen(m map[string]string, url string) (string, bool) {
	if ts, ok := m[url]; ok {
		return ts, false
	}
	ts := s.now().UTC().Format(time.RFC3339)
	m[url] = ts
	return ts, true
}

// Prune removes entries whose age exceeds retentionDays and returns how many
// were dropped. Entries exactly at the boundary stay; pruning twice in a row
// removes nothing the second time.
func (s *Store) Prune(m map[string]string, retentionDays int) int {
	pruned := 0
	for url, ts := range m {
		age, ok := s.AgeDays(ts)
		if ok && age > retentionDays {
			delete(m, url)
			pruned++
		}
	}
	return pruned
}

// AgeDays returns the floor of whole days since firstSeen, never negative.
// ok is false when the timestamp is empty or unparseable.
func (s *Store) AgeDays(firstSeen string) (int, bool) {
	if firstSeen == "" {
		return 0, false
	}
	t, err := time.Parse(time.RFC3339, firstSeen)
	if err != nil {
		return 0, false
	}
	days := int(s.now().UTC().Sub(t) / (24 * time.Hour))
	if days < 0 {
		days = 0
	}
	return days, true
}

// IsEvergreen reports whether firstSeen is at least thresholdDays old, a
// resurfaced URL a reader should not mistake for fresh news.
func (s *Store) IsEvergreen(firstSeen string, thresholdDays int) bool {
	days, ok := s.AgeDays(firstSeen)
	return ok && days >= thresholdDays
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// WriteJSONAtomic serializes v to a temp file in the target directory and
// renames it over path, so a crash mid-write never corrupts the previous
// valid document. Output is indented UTF-8 JSON, kept human-diffable.
func WriteJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", path, err)
	}

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write temp for %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace %s: %w", path, err)
	}

	return nil
}
