package triage

import (
	"fmt"
	"strings"

	"NewsTriage/internal/domain"
)

// Theme boost weights. An exact watch-trigger phrase is high precision and
// outweighs the keyword fallback.
const (
	phraseBoost  = 8
	keywordBoost = 5
)

// matchThemes applies the theme rules to one entry. Per theme the phrase
// check runs first and short-circuits the keyword fallback, so a theme can
// match on phrase or keyword within one record, never both.
//
// The keyword fallback requires two distinct keyword hits anywhere in the
// text, or one hit in the headline plus at least one hit anywhere. The
// two-hit-or-headline rule keeps a single generic keyword from firing.
func matchThemes(themes []domain.Theme, title, text string) (int, []string, []string) {
	boost := 0
	reasons := []string{}
	matched := []string{}

	textLower := strings.ToLower(text)
	titleLower := strings.ToLower(title)

	for _, theme := range themes {
		if phraseMatched(theme.WatchTriggers, textLower) {
			matched = append(matched, theme.Name)
			boost += phraseBoost
			reasons = append(reasons, fmt.Sprintf("Theme match (phrase): %s", theme.Name))
			continue
		}

		if len(theme.KeywordsAny) == 0 {
			continue
		}

		hits := 0
		inHeadline := false
		for _, kw := range theme.KeywordsAny {
			kw = strings.ToLower(kw)
			if strings.Contains(textLower, kw) {
				hits++
			}
			if strings.Contains(titleLower, kw) {
				inHeadline = true
			}
		}

		if hits >= 2 || (inHeadline && hits > 0) {
			matched = append(matched, theme.Name)
			boost += keywordBoost
			reasons = append(reasons, fmt.Sprintf("Theme match (keyword): %s", theme.Name))
		}
	}

	return boost, reasons, matched
}

func phraseMatched(triggers []string, textLower string) bool {
	for _, trigger := range triggers {
		if trigger == "" {
			continue
		}
		if strings.Contains(textLower, strings.ToLower(trigger)) {
			return true
		}
	}
	return false
}
