package triage

import (
	"fmt"
	"regexp"
	"strings"

	"NewsTriage/internal/config"
	"NewsTriage/internal/domain"
)

var numericPattern = regexp.MustCompile(`(?i)\b(\d+(\.\d+)?%?|\$\d+|\d{4}|\bQ[1-4]\b)\b`)

type categoryRule struct {
	label   string
	pattern *regexp.Regexp
}

// categoryRules is scanned top to bottom; declaration order defines category
// precedence when text is ambiguous, so this must stay a slice.
var categoryRules = []categoryRule{
	{domain.CategoryPolicy, regexp.MustCompile(`(?i)\b(Fed|FOMC|Treasury|SEC|DOJ|FTC|regulat|rule|ban|tariff|sanction|bill|law|court|ruling|order)\b`)},
	{domain.CategoryEarnings, regexp.MustCompile(`(?i)\b(earnings|guidance|EPS|revenue|profit|margin|10-?K|10-?Q|filing)\b`)},
	{domain.CategoryGeopolitics, regexp.MustCompile(`(?i)\b(Iran|China|Russia|Ukraine|Israel|Gaza|Taiwan|NATO|war|conflict)\b`)},
	{domain.CategoryMarkets, regexp.MustCompile(`(?i)\b(yield|bond|rates|credit spread|dollar|FX|oil|WTI|Brent|copper|gold|equities|S&P|Nasdaq)\b`)},
	{domain.CategoryStructural, regexp.MustCompile(`(?i)\b(capacity|supply chain|shortage|grid|electricity|data center|chip|semiconductor|copper|memory|HBM)\b`)},
}

var framingPattern = regexp.MustCompile(`(?i)\b(opinion|column|what it means|explainer|why\b|how to|guide)\b`)

var modalPattern = regexp.MustCompile(`(?i)\b(could|might|may|risk|risks|fears|worries)\b`)

var lowSignalMovePattern = regexp.MustCompile(`(?i)\b(stocks (rose|fell)|shares (rose|fell)|market (rallied|slid))\b`)

// Horizon cues override the category default only when a strong signal
// phrase is present. Deliberately narrow: "long-term" alone or "over the
// next year" are too common to be reliable.
var immediateCues = regexp.MustCompile(`(?i)\b(this quarter|Q[1-4] results|missed estimates|beat estimates|earnings beat|earnings miss|guidance cut|guidance raised|EPS cut|raised guidance|lowered guidance|reported (earnings|results))\b`)

var structuralCues = regexp.MustCompile(`(?i)\b(multi.year|secular trend|secular shift|long.term trend|structural shift|permanent change|irreversible|decade.long|generational (shift|change))\b`)

// concreteCategories get a scoring bump: they name observable events rather
// than commentary.
var concreteCategories = map[string]bool{
	domain.CategoryPolicy:     true,
	domain.CategoryEarnings:   true,
	domain.CategoryStructural: true,
}

// Classifier derives all ScoredRecord classification fields from entry text.
// It is constructed once per run from an explicit configuration so tests can
// run independent instances side by side.
type Classifier struct {
	scoring config.ScoringConfig
	themes  []domain.Theme
}

// NewClassifier wires scoring thresholds and active themes.
func NewClassifier(scoring config.ScoringConfig, themes []domain.Theme) *Classifier {
	return &Classifier{scoring: scoring, themes: themes}
}

// Evaluation bundles every classification output for one entry.
type Evaluation struct {
	Categories    []string
	Score         int
	Reasons       []string
	MatchedThemes []string
	Strength      domain.SignalStrength
	Horizon       domain.TimeHorizon
	Confidence    int
	Decision      domain.TriageDecision
}

// Primary returns the primary category.
func (e Evaluation) Primary() string {
	return e.Categories[0]
}

// Secondary returns the secondary categories in rule order, never nil.
func (e Evaluation) Secondary() []string {
	if len(e.Categories) < 2 {
		return []string{}
	}
	return e.Categories[1:]
}

// Categories returns all matching categories, primary first, in rule
// declaration order. Always at least one: when no rule matches, framing
// language yields Narrative/Opinion and everything else is Cyclical.
func Categories(title, summary string) []string {
	text := title + " " + summary
	var matched []string
	for _, rule := range categoryRules {
		if rule.pattern.MatchString(text) {
			matched = append(matched, rule.label)
		}
	}
	if len(matched) == 0 {
		if framingPattern.MatchString(text) {
			return []string{domain.CategoryNarrative}
		}
		return []string{domain.CategoryCyclical}
	}
	return matched
}

// Evaluate classifies and scores one entry. Source is the feed label; a
// label containing "opinion" carries a penalty.
func (c *Classifier) Evaluate(title, summary, source string) Evaluation {
	text := title + " " + summary
	score := c.scoring.Baseline
	reasons := []string{}

	if numericPattern.MatchString(text) {
		score += 12
		reasons = append(reasons, "Includes quantitative data")
	}

	categories := Categories(title, summary)
	primary := categories[0]
	if concreteCategories[primary] {
		score += 12
		reasons = append(reasons, fmt.Sprintf("Concrete category: %s", primary))
	}

	if lowSignalMovePattern.MatchString(text) {
		score -= 18
		reasons = append(reasons, "Market-move headline")
	}

	if framingPattern.MatchString(text) {
		score -= 14
		reasons = append(reasons, "Framing/explainer language")
	}
	if modalPattern.MatchString(text) {
		score -= 4
		reasons = append(reasons, "Hedging/modality language")
	}

	if strings.Contains(strings.ToLower(source), "opinion") {
		score -= 20
		reasons = append(reasons, "Opinion source")
	}

	boost, themeReasons, matchedThemes := matchThemes(c.themes, title, text)
	score += boost
	reasons = append(reasons, themeReasons...)

	// Single clamp after every adjustment has stacked, not per step.
	score = clampScore(score)

	strength := c.Strength(score)
	return Evaluation{
		Categories:    categories,
		Score:         score,
		Reasons:       reasons,
		MatchedThemes: matchedThemes,
		Strength:      strength,
		Horizon:       Horizon(primary, text),
		Confidence:    Confidence(score),
		Decision:      Decide(strength, primary),
	}
}

// Strength maps the raw score into a band. The ≥high comparison runs before
// ≥medium; a misordered threshold pair degrades exactly along that order.
func (c *Classifier) Strength(score int) domain.SignalStrength {
	if score >= c.scoring.HighThreshold {
		return domain.StrengthHigh
	}
	if score >= c.scoring.MediumThreshold {
		return domain.StrengthMedium
	}
	return domain.StrengthLow
}

// Horizon derives the time horizon from strong text cues first, then the
// category default. Cues always win so an earnings article with structural
// language still reads as Structural.
func Horizon(category, text string) domain.TimeHorizon {
	if text != "" && immediateCues.MatchString(text) {
		return domain.HorizonImmediate
	}
	if text != "" && structuralCues.MatchString(text) {
		return domain.HorizonStructural
	}
	switch category {
	case domain.CategoryEarnings, domain.CategoryMarkets, domain.CategoryPolicy:
		return domain.HorizonImmediate
	case domain.CategoryStructural:
		return domain.HorizonStructural
	}
	return domain.HorizonNearTerm
}

// Confidence is a deterministic step function of the raw score.
func Confidence(score int) int {
	switch {
	case score >= 85:
		return 5
	case score >= 70:
		return 4
	case score >= 55:
		return 3
	case score >= 40:
		return 2
	}
	return 1
}

// Decide is the strict two-state Read/Skip gate. The Noise override wins
// regardless of strength.
func Decide(strength domain.SignalStrength, category string) domain.TriageDecision {
	if strength == domain.StrengthLow || category == domain.CategoryNoise {
		return domain.DecisionSkip
	}
	return domain.DecisionRead
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
