package triage

import (
	"testing"

	"NewsTriage/internal/config"
	"NewsTriage/internal/domain"
)

func TestCategoriesPrecedence(t *testing.T) {
	t.Parallel()

	cats := Categories("Fed tariff on semiconductor imports", "")
	if cats[0] != domain.CategoryPolicy {
		t.Fatalf("expected primary %s, got %s", domain.CategoryPolicy, cats[0])
	}
	if len(cats) < 2 || cats[1] != domain.CategoryStructural {
		t.Fatalf("expected secondary %s, got %v", domain.CategoryStructural, cats[1:])
	}
}

func TestCategoriesFramingFallback(t *testing.T) {
	t.Parallel()

	cats := Categories("Explainer: how to read the jobs data", "")
	if len(cats) != 1 || cats[0] != domain.CategoryNarrative {
		t.Fatalf("expected [%s], got %v", domain.CategoryNarrative, cats)
	}
}

func TestCategoriesDefaultCyclical(t *testing.T) {
	t.Parallel()

	cats := Categories("Retail spending climbed modestly", "")
	if len(cats) != 1 || cats[0] != domain.CategoryCyclical {
		t.Fatalf("expected [%s], got %v", domain.CategoryCyclical, cats)
	}
}

func TestScoreNeverNegative(t *testing.T) {
	t.Parallel()

	c := NewClassifier(config.DefaultScoring(), nil)
	eval := c.Evaluate("Opinion: stocks fell, could might may risk", "", "WSJ Opinion")

	if eval.Score != 0 {
		t.Fatalf("expected penalties to clamp at 0, got %d", eval.Score)
	}
	if eval.Strength != domain.StrengthLow {
		t.Fatalf("expected Low strength, got %s", eval.Strength)
	}
	if eval.Decision != domain.DecisionSkip {
		t.Fatalf("expected Skip, got %s", eval.Decision)
	}
}

func TestScoreNeverAbove100(t *testing.T) {
	t.Parallel()

	scoring := config.ScoringConfig{Baseline: 95, HighThreshold: 62, MediumThreshold: 45}
	c := NewClassifier(scoring, nil)
	eval := c.Evaluate("Fed raises revenue outlook for 2024", "", "WSJ")

	if eval.Score != 100 {
		t.Fatalf("expected boosts to clamp at 100, got %d", eval.Score)
	}
}

func TestEvaluatePolicyTariff(t *testing.T) {
	t.Parallel()

	c := NewClassifier(config.DefaultScoring(), nil)
	eval := c.Evaluate("Fed tariff on semiconductor imports", "", "WSJ")

	if eval.Primary() != domain.CategoryPolicy {
		t.Fatalf("expected primary %s, got %s", domain.CategoryPolicy, eval.Primary())
	}
	if got := eval.Secondary(); len(got) != 1 || got[0] != domain.CategoryStructural {
		t.Fatalf("expected secondary [%s], got %v", domain.CategoryStructural, got)
	}
	// baseline 35 + concrete category 12, no quantitative text
	if eval.Score != 47 {
		t.Fatalf("expected score 47, got %d", eval.Score)
	}
	if eval.Strength != domain.StrengthMedium {
		t.Fatalf("expected Medium, got %s", eval.Strength)
	}
	if eval.Horizon != domain.HorizonImmediate {
		t.Fatalf("expected Immediate, got %s", eval.Horizon)
	}
	if eval.Decision != domain.DecisionRead {
		t.Fatalf("expected Read, got %s", eval.Decision)
	}
}

func TestStrengthBandsPartition(t *testing.T) {
	t.Parallel()

	c := NewClassifier(config.DefaultScoring(), nil)

	cases := []struct {
		score int
		want  domain.SignalStrength
	}{
		{44, domain.StrengthLow},
		{45, domain.StrengthMedium},
		{61, domain.StrengthMedium},
		{62, domain.StrengthHigh},
		{0, domain.StrengthLow},
		{100, domain.StrengthHigh},
	}

	for _, tc := range cases {
		if got := c.Strength(tc.score); got != tc.want {
			t.Fatalf("score %d: expected %s, got %s", tc.score, tc.want, got)
		}
	}
}

func TestHorizonTextCueOverridesCategory(t *testing.T) {
	t.Parallel()

	if got := Horizon(domain.CategoryCyclical, "Company missed estimates for Q3"); got != domain.HorizonImmediate {
		t.Fatalf("expected Immediate, got %s", got)
	}

	// structural cue on an earnings article still reads Structural
	if got := Horizon(domain.CategoryEarnings, "a secular shift in demand"); got != domain.HorizonStructural {
		t.Fatalf("expected Structural, got %s", got)
	}
}

func TestHorizonCategoryDefaults(t *testing.T) {
	t.Parallel()

	cases := []struct {
		category string
		want     domain.TimeHorizon
	}{
		{domain.CategoryEarnings, domain.HorizonImmediate},
		{domain.CategoryMarkets, domain.HorizonImmediate},
		{domain.CategoryPolicy, domain.HorizonImmediate},
		{domain.CategoryStructural, domain.HorizonStructural},
		{domain.CategoryCyclical, domain.HorizonNearTerm},
		{domain.CategoryGeopolitics, domain.HorizonNearTerm},
	}

	for _, tc := range cases {
		if got := Horizon(tc.category, "plain text"); got != tc.want {
			t.Fatalf("category %s: expected %s, got %s", tc.category, tc.want, got)
		}
	}
}

func TestConfidenceSteps(t *testing.T) {
	t.Parallel()

	cases := []struct {
		score int
		want  int
	}{
		{100, 5}, {85, 5}, {84, 4}, {70, 4}, {69, 3}, {55, 3}, {54, 2}, {40, 2}, {39, 1}, {0, 1},
	}

	for _, tc := range cases {
		if got := Confidence(tc.score); got != tc.want {
			t.Fatalf("score %d: expected confidence %d, got %d", tc.score, tc.want, got)
		}
	}
}

func TestDecideNoiseOverridesStrength(t *testing.T) {
	t.Parallel()

	if got := Decide(domain.StrengthHigh, domain.CategoryNoise); got != domain.DecisionSkip {
		t.Fatalf("expected Skip for Noise regardless of strength, got %s", got)
	}
	if got := Decide(domain.StrengthLow, domain.CategoryPolicy); got != domain.DecisionSkip {
		t.Fatalf("expected Skip for Low, got %s", got)
	}
	if got := Decide(domain.StrengthMedium, domain.CategoryMarkets); got != domain.DecisionRead {
		t.Fatalf("expected Read, got %s", got)
	}
}

func TestOpinionSourcePenalty(t *testing.T) {
	t.Parallel()

	c := NewClassifier(config.DefaultScoring(), nil)
	neutral := c.Evaluate("Retail spending climbed modestly", "", "WSJ")
	opinion := c.Evaluate("Retail spending climbed modestly", "", "WSJ Opinion")

	if opinion.Score != neutral.Score-20 {
		t.Fatalf("expected opinion source to cost 20 points: neutral %d, opinion %d",
			neutral.Score, opinion.Score)
	}
}
