package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatcherCountsDistinctPhrases(t *testing.T) {
	m, err := NewMatcher([]string{"act now", "urgent!", "urgent!", ""})
	require.NoError(t, err)
	assert.Equal(t, 2, m.Len())

	assert.Equal(t, 0, m.Count("nothing to see"))
	assert.Equal(t, 1, m.Count("act now, act now, act now"))
	// listed twice, so counts twice
	assert.Equal(t, 2, m.Count("urgent! really urgent!"))
	assert.Equal(t, 3, m.Count("urgent! act now"))
}

func TestMatcherEmpty(t *testing.T) {
	m, err := NewMatcher(nil)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Count("anything"))
	assert.False(t, m.Contains("anything"))
}

func TestMatcherUnicode(t *testing.T) {
	m := MustMatcher([]string{"ultimă oră", "Șocant"})
	assert.Equal(t, []string{"ultimă oră", "șocant"}, m.Find("ultimă oră: șocant"))
}

func TestScoreAbsurdClaimWithInstitution(t *testing.T) {
	s := Analyze("URGENT: Harvard researchers confirm secret method cures cancer in 48 hours")

	assert.Equal(t, 3, s.Details.AbsurdClaims)
	assert.InDelta(t, 3.0, s.Details.CombinationBonus, 1e-9)
	assert.InDelta(t, 13.5, s.Total(), 1e-9)
	assert.InDelta(t, 0.8, s.FakeScore, 1e-9)
	assert.InDelta(t, 0.42, s.ConfidenceBonus, 1e-9)
	assert.Zero(t, s.RealScore)
}

func TestScoreCredibleNews(t *testing.T) {
	s := Analyze("City Council approved the budget yesterday with a 7-3 vote.")

	assert.Zero(t, s.FakeScore)
	assert.Equal(t, 1, s.Details.CredibleIndicators)
	assert.InDelta(t, 0.2, s.RealScore, 1e-9)
	assert.Zero(t, s.ConfidenceBonus)
}

func TestScoreEmptyText(t *testing.T) {
	s := Analyze("")
	assert.Equal(t, Score{}, s)
}

func TestScoreDeterministic(t *testing.T) {
	text := "Incredible! Scientists from Stanford reveal big pharma hidden agenda. Act now!"
	first := Analyze(text)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, Analyze(text))
	}
}

func TestScoreMonotoneInFakePhrases(t *testing.T) {
	base := "The committee met on Tuesday to review the proposal."
	prev := Analyze(base)
	text := base
	for _, phrase := range []string{"shocking", "big pharma", "anonymous sources", "act now", "mind control", "breakthrough was hidden"} {
		text += " " + phrase
		cur := Analyze(text)
		assert.GreaterOrEqual(t, cur.FakeScore, prev.FakeScore, "after adding %q", phrase)
		assert.GreaterOrEqual(t, cur.Total(), prev.Total(), "after adding %q", phrase)
		prev = cur
	}
	assert.InDelta(t, maxFakeScore, prev.FakeScore, 1e-9)
}

func TestScoreFakeScienceRegex(t *testing.T) {
	s := Analyze("New research proves that this tea cures everything, totally.")
	assert.Equal(t, 2, s.Details.FakeScience)
	assert.Greater(t, s.Details.Exaggeration, 0)
	// fake science plus exaggeration
	assert.GreaterOrEqual(t, s.Details.CombinationBonus, 2.0)
}

func TestScoreCapsAtLimits(t *testing.T) {
	s := Analyze("yesterday today last week this month price temperature traffic construction ministry government")
	assert.InDelta(t, maxRealScore, s.RealScore, 1e-9)
}

func TestInstitutionNeedsWholeWord(t *testing.T) {
	// "mit" inside "submitted" is not an institution
	s := Analyze("They submitted that mind control is possible")
	assert.Equal(t, 3, s.Details.AbsurdClaims)
	assert.Zero(t, s.Details.CombinationBonus)
}

func TestAnalyzeLinguistics(t *testing.T) {
	t.Run("calm text", func(t *testing.T) {
		m := AnalyzeLinguistics("The council met today. The budget passed.")
		assert.Zero(t, m.Score)
		assert.Empty(t, m.Flags)
	})

	t.Run("loaded text", func(t *testing.T) {
		m := AnalyzeLinguistics("SHOCKING and AMAZING news!!!! The best, the greatest, the ultimate cure. Absolutely, completely, totally true!")
		assert.Contains(t, m.Flags, FlagEmotional)
		assert.Contains(t, m.Flags, FlagSuperlatives)
		assert.Contains(t, m.Flags, FlagIntensifiers)
		assert.Contains(t, m.Flags, FlagCaps)
		assert.Contains(t, m.Flags, FlagPunctuation)
		assert.InDelta(t, maxManipulation, m.Score, 1e-9)
		assert.Len(t, m.Reasons, len(m.Flags))
	})

	t.Run("empty", func(t *testing.T) {
		m := AnalyzeLinguistics("")
		assert.Zero(t, m.Score)
		assert.Zero(t, m.CapsRatio)
	})
}

func TestCapsRatio(t *testing.T) {
	assert.InDelta(t, 0.5, CapsRatio("AbCd"), 1e-9)
	assert.InDelta(t, 1.0, CapsRatio("ȘĂ"), 1e-9)
}
