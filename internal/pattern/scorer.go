// Package pattern scores text for the lexical hallmarks of fabricated news:
// absurd claims, exaggeration, invented authorities, conspiracy framing,
// artificial urgency and pseudo-science, balanced against credibility cues.
package pattern

import (
	"fmt"
	"math"
	"regexp"
	"strings"
)

// Points per matched phrase, by family.
const (
	absurdPoints       = 3
	fakeSourcePoints   = 2
	fakeSciencePoints  = 2
	defaultPhrasePoint = 1
)

// Family weights in the total fake score.
const (
	AbsurdWeight       = 3.5
	ExaggerationWeight = 1.8
	FakeSourceWeight   = 2.5
	UrgencyWeight      = 1.5
	ConspiracyWeight   = 2.0
	FakeScienceWeight  = 2.8
)

// Score normalisation caps.
const (
	maxFakeScore = 0.8
	maxRealScore = 0.3
	maxBonus     = 0.2
)

// Details is the per-family breakdown of a Score.
type Details struct {
	AbsurdClaims        int     `json:"absurd_claims"`
	Exaggeration        int     `json:"exaggeration"`
	FakeCredibleSources int     `json:"fake_credible_sources"`
	ArtificialUrgency   int     `json:"artificial_urgency"`
	Conspiracy          int     `json:"conspiracy"`
	FakeScience         int     `json:"fake_science"`
	CredibleIndicators  int     `json:"credible_indicators"`
	CombinationBonus    float64 `json:"combination_bonus"`
}

// Score is the result of scoring one text.
type Score struct {
	FakeScore       float64 `json:"fake_score"`
	RealScore       float64 `json:"real_score"`
	ConfidenceBonus float64 `json:"confidence_bonus"`
	Details         Details `json:"pattern_details"`
}

// Total returns the weighted, unnormalised fake evidence.
func (s Score) Total() float64 {
	d := s.Details
	return float64(d.AbsurdClaims)*AbsurdWeight +
		float64(d.Exaggeration)*ExaggerationWeight +
		float64(d.FakeCredibleSources)*FakeSourceWeight +
		float64(d.ArtificialUrgency)*UrgencyWeight +
		float64(d.Conspiracy)*ConspiracyWeight +
		float64(d.FakeScience)*FakeScienceWeight +
		d.CombinationBonus
}

// Summary renders the non-zero families for explanations.
func (s Score) Summary() string {
	d := s.Details
	var parts []string
	add := func(name string, v int) {
		if v > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", name, v))
		}
	}
	add("absurd", d.AbsurdClaims)
	add("exaggeration", d.Exaggeration)
	add("fake_sources", d.FakeCredibleSources)
	add("urgency", d.ArtificialUrgency)
	add("conspiracy", d.Conspiracy)
	add("fake_science", d.FakeScience)
	add("credible", d.CredibleIndicators)
	return strings.Join(parts, ", ")
}

// Scorer holds the compiled keyword families. It is safe for concurrent use.
type Scorer struct {
	absurd      *Matcher
	exaggerate  *Matcher
	fakeSources *Matcher
	conspiracy  *Matcher
	urgency     *Matcher
	credible    *Matcher
	science     []*regexp.Regexp
}

var institutionPattern = regexp.MustCompile(`\b(harvard|mit|stanford|cercetătorii)\b`)

// NewScorer compiles the built-in families.
func NewScorer() *Scorer {
	s := &Scorer{
		absurd:      MustMatcher(absurdClaims),
		exaggerate:  MustMatcher(exaggeration),
		fakeSources: MustMatcher(fakeCredibleSources),
		conspiracy:  MustMatcher(conspiracy),
		urgency:     MustMatcher(urgency),
		credible:    MustMatcher(credible),
	}
	for _, expr := range fakeScience {
		s.science = append(s.science, regexp.MustCompile(expr))
	}
	return s
}

var defaultScorer = NewScorer()

// Analyze scores text with the built-in families.
func Analyze(text string) Score {
	return defaultScorer.Score(text)
}

// Score computes the pattern score of text. It is deterministic, and adding
// a phrase from a fake family never lowers FakeScore.
func (s *Scorer) Score(text string) Score {
	lower := strings.ToLower(text)

	var d Details
	d.AbsurdClaims = s.absurd.Count(lower) * absurdPoints
	d.Exaggeration = s.exaggerate.Count(lower) * defaultPhrasePoint
	d.FakeCredibleSources = s.fakeSources.Count(lower) * fakeSourcePoints
	d.Conspiracy = s.conspiracy.Count(lower) * defaultPhrasePoint
	d.ArtificialUrgency = s.urgency.Count(lower) * defaultPhrasePoint
	for _, re := range s.science {
		if re.MatchString(lower) {
			d.FakeScience += fakeSciencePoints
		}
	}
	d.CredibleIndicators = s.credible.Count(lower) * defaultPhrasePoint

	if d.AbsurdClaims > 0 && institutionPattern.MatchString(lower) {
		d.CombinationBonus += 3.0
	}
	if d.FakeScience > 0 && d.Exaggeration > 0 {
		d.CombinationBonus += 2.0
	}
	if d.ArtificialUrgency > 0 && d.FakeCredibleSources > 0 {
		d.CombinationBonus += 1.5
	}
	if d.Conspiracy > 0 && d.Exaggeration > 0 {
		d.CombinationBonus += 1.4
	}
	if d.Exaggeration >= 3 {
		d.CombinationBonus += 1.0
	}

	out := Score{Details: d}
	total := out.Total()
	out.FakeScore = math.Min(total/12.0, maxFakeScore)
	out.RealScore = math.Min(float64(d.CredibleIndicators)/5.0, maxRealScore)

	bonus := math.Min(total/15.0, maxBonus)
	if d.AbsurdClaims > 0 {
		bonus += 0.1
	}
	if d.FakeScience > 0 && d.Exaggeration > 0 {
		bonus += 0.08
	}
	if d.CombinationBonus > 2.0 {
		bonus += 0.12
	}
	out.ConfidenceBonus = bonus
	return out
}
