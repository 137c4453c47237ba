package pattern

import (
	"fmt"
	"sort"
	"strings"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Matcher finds which phrases of a fixed list occur in a text. A phrase
// found several times in the text is reported once.
type Matcher struct {
	machine      *goahocorasick.Machine
	multiplicity map[string]int
}

// NewMatcher builds an Aho-Corasick automaton over the lowercased phrases.
func NewMatcher(phrases []string) (*Matcher, error) {
	m := &Matcher{multiplicity: make(map[string]int)}
	for _, p := range phrases {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" {
			continue
		}
		m.multiplicity[p]++
	}
	if len(m.multiplicity) == 0 {
		return m, nil
	}

	unique := make([]string, 0, len(m.multiplicity))
	for p := range m.multiplicity {
		unique = append(unique, p)
	}
	sort.Strings(unique)

	patterns := make([][]rune, len(unique))
	for i, p := range unique {
		patterns[i] = []rune(p)
	}

	machine := new(goahocorasick.Machine)
	if err := machine.Build(patterns); err != nil {
		return nil, fmt.Errorf("building matcher: %w", err)
	}
	m.machine = machine
	return m, nil
}

// MustMatcher is NewMatcher for package-level phrase lists.
func MustMatcher(phrases []string) *Matcher {
	m, err := NewMatcher(phrases)
	if err != nil {
		panic(err)
	}
	return m
}

// Find returns the distinct phrases present in lower, in order of first
// occurrence. lower must already be lowercased.
func (m *Matcher) Find(lower string) []string {
	if m.machine == nil || lower == "" {
		return nil
	}
	terms := m.machine.MultiPatternSearch([]rune(lower), false)
	seen := make(map[string]bool, len(terms))
	var found []string
	for _, t := range terms {
		w := string(t.Word)
		if seen[w] {
			continue
		}
		seen[w] = true
		found = append(found, w)
	}
	return found
}

// Count returns the number of listed phrases present in lower, counting a
// phrase listed n times as n.
func (m *Matcher) Count(lower string) int {
	n := 0
	for _, w := range m.Find(lower) {
		n += m.multiplicity[w]
	}
	return n
}

// Contains reports whether any phrase is present in lower.
func (m *Matcher) Contains(lower string) bool {
	return len(m.Find(lower)) > 0
}

// Len returns the number of distinct phrases.
func (m *Matcher) Len() int {
	return len(m.multiplicity)
}

// Sum adds weight(p) for every listed occurrence of each phrase p present
// in lower.
func (m *Matcher) Sum(lower string, weight func(phrase string) float64) float64 {
	total := 0.0
	for _, w := range m.Find(lower) {
		total += weight(w) * float64(m.multiplicity[w])
	}
	return total
}
