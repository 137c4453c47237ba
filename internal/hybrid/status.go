package hybrid

import (
	"sort"
	"time"

	"github.com/samber/lo"

	"github.com/TobiSchelling/veritas/internal/verdict"
)

var (
	aiSources = []verdict.Source{verdict.SourceLLM, verdict.SourceToxicity}
	mlSources = []verdict.Source{verdict.SourceEmbedding, verdict.SourceSentiment, verdict.SourceBoW}
)

// SupportedLanguages lists the languages the extractors are tuned for.
var SupportedLanguages = []string{"ro", "en", "fr", "es"}

// Availability is the static map of active extractors, built once at
// startup.
type Availability map[verdict.Source]bool

// NewAvailability marks the given sources active and every other known
// text source inactive.
func NewAvailability(active ...verdict.Source) Availability {
	a := make(Availability)
	for _, s := range lo.Flatten([][]verdict.Source{aiSources, mlSources}) {
		a[s] = false
	}
	for _, s := range active {
		a[s] = true
	}
	return a
}

// Active lists the active sources in a stable order.
func (a Availability) Active() []verdict.Source {
	var out []verdict.Source
	for s, ok := range a {
		if ok {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// FamilyStatus reports one family's extractors.
type FamilyStatus struct {
	Enabled    bool                    `json:"enabled"`
	Extractors map[verdict.Source]bool `json:"extractors"`
}

// SystemStatus is the payload of the status endpoint.
type SystemStatus struct {
	Status             string       `json:"system_status"`
	AI                 FamilyStatus `json:"ai_services"`
	ML                 FamilyStatus `json:"ml_models"`
	Video              bool         `json:"video_decoder"`
	SupportedLanguages []string     `json:"supported_languages"`
	Timestamp          time.Time    `json:"timestamp"`
}

// Status builds the system status. The system is operational while at least
// one text extractor is active.
func (a Availability) Status(videoDecoder bool) SystemStatus {
	family := func(sources []verdict.Source) FamilyStatus {
		fs := FamilyStatus{Extractors: make(map[verdict.Source]bool, len(sources))}
		for _, s := range sources {
			fs.Extractors[s] = a[s]
			fs.Enabled = fs.Enabled || a[s]
		}
		return fs
	}

	st := SystemStatus{
		Status:             "operational",
		AI:                 family(aiSources),
		ML:                 family(mlSources),
		Video:              videoDecoder,
		SupportedLanguages: SupportedLanguages,
		Timestamp:          time.Now(),
	}
	if !st.AI.Enabled && !st.ML.Enabled {
		st.Status = "degraded"
	}
	return st
}
