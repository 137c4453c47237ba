package hybrid

import (
	"errors"
	"strings"

	"github.com/samber/lo"
)

// ErrUnknownMode is returned for an analysis mode outside the catalogue.
var ErrUnknownMode = errors.New("unknown analysis mode")

// Mode selects which families analyze a text.
type Mode string

const (
	ModeHybrid      Mode = "hybrid"
	ModeAIOnly      Mode = "ai_only"
	ModeMLOnly      Mode = "ml_only"
	ModeTraditional Mode = "traditional"
)

// ModeInfo describes one analysis mode for clients.
type ModeInfo struct {
	Mode        Mode     `json:"-"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Accuracy    string   `json:"accuracy"`
	Speed       string   `json:"speed"`
	Languages   []string `json:"languages"`
}

var catalogue = []ModeInfo{
	{
		Mode:        ModeHybrid,
		Name:        "Hybrid analysis",
		Description: "Combines the AI services (remote LLM + toxicity API) with the ML models (embedding similarity + sentiment + traditional)",
		Accuracy:    "very high",
		Speed:       "medium",
		Languages:   []string{"ro", "en", "fr", "es", "de", "it"},
	},
	{
		Mode:        ModeAIOnly,
		Name:        "AI only",
		Description: "Uses the remote language model and the toxicity API",
		Accuracy:    "high",
		Speed:       "fast",
		Languages:   []string{"ro", "en", "fr", "es", "de", "it", "many more"},
	},
	{
		Mode:        ModeMLOnly,
		Name:        "ML only",
		Description: "Combines embedding similarity, sentiment and the traditional model",
		Accuracy:    "high",
		Speed:       "fast",
		Languages:   []string{"ro", "en", "fr", "es", "de", "it"},
	},
	{
		Mode:        ModeTraditional,
		Name:        "Traditional model",
		Description: "Keyword bag-of-words classifier (backup)",
		Accuracy:    "medium",
		Speed:       "very fast",
		Languages:   []string{"en", "ro", "partially multilingual"},
	},
}

// Modes returns the mode catalogue in display order.
func Modes() []ModeInfo {
	out := make([]ModeInfo, len(catalogue))
	copy(out, catalogue)
	return out
}

// ModeMap returns the catalogue keyed by mode, the shape served to clients.
func ModeMap() map[Mode]ModeInfo {
	return lo.KeyBy(catalogue, func(m ModeInfo) Mode { return m.Mode })
}

// ParseMode resolves a mode name. An empty name selects def.
func ParseMode(s string, def Mode) (Mode, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return def, nil
	}
	m := Mode(s)
	if !lo.ContainsBy(catalogue, func(info ModeInfo) bool { return info.Mode == m }) {
		return "", ErrUnknownMode
	}
	return m, nil
}
