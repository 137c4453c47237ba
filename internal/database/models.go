package database

import "encoding/json"

// Content types of a stored analysis.
const (
	ContentText  = "text"
	ContentURL   = "url"
	ContentVideo = "video"
)

// Analysis is one stored verdict.
type Analysis struct {
	ID               int64           `json:"id"`
	UID              string          `json:"uid"`
	Username         string          `json:"username"`
	ContentType      string          `json:"content_type"`
	Title            *string         `json:"title"`
	URL              *string         `json:"url,omitempty"`
	ContentPreview   *string         `json:"content_preview"`
	Verdict          string          `json:"verdict"`
	Confidence       float64         `json:"confidence"`
	Explanation      *string         `json:"explanation"`
	Mode             string          `json:"analysis_mode"`
	Language         string          `json:"detected_language"`
	ProcessingTime   float64         `json:"processing_time"`
	RiskLevel        *string         `json:"risk_level"`
	TechnicalDetails json.RawMessage `json:"technical_details,omitempty"`
	CreatedAt        string          `json:"created_at"`
}

// IsFake reports whether the verdict is fake or deepfake.
func (a Analysis) IsFake() bool {
	return a.Verdict == "fake" || a.Verdict == "deepfake"
}

// IsReal reports whether the verdict is real or authentic.
func (a Analysis) IsReal() bool {
	return a.Verdict == "real" || a.Verdict == "authentic"
}

// UserStats aggregates the analyses of one user.
type UserStats struct {
	Total                int            `json:"total"`
	Fake                 int            `json:"fake"`
	Real                 int            `json:"real"`
	Inconclusive         int            `json:"inconclusive"`
	FakePercentage       float64        `json:"fake_percentage"`
	AverageConfidence    float64        `json:"average_confidence"`
	RecentAnalyses       int            `json:"recent_analyses"`
	LanguageDistribution map[string]int `json:"language_distribution"`
	ModeDistribution     map[string]int `json:"analysis_mode_distribution"`
	AnalysisTypes        map[string]int `json:"analysis_types"`
	RecentPredictions    []Analysis     `json:"recent_predictions"`
}

// ScanRun records one batch feed scan.
type ScanRun struct {
	ID                int64
	PeriodID          string
	Mode              string
	ArticleCount      int
	AnalyzedCount     int
	FakeCount         int
	RealCount         int
	InconclusiveCount int
	AverageConfidence float64
	FinishedAt        *string
}

// Stats contains aggregate database statistics.
type Stats struct {
	TotalAnalyses      int
	FakeCount          int
	RealCount          int
	InconclusiveCount  int
	RecentAnalyses     int
	Users              int
	ActiveUsers        int
	AvgAnalysesPerUser float64
	ScanRuns           int
}
