package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/TobiSchelling/veritas/internal/ai"
	"github.com/TobiSchelling/veritas/internal/cache"
	"github.com/TobiSchelling/veritas/internal/config"
	"github.com/TobiSchelling/veritas/internal/database"
	"github.com/TobiSchelling/veritas/internal/fetch"
	"github.com/TobiSchelling/veritas/internal/hybrid"
	"github.com/TobiSchelling/veritas/internal/llm"
	"github.com/TobiSchelling/veritas/internal/ml"
	"github.com/TobiSchelling/veritas/internal/pattern"
	"github.com/TobiSchelling/veritas/internal/verdict"
	"github.com/TobiSchelling/veritas/internal/video"
)

var (
	// ErrEmptyInput is returned when a request carries neither text nor a URL.
	ErrEmptyInput = errors.New("no text or url provided")
	// ErrUnknownMode is returned for modes outside the catalogue.
	ErrUnknownMode = hybrid.ErrUnknownMode
	// ErrVideoDisabled is returned when video analysis is turned off.
	ErrVideoDisabled = errors.New("video analysis is disabled")
	// ErrExtraction wraps failures to turn a URL into article text.
	ErrExtraction = errors.New("could not extract text from url")
)

// AnonymousUser owns analyses submitted without a user name.
const AnonymousUser = "anonymous"

const titleLength = 50

// Store is the persistence the service writes to.
type Store interface {
	InsertAnalysis(a *database.Analysis) (int64, error)
	HasAnalysisForURL(url string) (bool, error)
	InsertScanRun(r *database.ScanRun) (int64, error)
	GetLastScanDate() (string, error)
}

// Fetcher turns a URL into article text.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// TextAnalyzer runs text through an analysis mode.
type TextAnalyzer interface {
	AnalyzeMode(ctx context.Context, mode hybrid.Mode, text string) (verdict.Verdict, error)
	Availability() hybrid.Availability
}

// VideoAnalyzer classifies video files.
type VideoAnalyzer interface {
	Analyze(ctx context.Context, path, filename string) (video.Report, error)
	DecoderAvailable() bool
}

// Service runs analyses and records them.
type Service struct {
	cfg         *config.Config
	store       Store
	cache       *cache.Cache
	fetcher     Fetcher
	text        TextAnalyzer
	video       VideoAnalyzer
	defaultMode hybrid.Mode
	now         func() time.Time
}

// New wires the extractors, families, video analyzer, cache and fetcher from
// cfg. db may be nil, in which case nothing is persisted.
func New(ctx context.Context, cfg *config.Config, db *database.DB) (*Service, error) {
	text, err := buildTextAnalyzer(cfg)
	if err != nil {
		return nil, err
	}

	s := &Service{
		cfg:         cfg,
		cache:       cache.Open(ctx, cfg.Cache.RedisAddr, time.Duration(cfg.Cache.TTLHours)*time.Hour),
		fetcher:     fetch.NewContentFetcher(15 * time.Second),
		text:        text,
		defaultMode: hybrid.Mode(cfg.Analysis.DefaultMode),
		now:         time.Now,
	}
	if db != nil {
		s.store = db
	}
	if cfg.Video.Enabled {
		s.video = buildVideoAnalyzer(cfg)
	}
	return s, nil
}

func buildTextAnalyzer(cfg *config.Config) (*hybrid.Analyzer, error) {
	scorer := pattern.NewScorer()

	var provider llm.Provider
	if c := cfg.AI.LLM; c.Enabled {
		p := llm.CreateProvider(llm.ProviderConfig{
			Provider:    c.Provider,
			Model:       c.Model,
			OllamaURL:   c.OllamaURL,
			OpenAIModel: c.OpenAIModel,
			OpenAIURL:   c.OpenAIURL,
			APIKeyEnv:   c.APIKeyEnv,
			Temperature: ai.Temperature,
			System:      ai.SystemPrompt,
		})
		if p != nil {
			provider = llm.ThrottleProvider(p, c.RequestsPerMinute)
		}
	}

	var aiExtractors []verdict.Extractor
	if provider != nil {
		aiExtractors = append(aiExtractors, ai.NewLLMExtractor(provider))
	}
	if c := cfg.AI.Toxicity; c.Enabled {
		client := llm.NewPerspectiveClient(c.APIKeyEnv)
		if c.Endpoint != "" {
			client.Endpoint = c.Endpoint
		}
		if client.IsConfigured() {
			aiExtractors = append(aiExtractors, ai.NewToxicityExtractor(llm.ThrottleScorer(client, c.RequestsPerMinute), c.Threshold))
		} else {
			log.Printf("Toxicity API disabled: %s is not set", c.APIKeyEnv)
		}
	}

	var mlExtractors []verdict.Extractor
	if c := cfg.ML.Embedding; c.Enabled {
		embedder := llm.CreateEmbedder(llm.EmbedderConfig{
			Provider:  c.Provider,
			Model:     c.Model,
			OllamaURL: c.OllamaURL,
			OpenAIURL: c.OpenAIURL,
			APIKeyEnv: c.APIKeyEnv,
		})
		if embedder != nil {
			mlExtractors = append(mlExtractors, ml.NewEmbeddingExtractor(embedder, scorer))
		}
	}
	if c := cfg.ML.Sentiment; c.Enabled {
		var classifier ml.SentimentClassifier = ml.NewLexiconClassifier()
		if c.Classifier == "llm" {
			if provider != nil {
				classifier = ml.NewLLMSentimentClassifier(provider)
			} else {
				log.Println("No LLM provider for sentiment, using the lexicon classifier")
			}
		}
		mlExtractors = append(mlExtractors, ml.NewSentimentExtractor(classifier))
	}

	var traditional verdict.Extractor
	if c := cfg.ML.Traditional; c.Enabled {
		model, err := ml.LoadKeywordModel(c.KeywordsFile)
		if err != nil {
			return nil, fmt.Errorf("loading keyword model: %w", err)
		}
		log.Printf("Loaded keyword model %q with %d phrases", model.Name(), model.Size())
		mlExtractors = append(mlExtractors, model)
		traditional = model
	}

	// Families without extractors stay untyped nil so the orchestrator
	// reports them as unavailable.
	var aiFamily, mlFamily hybrid.Family
	if len(aiExtractors) > 0 {
		aiFamily = ai.NewAnalyzer(aiExtractors...)
	}
	if len(mlExtractors) > 0 {
		w := cfg.Ensemble.ML
		mlFamily = ml.NewAnalyzer(ml.Weights{Embedding: w.Embedding, Sentiment: w.Sentiment, BoW: w.BoW}, mlExtractors...)
	}

	w := cfg.Ensemble.Hybrid
	return hybrid.NewAnalyzer(aiFamily, mlFamily, traditional, hybrid.Weights{AI: w.AI, ML: w.ML}), nil
}

func buildVideoAnalyzer(cfg *config.Config) *video.Analyzer {
	c := cfg.Video
	var faces video.FaceDetector
	if c.FaceCascade != "" {
		d, err := video.LoadPigoDetector(c.FaceCascade)
		if err != nil {
			log.Printf("Face detection disabled: %v", err)
		} else {
			faces = d
		}
	}
	var fallback *video.FallbackAnalyzer
	if c.Fallback {
		fallback = video.NewFallbackAnalyzer(rand.New(rand.NewSource(time.Now().UnixNano())))
	}
	source := video.NewFFmpegSource(c.FFmpeg, c.FFprobe, c.MaxWidth)
	if !source.Available() {
		log.Println("ffmpeg/ffprobe not found, video analysis will use the fallback")
	}
	return video.NewAnalyzer(source, faces, fallback, c.MaxFrames)
}

// Close releases the cache connection.
func (s *Service) Close() error {
	return s.cache.Close()
}

// TextRequest is one text analysis request. Text wins over URL when both
// are given.
type TextRequest struct {
	Text     string
	URL      string
	Mode     string
	Title    string
	Username string
}

// Outcome is a text verdict plus its storage identity.
type Outcome struct {
	verdict.Verdict
	AnalysisID string `json:"analysis_id,omitempty"`
	Cached     bool   `json:"cached,omitempty"`
	URL        string `json:"url,omitempty"`
}

// AnalyzeText resolves the input text, runs the requested mode and stores
// the verdict.
func (s *Service) AnalyzeText(ctx context.Context, req TextRequest) (*Outcome, error) {
	mode, err := hybrid.ParseMode(req.Mode, s.defaultMode)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, req.Mode)
	}

	text := strings.TrimSpace(req.Text)
	contentType := database.ContentText
	if strings.TrimSpace(req.URL) != "" {
		contentType = database.ContentURL
	}
	if text == "" && strings.TrimSpace(req.URL) != "" {
		if s.fetcher == nil {
			return nil, fmt.Errorf("%w: %w", ErrExtraction, fetch.ErrNoContent)
		}
		text, err = s.fetcher.Fetch(ctx, strings.TrimSpace(req.URL))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrExtraction, err)
		}
	}
	if text == "" {
		return nil, ErrEmptyInput
	}

	out := &Outcome{URL: strings.TrimSpace(req.URL)}
	if v, ok := s.cache.Get(ctx, string(mode), text); ok {
		out.Verdict, out.Cached = v, true
	} else {
		v, err := s.text.AnalyzeMode(ctx, mode, text)
		if err != nil {
			return nil, err
		}
		s.cache.Set(ctx, string(mode), text, v)
		out.Verdict = v
	}

	title := req.Title
	if title == "" {
		title = titleFrom(text)
	}
	out.AnalysisID = s.record(&database.Analysis{
		Username:         userOrAnonymous(req.Username),
		ContentType:      contentType,
		Title:            &title,
		URL:              optional(out.URL),
		ContentPreview:   optional(truncate(text, database.PreviewLength)),
		Verdict:          string(out.Label),
		Confidence:       out.Confidence,
		Explanation:      optional(out.Explanation),
		Mode:             string(mode),
		Language:         out.Language,
		ProcessingTime:   out.ProcessingTime,
		RiskLevel:        optional(string(out.RiskLevel)),
		TechnicalDetails: textDetails(out, len([]rune(text))),
	})
	return out, nil
}

// VideoRequest is one uploaded video.
type VideoRequest struct {
	Path     string
	Filename string
	Username string
}

// VideoOutcome is a video report plus its storage identity.
type VideoOutcome struct {
	video.Report
	AnalysisID string `json:"analysis_id,omitempty"`
}

// AnalyzeVideo classifies the video at req.Path. Fallback verdicts are not
// stored because they carry no evidence.
func (s *Service) AnalyzeVideo(ctx context.Context, req VideoRequest) (*VideoOutcome, error) {
	if s.video == nil {
		return nil, ErrVideoDisabled
	}
	report, err := s.video.Analyze(ctx, req.Path, req.Filename)
	if err != nil {
		return nil, err
	}

	out := &VideoOutcome{Report: report}
	if report.Verdict.Mode == video.FallbackMode {
		return out, nil
	}

	v := report.Verdict
	title := req.Filename
	details, err := json.Marshal(map[string]any{
		"video_metadata":  report.Metadata,
		"ffmpeg_analysis": report.Signals,
		"final_verdict":   report.Fusion,
	})
	if err != nil {
		log.Printf("Encoding video details: %v", err)
	}
	out.AnalysisID = s.record(&database.Analysis{
		Username:         userOrAnonymous(req.Username),
		ContentType:      database.ContentVideo,
		Title:            &title,
		Verdict:          string(v.Label),
		Confidence:       v.Confidence,
		Explanation:      optional(v.Explanation),
		Mode:             v.Mode,
		Language:         v.Language,
		ProcessingTime:   v.ProcessingTime,
		RiskLevel:        optional(string(v.RiskLevel)),
		TechnicalDetails: details,
	})
	return out, nil
}

// Status reports which analyzers are reachable.
func (s *Service) Status() hybrid.SystemStatus {
	decoder := s.video != nil && s.video.DecoderAvailable()
	st := s.text.Availability().Status(decoder)
	st.Timestamp = s.now()
	return st
}

// DefaultMode returns the mode used when a request names none.
func (s *Service) DefaultMode() hybrid.Mode {
	return s.defaultMode
}

// record stores a and returns its UID. Storage failures are logged; the
// verdict is still returned to the caller.
func (s *Service) record(a *database.Analysis) string {
	if s.store == nil {
		return ""
	}
	a.UID = uuid.NewString()
	a.CreatedAt = s.now().UTC().Format("2006-01-02 15:04:05")
	if _, err := s.store.InsertAnalysis(a); err != nil {
		log.Printf("Error saving analysis: %v", err)
		return ""
	}
	return a.UID
}

func textDetails(o *Outcome, textLength int) json.RawMessage {
	details := map[string]any{
		"text_length":        textLength,
		"consensus_strength": o.Consensus,
		"ensemble_score":     o.EnsembleScore,
		"cached":             o.Cached,
	}
	if o.IndividualVerdicts != nil {
		details["individual_verdicts"] = o.IndividualVerdicts
		details["individual_confidences"] = o.IndividualConfidences
	}
	if o.AI != nil && o.ML != nil {
		details["ai_ml_agreement"] = o.Agreement
	}
	data, err := json.Marshal(details)
	if err != nil {
		log.Printf("Encoding analysis details: %v", err)
		return nil
	}
	return data
}

func titleFrom(text string) string {
	if len([]rune(text)) <= titleLength {
		return text
	}
	return truncate(text, titleLength) + "..."
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func userOrAnonymous(u string) string {
	if u = strings.TrimSpace(u); u != "" {
		return u
	}
	return AnonymousUser
}
