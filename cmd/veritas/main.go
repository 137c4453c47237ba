package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/TobiSchelling/veritas/internal/config"
	"github.com/TobiSchelling/veritas/internal/database"
	"github.com/TobiSchelling/veritas/internal/pipeline"
	"github.com/TobiSchelling/veritas/internal/server"
	"github.com/TobiSchelling/veritas/internal/verdict"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:     "veritas",
	Short:   "Fake news and deepfake detection",
	Long:    "Veritas scores news text and videos with an ensemble of AI services, ML models and frame analysis.",
	Version: version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		} else {
			log.SetFlags(log.LstdFlags)
		}

		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			return nil
		}

		path, err := config.ResolveConfigPath(configPath)
		if err != nil {
			return err
		}
		cfg, err = config.Load(path)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(videoCmd)
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("veritas", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration in ~/.config/veritas/",
	RunE: func(cmd *cobra.Command, args []string) error {
		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
			return nil
		}

		if err := os.MkdirAll(config.ConfigDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
			return fmt.Errorf("writing config: %w", err)
		}

		fmt.Printf("Created config: %s\n", target)
		fmt.Println("Edit it to configure feeds, API keys, and the LLM provider.")
		return nil
	},
}

// --- status command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show analyzer availability and database status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		svc, err := pipeline.New(cmd.Context(), cfg, db)
		if err != nil {
			return err
		}
		defer svc.Close()

		st := svc.Status()
		fmt.Printf("System: %s (default mode %s)\n\n", st.Status, svc.DefaultMode())

		table := newTable([]string{"Family", "Extractor", "Active"})
		for _, fam := range []struct {
			name       string
			extractors map[verdict.Source]bool
		}{
			{"ai", st.AI.Extractors},
			{"ml", st.ML.Extractors},
		} {
			sources := make([]string, 0, len(fam.extractors))
			for s := range fam.extractors {
				sources = append(sources, string(s))
			}
			sort.Strings(sources)
			for _, s := range sources {
				table.Append([]string{fam.name, s, yesNo(fam.extractors[verdict.Source(s)])})
			}
		}
		table.Append([]string{"video", "ffmpeg", yesNo(st.Video)})
		table.Render()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}
		fmt.Printf("\nToday: %s\n", database.Today())
		if v, err := db.SchemaVersion(); err == nil {
			fmt.Printf("Schema version: %d\n", v)
		}
		fmt.Println("Analyses:")
		fmt.Printf("  Total: %d\n", stats.TotalAnalyses)
		fmt.Printf("  Fake: %d\n", stats.FakeCount)
		fmt.Printf("  Real: %d\n", stats.RealCount)
		fmt.Printf("  Inconclusive: %d\n", stats.InconclusiveCount)
		fmt.Printf("  Last 7 days: %d\n", stats.RecentAnalyses)
		fmt.Println("\nUsers:")
		fmt.Printf("  Total: %d\n", stats.Users)
		fmt.Printf("  Active (7 days): %d\n", stats.ActiveUsers)
		fmt.Printf("  Analyses per user: %.1f\n", stats.AvgAnalysesPerUser)
		fmt.Printf("\nFeed scans: %d\n", stats.ScanRuns)
		return nil
	},
}

// --- analyze command ---

var (
	analyzeURL  string
	analyzeMode string
	userName    string
	jsonOutput  bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [text]",
	Short: "Analyze text (or a URL) for fake news",
	Long:  "Analyze the given text, the article at --url, or text read from stdin when neither is given.",
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if text == "" && analyzeURL == "" {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			text = string(data)
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		svc, err := pipeline.New(cmd.Context(), cfg, db)
		if err != nil {
			return err
		}
		defer svc.Close()

		out, err := svc.AnalyzeText(cmd.Context(), pipeline.TextRequest{
			Text:     text,
			URL:      analyzeURL,
			Mode:     analyzeMode,
			Username: userName,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(out)
		}
		fmt.Printf("Verdict: %s\n", strings.ToUpper(string(out.Label)))
		fmt.Printf("Confidence: %.1f%%\n", out.Confidence*100)
		if out.RiskLevel != "" {
			fmt.Printf("Risk level: %s\n", out.RiskLevel)
		}
		if out.Consensus != "" {
			fmt.Printf("Consensus: %s\n", out.Consensus)
		}
		fmt.Printf("Mode: %s, language: %s, %.2fs", out.Mode, out.Language, out.ProcessingTime)
		if out.Cached {
			fmt.Print(" (cached)")
		}
		fmt.Println()
		if out.Explanation != "" {
			fmt.Printf("\n%s\n", out.Explanation)
		}
		if out.AnalysisID != "" {
			fmt.Printf("\nSaved as %s\n", out.AnalysisID)
		}
		return nil
	},
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeURL, "url", "u", "", "Analyze the article at this URL")
	analyzeCmd.Flags().StringVarP(&analyzeMode, "mode", "m", "", "Analysis mode: hybrid, ai_only, ml_only, traditional")
	analyzeCmd.Flags().StringVar(&userName, "user", "", "Record the analysis under this user")
	analyzeCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full verdict as JSON")
}

// --- video command ---

var videoCmd = &cobra.Command{
	Use:   "video [file]",
	Short: "Analyze a video file for deepfake artifacts",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := args[0]
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("video file not found: %s", path)
		}

		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		svc, err := pipeline.New(cmd.Context(), cfg, db)
		if err != nil {
			return err
		}
		defer svc.Close()

		out, err := svc.AnalyzeVideo(cmd.Context(), pipeline.VideoRequest{
			Path:     path,
			Filename: filepath.Base(path),
			Username: userName,
		})
		if err != nil {
			return err
		}

		if jsonOutput {
			return printJSON(out)
		}
		v := out.Verdict
		fmt.Printf("Verdict: %s\n", strings.ToUpper(string(v.Label)))
		fmt.Printf("Confidence: %.1f%%\n", v.Confidence*100)
		fmt.Printf("Mode: %s, %.2fs\n", v.Mode, v.ProcessingTime)
		if m := out.Metadata; m != nil {
			fmt.Printf("Video: %s %s (%s), %.1fs at %s fps\n", m.Resolution, m.Codec, m.Format, m.Duration, m.FPS)
		}
		if v.Explanation != "" {
			fmt.Printf("\n%s\n", v.Explanation)
		}
		if len(out.Recommendations) > 0 {
			fmt.Println("\nRecommendations:")
			for _, r := range out.Recommendations {
				fmt.Printf("  - %s\n", r)
			}
		}
		return nil
	},
}

func init() {
	videoCmd.Flags().StringVar(&userName, "user", "", "Record the analysis under this user")
	videoCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the full report as JSON")
}

// --- scan command ---

var (
	scanDays int
	scanMode string
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Collect articles from configured feeds and analyze them: collect -> analyze -> summarize",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		svc, err := pipeline.New(cmd.Context(), cfg, db)
		if err != nil {
			return err
		}
		defer svc.Close()

		days := scanDays
		if days <= 0 {
			days = svc.ScanDays()
		}
		fmt.Printf("Scanning %d day(s) of articles.\n", days)

		result := svc.Scan(cmd.Context(), days, scanMode)
		for i, step := range result.Steps {
			fmt.Printf("\nStep %d/3: %s\n", i+1, step.Name)
			if step.Err != nil {
				fmt.Printf("  Error: %v\n", step.Err)
			} else {
				fmt.Printf("  %s\n", step.Summary)
			}
		}

		if len(result.Stats.LanguageDistribution) > 0 {
			fmt.Println("\nLanguages:")
			printCounts(result.Stats.LanguageDistribution)
		}
		fmt.Printf("\nScan of %s complete! Run 'veritas serve' to browse the results.\n", database.FormatPeriodDisplay(result.PeriodID))
		return nil
	},
}

func init() {
	scanCmd.Flags().IntVar(&scanDays, "days", 0, "Override lookback window (days)")
	scanCmd.Flags().StringVarP(&scanMode, "mode", "m", "", "Analysis mode for the scanned articles")
}

// --- stats command ---

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show analysis statistics for a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetUserStats(userOrAnonymous())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(stats)
		}

		table := newTable([]string{"Metric", "Value"})
		table.Append([]string{"Total", strconv.Itoa(stats.Total)})
		table.Append([]string{"Fake", strconv.Itoa(stats.Fake)})
		table.Append([]string{"Real", strconv.Itoa(stats.Real)})
		table.Append([]string{"Inconclusive", strconv.Itoa(stats.Inconclusive)})
		table.Append([]string{"Fake %", fmt.Sprintf("%.1f", stats.FakePercentage)})
		table.Append([]string{"Average confidence", fmt.Sprintf("%.2f", stats.AverageConfidence)})
		table.Append([]string{"Last 7 days", strconv.Itoa(stats.RecentAnalyses)})
		table.Render()

		if len(stats.LanguageDistribution) > 0 {
			fmt.Println("\nLanguages:")
			printCounts(stats.LanguageDistribution)
		}
		if len(stats.ModeDistribution) > 0 {
			fmt.Println("\nModes:")
			printCounts(stats.ModeDistribution)
		}
		fmt.Println("\nContent types:")
		printCounts(stats.AnalysisTypes)
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&userName, "user", "", "User to report on")
	statsCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the statistics as JSON")
}

// --- history command ---

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past analyses, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		analyses, err := db.GetUserHistory(userOrAnonymous(), historyLimit)
		if err != nil {
			return err
		}
		if len(analyses) == 0 {
			fmt.Println("No analyses yet. Try: veritas analyze \"some text\"")
			return nil
		}

		table := newTable([]string{"Date", "Type", "Mode", "Verdict", "Conf.", "Lang", "Title"})
		for _, a := range analyses {
			title := ""
			if a.Title != nil {
				title = *a.Title
			}
			if len(title) > 60 {
				title = title[:60] + "..."
			}
			table.Append([]string{
				a.CreatedAt, a.ContentType, a.Mode, a.Verdict,
				fmt.Sprintf("%.2f", a.Confidence), a.Language, title,
			})
		}
		table.Render()
		return nil
	},
}

func init() {
	historyCmd.Flags().StringVar(&userName, "user", "", "User whose history to list")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of analyses (0 for all)")
}

// --- serve command ---

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the API and history web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		svc, err := pipeline.New(context.Background(), cfg, db)
		if err != nil {
			return err
		}
		defer svc.Close()

		port := cfg.Server.Port
		if cmd.Flags().Changed("port") {
			port = servePort
		}
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(svc, db, cfg.Video.MaxUploadMB, port)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 8000, "Port to run server on")
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "veritas.db")
	return database.Open(dbPath)
}

func newTable(header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}

// printCounts prints a distribution sorted by count descending.
func printCounts(m map[string]int) {
	type kv struct {
		key string
		val int
	}
	var sorted []kv
	for k, v := range m {
		sorted = append(sorted, kv{k, v})
	}
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].val != sorted[j].val {
			return sorted[i].val > sorted[j].val
		}
		return sorted[i].key < sorted[j].key
	})
	for _, s := range sorted {
		fmt.Printf("  %s: %d\n", s.key, s.val)
	}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func userOrAnonymous() string {
	if u := strings.TrimSpace(userName); u != "" {
		return u
	}
	return pipeline.AnonymousUser
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
