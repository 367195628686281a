package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"alfredoptarigan/mock-interview/internal/config"
	"alfredoptarigan/mock-interview/internal/logger"
	"alfredoptarigan/mock-interview/internal/models"
	"alfredoptarigan/mock-interview/internal/services"
	"alfredoptarigan/mock-interview/internal/session"
)

var errExit = errors.New("interview aborted")

type practiceConfig struct {
	Resume    string `mapstructure:"resume"`
	Role      string `mapstructure:"role"`
	Questions int    `mapstructure:"questions"`
	Offline   bool   `mapstructure:"offline"`
	Debug     bool   `mapstructure:"debug"`
	JSON      bool   `mapstructure:"json"`
}

var runCmd = &cobra.Command{
	Use:          "run",
	Short:        "Start a practice interview",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return run(cmd.Context())
	},
}

func init() {
	runCmd.Flags().StringP("resume", "r", "", "path to a PDF or DOCX resume")
	runCmd.Flags().String("role", "", "target role (asked interactively when empty)")
	runCmd.Flags().IntP("questions", "n", 0, "number of questions (0 uses QUESTION_COUNT)")
	runCmd.Flags().Bool("offline", false, "skip the AI provider and use heuristic scoring")

	viper.BindPFlag("resume", runCmd.Flags().Lookup("resume"))
	viper.BindPFlag("role", runCmd.Flags().Lookup("role"))
	viper.BindPFlag("questions", runCmd.Flags().Lookup("questions"))
	viper.BindPFlag("offline", runCmd.Flags().Lookup("offline"))
}

func getConfig() (*practiceConfig, error) {
	var cfg practiceConfig
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	opts, err := getConfig()
	if err != nil {
		return fmt.Errorf("parsing config: %w", err)
	}

	appCfg := config.Load()

	zlog, err := logger.New(opts.JSON, opts.Debug)
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer zlog.Sync()

	catalog := config.DefaultCatalog()
	if appCfg.Interview.CatalogPath != "" {
		if catalog, err = config.LoadCatalog(appCfg.Interview.CatalogPath); err != nil {
			return err
		}
	}

	if opts.Resume == "" {
		if opts.Resume, err = askResumePath(); err != nil {
			return err
		}
	}
	resume, err := os.ReadFile(opts.Resume)
	if err != nil {
		return fmt.Errorf("reading resume: %w", err)
	}

	if opts.Role == "" {
		if opts.Role, err = askRole(catalog); err != nil {
			return err
		}
	}

	interviews := buildService(ctx, appCfg, catalog, opts.Offline, zlog)

	started, err := interviews.StartSession(ctx, services.StartRequest{
		Resume:        resume,
		FileName:      filepath.Base(opts.Resume),
		Role:          opts.Role,
		QuestionCount: opts.Questions,
	})
	if err != nil {
		return err
	}

	fmt.Printf("\n🎯 %s interview, %d questions\n", started.Role, started.TotalQuestions)
	fmt.Printf("   Skills: %s\n", strings.Join(started.Profile.Skills, ", "))
	fmt.Printf("   Experience: %d years, ATS score %d\n", started.Profile.ExperienceYears, started.Profile.ATSScore)

	for {
		view, err := interviews.CurrentQuestion(started.SessionID)
		if err != nil {
			return err
		}
		if view.Completed {
			break
		}

		fmt.Printf("\n❓ [%d/%d] (%s) %s\n", view.QuestionNumber, view.TotalQuestions, view.Question.Dimension, view.Question.Text)

		answer, err := askAnswer()
		if err != nil {
			return err
		}

		result, err := interviews.SubmitAnswer(ctx, started.SessionID, answer)
		if err != nil {
			return err
		}
		printEvaluation(result.Evaluation)
	}

	report, err := interviews.GetReport(ctx, started.SessionID)
	if err != nil {
		return err
	}
	printReport(report)
	return nil
}

// buildService wires the interview service without a database: nothing is
// archived and the session lives only for the duration of the command.
func buildService(ctx context.Context, cfg *config.Config, catalog *config.Catalog, offline bool, zlog *zap.Logger) services.InterviewService {
	var (
		llm         services.LLMClient
		transcriber services.Transcriber
	)
	if !offline {
		var gemini services.GeminiService
		if cfg.AI.GeminiAPIKey != "" {
			g, err := services.NewGeminiService(ctx, cfg.AI.GeminiAPIKey, cfg.AI.GeminiModel, cfg.AI.EmbeddingModel)
			if err != nil {
				zlog.Warn("gemini unavailable", zap.Error(err))
			} else {
				gemini = g
				transcriber = g
			}
		}
		client, err := services.NewLLMClient(cfg.AI, gemini)
		if err != nil {
			zlog.Warn("AI disabled, using heuristic scoring", zap.Error(err))
		} else {
			llm = client
		}
	}

	callOpts := services.CallOptions{
		Timeout: cfg.AI.Timeout,
		Retry: services.RetryPolicy{
			Attempts:     cfg.AI.MaxRetries + 1,
			InitialDelay: cfg.AI.RetryInitialWait,
		},
	}

	providers := []services.JobProvider{services.NewSyntheticJobProvider(catalog)}
	if cfg.Jobs.AdzunaAppID != "" && cfg.Jobs.AdzunaAPIKey != "" {
		providers = append(providers, services.NewAdzunaJobProvider(services.AdzunaConfig{
			BaseURL: cfg.Jobs.AdzunaBaseURL,
			AppID:   cfg.Jobs.AdzunaAppID,
			APIKey:  cfg.Jobs.AdzunaAPIKey,
			Country: cfg.Jobs.AdzunaCountry,
		}, nil))
	}
	jobs := services.NewMultiJobSearcher(services.NewMatchScorer(catalog.MatchWeights), zlog, providers...)

	store := session.NewMemoryStore()

	return services.NewInterviewService(
		store,
		services.NewResumeParser(catalog, cfg.Storage.MaxFileSize),
		services.NewQuestionBank(llm, catalog, callOpts, zlog),
		services.NewAnswerEvaluator(llm, nil, services.NewHeuristicScorer(catalog), callOpts, zlog),
		services.NewReportAssembler(catalog, jobs, cfg.Jobs.SearchTimeout, cfg.Jobs.MatchLimit, zlog),
		transcriber,
		services.Persistence{Archiver: services.NewNopArchiver(store, cfg.Interview.IdleTTL)},
		services.InterviewOptions{
			QuestionCount:     cfg.Interview.QuestionCount,
			TranscribeTimeout: cfg.AI.TranscribeTimeout,
		},
		zlog,
	)
}

func askResumePath() (string, error) {
	prompt := promptui.Prompt{
		Label: "Resume path",
		Validate: func(input string) error {
			if _, err := services.DetectFileType(input); err != nil {
				return err
			}
			if _, err := os.Stat(input); err != nil {
				return errors.New("file not found")
			}
			return nil
		},
	}
	path, err := prompt.Run()
	return path, promptError(err)
}

func askRole(catalog *config.Catalog) (string, error) {
	items := make([]string, 0, len(catalog.Roles))
	for _, role := range catalog.Roles {
		items = append(items, role.Name)
	}

	prompt := promptui.Select{
		Label: "Target role",
		Items: items,
		Size:  10,
	}
	_, role, err := prompt.Run()
	return role, promptError(err)
}

func askAnswer() (string, error) {
	prompt := promptui.Prompt{
		Label: "Your answer",
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("answer cannot be empty")
			}
			return nil
		},
	}
	answer, err := prompt.Run()
	return answer, promptError(err)
}

func promptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) {
		return errExit
	}
	return err
}

func printEvaluation(e models.Evaluation) {
	source := "AI"
	if e.IsFallback() {
		source = "heuristic"
	}
	fmt.Printf("   📊 Score: %d/100 (%s)\n", e.Score, source)
	fmt.Printf("   💬 %s\n", e.Feedback)
	for _, s := range e.Strengths {
		fmt.Printf("   ✅ %s\n", s)
	}
	for _, s := range e.Improvements {
		fmt.Printf("   🔧 %s\n", s)
	}
}

func printReport(r *models.Report) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Printf("📋 Interview Report: %s\n", r.Role)
	fmt.Printf("   Average score: %.2f\n", r.AverageScore)
	fmt.Printf("   Readiness: %s (%s confidence)\n", r.Readiness.Level, r.Readiness.Confidence)
	fmt.Printf("   %s\n", r.Readiness.Summary)
	fmt.Printf("   Timeline: %s\n", r.Readiness.Timeline)
	fmt.Printf("   Recommended domain: %s\n", r.RecommendedDomain)

	fmt.Println("\n📈 Dimension scores:")
	for _, d := range models.Dimensions() {
		if score, ok := r.DimensionScores[d]; ok {
			fmt.Printf("   %-20s %6.2f\n", d, score)
		}
	}

	if len(r.ImprovementAreas) > 0 {
		fmt.Println("\n🔧 Focus areas:")
		for _, area := range r.ImprovementAreas {
			fmt.Printf("   - %s\n", area)
		}
	}

	if len(r.WeakAreas) > 0 {
		fmt.Printf("   Weak areas: %s\n", joinDimensions(r.WeakAreas))
	}
	if len(r.StrongAreas) > 0 {
		fmt.Printf("   Strong areas: %s\n", joinDimensions(r.StrongAreas))
	}

	if len(r.Guidance.ActionPlan) > 0 {
		fmt.Println("\n🗺️  Action plan:")
		for _, step := range r.Guidance.ActionPlan {
			fmt.Printf("   [%s] %s (%s)\n", step.Priority, step.Action, step.Timeline)
		}
	}
	for _, res := range r.Guidance.Resources {
		fmt.Printf("\n📚 Resources for %s:\n", res.Dimension)
		for _, item := range res.Items {
			fmt.Printf("   - %s: %s\n", item.Kind, item.Title)
		}
	}
	if r.Guidance.Roadmap.Timeline != "" {
		fmt.Printf("\n🏁 Roadmap: %s, %s\n", r.Guidance.Roadmap.Readiness, r.Guidance.Roadmap.Timeline)
	}

	if len(r.JobMatches) > 0 {
		fmt.Println("\n💼 Job matches:")
		for _, job := range r.JobMatches {
			fmt.Printf("   [%3d] %s at %s (%s) %s\n", job.MatchScore, job.Title, job.Company, job.Location, job.ApplyURL)
		}
	}
	fmt.Println(strings.Repeat("=", 60))
}

func joinDimensions(ds []models.Dimension) string {
	names := make([]string, len(ds))
	for i, d := range ds {
		names[i] = string(d)
	}
	return strings.Join(names, ", ")
}
