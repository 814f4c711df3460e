package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/repo-screener/internal/config"
	"github.com/jonathan/repo-screener/internal/pipeline"
	"github.com/jonathan/repo-screener/internal/types"
)

var screenCmd = &cobra.Command{
	Use:   "screen <repo>",
	Short: "Run the full screening pipeline for a repository",
	Long:  "Extract and normalize the repository, then evaluate the candidate against the job description in a single run. Outputs the bundle and the evaluation together.",
	Args:  cobra.ExactArgs(1),
	RunE:  runScreen,
}

var (
	screenJob        string
	screenMaxCommits int
	screenSinceDays  int
	screenCandidate  string
	screenOut        string
)

func init() {
	screenCmd.Flags().StringVarP(&screenJob, "job", "j", "", "Path to job description JSON (required)")
	screenCmd.Flags().IntVar(&screenMaxCommits, "max-commits", 0, "Maximum commits to fetch (default 50)")
	screenCmd.Flags().IntVar(&screenSinceDays, "since-days", 0, "Only include commits from the last N days (default 90)")
	screenCmd.Flags().StringVar(&screenCandidate, "candidate", "", "Candidate GitHub login (inferred from commits when omitted)")
	screenCmd.Flags().StringVarP(&screenOut, "out", "o", "", "Output file (stdout when omitted)")

	screenCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(screenCmd)
}

func runScreen(cmd *cobra.Command, args []string) error {
	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		return err
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	jd, err := loadJobDescription(screenJob)
	if err != nil {
		return err
	}
	if jd.ID == "" {
		jd.ID = uuid.NewString()
	}

	ctx := cmd.Context()
	p := pipeline.New(pipeline.Config{
		GeminiAPIKey:  cfg.GeminiAPIKey,
		GeminiModel:   cfg.GeminiModel,
		GitHubBaseURL: cfg.GitHubBaseURL,
		GitHubTimeout: cfg.GitHubTimeout,
	}, log)

	opts := types.ExtractOptions{
		MaxCommits:      screenMaxCommits,
		SinceDays:       screenSinceDays,
		CandidateGithub: screenCandidate,
	}

	result, err := p.RunScreeningPipeline(ctx, cfg.GitHubToken, args[0], jd, opts)
	if err != nil {
		return err
	}

	if st := openStore(ctx, log, cfg.DatabaseURL); st != nil {
		defer st.Close()
		runID, err := st.CreateRun(ctx, result.ArtifactBundle.RepoURL, jd.ID)
		if err != nil {
			log.Warn("failed to record run", zap.Error(err))
		} else {
			if err := st.SaveBundle(ctx, runID, result.ArtifactBundle); err != nil {
				log.Warn("failed to persist bundle", zap.Error(err))
			}
			if err := st.SaveEvaluation(ctx, runID, result.Evaluation); err != nil {
				log.Warn("failed to persist evaluation", zap.Error(err))
			} else {
				_ = st.CompleteRun(ctx, runID, "screened")
			}
		}
	}

	return writeJSON(screenOut, result)
}
