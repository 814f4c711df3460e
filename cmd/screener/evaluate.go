package main

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/repo-screener/internal/config"
	"github.com/jonathan/repo-screener/internal/pipeline"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a candidate's artifact bundle against a job description",
	Long:  "Run the two-stage evaluation over a previously extracted artifact bundle: analyze the artifacts for signals, then score the candidate against the job description.",
	RunE:  runEvaluate,
}

var (
	evaluateBundle string
	evaluateJob    string
	evaluateOut    string
)

func init() {
	evaluateCmd.Flags().StringVarP(&evaluateBundle, "bundle", "b", "", "Path to artifact bundle JSON (required)")
	evaluateCmd.Flags().StringVarP(&evaluateJob, "job", "j", "", "Path to job description JSON (required)")
	evaluateCmd.Flags().StringVarP(&evaluateOut, "out", "o", "", "Output file (stdout when omitted)")

	evaluateCmd.MarkFlagRequired("bundle")
	evaluateCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	cfg := config.FromEnv()
	if err := cfg.ValidateForEvaluate(); err != nil {
		return err
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	bundle, err := loadBundle(evaluateBundle)
	if err != nil {
		return err
	}
	jd, err := loadJobDescription(evaluateJob)
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

	evaluation, err := p.EvaluateCandidate(ctx, bundle, jd)
	if err != nil {
		return err
	}

	if st := openStore(ctx, log, cfg.DatabaseURL); st != nil {
		defer st.Close()
		runID, err := st.CreateRun(ctx, bundle.RepoURL, jd.ID)
		if err != nil {
			log.Warn("failed to record run", zap.Error(err))
		} else {
			if existing, err := st.GetBundle(ctx, bundle.ID); err == nil && existing == nil {
				if err := st.SaveBundle(ctx, runID, bundle); err != nil {
					log.Warn("failed to persist bundle", zap.Error(err))
				}
			}
			if err := st.SaveEvaluation(ctx, runID, evaluation); err != nil {
				log.Warn("failed to persist evaluation", zap.Error(err))
			} else {
				_ = st.CompleteRun(ctx, runID, "evaluated")
			}
		}
	}

	return writeJSON(evaluateOut, evaluation)
}
