package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/repo-screener/internal/config"
	"github.com/jonathan/repo-screener/internal/pipeline"
	"github.com/jonathan/repo-screener/internal/types"
)

var extractCmd = &cobra.Command{
	Use:   "extract <repo>",
	Short: "Extract and normalize a repository into an artifact bundle",
	Long:  "Fetch repository metadata, commits, pull requests, and issues from the GitHub API and normalize them into a deterministic artifact bundle written as JSON.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

var (
	extractMaxCommits int
	extractSinceDays  int
	extractNoIssues   bool
	extractNoPRs      bool
	extractCandidate  string
	extractOut        string
)

func init() {
	extractCmd.Flags().IntVar(&extractMaxCommits, "max-commits", 0, "Maximum commits to fetch (default 50)")
	extractCmd.Flags().IntVar(&extractSinceDays, "since-days", 0, "Only include commits from the last N days (default 90)")
	extractCmd.Flags().BoolVar(&extractNoIssues, "no-issues", false, "Skip fetching issues")
	extractCmd.Flags().BoolVar(&extractNoPRs, "no-prs", false, "Skip fetching pull requests")
	extractCmd.Flags().StringVar(&extractCandidate, "candidate", "", "Candidate GitHub login (inferred from commits when omitted)")
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", "Output file (stdout when omitted)")

	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg := config.FromEnv()
	if err := cfg.ValidateForExtract(); err != nil {
		return err
	}

	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx := cmd.Context()
	p := pipeline.New(pipeline.Config{
		GeminiAPIKey:  cfg.GeminiAPIKey,
		GeminiModel:   cfg.GeminiModel,
		GitHubBaseURL: cfg.GitHubBaseURL,
		GitHubTimeout: cfg.GitHubTimeout,
	}, log)

	opts := types.ExtractOptions{
		MaxCommits:      extractMaxCommits,
		SinceDays:       extractSinceDays,
		CandidateGithub: extractCandidate,
	}
	if extractNoIssues {
		opts.IncludeIssues = boolFlag(false)
	}
	if extractNoPRs {
		opts.IncludePRs = boolFlag(false)
	}

	bundle, err := p.ExtractAndNormalize(ctx, cfg.GitHubToken, args[0], opts)
	if err != nil {
		return err
	}

	if st := openStore(ctx, log, cfg.DatabaseURL); st != nil {
		defer st.Close()
		runID, err := st.CreateRun(ctx, bundle.RepoURL, "")
		if err != nil {
			log.Warn("failed to record run", zap.Error(err))
		} else if err := st.SaveBundle(ctx, runID, bundle); err != nil {
			log.Warn("failed to persist bundle", zap.Error(err))
		} else {
			_ = st.CompleteRun(ctx, runID, "extracted")
		}
	}

	return writeJSON(extractOut, bundle)
}

func boolFlag(v bool) *bool {
	return &v
}
