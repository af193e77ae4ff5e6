package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/talentsonar/internal/discovery"
	"github.com/spigell/talentsonar/internal/filtering"
	"github.com/spigell/talentsonar/internal/github"
	"github.com/spigell/talentsonar/internal/secrets"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Search GitHub for candidates matching a stored job",
	Run: func(cmd *cobra.Command, _ []string) {
		discover(cmd)
	},
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().Int("job", 0, "id of the stored job to search for")
	discoverCmd.Flags().IntP("max", "m", 0, "maximum number of candidates to store. Default is discovery.max-candidates.")
	discoverCmd.Flags().BoolP("include-known", "k", false, "do not skip candidates that are already stored")
	discoverCmd.Flags().StringP("exclude-file", "e", "", "JSON file with logins to exclude. Default is unset.")
	_ = discoverCmd.MarkFlagRequired("job")

	viper.BindPFlag("discovery.exclude-file", discoverCmd.Flags().Lookup("exclude-file"))
}

func discover(cmd *cobra.Command) {
	ctx := context.Background()
	log, config := setup()

	log.Info("starting the talentsonar discovery", zap.String("version", version))

	jobID, _ := cmd.Flags().GetInt("job")
	job, err := loadJob(config, jobID)
	if err != nil {
		log.Fatal("loading job", zap.Error(err))
	}

	registry, err := openRegistry(config)
	if err != nil {
		log.Fatal("opening candidate registry", zap.Error(err))
	}

	client := newGitHubClient(config.GitHub, log)

	steps := filtering.Default()
	if include, _ := cmd.Flags().GetBool("include-known"); include {
		filtering.DisableByName(steps, "known_candidates", "include-known flag is set")
	}
	for _, st := range filtering.Describe(steps) {
		log.Debug("filter", zap.String("name", st.Name), zap.Bool("enabled", st.Enabled), zap.String("reason", st.Reason))
	}

	cache := discovery.NewProfileCache(config.Discovery.CacheSize)
	orchestrator := discovery.New(log, client, registry,
		discovery.WithAnonymous(client.Anonymous()),
		discovery.WithCache(cache),
		discovery.WithSearchLimits(config.GitHub.MinRepos, config.GitHub.MinFollowers),
		discovery.WithFilters(&filtering.Config{
			MinScore:    config.Discovery.MinScore,
			ExcludeFile: config.Discovery.ExcludeFile,
		}, steps),
	)

	limit, _ := cmd.Flags().GetInt("max")
	if limit <= 0 {
		limit = config.Discovery.MaxCandidates
	}

	res, err := orchestrator.Discover(ctx, job, limit)
	if err != nil {
		log.Fatal("discovering candidates", zap.Error(err))
	}

	// Candidates are now scored against the job; keep it sealed on disk.
	if job.Sealed() {
		if err := saveJob(config, job); err != nil {
			log.Fatal("saving sealed job", zap.Error(err))
		}
	}

	var authErr *github.AuthError
	if errors.As(res.Cause, &authErr) {
		log.Warn("github rejected the credentials for the primary search",
			zap.Int("status", authErr.StatusCode),
			zap.String("hint", "set github.token-file, GITHUB_TOKEN_FILE or GITHUB_TOKEN"),
		)
	}

	for _, c := range res.Candidates {
		log.Info("candidate",
			zap.Int("id", c.ID),
			zap.String("login", c.Login),
			zap.String("name", c.Name()),
			zap.Float64("score", c.TotalScore()),
			zap.Strings("skills", c.Skills),
			zap.String("profile", c.ProfileURL()),
		)
	}

	stats := cache.Stats()
	rl := client.RateLimit()
	log.Info("discovery summary",
		zap.String("path", res.Path),
		zap.NamedError("cause", res.Cause),
		zap.Int("stored", len(res.Candidates)),
		zap.Int("registry_size", registry.Len()),
		zap.Any("filters", res.Steps),
		zap.Int("cache_hits", stats.Hits),
		zap.Int("cache_misses", stats.Misses),
		zap.Bool("rate_limit_known", rl.Known),
		zap.Int("rate_limit_remaining", rl.Remaining),
	)
}

// newGitHubClient builds the client. A missing token is not fatal: the
// GraphQL search then fails with an auth error and the REST fallback runs.
func newGitHubClient(cfg *GitHubConfig, log *zap.Logger) *github.Client {
	token, err := secrets.Load(secrets.Source{
		Name: "github token",
		File: cfg.TokenFile,
		Env:  "GITHUB_TOKEN",
	})
	if err != nil {
		log.Warn("continuing without github token", zap.Error(err))
	}

	client := github.New(log, token)
	if cfg.APIURL != "" {
		client.APIURL = cfg.APIURL
	}
	if cfg.GraphQLURL != "" {
		client.GraphQLURL = cfg.GraphQLURL
	}
	if cfg.UserAgent != "" {
		client.UserAgent = cfg.UserAgent
	}
	return client
}
