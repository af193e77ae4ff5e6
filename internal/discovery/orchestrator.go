// Package discovery finds GitHub candidates for a job, ranks them and stores
// the winners in the candidate registry.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/talentsonar/internal/candidate"
	"github.com/spigell/talentsonar/internal/filtering"
	"github.com/spigell/talentsonar/internal/github"
	"github.com/spigell/talentsonar/internal/logger"
	"github.com/spigell/talentsonar/internal/matching"
	"github.com/spigell/talentsonar/internal/scoring"
	"github.com/spigell/talentsonar/internal/skills"
)

// Discovery paths.
const (
	PathPrimary  = "primary"
	PathFallback = "fallback"
)

const (
	// DefaultMaxCandidates is used when Discover is called with a non-positive limit.
	DefaultMaxCandidates = 20
	fallbackSkills       = 3
	defaultMinRepos      = 5
)

var (
	// ErrNoResults is the fallback cause when the primary search found nobody.
	ErrNoResults = errors.New("primary search returned no users")
	// ErrNoCandidates is reported when both paths came back empty.
	ErrNoCandidates = errors.New("no candidates found")
)

// Source is the GitHub API used by the orchestrator.
type Source interface {
	SearchUsers(ctx context.Context, params github.SearchParams) ([]github.UserNode, error)
	SearchUsersREST(ctx context.Context, query string, maxResults int) ([]github.UserSummary, error)
	AnalyzeUser(ctx context.Context, login string) (*github.UserAnalysis, error)
}

// Result is the outcome of one discovery run.
type Result struct {
	Candidates []candidate.Profile
	Path       string
	// Cause explains why the fallback ran or why nothing was found.
	Cause error
	Steps []filtering.Report
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithCache sets the profile cache used by the fallback path.
func WithCache(c *ProfileCache) Option {
	return func(o *Orchestrator) {
		if c != nil {
			o.cache = c
		}
	}
}

// WithAnonymous sets the source retried without credentials when the
// authenticated fallback search finds nobody.
func WithAnonymous(src Source) Option {
	return func(o *Orchestrator) { o.anonymous = src }
}

// WithFilters replaces the post-scoring filter pipeline.
func WithFilters(cfg *filtering.Config, steps []filtering.Filter) Option {
	return func(o *Orchestrator) {
		o.filterConfig = cfg
		o.filters = steps
	}
}

// WithSearchLimits sets the minimum repository and follower counts of the primary search.
func WithSearchLimits(minRepos, minFollowers int) Option {
	return func(o *Orchestrator) {
		o.minRepos = minRepos
		o.minFollowers = minFollowers
	}
}

// WithNow sets the clock used for scoring and account age.
func WithNow(now func() time.Time) Option {
	return func(o *Orchestrator) {
		if now != nil {
			o.now = now
		}
	}
}

// Orchestrator runs the primary search and, when needed, the fallback.
type Orchestrator struct {
	source    Source
	anonymous Source
	registry  *candidate.Registry
	cache     *ProfileCache
	logger    *zap.Logger

	filterConfig *filtering.Config
	filters      []filtering.Filter

	minRepos     int
	minFollowers int
	now          func() time.Time
}

// New creates an orchestrator storing its results in registry.
func New(log *zap.Logger, source Source, registry *candidate.Registry, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		source:   source,
		registry: registry,
		cache:    NewProfileCache(DefaultCacheSize),
		logger:   logger.WithFields(log, zap.String("component", "discovery")),
		filters:  filtering.Default(),
		minRepos: defaultMinRepos,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Discover finds up to limit candidates for job and appends them to the
// registry in a single batch. Ranking is by total score, ties keep arrival
// order, and stored ids are assigned in rank order. The job is sealed once
// candidates have been scored against it.
func (o *Orchestrator) Discover(ctx context.Context, job *candidate.JobSpec, limit int) (*Result, error) {
	if err := job.Validate(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultMaxCandidates
	}

	log := o.logger.With(logger.JobFields(job.ID, job.Title)...)
	languages := skills.Normalize(job.RequiredSkills)
	log.Info("starting discovery", zap.Strings("languages", languages), zap.Int("limit", limit))

	res := &Result{Path: PathPrimary}

	profiles, err := o.primary(ctx, *job, languages, limit)
	switch {
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case err != nil:
		res.Cause = err
	case len(profiles) == 0:
		res.Cause = ErrNoResults
	}

	if res.Cause != nil {
		log.Warn("primary search unusable, using fallback", zap.Error(res.Cause))
		res.Path = PathFallback

		profiles, err = o.fallback(ctx, *job, limit)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			res.Cause = fmt.Errorf("%w; fallback: %v", res.Cause, err)
		}
	}
	job.Seal()

	known := map[string]struct{}{}
	if o.registry != nil {
		known = o.registry.Logins()
	}
	profiles, res.Steps, err = filtering.Run(ctx, o.filterConfig, filtering.Deps{Logger: log, Known: known}, o.filters, profiles)
	if err != nil {
		return nil, fmt.Errorf("filtering candidates: %w", err)
	}

	rank(profiles)
	if len(profiles) > limit {
		profiles = profiles[:limit]
	}

	if len(profiles) == 0 {
		if res.Cause == nil {
			res.Cause = ErrNoCandidates
		}
		log.Warn("no candidates found", zap.String("path", res.Path), zap.Error(res.Cause))
		return res, nil
	}

	if o.registry != nil {
		next := o.registry.NextID()
		for i := range profiles {
			profiles[i].ID = next + i
			profiles[i].Score.CandidateID = profiles[i].ID
		}
		if err := o.registry.Append(profiles...); err != nil {
			return nil, fmt.Errorf("storing candidates: %w", err)
		}
	}

	res.Candidates = profiles
	log.Info("discovery finished",
		zap.String("path", res.Path),
		zap.Int("candidates", len(profiles)),
		zap.Float64("top_score", profiles[0].TotalScore()),
	)
	return res, nil
}

// primary runs the GraphQL search and scores the results. Provisional ids
// follow arrival order.
func (o *Orchestrator) primary(ctx context.Context, job candidate.JobSpec, languages []string, limit int) ([]candidate.Profile, error) {
	users, err := o.source.SearchUsers(ctx, github.SearchParams{
		Languages:    languages,
		MinRepos:     o.minRepos,
		MinFollowers: o.minFollowers,
		TargetCount:  limit,
	})
	if err != nil {
		return nil, err
	}

	now := o.now()
	scorer := scoring.New(scoring.WithNow(o.now))
	profiles := make([]candidate.Profile, 0, len(users))
	for i, u := range users {
		p := fromNode(u, i+1, now)
		score := scorer.Score(p, job)
		p.Score = &score
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// fallback runs the flat REST search, analyzes every distinct user and
// scores them with the match engine.
func (o *Orchestrator) fallback(ctx context.Context, job candidate.JobSpec, limit int) ([]candidate.Profile, error) {
	query := skills.FallbackQuery(job.RequiredSkills, fallbackSkills)
	log := o.logger.With(zap.String("query", query))

	src := o.source
	users, err := src.SearchUsersREST(ctx, query, limit)
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}
	if len(users) == 0 && o.anonymous != nil {
		log.Info("retrying fallback search without credentials", zap.NamedError("previous_error", err))
		src = o.anonymous
		users, err = src.SearchUsersREST(ctx, query, limit)
	}
	if len(users) == 0 {
		return nil, err
	}
	if err != nil {
		log.Warn("fallback search incomplete", zap.Int("users", len(users)), zap.Error(err))
	}

	now := o.now()
	profiles := make([]candidate.Profile, 0, len(users))
	seen := make(map[string]struct{}, len(users))
	for _, u := range users {
		key := strings.ToLower(u.Login)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		analysis, ok := o.cache.Get(u.Login)
		if !ok {
			analysis, err = src.AnalyzeUser(ctx, u.Login)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				log.Warn("skipping user", zap.String("login", u.Login), zap.Error(err))
				continue
			}
			o.cache.Put(u.Login, analysis)
		}

		p := fromAnalysis(analysis, len(profiles)+1, now)
		if p.Login == "" {
			p.Login = u.Login
		}
		p.Score = &candidate.MatchScore{
			CandidateID: p.ID,
			JobID:       job.ID,
			Total:       matching.Match(p, job),
		}
		profiles = append(profiles, p)
	}

	return profiles, nil
}

// rank orders profiles by total score descending, then provisional id ascending.
func rank(profiles []candidate.Profile) {
	sort.SliceStable(profiles, func(i, j int) bool {
		a, b := profiles[i].TotalScore(), profiles[j].TotalScore()
		if a != b {
			return a > b
		}
		return profiles[i].ID < profiles[j].ID
	})
}
