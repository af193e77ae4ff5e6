package scoring

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/spigell/talentsonar/internal/candidate"
	"github.com/spigell/talentsonar/internal/skills"
)

// Component maxima. They add up to 100 at a full match.
const (
	SkillPoints        = 60.0
	ActivityPoints     = 15.0
	RecencyPoints      = 10.0
	QualityPoints      = 10.0
	CompletenessPoints = 5.0

	recencyWindow = 90 * 24 * time.Hour

	contributionsReasonThreshold = 100
	starsReasonThreshold         = 50
	followersReasonThreshold     = 20
)

// Weights maps component subscores (each 0-100) back to their share of the total.
var Weights = candidate.ComponentWeights{
	Technical:  SkillPoints / 100,
	Activity:   (ActivityPoints + RecencyPoints + QualityPoints) / 100,
	SoftSkills: CompletenessPoints / 100,
}

// Option configures a Scorer.
type Option func(*Scorer)

// WithNow sets the clock used for the recency bonus.
func WithNow(now func() time.Time) Option {
	return func(s *Scorer) {
		if now != nil {
			s.now = now
		}
	}
}

// Scorer rates GitHub profiles against a job. It performs no I/O.
type Scorer struct {
	now func() time.Time
}

func New(opts ...Option) *Scorer {
	s := &Scorer{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Breakdown holds the raw component points of a score.
type Breakdown struct {
	Skill        float64
	Activity     float64
	Recency      float64
	Quality      float64
	Completeness float64
}

// Score computes the explainable MatchScore of profile for job.
func (s *Scorer) Score(p candidate.Profile, job candidate.JobSpec) candidate.MatchScore {
	jobLangs := skills.Normalize(job.RequiredSkills)
	jobTopics := lowerSet(job.Topics)
	userLangs := lowerSet(p.Skills)
	userTopics := lowerSet(p.Topics)

	langMatched := intersect(jobLangs, userLangs)
	topicMatched := intersect(jobTopics, userTopics)

	var b Breakdown
	if total := len(jobLangs) + len(jobTopics); total > 0 {
		b.Skill = float64(len(langMatched)+len(topicMatched)) / float64(total) * SkillPoints
	}

	b.Activity = logScale(p.RecentActivityCount) * ActivityPoints
	if p.MostRecentUpdate != nil && s.now().Sub(*p.MostRecentUpdate) <= recencyWindow {
		b.Recency = RecencyPoints
	}
	b.Quality = logScale(p.MaxRepoStars+p.Followers) * QualityPoints

	if strings.TrimSpace(p.DisplayName) != "" {
		b.Completeness += CompletenessPoints / 2
	}
	if strings.TrimSpace(p.Location) != "" {
		b.Completeness += CompletenessPoints / 2
	}

	sub := candidate.Subscores{
		Technical:  b.Skill / SkillPoints * 100,
		Activity:   (b.Activity + b.Recency + b.Quality) / (ActivityPoints + RecencyPoints + QualityPoints) * 100,
		SoftSkills: b.Completeness / CompletenessPoints * 100,
	}

	matched := append(append([]string{}, langMatched...), topicMatched...)
	required := append(append([]string{}, jobLangs...), jobTopics...)

	return candidate.MatchScore{
		CandidateID:   p.ID,
		JobID:         job.ID,
		Total:         candidate.WeightedTotal(sub, Weights),
		Subscores:     sub,
		Weights:       Weights,
		MatchedSkills: matched,
		MissingSkills: difference(required, matched),
		BonusSkills:   difference(append(append([]string{}, userLangs...), userTopics...), requiredSet(job, jobLangs, jobTopics)),
		Reasons:       reasons(p, len(langMatched), len(topicMatched), b.Recency > 0),
	}
}

func reasons(p candidate.Profile, langMatches, topicMatches int, recent bool) []string {
	out := []string{}
	if langMatches > 0 {
		out = append(out, fmt.Sprintf("%d language match(es)", langMatches))
	}
	if topicMatches > 0 {
		out = append(out, fmt.Sprintf("%d topic match(es)", topicMatches))
	}
	if p.RecentActivityCount > contributionsReasonThreshold {
		out = append(out, fmt.Sprintf("%d contributions last year", p.RecentActivityCount))
	}
	if recent {
		out = append(out, "Recent activity (≤90 days)")
	}
	if p.MaxRepoStars > starsReasonThreshold {
		out = append(out, fmt.Sprintf("Top repo has %d stars", p.MaxRepoStars))
	}
	if p.Followers > followersReasonThreshold {
		out = append(out, fmt.Sprintf("%d followers", p.Followers))
	}
	return out
}

// logScale maps n onto [0,1] with log(n+1)/log(1000).
func logScale(n int) float64 {
	if n < 0 {
		n = 0
	}
	return math.Min(math.Log(float64(n)+1)/math.Log(1000), 1)
}

// requiredSet is everything the job asks for, raw and normalized.
func requiredSet(job candidate.JobSpec, langs, topics []string) []string {
	out := append([]string{}, langs...)
	out = append(out, topics...)
	return append(out, lowerSet(job.RequiredSkills)...)
}

func lowerSet(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			seen[v] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func intersect(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	out := []string{}
	for _, v := range a {
		if _, ok := set[v]; ok {
			out = append(out, v)
		}
	}
	return out
}

func difference(a, b []string) []string {
	set := make(map[string]struct{}, len(b))
	for _, v := range b {
		set[v] = struct{}{}
	}
	out := []string{}
	seen := make(map[string]struct{})
	for _, v := range a {
		if _, ok := set[v]; ok {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
