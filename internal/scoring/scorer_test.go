package scoring

import (
	"math"
	"reflect"
	"testing"
	"time"

	"github.com/spigell/talentsonar/internal/candidate"
)

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestScorer() *Scorer {
	return New(WithNow(func() time.Time { return testNow }))
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreEmptyJobHasNoSkillComponent(t *testing.T) {
	t.Parallel()

	p := candidate.Profile{Skills: []string{"go", "python"}, Topics: []string{"cli"}}
	score := newTestScorer().Score(p, candidate.JobSpec{})

	if score.Subscores.Technical != 0 {
		t.Fatalf("expected technical subscore 0, got %v", score.Subscores.Technical)
	}
	if len(score.MatchedSkills) != 0 || len(score.MissingSkills) != 0 {
		t.Fatalf("expected no matched or missing skills, got %v / %v", score.MatchedSkills, score.MissingSkills)
	}
}

func TestScoreFullMatch(t *testing.T) {
	t.Parallel()

	recent := testNow.Add(-10 * 24 * time.Hour)
	p := candidate.Profile{
		ID:                  4,
		DisplayName:         "Ada",
		Location:            "London",
		Skills:              []string{"Python", "Go"},
		Topics:              []string{"machine-learning", "cli"},
		Followers:           500,
		MaxRepoStars:        600,
		RecentActivityCount: 2000,
		MostRecentUpdate:    &recent,
	}
	job := candidate.JobSpec{ID: 9, RequiredSkills: []string{"django"}, Topics: []string{"Machine-Learning"}}

	score := newTestScorer().Score(p, job)

	if !almostEqual(score.Total, 100) {
		t.Fatalf("expected total 100, got %v", score.Total)
	}
	if score.CandidateID != 4 || score.JobID != 9 {
		t.Fatalf("unexpected ids: %d/%d", score.CandidateID, score.JobID)
	}
	if !reflect.DeepEqual(score.MatchedSkills, []string{"python", "machine-learning"}) {
		t.Fatalf("unexpected matched skills: %v", score.MatchedSkills)
	}
	if !reflect.DeepEqual(score.BonusSkills, []string{"go", "cli"}) {
		t.Fatalf("unexpected bonus skills: %v", score.BonusSkills)
	}

	expected := []string{
		"1 language match(es)",
		"1 topic match(es)",
		"2000 contributions last year",
		"Recent activity (≤90 days)",
		"Top repo has 600 stars",
		"500 followers",
	}
	if !reflect.DeepEqual(score.Reasons, expected) {
		t.Fatalf("unexpected reasons: %v", score.Reasons)
	}
}

func TestScorePartial(t *testing.T) {
	t.Parallel()

	old := testNow.Add(-200 * 24 * time.Hour)
	p := candidate.Profile{
		Skills:              []string{"python"},
		DisplayName:         "Grace",
		RecentActivityCount: 999,
		MostRecentUpdate:    &old,
	}
	job := candidate.JobSpec{RequiredSkills: []string{"python", "rust"}}

	score := newTestScorer().Score(p, job)

	// skill 30 + activity 15 + quality 0 + completeness 2.5
	if !almostEqual(score.Total, 47.5) {
		t.Fatalf("expected 47.5, got %v", score.Total)
	}
	if !reflect.DeepEqual(score.MissingSkills, []string{"rust"}) {
		t.Fatalf("unexpected missing skills: %v", score.MissingSkills)
	}
	for _, r := range score.Reasons {
		if r == "Recent activity (≤90 days)" {
			t.Fatalf("recency reason must not appear for stale profiles")
		}
	}
	if len(score.Reasons) != 2 {
		t.Fatalf("expected language and contribution reasons only, got %v", score.Reasons)
	}
}

func TestScoreBoundsOnExtremeInputs(t *testing.T) {
	t.Parallel()

	far := testNow.Add(time.Hour)
	profiles := []candidate.Profile{
		{},
		{Followers: -10, MaxRepoStars: -5, RecentActivityCount: -1},
		{Followers: math.MaxInt32, MaxRepoStars: math.MaxInt32, RecentActivityCount: math.MaxInt32, MostRecentUpdate: &far},
	}
	jobs := []candidate.JobSpec{
		{},
		{RequiredSkills: []string{"go"}, Topics: []string{"k8s"}},
	}

	s := newTestScorer()
	for _, p := range profiles {
		for _, j := range jobs {
			score := s.Score(p, j)
			if score.Total < 0 || score.Total > 100 || math.IsNaN(score.Total) {
				t.Fatalf("total out of bounds: %v for %+v", score.Total, p)
			}
			if score.Reasons == nil {
				t.Fatalf("reasons must be an empty list, not nil")
			}
		}
	}
}

func TestScoreTotalIsWeightedSum(t *testing.T) {
	t.Parallel()

	recent := testNow.Add(-time.Hour)
	p := candidate.Profile{
		Skills:              []string{"go"},
		Location:            "Berlin",
		Followers:           30,
		MaxRepoStars:        12,
		RecentActivityCount: 40,
		MostRecentUpdate:    &recent,
	}
	score := newTestScorer().Score(p, candidate.JobSpec{RequiredSkills: []string{"golang", "rust", "java"}})

	want := candidate.WeightedTotal(score.Subscores, score.Weights)
	if !almostEqual(score.Total, want) {
		t.Fatalf("expected total %v to equal weighted sum %v", score.Total, want)
	}

	raw := 20 + logScale(40)*15 + 10 + logScale(42)*10 + 2.5
	if !almostEqual(score.Total, raw) {
		t.Fatalf("expected total %v to equal component points %v", score.Total, raw)
	}
}

func TestScoreUsesComponentWeights(t *testing.T) {
	t.Parallel()

	p := candidate.Profile{Skills: []string{"python"}, DisplayName: "Octo", RecentActivityCount: 25}
	job := candidate.JobSpec{RequiredSkills: []string{"python"}}
	weighted := job
	weighted.CustomWeights = &candidate.Weights{Technical: 0.2, Experience: 0.4, Activity: 0.4}

	s := newTestScorer()
	plain, custom := s.Score(p, job), s.Score(p, weighted)
	if plain.Total != custom.Total || custom.Weights != Weights {
		t.Fatalf("job weights must not change the score: %v vs %v (%+v)", plain.Total, custom.Total, custom.Weights)
	}
}
