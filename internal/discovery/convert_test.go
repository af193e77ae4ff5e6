package discovery

import (
	"testing"
	"time"

	"github.com/spigell/talentsonar/internal/candidate"
	"github.com/spigell/talentsonar/internal/github"
)

func TestFromNode(t *testing.T) {
	t.Parallel()

	u := github.UserNode{Login: "octo", Location: "Oslo", CreatedAt: "2020-06-01T00:00:00Z"}
	u.Followers.TotalCount = 30
	u.ContributionsCollection.TotalCommitContributions = 40
	u.ContributionsCollection.TotalIssueContributions = 2

	for i, lang := range []string{"Go", "go", "Rust", ""} {
		r := github.RepositoryNode{Name: "r" + string(rune('a'+i)), StargazerCount: 10 * (i + 1)}
		r.PrimaryLanguage.Name = lang
		r.UpdatedAt = time.Date(2024, time.Month(i+1), 1, 0, 0, 0, 0, time.UTC).Format(time.RFC3339)
		repos := append(u.Repositories.Nodes, r)
		u.Repositories.Nodes = repos
	}

	p := fromNode(u, 9, time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC))

	if p.ID != 9 || p.Source != candidate.SourcePrimary {
		t.Fatalf("unexpected identity %+v", p)
	}
	if len(p.Skills) != 2 || p.Skills[0] != "go" || p.Skills[1] != "rust" {
		t.Fatalf("unexpected skills %v", p.Skills)
	}
	if p.MaxRepoStars != 40 || p.RecentActivityCount != 42 || p.Followers != 30 {
		t.Fatalf("unexpected counters %+v", p)
	}
	if p.MostRecentUpdate == nil || p.MostRecentUpdate.Month() != time.April {
		t.Fatalf("unexpected most recent update %v", p.MostRecentUpdate)
	}
	if len(p.Portfolio) != candidate.MaxPortfolio {
		t.Fatalf("expected portfolio capped at %d, got %d", candidate.MaxPortfolio, len(p.Portfolio))
	}
	if p.YearsExperience != 5 {
		t.Fatalf("unexpected years %d", p.YearsExperience)
	}
}

func TestFromAnalysis(t *testing.T) {
	t.Parallel()

	latest := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	a := &github.UserAnalysis{
		Profile: github.UserProfile{Login: "octo", Name: "Octo", Followers: 5},
		Languages: []github.LanguageShare{
			{Name: "Python"}, {Name: "Go"}, {Name: "Shell"}, {Name: "C"}, {Name: "HTML"}, {Name: "CSS"},
		},
		Technologies:   []string{"django", "docker", "aws", "react", "vue", "web3"},
		Repositories:   []github.Repository{{Name: "api", Stars: 12, Topics: []string{"REST"}}},
		TotalStars:     77,
		LatestActivity: &latest,
	}

	p := fromAnalysis(a, 2, latest)

	if len(p.Skills) != 10 || p.Skills[0] != "python" || p.Skills[5] != "django" {
		t.Fatalf("unexpected skills %v", p.Skills)
	}
	if p.RecentActivityCount != 77 || p.MaxRepoStars != 12 || p.Source != candidate.SourceFallback {
		t.Fatalf("unexpected profile %+v", p)
	}
	if len(p.Topics) != 1 || p.Topics[0] != "rest" {
		t.Fatalf("unexpected topics %v", p.Topics)
	}
	if p.YearsExperience != 0 {
		t.Fatalf("missing creation date must yield zero years, got %d", p.YearsExperience)
	}
}
