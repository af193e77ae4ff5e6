package discovery

import (
	"strings"
	"time"

	"github.com/spigell/talentsonar/internal/candidate"
	"github.com/spigell/talentsonar/internal/github"
)

const (
	fallbackLanguages    = 5
	fallbackTechnologies = 5
)

// fromNode converts a GraphQL search result into a profile.
func fromNode(node github.UserNode, id int, now time.Time) candidate.Profile {
	p := candidate.Profile{
		ID:                  id,
		Login:               node.Login,
		DisplayName:         node.Name,
		Location:            node.Location,
		Followers:           node.Followers.TotalCount,
		RecentActivityCount: node.Contributions(),
		YearsExperience:     accountYears(node.CreatedAt, now),
		Source:              candidate.SourcePrimary,
	}

	var langs, topics []string
	repos := make([]candidate.Repository, 0, len(node.Repositories.Nodes))
	for _, r := range node.Repositories.Nodes {
		if r.StargazerCount > p.MaxRepoStars {
			p.MaxRepoStars = r.StargazerCount
		}

		repo := candidate.Repository{
			Name:     r.Name,
			Stars:    r.StargazerCount,
			Language: r.PrimaryLanguage.Name,
			Topics:   r.Topics(),
		}
		if t, ok := github.ParseTime(r.UpdatedAt); ok {
			repo.UpdatedAt = &t
			if p.MostRecentUpdate == nil || t.After(*p.MostRecentUpdate) {
				latest := t
				p.MostRecentUpdate = &latest
			}
		}
		repos = append(repos, repo)

		if r.PrimaryLanguage.Name != "" {
			langs = append(langs, r.PrimaryLanguage.Name)
		}
		topics = append(topics, repo.Topics...)
	}

	p.Skills = lowerUnique(langs)
	p.Topics = lowerUnique(topics)
	p.SetPortfolio(repos)
	return p
}

// fromAnalysis converts a REST user analysis into a profile. Total stars
// stand in for recent activity on this path.
func fromAnalysis(a *github.UserAnalysis, id int, now time.Time) candidate.Profile {
	p := candidate.Profile{
		ID:                  id,
		Login:               a.Profile.Login,
		DisplayName:         a.Profile.Name,
		Location:            a.Profile.Location,
		Followers:           a.Profile.Followers,
		RecentActivityCount: a.TotalStars,
		YearsExperience:     accountYears(a.Profile.CreatedAt, now),
		Source:              candidate.SourceFallback,
	}
	if a.LatestActivity != nil {
		latest := *a.LatestActivity
		p.MostRecentUpdate = &latest
	}

	techs := a.Technologies
	if len(techs) > fallbackTechnologies {
		techs = techs[:fallbackTechnologies]
	}
	p.Skills = lowerUnique(append(a.LanguageNames(fallbackLanguages), techs...))

	repos := make([]candidate.Repository, 0, len(a.Repositories))
	var topics []string
	for _, r := range a.Repositories {
		if r.Stars > p.MaxRepoStars {
			p.MaxRepoStars = r.Stars
		}
		repo := candidate.Repository{
			Name:     r.Name,
			Stars:    r.Stars,
			Language: r.Language,
			Topics:   r.Topics,
		}
		if t, ok := github.ParseTime(r.UpdatedAt); ok {
			repo.UpdatedAt = &t
		}
		repos = append(repos, repo)
		topics = append(topics, r.Topics...)
	}
	p.Topics = lowerUnique(topics)
	p.SetPortfolio(repos)
	return p
}

func accountYears(createdAt string, now time.Time) int {
	created, ok := github.ParseTime(createdAt)
	if !ok || created.After(now) {
		return 0
	}
	return int(now.Sub(created).Hours() / 24 / 365)
}

func lowerUnique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v == "" {
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
