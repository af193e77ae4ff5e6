package candidate

import (
	"strings"
	"time"
)

// MaxPortfolio caps the number of repositories kept on a profile.
const MaxPortfolio = 3

// Discovery sources.
const (
	SourcePrimary  = "github_graphql"
	SourceFallback = "github_rest"
)

// Repository is a single portfolio entry.
type Repository struct {
	Name      string     `json:"name"`
	Stars     int        `json:"stars"`
	Language  string     `json:"language,omitempty"`
	Topics    []string   `json:"topics,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// Profile is a discovered candidate.
type Profile struct {
	ID                  int          `json:"id"`
	Login               string       `json:"login"`
	DisplayName         string       `json:"display_name,omitempty"`
	Location            string       `json:"location,omitempty"`
	Skills              []string     `json:"skills"`
	Topics              []string     `json:"topics,omitempty"`
	Followers           int          `json:"followers"`
	MaxRepoStars        int          `json:"max_repo_stars"`
	RecentActivityCount int          `json:"recent_activity_count"`
	YearsExperience     int          `json:"years_experience"`
	MostRecentUpdate    *time.Time   `json:"most_recent_update,omitempty"`
	Portfolio           []Repository `json:"portfolio,omitempty"`
	Source              string       `json:"source"`
	Score               *MatchScore  `json:"score,omitempty"`
}

// ProfileURL returns the public GitHub page of the candidate.
func (p *Profile) ProfileURL() string {
	if p.Login == "" {
		return ""
	}
	return "https://github.com/" + p.Login
}

// Name returns the display name, falling back to the login.
func (p *Profile) Name() string {
	if strings.TrimSpace(p.DisplayName) != "" {
		return p.DisplayName
	}
	return p.Login
}

// TotalScore returns the score total or zero when the profile is unscored.
func (p *Profile) TotalScore() float64 {
	if p.Score == nil {
		return 0
	}
	return p.Score.Total
}

// SetPortfolio stores at most MaxPortfolio repositories.
func (p *Profile) SetPortfolio(repos []Repository) {
	if len(repos) > MaxPortfolio {
		repos = repos[:MaxPortfolio]
	}
	p.Portfolio = append([]Repository(nil), repos...)
}

// Subscores are the per-component values of a MatchScore, each in [0,100].
type Subscores struct {
	Technical  float64 `json:"technical"`
	Experience float64 `json:"experience"`
	Activity   float64 `json:"activity"`
	Education  float64 `json:"education"`
	SoftSkills float64 `json:"soft_skills"`
}

// ComponentWeights are the multipliers applied to Subscores to obtain the total.
type ComponentWeights Subscores

// MatchScore is an explainable candidate-versus-job score.
type MatchScore struct {
	CandidateID   int              `json:"candidate_id"`
	JobID         int              `json:"job_id"`
	Total         float64          `json:"total"`
	Subscores     Subscores        `json:"subscores"`
	Weights       ComponentWeights `json:"weights"`
	MatchedSkills []string         `json:"matched_skills"`
	MissingSkills []string         `json:"missing_skills"`
	BonusSkills   []string         `json:"bonus_skills"`
	Reasons       []string         `json:"reasons"`
}

// WeightedTotal returns the weighted sum of subscores clamped to [0,100].
func WeightedTotal(s Subscores, w ComponentWeights) float64 {
	total := s.Technical*w.Technical +
		s.Experience*w.Experience +
		s.Activity*w.Activity +
		s.Education*w.Education +
		s.SoftSkills*w.SoftSkills
	switch {
	case total < 0:
		return 0
	case total > 100:
		return 100
	}
	return total
}
