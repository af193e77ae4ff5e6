package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/talentsonar/internal/utils"
)

const (
	searchUsersPath = "/search/users"
	maxPerPage      = 100
	// MaxAnalyzedRepos caps the repositories read by AnalyzeUser.
	MaxAnalyzedRepos = 50
	keptRepositories = 10
	languagesDelay   = 100 * time.Millisecond
)

var technologyKeywords = []string{
	"react", "vue", "angular", "node", "django", "flask", "fastapi",
	"docker", "kubernetes", "aws", "azure", "gcp", "tensorflow",
	"pytorch", "machine learning", "ai", "blockchain", "web3",
}

// UserSummary is an entry of the flat REST user search.
type UserSummary struct {
	Login      string  `json:"login"`
	ProfileURL string  `json:"html_url"`
	AvatarURL  string  `json:"avatar_url"`
	Type       string  `json:"type"`
	Score      float64 `json:"score"`
}

// UserProfile is the REST /users/{login} payload.
type UserProfile struct {
	Login       string `json:"login"`
	Name        string `json:"name"`
	Bio         string `json:"bio"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Blog        string `json:"blog"`
	PublicRepos int    `json:"public_repos"`
	Followers   int    `json:"followers"`
	Following   int    `json:"following"`
	Hireable    bool   `json:"hireable"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
	ProfileURL  string `json:"html_url"`
}

// Repository is a REST repository payload.
type Repository struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Language     string   `json:"language"`
	LanguagesURL string   `json:"languages_url"`
	Stars        int      `json:"stargazers_count"`
	Forks        int      `json:"forks_count"`
	Topics       []string `json:"topics"`
	Fork         bool     `json:"fork"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
	PushedAt     string   `json:"pushed_at"`
	URL          string   `json:"html_url"`
}

// LanguageShare is a language's share of a user's code.
type LanguageShare struct {
	Name       string
	Bytes      int
	Percentage float64
}

// UserAnalysis is the result of AnalyzeUser.
type UserAnalysis struct {
	Profile        UserProfile
	Repositories   []Repository
	Languages      []LanguageShare
	Technologies   []string
	TotalStars     int
	TotalForks     int
	LatestActivity *time.Time
}

// LanguageNames returns the first n language names by share.
func (a *UserAnalysis) LanguageNames(n int) []string {
	out := make([]string, 0, n)
	for i, l := range a.Languages {
		if i >= n {
			break
		}
		out = append(out, l.Name)
	}
	return out
}

type searchUsersResponse struct {
	TotalCount int   `json:"total_count"`
	Items      []any `json:"items"`
}

// SearchUsersREST runs a flat page-numbered user search. It stops on an
// empty page, maxResults, or a nearly exhausted rate limit. Failed pages end
// the search and the collected users are returned with the error.
func (c *Client) SearchUsersREST(ctx context.Context, query string, maxResults int) ([]UserSummary, error) {
	if maxResults <= 0 {
		return nil, nil
	}

	log := c.logger.With(zap.String("query", query))
	log.Info("searching users")

	perPage := min(maxPerPage, maxResults)
	users := make([]UserSummary, 0, maxResults)

	for page := 1; len(users) < maxResults; page++ {
		q := url.Values{}
		q.Set("q", query)
		q.Set("per_page", strconv.Itoa(perPage))
		q.Set("page", strconv.Itoa(page))

		var resp searchUsersResponse
		if err := c.getJSON(ctx, c.APIURL+searchUsersPath, q, &resp); err != nil {
			return users, err
		}
		if len(resp.Items) == 0 {
			break
		}

		var items []UserSummary
		if err := decode(resp.Items, &items); err != nil {
			return users, &TransientSearchError{Query: query, StatusCode: 200, Err: fmt.Errorf("decoding search items: %w", err)}
		}

		for _, item := range items {
			if len(users) >= maxResults {
				break
			}
			if item.Login == "" {
				continue
			}
			users = append(users, item)
		}

		if c.lowOnQuota() {
			log.Warn("approaching rate limit, stopping user search")
			break
		}
	}

	log.Info("found users", zap.Int("count", len(users)))
	return users, nil
}

// GetUser fetches a REST user profile.
func (c *Client) GetUser(ctx context.Context, login string) (*UserProfile, error) {
	var profile UserProfile
	if err := c.getJSON(ctx, c.APIURL+"/users/"+url.PathEscape(login), nil, &profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// GetRepositories fetches up to maxRepos repositories, most recently updated first.
func (c *Client) GetRepositories(ctx context.Context, login string, maxRepos int) ([]Repository, error) {
	perPage := min(maxPerPage, maxRepos)
	repos := make([]Repository, 0, maxRepos)

	for page := 1; len(repos) < maxRepos; page++ {
		q := url.Values{}
		q.Set("per_page", strconv.Itoa(perPage))
		q.Set("page", strconv.Itoa(page))
		q.Set("sort", "updated")
		q.Set("direction", "desc")

		var batch []Repository
		if err := c.getJSON(ctx, c.APIURL+"/users/"+url.PathEscape(login)+"/repos", q, &batch); err != nil {
			return repos, err
		}
		if len(batch) == 0 {
			break
		}

		for _, r := range batch {
			if len(repos) >= maxRepos {
				break
			}
			repos = append(repos, r)
		}

		if len(batch) < perPage || c.lowOnQuota() {
			break
		}
	}

	return repos, nil
}

// AnalyzeUser builds a skill analysis from a user's profile and repositories.
// Language byte counts are read per non-fork repository.
func (c *Client) AnalyzeUser(ctx context.Context, login string) (*UserAnalysis, error) {
	log := c.logger.With(zap.String("login", login))
	log.Debug("analyzing user")

	profile, err := c.GetUser(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("fetching profile of %s: %w", login, err)
	}

	repos, err := c.GetRepositories(ctx, login, MaxAnalyzedRepos)
	if err != nil {
		var authErr *AuthError
		if errors.As(err, &authErr) || ctx.Err() != nil {
			return nil, fmt.Errorf("fetching repositories of %s: %w", login, err)
		}
		log.Warn("repository listing incomplete", zap.Int("repositories", len(repos)), zap.Error(err))
	}

	bytesByLang := make(map[string]int)
	total := 0
	for i, r := range repos {
		if r.Fork || r.LanguagesURL == "" {
			continue
		}
		if c.lowOnQuota() {
			log.Warn("approaching rate limit, skipping remaining language breakdowns")
			break
		}
		if i > 0 {
			if err := utils.WaitFor(ctx, languagesDelay); err != nil {
				return nil, err
			}
		}

		var langs map[string]int
		if err := c.getJSON(ctx, r.LanguagesURL, nil, &langs); err != nil {
			log.Debug("skipping language breakdown", zap.String("repository", r.Name), zap.Error(err))
			continue
		}
		for name, n := range langs {
			bytesByLang[name] += n
			total += n
		}
	}

	analysis := &UserAnalysis{
		Profile:      *profile,
		Languages:    languageShares(bytesByLang, total),
		Technologies: technologies(repos),
	}

	for _, r := range repos {
		analysis.TotalStars += r.Stars
		analysis.TotalForks += r.Forks
		if t, ok := parseTime(r.PushedAt); ok && (analysis.LatestActivity == nil || t.After(*analysis.LatestActivity)) {
			analysis.LatestActivity = &t
		}
	}

	if len(repos) > keptRepositories {
		repos = repos[:keptRepositories]
	}
	analysis.Repositories = repos

	return analysis, nil
}

func languageShares(bytesByLang map[string]int, total int) []LanguageShare {
	out := make([]LanguageShare, 0, len(bytesByLang))
	for name, n := range bytesByLang {
		share := LanguageShare{Name: name, Bytes: n}
		if total > 0 {
			share.Percentage = float64(int(float64(n)/float64(total)*10000+0.5)) / 100
		}
		out = append(out, share)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Bytes != out[j].Bytes {
			return out[i].Bytes > out[j].Bytes
		}
		return out[i].Name < out[j].Name
	})
	return out
}

func technologies(repos []Repository) []string {
	set := make(map[string]struct{})
	for _, r := range repos {
		for _, t := range r.Topics {
			set[t] = struct{}{}
		}
		desc := strings.ToLower(r.Description)
		if desc == "" {
			continue
		}
		for _, kw := range technologyKeywords {
			if containsKeyword(desc, kw) {
				set[kw] = struct{}{}
			}
		}
	}

	out := make([]string, 0, len(set))
	for t := range set {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// containsKeyword matches short keywords as whole words only.
func containsKeyword(text, kw string) bool {
	if len(kw) > 2 {
		return strings.Contains(text, kw)
	}
	for _, w := range strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	}) {
		if w == kw {
			return true
		}
	}
	return false
}

// ParseTime parses GitHub RFC 3339 timestamps.
func ParseTime(s string) (time.Time, bool) {
	return parseTime(s)
}

func parseTime(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
