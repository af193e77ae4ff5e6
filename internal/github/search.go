package github

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

const (
	minPageSize      = 5
	maxPageSize      = 20
	maxPagesPerToken = 3
	topRepositories  = 3
	topicsPerRepo    = 5

	// DefaultTargetCount is used when SearchParams.TargetCount is not set.
	DefaultTargetCount = 20
)

const searchQueryTemplate = `query($searchQuery: String!, $cursor: String) {
  search(query: $searchQuery, type: USER, first: %d, after: $cursor) {
    pageInfo { hasNextPage endCursor }
    nodes {
      ... on User {
        login
        name
        location
        createdAt
        followers { totalCount }
        repositories(first: %d, orderBy: {field: STARGAZERS, direction: DESC}, isFork: false) {
          nodes {
            name
            primaryLanguage { name }
            stargazerCount
            updatedAt
            repositoryTopics(first: %d) { nodes { topic { name } } }
          }
        }
        contributionsCollection {
          totalCommitContributions
          totalPullRequestContributions
          totalIssueContributions
        }
      }
    }
  }
}`

// SearchParams scopes a GraphQL user search.
type SearchParams struct {
	Languages    []string
	MinRepos     int
	MinFollowers int
	TargetCount  int
}

// UserNode is a GraphQL search result.
type UserNode struct {
	Login     string `json:"login"`
	Name      string `json:"name"`
	Location  string `json:"location"`
	CreatedAt string `json:"createdAt"`
	Followers struct {
		TotalCount int `json:"totalCount"`
	} `json:"followers"`
	Repositories struct {
		Nodes []RepositoryNode `json:"nodes"`
	} `json:"repositories"`
	ContributionsCollection struct {
		TotalCommitContributions      int `json:"totalCommitContributions"`
		TotalPullRequestContributions int `json:"totalPullRequestContributions"`
		TotalIssueContributions       int `json:"totalIssueContributions"`
	} `json:"contributionsCollection"`
}

// RepositoryNode is one of a user's top repositories.
type RepositoryNode struct {
	Name            string `json:"name"`
	StargazerCount  int    `json:"stargazerCount"`
	UpdatedAt       string `json:"updatedAt"`
	PrimaryLanguage struct {
		Name string `json:"name"`
	} `json:"primaryLanguage"`
	RepositoryTopics struct {
		Nodes []struct {
			Topic struct {
				Name string `json:"name"`
			} `json:"topic"`
		} `json:"nodes"`
	} `json:"repositoryTopics"`
}

// Contributions sums commit, pull request and issue contributions.
func (u *UserNode) Contributions() int {
	c := u.ContributionsCollection
	return c.TotalCommitContributions + c.TotalPullRequestContributions + c.TotalIssueContributions
}

// Topics returns the topic names of a repository.
func (r *RepositoryNode) Topics() []string {
	out := make([]string, 0, len(r.RepositoryTopics.Nodes))
	for _, n := range r.RepositoryTopics.Nodes {
		if n.Topic.Name != "" {
			out = append(out, n.Topic.Name)
		}
	}
	return out
}

type graphQLResponse struct {
	Data struct {
		Search map[string]any `json:"search"`
	} `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

type searchPage struct {
	PageInfo struct {
		HasNextPage bool   `json:"hasNextPage"`
		EndCursor   string `json:"endCursor"`
	} `json:"pageInfo"`
	Nodes []UserNode `json:"nodes"`
}

// PageSize returns the GraphQL page size for a target count.
func PageSize(target int) int {
	return max(minPageSize, min(maxPageSize, target))
}

// MaxPages returns the page cap per language for a target count.
func MaxPages(target int) int {
	size := PageSize(target)
	return max(1, min(maxPagesPerToken, (target+size-1)/size))
}

// BuildQuery returns the GitHub search string for one language ("" for none).
func BuildQuery(language string, minRepos, minFollowers int) string {
	parts := []string{"type:user", "repos:>=" + strconv.Itoa(minRepos)}
	if minFollowers > 0 {
		parts = append(parts, "followers:>="+strconv.Itoa(minFollowers))
	}
	if language != "" {
		parts = append(parts, "language:"+language)
	}
	return strings.Join(parts, " ")
}

// SearchUsers runs the GraphQL user search for each language in turn and
// returns users deduplicated by login in arrival order. It stops once
// TargetCount users are collected. An *AuthError aborts the whole search;
// other failed pages are logged and skipped.
func (c *Client) SearchUsers(ctx context.Context, params SearchParams) ([]UserNode, error) {
	target := params.TargetCount
	if target <= 0 {
		target = DefaultTargetCount
	}

	pageSize := PageSize(target)
	maxPages := MaxPages(target)
	document := fmt.Sprintf(searchQueryTemplate, pageSize, topRepositories, topicsPerRepo)

	languages := params.Languages
	if len(languages) == 0 {
		languages = []string{""}
	}

	seen := make(map[string]struct{})
	users := make([]UserNode, 0, target)

	for _, lang := range languages {
		query := BuildQuery(lang, params.MinRepos, params.MinFollowers)
		log := c.logger.With(zap.String("query", query))

		var cursor *string
		hasNext := true
		for pages := 0; hasNext && pages < maxPages; pages++ {
			if err := ctx.Err(); err != nil {
				return users, err
			}

			page, err := c.searchPage(ctx, document, query, cursor)
			if err != nil {
				var authErr *AuthError
				switch {
				case errors.As(err, &authErr):
					return nil, err
				case ctx.Err() != nil:
					return users, ctx.Err()
				}
				log.Warn("skipping failed search page", zap.Int("page", pages+1), zap.Error(err))
				continue
			}
			if page == nil {
				break
			}

			for _, node := range page.Nodes {
				key := strings.ToLower(node.Login)
				if key == "" {
					continue
				}
				if _, ok := seen[key]; ok {
					continue
				}
				seen[key] = struct{}{}
				users = append(users, node)
			}

			log.Debug("got search page",
				zap.Int("page", pages+1),
				zap.Int("nodes", len(page.Nodes)),
				zap.Int("collected", len(users)),
			)

			if len(users) >= target {
				return users, nil
			}

			hasNext = page.PageInfo.HasNextPage
			end := page.PageInfo.EndCursor
			cursor = &end
		}
	}

	return users, nil
}

// searchPage fetches one page. A nil page means the response carried no search data.
func (c *Client) searchPage(ctx context.Context, document, query string, cursor *string) (*searchPage, error) {
	payload := map[string]any{
		"query": document,
		"variables": map[string]any{
			"searchQuery": query,
			"cursor":      cursor,
		},
	}

	var resp graphQLResponse
	if err := c.postJSON(ctx, c.GraphQLURL, payload, query, &resp); err != nil {
		return nil, err
	}

	if len(resp.Errors) > 0 {
		c.logger.Debug("graphql returned errors", zap.String("query", query), zap.String("first_error", resp.Errors[0].Message))
	}

	if len(resp.Data.Search) == 0 {
		return nil, nil
	}

	var page searchPage
	if err := decode(resp.Data.Search, &page); err != nil {
		return nil, &TransientSearchError{Query: query, StatusCode: 200, Err: fmt.Errorf("decoding search nodes: %w", err)}
	}

	return &page, nil
}
