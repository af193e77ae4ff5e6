package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync/atomic"
	"testing"
)

func TestSearchUsersRESTStopsOnLowQuota(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.URL.Path != "/search/users" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
		if perPage != 100 {
			t.Errorf("expected per_page=100, got %d", perPage)
		}

		items := make([]map[string]any, 0, perPage)
		for i := 0; i < perPage; i++ {
			items = append(items, map[string]any{
				"login":    fmt.Sprintf("user%d", i),
				"html_url": fmt.Sprintf("https://github.com/user%d", i),
				"type":     "User",
				"score":    1.0,
			})
		}
		w.Header().Set("X-RateLimit-Remaining", "5")
		_ = json.NewEncoder(w).Encode(map[string]any{"total_count": 1000, "items": items})
	}))

	users, err := c.SearchUsersREST(context.Background(), "language:python", 250)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 100 {
		t.Fatalf("expected 100 users, got %d", len(users))
	}
	if calls.Load() != 1 {
		t.Fatalf("expected loop to stop after one page, got %d calls", calls.Load())
	}
	if users[3].ProfileURL != "https://github.com/user3" {
		t.Fatalf("unexpected profile url %q", users[3].ProfileURL)
	}
}

func TestSearchUsersRESTPaginates(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		var items []map[string]any
		switch page {
		case "1":
			items = []map[string]any{{"login": "a"}, {"login": "b"}}
		case "2":
			items = []map[string]any{{"login": "c"}}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": items})
	}))

	users, err := c.SearchUsersREST(context.Background(), "followers:>=10", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("expected 2 users, got %d", len(users))
	}

	users, err = c.SearchUsersREST(context.Background(), "followers:>=10", 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(users) != 3 {
		t.Fatalf("expected 3 users across pages, got %d", len(users))
	}
}

func TestAnonymousOmitsAuthorization(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("anonymous client sent credentials")
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"items": []any{}})
	}))

	anon := c.Anonymous()
	if anon.HasToken() || !c.HasToken() {
		t.Fatalf("unexpected token state")
	}
	if _, err := anon.SearchUsersREST(context.Background(), "x", 5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAnalyzeUser(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	c := newTestClient(t, mux)

	mux.HandleFunc("/users/octo", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"login":      "octo",
			"name":       "Octo Cat",
			"location":   "Berlin",
			"followers":  42,
			"created_at": "2015-03-01T00:00:00Z",
			"html_url":   "https://github.com/octo",
		})
	})
	mux.HandleFunc("/users/octo/repos", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("sort") != "updated" {
			t.Errorf("expected sort=updated")
		}
		_ = json.NewEncoder(w).Encode([]map[string]any{
			{
				"name":             "api",
				"description":      "A Django backend deployed with Docker",
				"language":         "Python",
				"languages_url":    c.APIURL + "/repos/octo/api/languages",
				"stargazers_count": 30,
				"forks_count":      3,
				"topics":           []string{"rest"},
				"pushed_at":        "2024-02-01T00:00:00Z",
			},
			{
				"name":             "ui",
				"description":      "Maintained dashboards",
				"language":         "TypeScript",
				"languages_url":    c.APIURL + "/repos/octo/ui/languages",
				"stargazers_count": 12,
				"forks_count":      1,
				"pushed_at":        "2024-06-01T00:00:00Z",
			},
			{
				"name":             "forked",
				"fork":             true,
				"languages_url":    c.APIURL + "/repos/octo/forked/languages",
				"stargazers_count": 1,
			},
		})
	})
	mux.HandleFunc("/repos/octo/api/languages", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]int{"Python": 600, "Shell": 100})
	})
	mux.HandleFunc("/repos/octo/ui/languages", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]int{"TypeScript": 300})
	})
	mux.HandleFunc("/repos/octo/forked/languages", func(w http.ResponseWriter, _ *http.Request) {
		t.Errorf("fork languages must not be requested")
	})

	analysis, err := c.AnalyzeUser(context.Background(), "octo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if analysis.Profile.Name != "Octo Cat" || analysis.Profile.Followers != 42 {
		t.Fatalf("unexpected profile %+v", analysis.Profile)
	}
	if analysis.TotalStars != 43 || analysis.TotalForks != 4 {
		t.Fatalf("unexpected totals stars=%d forks=%d", analysis.TotalStars, analysis.TotalForks)
	}
	if names := analysis.LanguageNames(5); len(names) != 3 || names[0] != "Python" || names[1] != "TypeScript" {
		t.Fatalf("unexpected languages %v", names)
	}
	if analysis.Languages[0].Percentage != 60 {
		t.Fatalf("unexpected python share %v", analysis.Languages[0].Percentage)
	}
	want := map[string]bool{"django": true, "docker": true, "rest": true}
	if len(analysis.Technologies) != len(want) {
		t.Fatalf("unexpected technologies %v", analysis.Technologies)
	}
	for _, tech := range analysis.Technologies {
		if !want[tech] {
			t.Fatalf("unexpected technology %q", tech)
		}
	}
	if analysis.LatestActivity == nil || analysis.LatestActivity.Month() != 6 {
		t.Fatalf("unexpected latest activity %v", analysis.LatestActivity)
	}
}

func TestAnalyzeUserNotFound(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.NotFoundHandler())

	if _, err := c.AnalyzeUser(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestContainsKeyword(t *testing.T) {
	t.Parallel()

	tests := []struct {
		text string
		kw   string
		want bool
	}{
		{text: "an ai assistant", kw: "ai", want: true},
		{text: "maintained tools", kw: "ai", want: false},
		{text: "reactive ui", kw: "react", want: true},
	}

	for _, tt := range tests {
		if got := containsKeyword(tt.text, tt.kw); got != tt.want {
			t.Fatalf("containsKeyword(%q, %q) = %v, want %v", tt.text, tt.kw, got, tt.want)
		}
	}
}

func TestDecode(t *testing.T) {
	t.Parallel()

	var summary UserSummary
	if err := decode(map[string]any{"login": "octo", "html_url": "https://github.com/octo"}, &summary); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Login != "octo" || summary.ProfileURL != "https://github.com/octo" {
		t.Fatalf("unexpected summary %+v", summary)
	}

	if err := decode(map[string]any{"login": "octo"}, summary); err == nil {
		t.Fatalf("expected error for non-pointer result")
	}
}

func TestSearchUsersRESTMalformedItems(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"items":[{"login":["not","a","string"]}]}`)
	}))

	_, err := c.SearchUsersREST(context.Background(), "language:go", 5)
	var transient *TransientSearchError
	if !errors.As(err, &transient) {
		t.Fatalf("expected transient error, got %v", err)
	}
}
