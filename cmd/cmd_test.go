package cmd

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/talentsonar/internal/ai"
	"github.com/spigell/talentsonar/internal/candidate"
	"github.com/spigell/talentsonar/internal/storage"
)

func TestGetConfigDefaults(t *testing.T) {
	config, err := getConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if config.Storage.CandidatesFile != "data/candidates.json" {
		t.Fatalf("unexpected candidates file %q", config.Storage.CandidatesFile)
	}
	if config.Discovery.MaxCandidates != 20 || config.Discovery.CacheSize != 256 {
		t.Fatalf("unexpected discovery defaults %+v", config.Discovery)
	}
	if config.GitHub.MinRepos != 5 {
		t.Fatalf("unexpected min repos %d", config.GitHub.MinRepos)
	}
	if config.AI.Gemini == nil || config.AI.Gemini.Model != "gemini-2.5-flash" {
		t.Fatalf("unexpected gemini config %+v", config.AI.Gemini)
	}
	if config.Assessment.TimeLimitMinutes != 45 {
		t.Fatalf("unexpected time limit %d", config.Assessment.TimeLimitMinutes)
	}
}

func TestGetConfigValidation(t *testing.T) {
	tests := []struct {
		key   string
		value any
		reset any
	}{
		{key: "discovery.min-score", value: 150, reset: 0},
		{key: "ai.provider", value: "openai", reset: "gemini"},
		{key: "github.api-url", value: "not a url", reset: ""},
	}

	for _, tt := range tests {
		viper.Set(tt.key, tt.value)
		_, err := getConfig()
		viper.Set(tt.key, tt.reset)

		if err == nil {
			t.Fatalf("%s=%v: expected validation error", tt.key, tt.value)
		}
	}
}

func TestNewExtractor(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	ctx := context.Background()

	ex, err := newExtractor(ctx, &AIConfig{Provider: "default", Gemini: &GeminiConfig{}}, zap.NewNop())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := ex.(ai.DefaultExtractor); !ok {
		t.Fatalf("expected default extractor, got %T", ex)
	}

	if _, err := newExtractor(ctx, &AIConfig{Provider: "openai", Gemini: &GeminiConfig{}}, zap.NewNop()); err == nil {
		t.Fatalf("expected error for unsupported provider")
	}

	ex, err = newExtractor(ctx, &AIConfig{Provider: "gemini", Gemini: &GeminiConfig{}}, zap.NewNop())
	if err != nil || ex != nil {
		t.Fatalf("expected nil extractor without api key, got %T, %v", ex, err)
	}
}

func TestLoadJob(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	config := &Config{Storage: &StorageConfig{JobsFile: filepath.Join(dir, "jobs.json")}}

	jobs := []candidate.JobSpec{
		{ID: 1, Title: "Backend", RequiredSkills: []string{"go"}},
		{ID: 4, Title: "Frontend", RequiredSkills: []string{"react"}},
	}
	if err := storage.NewJSONFile[[]candidate.JobSpec](config.Storage.JobsFile).Save(jobs); err != nil {
		t.Fatalf("save: %v", err)
	}

	job, err := loadJob(config, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Title != "Frontend" {
		t.Fatalf("unexpected job %+v", job)
	}

	if _, err := loadJob(config, 2); err == nil {
		t.Fatalf("expected error for unknown job")
	}
}

func TestSaveJobKeepsSeal(t *testing.T) {
	t.Parallel()

	config := &Config{Storage: &StorageConfig{JobsFile: filepath.Join(t.TempDir(), "jobs.json")}}
	jobs := []candidate.JobSpec{
		{ID: 1, Title: "Backend", RequiredSkills: []string{"go"}},
		{ID: 2, Title: "Frontend", RequiredSkills: []string{"react"}},
	}
	if err := jobsFile(config).Save(jobs); err != nil {
		t.Fatalf("save: %v", err)
	}

	job, err := loadJob(config, 2)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	job.Seal()
	if err := saveJob(config, job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	reloaded, err := loadJob(config, 2)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if !reloaded.Sealed() {
		t.Fatalf("expected job to stay sealed on disk")
	}
	if other, _ := loadJob(config, 1); other == nil || other.Sealed() {
		t.Fatalf("other jobs must be untouched, got %+v", other)
	}

	if err := saveJob(config, &candidate.JobSpec{ID: 9, Title: "Ghost"}); err == nil {
		t.Fatalf("expected error for unknown job")
	}
}

func TestLooksPasted(t *testing.T) {
	t.Parallel()

	long := "one two three four five six seven eight nine ten " +
		"eleven twelve thirteen fourteen fifteen sixteen seventeen eighteen nineteen twenty"

	tests := []struct {
		name   string
		answer string
		took   time.Duration
		want   bool
	}{
		{name: "short answer", answer: "yes", took: time.Millisecond, want: false},
		{name: "long answer typed", answer: long, took: time.Minute, want: false},
		{name: "long answer pasted", answer: long, took: time.Second, want: true},
	}

	for _, tt := range tests {
		if got := looksPasted(tt.answer, tt.took); got != tt.want {
			t.Fatalf("%s: looksPasted = %v, want %v", tt.name, got, tt.want)
		}
	}
}
