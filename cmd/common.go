package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/talentsonar/internal/ai"
	"github.com/spigell/talentsonar/internal/ai/gemini"
	"github.com/spigell/talentsonar/internal/candidate"
	"github.com/spigell/talentsonar/internal/logger"
	"github.com/spigell/talentsonar/internal/secrets"
	"github.com/spigell/talentsonar/internal/storage"
)

// setup creates the logger and reads the config. Any failure is fatal.
func setup() (*zap.Logger, *Config) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return logger, config
}

func openRegistry(config *Config) (*candidate.Registry, error) {
	file := storage.NewJSONFile[[]candidate.Record](config.Storage.CandidatesFile)
	return candidate.NewRegistry(file.Load, file.Save)
}

func jobsFile(config *Config) storage.JSONFile[[]candidate.JobSpec] {
	return storage.NewJSONFile[[]candidate.JobSpec](config.Storage.JobsFile)
}

func loadJob(config *Config, id int) (*candidate.JobSpec, error) {
	jobs, err := jobsFile(config).Load()
	if err != nil {
		return nil, err
	}
	for i := range jobs {
		if jobs[i].ID == id {
			return &jobs[i], nil
		}
	}
	return nil, fmt.Errorf("job %d not found in %s", id, config.Storage.JobsFile)
}

// saveJob replaces the stored job with the same id.
func saveJob(config *Config, job *candidate.JobSpec) error {
	file := jobsFile(config)
	jobs, err := file.Load()
	if err != nil {
		return err
	}
	for i := range jobs {
		if jobs[i].ID == job.ID {
			jobs[i] = *job
			return file.Save(jobs)
		}
	}
	return fmt.Errorf("job %d not found in %s", job.ID, config.Storage.JobsFile)
}

// newExtractor returns the configured requirement extractor. A nil extractor
// means the defaults are used.
func newExtractor(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Extractor, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	switch provider {
	case ai.ProviderDefault:
		return ai.DefaultExtractor{}, nil
	case "", ai.ProviderGemini:
	default:
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: cfg.Gemini.APIKeyFile,
		Env:  "GEMINI_API_KEY",
	})
	if err != nil {
		logger.Warn("gemini is not configured, falling back to default requirements",
			zap.Error(err),
			zap.String("hint", "set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY"),
		)
		return nil, nil
	}

	extractor, err := gemini.NewExtractor(ctx, gemini.Config{
		APIKey:       apiKey,
		Model:        cfg.Gemini.Model,
		MaxRetries:   cfg.Gemini.MaxRetries,
		MaxLogLength: cfg.Gemini.MaxLogLength,
	}, logger)
	if err != nil {
		return nil, err
	}
	return extractor, nil
}
