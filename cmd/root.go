package cmd

import (
	"errors"
	"io/fs"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "talentsonar"
)

type Config struct {
	GitHub     *GitHubConfig     `mapstructure:"github"`
	AI         *AIConfig         `mapstructure:"ai"`
	Discovery  *DiscoveryConfig  `mapstructure:"discovery" validate:"required"`
	Storage    *StorageConfig    `mapstructure:"storage" validate:"required"`
	Assessment *AssessmentConfig `mapstructure:"assessment"`
}

type GitHubConfig struct {
	TokenFile    string `mapstructure:"token-file"`
	APIURL       string `mapstructure:"api-url" validate:"omitempty,url"`
	GraphQLURL   string `mapstructure:"graphql-url" validate:"omitempty,url"`
	UserAgent    string `mapstructure:"user-agent"`
	MinRepos     int    `mapstructure:"min-repos" validate:"gte=0"`
	MinFollowers int    `mapstructure:"min-followers" validate:"gte=0"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider" validate:"omitempty,oneof=gemini default"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries" validate:"gte=0"`
	MaxLogLength int    `mapstructure:"max-log-length" validate:"gte=0"`
}

type DiscoveryConfig struct {
	MaxCandidates int     `mapstructure:"max-candidates" validate:"gte=0"`
	MinScore      float64 `mapstructure:"min-score" validate:"gte=0,lte=100"`
	ExcludeFile   string  `mapstructure:"exclude-file"`
	CacheSize     int     `mapstructure:"cache-size" validate:"gte=0"`
}

type StorageConfig struct {
	CandidatesFile string `mapstructure:"candidates-file" validate:"required"`
	JobsFile       string `mapstructure:"jobs-file" validate:"required"`
	ResultsFile    string `mapstructure:"results-file" validate:"required"`
}

type AssessmentConfig struct {
	TechnicalQuestions bool `mapstructure:"technical-questions"`
	TimeLimitMinutes   int  `mapstructure:"time-limit-minutes" validate:"gte=0"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "talentsonar finds GitHub candidates for a job, ranks them and runs their assessments",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("github.token-file", "GITHUB_TOKEN_FILE"); err != nil {
		log.Fatalf("binding GITHUB_TOKEN_FILE environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	setDefaults()

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is talentsonar.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	viper.SetDefault("github.min-repos", 5)
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.max-log-length", 200)
	viper.SetDefault("discovery.max-candidates", 20)
	viper.SetDefault("discovery.cache-size", 256)
	viper.SetDefault("storage.candidates-file", "data/candidates.json")
	viper.SetDefault("storage.jobs-file", "data/jobs.json")
	viper.SetDefault("storage.results-file", "data/results.json")
	viper.SetDefault("assessment.time-limit-minutes", 45)
}

func initConfig() {
	// Secrets and file locations may live in a .env file next to the config.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	if versionCmd.CalledAs() != "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// An explicit config must be readable. The default one is optional.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.GitHub == nil {
		config.GitHub = &GitHubConfig{}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.AI.Gemini == nil {
		config.AI.Gemini = &GeminiConfig{}
	}
	if config.Assessment == nil {
		config.Assessment = &AssessmentConfig{}
	}

	if err := validator.New().Struct(config); err != nil {
		return config, err
	}

	return config, nil
}
