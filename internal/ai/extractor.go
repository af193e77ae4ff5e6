package ai

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// ErrNotConfigured matches any ConfigurationError.
var ErrNotConfigured = errors.New("extractor is not configured")

// ConfigurationError names the missing credential or setting of an extractor.
type ConfigurationError struct {
	Provider string
	Missing  string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("%s extractor is not configured: missing %s", e.Provider, e.Missing)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrNotConfigured }

// Requirements are the structured requirements of a job description.
type Requirements struct {
	Title           string   `json:"title,omitempty"`
	Technical       []string `json:"technical"`
	SoftSkills      []string `json:"soft_skills,omitempty"`
	Topics          []string `json:"topics,omitempty"`
	Education       []string `json:"education,omitempty"`
	ExperienceYears int      `json:"experience_years"`
	Confidence      float64  `json:"confidence,omitempty"`
}

// Extractor turns a free-text job description into Requirements.
type Extractor interface {
	Extract(ctx context.Context, description string) (*Requirements, error)
}

// Provider names.
const (
	ProviderGemini  = "gemini"
	ProviderDefault = "default"
)

// DefaultExperienceYears is used when a description states no experience.
const DefaultExperienceYears = 3

// DefaultRequirements is the documented requirement set used when extraction
// is unavailable.
func DefaultRequirements() *Requirements {
	return &Requirements{
		Technical:       []string{"python", "django"},
		ExperienceYears: 5,
	}
}

// FailureRequirements is substituted when a configured extractor fails.
func FailureRequirements() *Requirements {
	return &Requirements{
		Technical:       []string{"react", "typescript"},
		ExperienceYears: DefaultExperienceYears,
	}
}

// DefaultExtractor always returns DefaultRequirements.
type DefaultExtractor struct{}

func (DefaultExtractor) Extract(context.Context, string) (*Requirements, error) {
	return DefaultRequirements(), nil
}

// ExtractOrDefault runs the extractor and never fails: an unconfigured
// extractor yields DefaultRequirements and any other error FailureRequirements.
func ExtractOrDefault(ctx context.Context, ex Extractor, description string, logger *zap.Logger) *Requirements {
	if logger == nil {
		logger = zap.NewNop()
	}

	if ex == nil {
		logger.Warn("no extractor configured; using default requirements")
		return DefaultRequirements()
	}

	req, err := ex.Extract(ctx, description)
	switch {
	case err == nil && req != nil:
		if req.ExperienceYears <= 0 {
			req.ExperienceYears = DefaultExperienceYears
		}
		return req
	case errors.Is(err, ErrNotConfigured):
		logger.Warn("extractor is not configured; using default requirements", zap.Error(err))
		return DefaultRequirements()
	default:
		logger.Warn("requirement extraction failed; using fallback requirements", zap.Error(err))
		return FailureRequirements()
	}
}
