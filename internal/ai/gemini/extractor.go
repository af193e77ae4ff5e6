package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/spigell/talentsonar/internal/ai"
	"github.com/spigell/talentsonar/internal/logger"
	"github.com/spigell/talentsonar/internal/utils"
)

const (
	defaultMaxLogLength = 200
	maxDescriptionRunes = 20000
)

//go:embed prompt.md
var systemPrompt string

//go:embed schema.json
var responseSchema string

var schemaLoader = gojsonschema.NewStringLoader(responseSchema)

type contentGenerator interface {
	GenerateContent(ctx context.Context, system, message string) (string, error)
	Model() string
}

// Config holds the Gemini extractor settings.
type Config struct {
	APIKey       string
	Model        string
	MaxRetries   int
	MaxLogLength int
}

// Extractor implements ai.Extractor on top of Gemini.
type Extractor struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

// NewExtractor builds the extractor. A missing API key is reported as an
// *ai.ConfigurationError.
func NewExtractor(ctx context.Context, cfg Config, log *zap.Logger) (*Extractor, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, &ai.ConfigurationError{Provider: ai.ProviderGemini, Missing: "GEMINI_API_KEY"}
	}

	generator, err := NewGenerator(ctx, cfg.APIKey, cfg.Model, cfg.MaxRetries, log)
	if err != nil {
		return nil, err
	}

	return newExtractor(generator, log, cfg.MaxLogLength), nil
}

func newExtractor(generator contentGenerator, log *zap.Logger, maxLogLength int) *Extractor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	return &Extractor{
		generator: generator,
		logger:    logger.WithCommonFields(log, ai.ProviderGemini, generator.Model()),
		maxLogLen: maxLogLength,
	}
}

// Extract asks Gemini for the requirements of description. The answer must
// validate against the embedded response schema.
func (e *Extractor) Extract(ctx context.Context, description string) (*ai.Requirements, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, errors.New("job description is empty")
	}
	if utf8.RuneCountInString(description) > maxDescriptionRunes {
		description = string([]rune(description)[:maxDescriptionRunes])
	}

	e.logger.Debug("gemini extraction request",
		zap.Int("description_length", utf8.RuneCountInString(description)),
		zap.String("description_preview", utils.TruncateForLog(description, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, systemPrompt, description)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("gemini extraction response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
	)

	return parseResponse(raw)
}

func parseResponse(raw string) (*ai.Requirements, error) {
	cleaned := extractJSON(raw)

	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			problems = append(problems, desc.String())
		}
		return nil, fmt.Errorf("gemini response does not match schema: %s", strings.Join(problems, "; "))
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	years := coerceFloat(data["experience_years"])
	if math.IsNaN(years) {
		years = 0
	}
	confidence := coerceFloat(data["confidence"])
	if math.IsNaN(confidence) {
		confidence = 0
	}

	return &ai.Requirements{
		Title:           coerceString(data["title"]),
		Technical:       coerceStrings(data["technical"], true),
		SoftSkills:      coerceStrings(data["soft_skills"], false),
		Topics:          coerceStrings(data["topics"], true),
		Education:       coerceStrings(data["education"], false),
		ExperienceYears: int(math.Round(years)),
		Confidence:      confidence,
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	raw = strings.TrimSpace(raw)

	// Models sometimes wrap the object in a sentence.
	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start > 0 && end > start {
		raw = raw[start : end+1]
	}
	return raw
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		return strings.TrimSpace(fmt.Sprint(v))
	}
}

// coerceStrings drops empty and repeated entries, keeping order.
func coerceStrings(v any, lower bool) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}

	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		s := coerceString(item)
		if lower {
			s = strings.ToLower(s)
		}
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
