package candidate

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrJobSealed is returned when a scored job is modified without unsealing it first.
var ErrJobSealed = errors.New("job spec is sealed")

const weightTolerance = 0.001

// Weights records how a job wants its score components balanced. The values
// must sum to 1. They are kept with the job for display; scoring applies its
// own fixed component weights.
type Weights struct {
	Technical  float64 `json:"technical" validate:"gte=0,lte=1"`
	Experience float64 `json:"experience" validate:"gte=0,lte=1"`
	Activity   float64 `json:"activity" validate:"gte=0,lte=1"`
}

// JobSpec is a job opening with its requirements.
type JobSpec struct {
	ID                      int      `json:"id" validate:"gte=0"`
	Title                   string   `json:"title" validate:"required"`
	RawDescription          string   `json:"raw_description"`
	RequiredSkills          []string `json:"required_skills" validate:"dive,required"`
	Topics                  []string `json:"topics,omitempty" validate:"dive,required"`
	RequiredExperienceYears int      `json:"required_experience_years" validate:"gte=0"`
	CustomWeights           *Weights `json:"custom_weights,omitempty"`

	sealed bool
}

var validate = validator.New()

// Validate checks the struct constraints and that custom weights add up.
func (j *JobSpec) Validate() error {
	if j == nil {
		return errors.New("job spec is required")
	}

	if err := validate.Struct(j); err != nil {
		return fmt.Errorf("invalid job spec: %w", err)
	}

	if w := j.CustomWeights; w != nil {
		if err := validate.Struct(w); err != nil {
			return fmt.Errorf("invalid custom weights: %w", err)
		}
		sum := w.Technical + w.Experience + w.Activity
		if math.Abs(sum-1) > weightTolerance {
			return fmt.Errorf("invalid custom weights: sum is %.3f, expected 1.0", sum)
		}
	}

	return nil
}

// SetRequiredSkills stores skills as an ordered set of lower-cased tokens.
func (j *JobSpec) SetRequiredSkills(skills []string) {
	j.RequiredSkills = orderedSet(skills)
}

// Seal marks the job immutable. It is called once candidates have been scored against it.
func (j *JobSpec) Seal() { j.sealed = true }

// Unseal allows modification again; callers must re-score afterwards.
func (j *JobSpec) Unseal() { j.sealed = false }

// Sealed reports whether the job is sealed.
func (j *JobSpec) Sealed() bool { return j.sealed }

type jobFields JobSpec

// MarshalJSON stores the seal next to the exported fields.
func (j JobSpec) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		jobFields
		Sealed bool `json:"sealed,omitempty"`
	}{jobFields(j), j.sealed})
}

func (j *JobSpec) UnmarshalJSON(data []byte) error {
	aux := struct {
		*jobFields
		Sealed bool `json:"sealed"`
	}{jobFields: (*jobFields)(j)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	j.sealed = aux.Sealed
	return nil
}

// Update applies fn to the job unless it is sealed. The change is validated
// and rolled back when invalid.
func (j *JobSpec) Update(fn func(*JobSpec)) error {
	if j.sealed {
		return ErrJobSealed
	}

	backup := j.clone()
	fn(j)
	if err := j.Validate(); err != nil {
		*j = backup
		return err
	}
	return nil
}

func (j *JobSpec) clone() JobSpec {
	c := *j
	c.RequiredSkills = append([]string(nil), j.RequiredSkills...)
	c.Topics = append([]string(nil), j.Topics...)
	if j.CustomWeights != nil {
		w := *j.CustomWeights
		c.CustomWeights = &w
	}
	return c
}

func orderedSet(values []string) []string {
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
