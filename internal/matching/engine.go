package matching

import (
	"math"
	"strings"

	"github.com/spigell/talentsonar/internal/candidate"
)

const (
	// NoRequirementsScore is returned when the job lists no required skills.
	NoRequirementsScore = 50.0

	skillPoints           = 70.0
	experienceFullPoints  = 20.0
	experiencePartPoints  = 10.0
	experiencePartRatio   = 0.7
	activityHighPoints    = 10.0
	activityMediumPoints  = 5.0
	activityHighThreshold = 100
	activityMidThreshold  = 50
)

// Match is the lightweight job-level match used when full repository analysis
// is unavailable. The activity signal is RecentActivityCount.
func Match(p candidate.Profile, job candidate.JobSpec) float64 {
	required := lowerSet(job.RequiredSkills)
	if len(required) == 0 {
		return NoRequirementsScore
	}

	have := lowerSet(append(append([]string{}, p.Skills...), p.Topics...))
	matched := 0
	for s := range required {
		if _, ok := have[s]; ok {
			matched++
		}
	}

	score := float64(matched) / float64(len(required)) * skillPoints

	years := float64(p.YearsExperience)
	requiredYears := float64(job.RequiredExperienceYears)
	switch {
	case years >= requiredYears:
		score += experienceFullPoints
	case years >= requiredYears*experiencePartRatio:
		score += experiencePartPoints
	}

	switch {
	case p.RecentActivityCount > activityHighThreshold:
		score += activityHighPoints
	case p.RecentActivityCount > activityMidThreshold:
		score += activityMediumPoints
	}

	return math.Min(math.Round(score*100)/100, 100)
}

func lowerSet(values []string) map[string]struct{} {
	out := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.ToLower(strings.TrimSpace(v))
		if v != "" {
			out[v] = struct{}{}
		}
	}
	return out
}
