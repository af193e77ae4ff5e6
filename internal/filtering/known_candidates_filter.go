package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/talentsonar/internal/candidate"
)

type knownCandidatesFilter struct {
	disabled bool
	reason   string
}

// NewKnownCandidates creates a filter that removes candidates already stored in the registry.
func NewKnownCandidates() Filter {
	return &knownCandidatesFilter{}
}

func (f *knownCandidatesFilter) Name() string { return "known_candidates" }

func (f *knownCandidatesFilter) Disable(reason string) {
	f.disabled = true
	f.reason = reason
}

func (f *knownCandidatesFilter) IsEnabled() bool { return !f.disabled }

func (f *knownCandidatesFilter) Validate(*Config) error { return nil }

func (f *knownCandidatesFilter) Apply(_ context.Context, deps Deps, profiles []candidate.Profile) ([]candidate.Profile, Step, error) {
	initial := len(profiles)
	if len(deps.Known) == 0 {
		return profiles, Step{Initial: initial, Left: initial}, nil
	}

	kept, dropped := exclude(profiles, func(p candidate.Profile) bool {
		_, ok := deps.Known[strings.ToLower(p.Login)]
		return ok
	})

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding candidates that are already stored",
			zap.Strings("excluded_candidates", dropped),
			zap.Int("candidates_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: len(kept)}, nil
}

func (f *knownCandidatesFilter) Status() Status {
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason}
}
