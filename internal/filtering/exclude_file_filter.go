package filtering

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/talentsonar/internal/candidate"
	"github.com/spigell/talentsonar/internal/storage"
)

type excludeFileFilter struct {
	path string
}

// NewExcludeFile creates a filter that removes candidates listed in the
// operator's exclude file, a JSON array of logins.
func NewExcludeFile() Filter {
	return &excludeFileFilter{}
}

func (f *excludeFileFilter) Name() string { return "exclude_file" }

func (f *excludeFileFilter) Disable(string) {}

func (f *excludeFileFilter) IsEnabled() bool { return true }

func (f *excludeFileFilter) Validate(cfg *Config) error {
	f.path = ""
	if cfg != nil {
		f.path = strings.TrimSpace(cfg.ExcludeFile)
	}
	return nil
}

func (f *excludeFileFilter) Apply(_ context.Context, deps Deps, profiles []candidate.Profile) ([]candidate.Profile, Step, error) {
	initial := len(profiles)
	if f.path == "" {
		return profiles, Step{Initial: initial, Left: initial}, nil
	}

	logins, err := storage.NewJSONFile[[]string](f.path).Load()
	if err != nil {
		return profiles, Step{}, fmt.Errorf("getting excluded candidates from file: %w", err)
	}

	excluded := loginSet(logins)
	kept, dropped := exclude(profiles, func(p candidate.Profile) bool {
		_, ok := excluded[strings.ToLower(p.Login)]
		return ok
	})

	if deps.Logger != nil && len(dropped) > 0 {
		deps.Logger.Info("excluding candidates based on exclude file",
			zap.String("path", f.path),
			zap.Strings("excluded_candidates", dropped),
			zap.Int("candidates_left", len(kept)),
		)
	}

	return kept, Step{Initial: initial, Dropped: len(dropped), Left: len(kept)}, nil
}

func (f *excludeFileFilter) Status() Status {
	details := map[string]string{}
	if f.path != "" {
		details["path"] = f.path
	}
	return Status{Name: f.Name(), Enabled: true, Details: details}
}
