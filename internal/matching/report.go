package matching

import (
	"sort"
	"time"

	"github.com/spigell/talentsonar/internal/candidate"
)

// Entry is one line of a match report.
type Entry struct {
	CandidateID int       `json:"candidate_id"`
	Login       string    `json:"login"`
	Name        string    `json:"name"`
	Score       float64   `json:"score"`
	Timestamp   time.Time `json:"timestamp"`
}

// Report ranks profiles by Match against job, best first, ties by id.
// topN <= 0 returns every entry.
func Report(profiles []candidate.Profile, job candidate.JobSpec, topN int, now time.Time) []Entry {
	entries := make([]Entry, 0, len(profiles))
	for _, p := range profiles {
		entries = append(entries, Entry{
			CandidateID: p.ID,
			Login:       p.Login,
			Name:        p.Name(),
			Score:       Match(p, job),
			Timestamp:   now,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		return entries[i].CandidateID < entries[j].CandidateID
	})

	if topN > 0 && len(entries) > topN {
		entries = entries[:topN]
	}
	return entries
}
