package candidate

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spigell/talentsonar/internal/assessment"
)

// ErrNotFound is returned when a candidate id is unknown.
var ErrNotFound = errors.New("candidate not found")

// Workflow statuses owned by the presentation layer.
const (
	StatusNew       = "new"
	StatusInvited   = "invited"
	StatusAssessed  = "assessed"
	StatusDismissed = "dismissed"
)

// Invitation holds the assessment invitation sent to a candidate.
type Invitation struct {
	Link     string    `json:"link"`
	Username string    `json:"username"`
	Password string    `json:"password"`
	SentAt   time.Time `json:"sent_at"`
}

// Record is a stored candidate: the discovered profile plus workflow state.
// Discovery and scoring only read Profile.
type Record struct {
	Profile     Profile             `json:"profile"`
	Status      string              `json:"status,omitempty"`
	Invitation  *Invitation         `json:"invitation,omitempty"`
	TestResults *assessment.Results `json:"test_results,omitempty"`
}

// LoadFunc returns the persisted records.
type LoadFunc func() ([]Record, error)

// SaveFunc persists the full record set.
type SaveFunc func([]Record) error

// Registry is the single owner of candidate records.
type Registry struct {
	mu      sync.RWMutex
	records map[int]*Record
	save    SaveFunc
}

// NewRegistry loads the records with load. Either function may be nil.
func NewRegistry(load LoadFunc, save SaveFunc) (*Registry, error) {
	r := &Registry{
		records: make(map[int]*Record),
		save:    save,
	}

	if load == nil {
		return r, nil
	}

	records, err := load()
	if err != nil {
		return nil, fmt.Errorf("loading candidates: %w", err)
	}

	for i := range records {
		rec := records[i]
		if _, ok := r.records[rec.Profile.ID]; ok {
			return nil, fmt.Errorf("loading candidates: duplicate id %d", rec.Profile.ID)
		}
		r.records[rec.Profile.ID] = &rec
	}

	return r, nil
}

// Get returns a copy of the record with the given id.
func (r *Registry) Get(id int) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[id]
	if !ok {
		return Record{}, fmt.Errorf("%w: %d", ErrNotFound, id)
	}
	return *rec, nil
}

// FindByLogin returns the record with the given login, case-insensitively.
func (r *Registry) FindByLogin(login string) (Record, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.records {
		if strings.EqualFold(rec.Profile.Login, login) {
			return *rec, true
		}
	}
	return Record{}, false
}

// All returns every record ordered by id.
func (r *Registry) All() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Profile.ID < out[j].Profile.ID })
	return out
}

// Profiles returns every profile ordered by id.
func (r *Registry) Profiles() []Profile {
	records := r.All()
	out := make([]Profile, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Profile)
	}
	return out
}

// Logins returns the lower-cased logins of all stored candidates.
func (r *Registry) Logins() map[string]struct{} {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[string]struct{}, len(r.records))
	for _, rec := range r.records {
		out[strings.ToLower(rec.Profile.Login)] = struct{}{}
	}
	return out
}

// Len returns the number of stored candidates.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// NextID returns the next free candidate id.
func (r *Registry) NextID() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nextID()
}

func (r *Registry) nextID() int {
	maxID := 0
	for id := range r.records {
		if id > maxID {
			maxID = id
		}
	}
	return maxID + 1
}

// Append inserts profiles atomically: either all of them are stored and
// persisted or none is. Ids must be unused.
func (r *Registry) Append(profiles ...Profile) error {
	if len(profiles) == 0 {
		return nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	batch := make(map[int]struct{}, len(profiles))
	for _, p := range profiles {
		if _, ok := r.records[p.ID]; ok {
			return fmt.Errorf("candidate id %d already exists", p.ID)
		}
		if _, ok := batch[p.ID]; ok {
			return fmt.Errorf("candidate id %d repeated in batch", p.ID)
		}
		batch[p.ID] = struct{}{}
	}

	for _, p := range profiles {
		r.records[p.ID] = &Record{Profile: p, Status: StatusNew}
	}

	if err := r.persist(); err != nil {
		for _, p := range profiles {
			delete(r.records, p.ID)
		}
		return err
	}

	return nil
}

// Update applies fn to a stored record and persists the result.
func (r *Registry) Update(id int, fn func(*Record)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	backup := *rec
	fn(rec)
	rec.Profile.ID = id

	if err := r.persist(); err != nil {
		*rec = backup
		return err
	}
	return nil
}

// Delete removes a candidate. It is an explicit operator action.
func (r *Registry) Delete(id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotFound, id)
	}

	delete(r.records, id)
	if err := r.persist(); err != nil {
		r.records[id] = rec
		return err
	}
	return nil
}

// persist must be called with the write lock held.
func (r *Registry) persist() error {
	if r.save == nil {
		return nil
	}

	out := make([]Record, 0, len(r.records))
	for _, rec := range r.records {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Profile.ID < out[j].Profile.ID })

	if err := r.save(out); err != nil {
		return fmt.Errorf("saving candidates: %w", err)
	}
	return nil
}
