package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"jobmate/dashboard-service/internal/logger"
	"jobmate/dashboard-service/internal/metrics"
	"jobmate/dashboard-service/internal/model"
	"jobmate/dashboard-service/internal/scraper"
	"jobmate/dashboard-service/internal/storage"
)

const (
	// StorageKey is the single slot holding every favorite.
	StorageKey = "favorites:v1"

	// ManualSource tags records typed in by the user.
	ManualSource   = "Manual"
	ManualIDPrefix = "manual-"

	// EventStatusChanged is published when a favorite's status changes.
	EventStatusChanged = "EVENT_FAVORITE_STATUS"
)

// Favorite is a starred job plus the user's workflow fields.
type Favorite struct {
	model.Job
	Status    Status    `json:"status"`
	Mission   string    `json:"mission,omitempty"`
	Recruiter string    `json:"recruiter,omitempty"`
	CEO       string    `json:"ceo,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	AddedAt   time.Time `json:"addedAt"`
}

// Key is the favorite's identity key.
func (f Favorite) Key() string { return IdentityKey(f.Job) }

// IdentityKey is the job id, else its listing URL. Manual entries always
// carry a generated id.
func IdentityKey(job model.Job) string {
	if id := strings.TrimSpace(job.ID); id != "" {
		return id
	}
	if u := strings.TrimSpace(job.ListingURL); u != "" && u != scraper.PlaceholderURL {
		return u
	}
	return ""
}

// IsManual reports whether f was entered by hand, judging from the record
// alone.
func IsManual(f Favorite) bool {
	return strings.EqualFold(strings.TrimSpace(f.Source), ManualSource) ||
		strings.HasPrefix(f.ID, ManualIDPrefix)
}

// ManualEntry is the form used to add a job that was not fetched.
type ManualEntry struct {
	CompanyName    string `json:"companyName"`
	Position       string `json:"position"`
	ApplicationURL string `json:"applicationUrl"`
	CompanySiteURL string `json:"companySiteUrl"`
	Status         string `json:"status"`
	Mission        string `json:"mission"`
	Recruiter      string `json:"recruiter"`
	CEO            string `json:"ceo"`
	Notes          string `json:"notes"`
}

// Patch lists the fields Update may change. Nil fields are left alone.
type Patch struct {
	Status    *string `json:"status"`
	Mission   *string `json:"mission"`
	Recruiter *string `json:"recruiter"`
	CEO       *string `json:"ceo"`
	Notes     *string `json:"notes"`
}

// Publisher is the subset of a Redis client used for events.
type Publisher interface {
	Publish(ctx context.Context, channel string, message any) *redis.IntCmd
}

// ErrNotFound is returned when no favorite has the given key.
var ErrNotFound = errors.New("favorite not found")

// ValidationError wraps a user-facing validation message.
type ValidationError struct{ Msg string }

func (e *ValidationError) Error() string { return e.Msg }

// Store is the favorites repository. Read-modify-write cycles are
// serialized within one process; across processes the last write wins.
type Store struct {
	items   *storage.Collection[Favorite]
	events  Publisher
	log     logger.Logger
	metrics *metrics.Metrics

	now   func() time.Time
	newID func() string

	mu sync.Mutex
}

// NewStore returns a Store over backend. events, log and m may be nil.
func NewStore(backend storage.Backend, events Publisher, log logger.Logger, m *metrics.Metrics) *Store {
	log = logger.OrNop(log)
	return &Store{
		items:   storage.NewCollection[Favorite](backend, log),
		events:  events,
		log:     log,
		metrics: m,
		now:     func() time.Time { return time.Now().UTC() },
		newID:   func() string { return ManualIDPrefix + uuid.NewString() },
	}
}

// List returns every favorite, oldest first, with statuses normalized.
func (s *Store) List(ctx context.Context) []Favorite {
	favs := s.items.Read(ctx, StorageKey)
	for i := range favs {
		favs[i].Status = NormalizeStatus(string(favs[i].Status))
	}
	return favs
}

// Get returns the favorite with the given key.
func (s *Store) Get(ctx context.Context, key string) (Favorite, error) {
	favs := s.List(ctx)
	if i := indexOf(favs, key); i >= 0 {
		return favs[i], nil
	}
	return Favorite{}, ErrNotFound
}

// Add stars job. Adding a job that is already a favorite returns the
// stored record and created=false without writing.
func (s *Store) Add(ctx context.Context, job model.Job) (fav Favorite, created bool, err error) {
	key := IdentityKey(job)
	if key == "" {
		return Favorite{}, false, &ValidationError{Msg: "job has neither an id nor a listing URL"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	favs := s.List(ctx)
	if i := indexOf(favs, key); i >= 0 {
		return favs[i], false, nil
	}

	fav = Favorite{Job: job, Status: StatusDiscovered, AddedAt: s.now()}
	s.items.Write(ctx, StorageKey, append(favs, fav))
	s.metrics.FavoriteMutation("add")
	s.log.Info("Favorite added", logger.String("key", key))
	return fav, true, nil
}

// AddManual stores a hand-written entry under a generated id.
func (s *Store) AddManual(ctx context.Context, entry ManualEntry) (Favorite, error) {
	if strings.TrimSpace(entry.CompanyName) == "" && strings.TrimSpace(entry.Position) == "" {
		return Favorite{}, &ValidationError{Msg: "company name or position is required"}
	}
	status := StatusDiscovered
	if strings.TrimSpace(entry.Status) != "" {
		st, err := ParseStatus(entry.Status)
		if err != nil {
			return Favorite{}, &ValidationError{Msg: err.Error()}
		}
		status = st
	}

	job := scraper.Canonicalize(model.Job{
		ID:             s.newID(),
		CompanyName:    entry.CompanyName,
		Position:       entry.Position,
		CompanySiteURL: entry.CompanySiteURL,
		ListingURL:     strings.TrimSpace(entry.ApplicationURL),
		Source:         ManualSource,
		Sources:        []string{ManualSource},
	})
	fav := Favorite{
		Job:       job,
		Status:    status,
		Mission:   strings.TrimSpace(entry.Mission),
		Recruiter: strings.TrimSpace(entry.Recruiter),
		CEO:       strings.TrimSpace(entry.CEO),
		Notes:     strings.TrimSpace(entry.Notes),
		AddedAt:   s.now(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.items.Write(ctx, StorageKey, append(s.List(ctx), fav))
	s.metrics.FavoriteMutation("add_manual")
	s.log.Info("Manual favorite added", logger.String("key", fav.ID))
	return fav, nil
}

// Remove deletes the favorite with the given key.
func (s *Store) Remove(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	favs := s.List(ctx)
	i := indexOf(favs, key)
	if i < 0 {
		return ErrNotFound
	}

	s.items.Write(ctx, StorageKey, append(favs[:i], favs[i+1:]...))
	s.metrics.FavoriteMutation("remove")
	s.log.Info("Favorite removed", logger.String("key", key))
	return nil
}

// Update merges patch into the favorite with the given key. An unknown key
// returns ErrNotFound and leaves storage untouched.
func (s *Store) Update(ctx context.Context, key string, patch Patch) (Favorite, error) {
	var newStatus Status
	if patch.Status != nil {
		st, err := ParseStatus(*patch.Status)
		if err != nil {
			return Favorite{}, &ValidationError{Msg: err.Error()}
		}
		newStatus = st
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	favs := s.List(ctx)
	i := indexOf(favs, key)
	if i < 0 {
		return Favorite{}, ErrNotFound
	}

	fav := favs[i]
	from := fav.Status
	if newStatus != "" {
		fav.Status = newStatus
	}
	setIf(&fav.Mission, patch.Mission)
	setIf(&fav.Recruiter, patch.Recruiter)
	setIf(&fav.CEO, patch.CEO)
	setIf(&fav.Notes, patch.Notes)
	favs[i] = fav

	s.items.Write(ctx, StorageKey, favs)
	s.metrics.FavoriteMutation("update")

	if fav.Status != from {
		s.publishStatus(ctx, key, from, fav.Status)
	}
	return fav, nil
}

// publishStatus is best effort: a failed publish is only logged.
func (s *Store) publishStatus(ctx context.Context, key string, from, to Status) {
	if s.events == nil {
		return
	}
	event, _ := json.Marshal(map[string]string{
		"type": EventStatusChanged,
		"key":  key,
		"from": string(from),
		"to":   string(to),
	})
	if err := s.events.Publish(ctx, EventStatusChanged, event).Err(); err != nil {
		s.log.Warn("Publish favorite status failed", logger.String("key", key), logger.Error(err))
	}
}

func indexOf(favs []Favorite, key string) int {
	key = strings.TrimSpace(key)
	if key == "" {
		return -1
	}
	for i, f := range favs {
		if f.Key() == key {
			return i
		}
	}
	return -1
}

func setIf(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}
