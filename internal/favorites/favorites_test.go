package favorites_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/dashboard-service/internal/favorites"
	"jobmate/dashboard-service/internal/model"
	"jobmate/dashboard-service/internal/storage"
)

var fixedNow = time.Date(2026, 10, 1, 9, 0, 0, 0, time.UTC)

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []map[string]string
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, channel string, message any) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx, "publish", channel, message)
	if p.err != nil {
		cmd.SetErr(p.err)
		return cmd
	}
	var ev map[string]string
	_ = json.Unmarshal(message.([]byte), &ev)
	ev["channel"] = channel
	p.mu.Lock()
	p.events = append(p.events, ev)
	p.mu.Unlock()
	return cmd
}

func newStore(t *testing.T, events favorites.Publisher) (*favorites.Store, *storage.MemoryBackend) {
	t.Helper()
	backend := storage.NewMemoryBackend()
	s := favorites.NewStore(backend, events, nil, nil)
	s.SetClock(func() time.Time { return fixedNow })
	n := 0
	s.SetIDGenerator(func() string {
		n++
		return favorites.ManualIDPrefix + string(rune('0'+n))
	})
	return s, backend
}

func sampleJob(id string) model.Job {
	return model.Job{
		ID:          id,
		CompanyName: "Acme",
		Position:    "Go Developer",
		Source:      "Indeed",
		Sources:     []string{"Indeed"},
		ListingURL:  "https://indeed.test/" + id,
	}
}

func rawStored(t *testing.T, backend *storage.MemoryBackend) string {
	t.Helper()
	raw, err := backend.Get(context.Background(), favorites.StorageKey)
	require.NoError(t, err)
	return string(raw)
}

// ── Add ────────────────────────────────────────────────────────────────────

func TestAdd_IsIdempotent(t *testing.T) {
	s, _ := newStore(t, nil)
	ctx := context.Background()

	first, created, err := s.Add(ctx, sampleJob("job-1"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, favorites.StatusDiscovered, first.Status)
	assert.Equal(t, fixedNow, first.AddedAt)

	again, created, err := s.Add(ctx, sampleJob("job-1"))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first, again)

	assert.Len(t, s.List(ctx), 1)
}

func TestAdd_FallsBackToListingURL(t *testing.T) {
	s, _ := newStore(t, nil)
	ctx := context.Background()

	job := sampleJob("")
	job.ListingURL = "https://boards.test/listing/42"
	fav, _, err := s.Add(ctx, job)
	require.NoError(t, err)
	assert.Equal(t, "https://boards.test/listing/42", fav.Key())

	_, created, err := s.Add(ctx, job)
	require.NoError(t, err)
	assert.False(t, created)
}

func TestAdd_RejectsJobWithoutIdentity(t *testing.T) {
	s, _ := newStore(t, nil)

	_, _, err := s.Add(context.Background(), model.Job{ListingURL: "#"})
	var ve *favorites.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Empty(t, s.List(context.Background()))
}

// ── AddManual ──────────────────────────────────────────────────────────────

func TestAddManual(t *testing.T) {
	s, _ := newStore(t, nil)
	ctx := context.Background()

	fav, err := s.AddManual(ctx, favorites.ManualEntry{
		CompanyName:    "Tidewater",
		Position:       "Web Developer",
		ApplicationURL: " https://tidewater.test/apply ",
		Status:         "Ready",
		CEO:            "Jo Doe",
	})
	require.NoError(t, err)

	assert.Equal(t, "manual-1", fav.ID)
	assert.Equal(t, "Manual", fav.Source)
	assert.Equal(t, "https://tidewater.test/apply", fav.ListingURL)
	assert.Equal(t, favorites.StatusReady, fav.Status)
	assert.Equal(t, "Jo Doe", fav.CEO)
	assert.Equal(t, "Unknown Location", fav.Location, "fallbacks are filled")
	assert.True(t, favorites.IsManual(fav))

	got, err := s.Get(ctx, "manual-1")
	require.NoError(t, err)
	assert.Equal(t, fav.ID, got.ID)
}

func TestAddManual_Validation(t *testing.T) {
	s, _ := newStore(t, nil)
	ctx := context.Background()

	_, err := s.AddManual(ctx, favorites.ManualEntry{})
	var ve *favorites.ValidationError
	assert.ErrorAs(t, err, &ve)

	_, err = s.AddManual(ctx, favorites.ManualEntry{Position: "Dev", Status: "hired"})
	assert.ErrorAs(t, err, &ve)

	assert.Empty(t, s.List(ctx))
}

// ── IsManual ───────────────────────────────────────────────────────────────

func TestIsManual(t *testing.T) {
	cases := []struct {
		name string
		fav  favorites.Favorite
		want bool
	}{
		{"manual source", favorites.Favorite{Job: model.Job{ID: "job-1", Source: " manual "}}, true},
		{"manual id", favorites.Favorite{Job: model.Job{ID: "manual-abc", Source: "Indeed"}}, true},
		{"fetched", favorites.Favorite{Job: sampleJob("job-1")}, false},
		{"prefix must lead", favorites.Favorite{Job: model.Job{ID: "job-manual-1"}}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, favorites.IsManual(tc.fav))
		})
	}
}

// ── Update ─────────────────────────────────────────────────────────────────

func TestUpdate_StatusOnlyChangesStatus(t *testing.T) {
	s, _ := newStore(t, nil)
	ctx := context.Background()
	before, _, err := s.Add(ctx, sampleJob("job-1"))
	require.NoError(t, err)

	status := "interviewing"
	after, err := s.Update(ctx, "job-1", favorites.Patch{Status: &status})
	require.NoError(t, err)

	assert.Equal(t, favorites.StatusInterviewing, after.Status)
	after.Status = before.Status
	assert.Equal(t, before, after)

	stored, err := s.Get(ctx, "job-1")
	require.NoError(t, err)
	assert.Equal(t, favorites.StatusInterviewing, stored.Status)
}

func TestUpdate_UnknownKeyLeavesStorageUnchanged(t *testing.T) {
	s, backend := newStore(t, nil)
	ctx := context.Background()
	_, _, err := s.Add(ctx, sampleJob("job-1"))
	require.NoError(t, err)
	snapshot := rawStored(t, backend)

	status := "offer"
	_, err = s.Update(ctx, "job-404", favorites.Patch{Status: &status})
	assert.ErrorIs(t, err, favorites.ErrNotFound)
	assert.Equal(t, snapshot, rawStored(t, backend))
}

func TestUpdate_ResearchFields(t *testing.T) {
	s, _ := newStore(t, nil)
	ctx := context.Background()
	_, _, err := s.Add(ctx, sampleJob("job-1"))
	require.NoError(t, err)

	mission, notes := " Make hiring humane ", "call back Tuesday"
	fav, err := s.Update(ctx, "job-1", favorites.Patch{Mission: &mission, Notes: &notes})
	require.NoError(t, err)
	assert.Equal(t, "Make hiring humane", fav.Mission)
	assert.Equal(t, "call back Tuesday", fav.Notes)
	assert.Equal(t, favorites.StatusDiscovered, fav.Status)

	empty := ""
	fav, err = s.Update(ctx, "job-1", favorites.Patch{Notes: &empty})
	require.NoError(t, err)
	assert.Empty(t, fav.Notes)
	assert.Equal(t, "Make hiring humane", fav.Mission)
}

func TestUpdate_InvalidStatus(t *testing.T) {
	s, backend := newStore(t, nil)
	ctx := context.Background()
	_, _, err := s.Add(ctx, sampleJob("job-1"))
	require.NoError(t, err)
	snapshot := rawStored(t, backend)

	bad := "hired"
	_, err = s.Update(ctx, "job-1", favorites.Patch{Status: &bad})
	var ve *favorites.ValidationError
	assert.ErrorAs(t, err, &ve)
	assert.Equal(t, snapshot, rawStored(t, backend))
}

func TestUpdate_PublishesStatusChanges(t *testing.T) {
	pub := &recordingPublisher{}
	s, _ := newStore(t, pub)
	ctx := context.Background()
	_, _, err := s.Add(ctx, sampleJob("job-1"))
	require.NoError(t, err)

	applied := "applied"
	_, err = s.Update(ctx, "job-1", favorites.Patch{Status: &applied})
	require.NoError(t, err)
	_, err = s.Update(ctx, "job-1", favorites.Patch{Status: &applied})
	require.NoError(t, err)

	require.Len(t, pub.events, 1, "unchanged status publishes nothing")
	assert.Equal(t, map[string]string{
		"channel": favorites.EventStatusChanged,
		"type":    favorites.EventStatusChanged,
		"key":     "job-1",
		"from":    "discovered",
		"to":      "applied",
	}, pub.events[0])
}

func TestUpdate_PublishFailureIsNotFatal(t *testing.T) {
	s, _ := newStore(t, &recordingPublisher{err: errors.New("redis down")})
	ctx := context.Background()
	_, _, err := s.Add(ctx, sampleJob("job-1"))
	require.NoError(t, err)

	offer := "offer"
	fav, err := s.Update(ctx, "job-1", favorites.Patch{Status: &offer})
	require.NoError(t, err)
	assert.Equal(t, favorites.StatusOffer, fav.Status)
}

func TestUpdate_PublishesThroughRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	s, _ := newStore(t, rdb)
	ctx := context.Background()
	_, _, err := s.Add(ctx, sampleJob("job-1"))
	require.NoError(t, err)

	mr.Close()
	ready := "ready"
	fav, err := s.Update(ctx, "job-1", favorites.Patch{Status: &ready})
	require.NoError(t, err)
	assert.Equal(t, favorites.StatusReady, fav.Status)
}

// ── Remove / List ──────────────────────────────────────────────────────────

func TestRemove(t *testing.T) {
	s, _ := newStore(t, nil)
	ctx := context.Background()
	for _, id := range []string{"job-1", "job-2", "job-3"} {
		_, _, err := s.Add(ctx, sampleJob(id))
		require.NoError(t, err)
	}

	require.NoError(t, s.Remove(ctx, "job-2"))
	favs := s.List(ctx)
	require.Len(t, favs, 2)
	assert.Equal(t, "job-1", favs[0].ID)
	assert.Equal(t, "job-3", favs[1].ID)

	assert.ErrorIs(t, s.Remove(ctx, "job-2"), favorites.ErrNotFound)
}

func TestList_NormalizesStoredStatuses(t *testing.T) {
	backend := storage.NewMemoryBackend()
	require.NoError(t, backend.Set(context.Background(), favorites.StorageKey,
		[]byte(`[{"id":"job-1","status":"OFFER"},{"id":"job-2","status":"bogus"},{"id":"job-3"}]`)))

	favs := favorites.NewStore(backend, nil, nil, nil).List(context.Background())
	require.Len(t, favs, 3)
	assert.Equal(t, favorites.StatusOffer, favs[0].Status)
	assert.Equal(t, favorites.StatusDiscovered, favs[1].Status)
	assert.Equal(t, favorites.StatusDiscovered, favs[2].Status)
}

func TestList_WithoutStorage(t *testing.T) {
	s := favorites.NewStore(nil, nil, nil, nil)
	ctx := context.Background()

	assert.Empty(t, s.List(ctx))
	_, created, err := s.Add(ctx, sampleJob("job-1"))
	require.NoError(t, err)
	assert.True(t, created)
	assert.Empty(t, s.List(ctx), "nothing persists without storage")
}

func TestStore_ConcurrentAddsKeepEveryRecord(t *testing.T) {
	s, _ := newStore(t, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = s.Add(ctx, sampleJob("job-"+string(rune('a'+i))))
		}()
	}
	wg.Wait()
	assert.Len(t, s.List(ctx), 20)
}
