package maintenance_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/maintenance"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/objectstore"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/projects/domain"
	"github.com/RileyLePrell/Cramerton-Development-Status-Tracker/internal/projects/store"
)

type fakePurger struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
}

func (f *fakePurger) Purge(_ context.Context, cutoff time.Time) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cutoffs = append(f.cutoffs, cutoff)
	return len(f.cutoffs), f.err
}

func (f *fakePurger) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.cutoffs)
}

func TestRunOnce_Cutoff(t *testing.T) {
	now := time.Date(2025, 6, 1, 3, 0, 0, 0, time.UTC)
	p := &fakePurger{}
	s := maintenance.NewScheduler(p, maintenance.Options{
		Retention: 48 * time.Hour,
		Clock:     func() time.Time { return now },
	})

	n, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, now.Add(-48*time.Hour), p.cutoffs[0])

	p.err = errors.New("bucket down")
	_, err = s.RunOnce(context.Background())
	assert.Error(t, err)
}

func TestStart_InvalidSchedule(t *testing.T) {
	s := maintenance.NewScheduler(&fakePurger{}, maintenance.Options{Schedule: "every night"})
	assert.Error(t, s.Start())
}

func TestStart_Runs(t *testing.T) {
	p := &fakePurger{}
	s := maintenance.NewScheduler(p, maintenance.Options{Schedule: "* * * * * *", Retention: time.Hour})
	require.NoError(t, s.Start())
	defer s.Stop(context.Background())

	assert.Eventually(t, func() bool { return p.calls() > 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestRunOnce_PurgesStore(t *testing.T) {
	mem := objectstore.NewMemory()
	clock := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	st := store.New(mem, store.Options{Clock: func() time.Time { return clock }})
	ctx := context.Background()

	_, err := st.Create(ctx, domain.ProjectFields{ID: "old", Category: domain.CategoryRoad, Title: "Old", Status: domain.StatusProposed})
	require.NoError(t, err)
	require.NoError(t, st.Delete(ctx, "old", 0))

	s := maintenance.NewScheduler(st, maintenance.Options{
		Retention: 24 * time.Hour,
		Clock:     func() time.Time { return clock.Add(72 * time.Hour) },
	})
	n, err := s.RunOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Zero(t, mem.Len())
}
