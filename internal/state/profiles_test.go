package state

import (
	"context"
	"errors"
	"sync"
	"testing"

	"tunnelctl/internal/profile"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSource returns the queued responses in order, repeating the last one.
type fakeSource struct {
	mu        sync.Mutex
	responses []fakeResponse
	calls     int
}

type fakeResponse struct {
	list []profile.Profile
	err  error
}

func (f *fakeSource) ListProfiles(ctx context.Context) ([]profile.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.calls
	if i >= len(f.responses) {
		i = len(f.responses) - 1
	}
	f.calls++
	r := f.responses[i]
	return r.list, r.err
}

func profiles(ids ...string) []profile.Profile {
	out := make([]profile.Profile, 0, len(ids))
	for _, id := range ids {
		out = append(out, profile.Profile{ID: id, Name: "Profile " + id, Host: "203.0.113.1", Port: 9999})
	}
	return out
}

func TestProfiles_LoadReplacesWholesale(t *testing.T) {
	src := &fakeSource{responses: []fakeResponse{
		{list: profiles("p1", "p2")},
		{list: profiles("p3")},
	}}
	p := NewProfiles(src, nil)

	p.Load(context.Background())
	assert.Len(t, p.List(), 2)

	p.Load(context.Background())
	list := p.List()
	require.Len(t, list, 1)
	assert.Equal(t, "p3", list[0].ID)
	assert.Equal(t, 2, p.LoadStats().Loads)
}

func TestProfiles_DanglingActiveScenario(t *testing.T) {
	src := &fakeSource{responses: []fakeResponse{
		{list: profiles("p1", "p2")},
		{list: profiles("p2")},
	}}
	p := NewProfiles(src, nil)
	p.Load(context.Background())
	p.Select("p1")

	active := p.Active()
	require.NotNil(t, active)
	assert.Equal(t, "p1", active.ID)

	var seen []*profile.Profile
	p.SubscribeActive(func(a *profile.Profile) { seen = append(seen, a) })

	p.Load(context.Background())
	assert.Nil(t, p.Active())
	assert.Equal(t, "p1", p.ActiveID(), "the selection itself is kept")
	require.Len(t, seen, 2)
	assert.Nil(t, seen[1])
}

func TestProfiles_SelectUnknownID(t *testing.T) {
	p := NewProfiles(&fakeSource{responses: []fakeResponse{{list: profiles("p1")}}}, nil)
	p.Load(context.Background())

	p.Select("nope")
	assert.Equal(t, "nope", p.ActiveID())
	assert.Nil(t, p.Active())

	p.Select("")
	assert.Nil(t, p.Active())
}

func TestProfiles_LoadFailureKeepsCollection(t *testing.T) {
	boom := errors.New("backend unreachable")
	src := &fakeSource{responses: []fakeResponse{
		{list: profiles("p1")},
		{err: boom},
	}}

	var sunk []error
	p := NewProfiles(src, func(err error) { sunk = append(sunk, err) })

	p.Load(context.Background())
	p.Load(context.Background())

	assert.Len(t, p.List(), 1)
	require.Len(t, sunk, 1)
	assert.ErrorIs(t, sunk[0], boom)

	stats := p.LoadStats()
	assert.Equal(t, 1, stats.Loads)
	assert.Equal(t, 1, stats.Failures)
	assert.Equal(t, "backend unreachable", stats.LastError)
}

func TestProfiles_NoSource(t *testing.T) {
	var sunk error
	p := NewProfiles(nil, func(err error) { sunk = err })
	p.Load(context.Background())

	assert.ErrorIs(t, sunk, ErrNoProfileSource)
	assert.Empty(t, p.List())
}

func TestProfiles_LoadAsync(t *testing.T) {
	p := NewProfiles(&fakeSource{responses: []fakeResponse{{list: profiles("p1", "p2", "p3")}}}, nil)

	<-p.LoadAsync(context.Background())
	assert.Len(t, p.List(), 3)
}

func TestProfiles_ListIsACopy(t *testing.T) {
	in := profiles("p1")
	in[0].Forward = []string{"8080:127.0.0.1:80"}
	p := NewProfiles(&fakeSource{responses: []fakeResponse{{list: in}}}, nil)
	p.Load(context.Background())

	in[0].Forward[0] = "mutated"
	got := p.List()
	got[0].Name = "changed"

	fresh := p.List()
	assert.Equal(t, "Profile p1", fresh[0].Name)
	assert.Equal(t, []string{"8080:127.0.0.1:80"}, fresh[0].Forward)
}

func TestProfiles_Subscriptions(t *testing.T) {
	p := NewProfiles(&fakeSource{responses: []fakeResponse{{list: profiles("p1")}}}, nil)

	var ids []string
	var lists [][]profile.Profile
	p.SubscribeActiveID(func(id string) { ids = append(ids, id) })
	p.SubscribeList(func(l []profile.Profile) { lists = append(lists, l) })

	p.Select("p1")
	p.Select("p1")
	p.Load(context.Background())

	assert.Equal(t, []string{"", "p1"}, ids)
	require.Len(t, lists, 2)
	assert.Empty(t, lists[0])
	assert.Len(t, lists[1], 1)
}

func TestProfiles_Reset(t *testing.T) {
	p := NewProfiles(&fakeSource{responses: []fakeResponse{{list: profiles("p1")}}}, nil)
	p.Load(context.Background())
	p.Select("p1")

	p.Reset()
	assert.Empty(t, p.List())
	assert.Empty(t, p.ActiveID())
	assert.Nil(t, p.Active())
	assert.Equal(t, LoadStats{}, p.LoadStats())
}

func TestProfiles_ReloadReportsItsOwnOutcome(t *testing.T) {
	boom := errors.New("profiles.json locked")
	src := &fakeSource{responses: []fakeResponse{
		{err: boom},
		{list: profiles("p1", "p2")},
		{err: boom},
	}}

	var sunk []error
	p := NewProfiles(src, func(err error) { sunk = append(sunk, err) })

	p.Load(context.Background())
	require.Equal(t, 1, p.LoadStats().Failures)

	n, err := p.Reload(context.Background())
	require.NoError(t, err, "an earlier failure does not leak into this result")
	assert.Equal(t, 2, n)
	assert.Len(t, p.List(), 2)

	n, err = p.Reload(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Zero(t, n)
	assert.Len(t, p.List(), 2, "failed reload keeps the last good collection")
	assert.Len(t, sunk, 2)

	_, err = NewProfiles(nil, nil).Reload(context.Background())
	assert.ErrorIs(t, err, ErrNoProfileSource)
}
