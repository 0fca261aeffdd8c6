package candidate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"app-selector/internal/request"
)

type fakeMeta struct {
	apps    map[string]App
	lookups []string
}

func (f *fakeMeta) Lookup(_ context.Context, appID string) (App, error) {
	f.lookups = append(f.lookups, appID)
	app, ok := f.apps[appID]
	if !ok {
		return App{}, errors.New("not installed")
	}
	return app, nil
}

type fakeDiscovery struct {
	matches []string
	err     error
	queries []Query
}

func (f *fakeDiscovery) Discover(_ context.Context, q Query, visit func(string)) error {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return f.err
	}
	for _, id := range f.matches {
		visit(id)
	}
	return nil
}

func newFakeMeta(ids ...string) *fakeMeta {
	m := &fakeMeta{apps: make(map[string]App)}
	for _, id := range ids {
		m.apps[id] = App{AppID: id, PackageName: id, DisplayName: "Name of " + id}
	}
	return m
}

func TestStoreClearIsIdempotent(t *testing.T) {
	s := NewStore()
	assert.Equal(t, 0, s.Len())
	s.Clear()
	assert.Equal(t, 0, s.Len())

	s.Append(App{AppID: "a"})
	s.Append(App{AppID: "b"})
	require.Equal(t, 2, s.Len())
	s.Clear()
	s.Clear()
	assert.Equal(t, 0, s.Len())
	assert.Nil(t, s.At(0))
}

func TestStoreOrderAndBounds(t *testing.T) {
	s := NewStore()
	s.Append(App{AppID: "a"})
	s.Append(App{AppID: "b", DisplayName: "Bee"})

	assert.Equal(t, []string{"a", "b"}, s.IDs())
	assert.Equal(t, "a", s.At(0).Label())
	assert.Equal(t, "Bee", s.At(1).Label())
	assert.Nil(t, s.At(-1))
	assert.Nil(t, s.At(2))

	var seen int
	s.Each(func(i int, _ *App) bool {
		seen++
		return false
	})
	assert.Equal(t, 1, seen)
}

func TestResolveKeepsDuplicatesAcrossSources(t *testing.T) {
	meta := newFakeMeta("app.gallery", "app.mail")
	disc := &fakeDiscovery{matches: []string{"app.gallery", "app.mail"}}
	r := NewResolver(meta, disc, nil)

	store := NewStore()
	err := r.Resolve(context.Background(), request.Context{
		Operation:   "share",
		MIME:        "image/png",
		URI:         "file:///tmp/a.png",
		WindowID:    "0x1",
		ExplicitIDs: []string{"app.gallery"},
	}, store)

	require.NoError(t, err)
	assert.Equal(t, []string{"app.gallery", "app.gallery", "app.mail"}, store.IDs())
	require.Len(t, disc.queries, 1)
	assert.Equal(t, Query{Operation: "share", URI: "file:///tmp/a.png", MIME: "image/png", WindowID: "0x1"}, disc.queries[0])
}

func TestResolveSkipsSingleLookupFailure(t *testing.T) {
	meta := newFakeMeta("a", "c", "d")
	disc := &fakeDiscovery{matches: []string{"missing", "d"}}
	r := NewResolver(meta, disc, nil)

	store := NewStore()
	err := r.Resolve(context.Background(), request.Context{
		Operation:   "view",
		ExplicitIDs: []string{"a", "gone", "c"},
	}, store)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "c", "d"}, store.IDs())
	assert.Equal(t, []string{"a", "gone", "c", "missing", "d"}, meta.lookups)
}

func TestResolveZeroMatchesIsSuccess(t *testing.T) {
	r := NewResolver(newFakeMeta(), &fakeDiscovery{}, nil)
	store := NewStore()
	store.Append(App{AppID: "stale"})

	err := r.Resolve(context.Background(), request.Context{Operation: "edit"}, store)

	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestResolveDiscoveryUnavailableKeepsExplicit(t *testing.T) {
	meta := newFakeMeta("a")
	disc := &fakeDiscovery{err: errors.New("database is locked")}
	r := NewResolver(meta, disc, nil)

	store := NewStore()
	err := r.Resolve(context.Background(), request.Context{
		Operation:   "view",
		ExplicitIDs: []string{"a"},
	}, store)

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDiscoveryUnavailable)
	assert.Equal(t, []string{"a"}, store.IDs())
}

func TestResolveWithoutDiscoverySource(t *testing.T) {
	r := NewResolver(newFakeMeta("a"), nil, nil)
	store := NewStore()

	err := r.Resolve(context.Background(), request.Context{
		Operation:   "view",
		ExplicitIDs: []string{"a"},
	}, store)

	assert.ErrorIs(t, err, ErrDiscoveryUnavailable)
	assert.Equal(t, 1, store.Len())
}
