package catalog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"app-selector/internal/candidate"
)

func openTestCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "catalog.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c
}

func seedCatalog(t *testing.T, c *Catalog) {
	t.Helper()
	err := c.Upsert(context.Background(),
		Entry{
			AppID: "app.gallery", Label: "Gallery", Exec: "/usr/bin/gallery %u", Icon: "/icons/gallery.png",
			Controls: []Control{{Operation: "share", MIME: "image/*", Scheme: "file"}},
		},
		Entry{
			AppID: "app.mail", Label: "Mail", Exec: "/usr/bin/mail",
			Controls: []Control{
				{Operation: "share", MIME: "*", Scheme: "*"},
				{Operation: "share", MIME: "", Scheme: "mailto"},
			},
		},
		Entry{
			AppID: "app.browser", Label: "Browser", Exec: "/usr/bin/browser %u",
			Controls: []Control{{Operation: "view", MIME: "", Scheme: "https"}},
		},
	)
	require.NoError(t, err)
}

func discoverIDs(t *testing.T, c *Catalog, q candidate.Query) []string {
	t.Helper()
	var ids []string
	require.NoError(t, c.Discover(context.Background(), q, func(id string) {
		ids = append(ids, id)
	}))
	return ids
}

func TestOpenIsReentrant(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	c1, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, c1.Close())

	c2, err := Open(path, nil)
	require.NoError(t, err)
	require.NoError(t, c2.Close())
}

func TestLookup(t *testing.T) {
	c := openTestCatalog(t)
	seedCatalog(t, c)

	app, err := c.Lookup(context.Background(), "app.gallery")
	require.NoError(t, err)
	assert.Equal(t, candidate.App{
		PackageName: "app.gallery",
		DisplayName: "Gallery",
		AppID:       "app.gallery",
		ExecPath:    "/usr/bin/gallery %u",
		IconPath:    "/icons/gallery.png",
	}, app)

	_, err = c.Lookup(context.Background(), "app.unknown")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDiscoverMatchesOncePerApp(t *testing.T) {
	c := openTestCatalog(t)
	seedCatalog(t, c)

	ids := discoverIDs(t, c, candidate.Query{Operation: "share", MIME: "image/png", URI: "file:///tmp/a.png"})
	assert.Equal(t, []string{"app.gallery", "app.mail"}, ids)

	ids = discoverIDs(t, c, candidate.Query{Operation: "share", URI: "mailto:someone@example.com"})
	assert.Equal(t, []string{"app.mail"}, ids)

	ids = discoverIDs(t, c, candidate.Query{Operation: "view", URI: "https://example.com"})
	assert.Equal(t, []string{"app.browser"}, ids)

	assert.Empty(t, discoverIDs(t, c, candidate.Query{Operation: "edit"}))
}

func TestDiscoverVisitorCanLookup(t *testing.T) {
	c := openTestCatalog(t)
	seedCatalog(t, c)

	r := candidate.NewResolver(c, c, nil)
	store := candidate.NewStore()
	err := r.Resolve(context.Background(), requestFor("share", "image/jpeg", "/tmp/b.jpg"), store)

	require.NoError(t, err)
	assert.Equal(t, []string{"app.gallery", "app.mail"}, store.IDs())
}

func TestUpsertReplacesControls(t *testing.T) {
	c := openTestCatalog(t)
	seedCatalog(t, c)

	require.NoError(t, c.Upsert(context.Background(), Entry{
		AppID: "app.gallery", Label: "Photos", Exec: "/usr/bin/photos",
		Controls: []Control{{Operation: "edit", MIME: "image/*", Scheme: "*"}},
	}))

	assert.Equal(t, []string{"app.mail"},
		discoverIDs(t, c, candidate.Query{Operation: "share", MIME: "image/png", URI: "file:///a.png"}))
	assert.Equal(t, []string{"app.gallery"},
		discoverIDs(t, c, candidate.Query{Operation: "edit", MIME: "image/png", URI: "/a.png"}))

	entries, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "Browser", entries[0].Label)
	assert.Equal(t, "Photos", entries[2].Label)
	assert.Len(t, entries[2].Controls, 1)

	ops, err := c.Operations(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"edit", "share", "view"}, ops)
}

func TestMatchMIME(t *testing.T) {
	tests := []struct {
		pattern, mime string
		want          bool
	}{
		{"", "", true},
		{"", "text/plain", false},
		{"*", "", true},
		{"*/*", "video/mp4", true},
		{"image/*", "image/png", true},
		{"image/*", "IMAGE/PNG; q=1", true},
		{"image/*", "video/mp4", false},
		{"image/*", "", false},
		{"text/plain", "text/plain", true},
		{"text/plain", "text/html", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchMIME(tt.pattern, tt.mime), "MatchMIME(%q, %q)", tt.pattern, tt.mime)
	}
}

func TestMatchScheme(t *testing.T) {
	tests := []struct {
		pattern, uri string
		want         bool
	}{
		{"", "", true},
		{"", "https://x", false},
		{"*", "", true},
		{"https", "HTTPS://example.com", true},
		{"file", "/tmp/a.png", true},
		{"file", "https://x", false},
		{"mailto", "", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, MatchScheme(tt.pattern, tt.uri), "MatchScheme(%q, %q)", tt.pattern, tt.uri)
	}
}

func TestLoadManifests(t *testing.T) {
	dir := t.TempDir()
	write := func(name, body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644))
	}
	write("gallery.yaml", `
id: app.gallery
label: Gallery
exec: /usr/bin/gallery %u
icon: /icons/gallery.svg
controls:
  - operation: share
    mime: image/*
    uri: file
`)
	write("viewer.yml", `
id: org.example.Viewer
label: Viewer
kind: flatpak
`)
	write("broken.yaml", "id: app.broken\nkind: exec\n")
	write("notes.txt", "ignored")

	entries, err := LoadManifests(dir, nil)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, "app.gallery", entries[0].AppID)
	assert.Equal(t, KindExec, entries[0].Kind)
	assert.Equal(t, []Control{{Operation: "share", MIME: "image/*", Scheme: "file"}}, entries[0].Controls)
	assert.Equal(t, KindFlatpak, entries[1].Kind)

	c := openTestCatalog(t)
	n, err := c.ImportManifests(context.Background(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestParseFlatpakList(t *testing.T) {
	entries := parseFlatpakList("org.mozilla.firefox\tFirefox\n\norg.gnome.Maps\tMaps\ncom.example.Bare\n")

	require.Len(t, entries, 3)
	assert.Equal(t, "Firefox", entries[0].Label)
	assert.Equal(t, "Maps", entries[1].Label)
	assert.Equal(t, "com.example.Bare", entries[2].Label)
	assert.Equal(t, KindFlatpak, entries[2].Kind)
}
