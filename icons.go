package main

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Row glyphs standing in for icons.
const (
	iconNone    = " "
	iconMissing = "?"
	iconVector  = "◇"
	iconRaster  = "▣"
	iconOther   = "□"
)

// iconLoader detects icon files on first use and caches the glyph. It is
// only called for rows being rendered.
type iconLoader struct {
	cache map[string]string
	loads int
}

func newIconLoader() *iconLoader {
	return &iconLoader{cache: make(map[string]string)}
}

func (l *iconLoader) glyph(path string) string {
	if path == "" {
		return iconNone
	}
	if g, ok := l.cache[path]; ok {
		return g
	}
	l.loads++
	g := iconGlyph(path)
	l.cache[path] = g
	return g
}

func iconGlyph(path string) string {
	mt, err := mimetype.DetectFile(path)
	if err != nil {
		return iconMissing
	}
	switch {
	case mt.Is("image/svg+xml"):
		return iconVector
	case strings.HasPrefix(mt.String(), "image/"):
		return iconRaster
	default:
		return iconOther
	}
}
