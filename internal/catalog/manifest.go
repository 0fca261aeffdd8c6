package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/goccy/go-yaml"
	"go.uber.org/zap"
)

// LoadManifest reads one YAML manifest describing an app and its controls.
func LoadManifest(path string) (Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, fmt.Errorf("read manifest: %w", err)
	}

	var e Entry
	if err := yaml.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("parse manifest: %w", err)
	}
	if err := e.Validate(); err != nil {
		return Entry{}, err
	}
	return e, nil
}

// Validate checks that the manifest is well-formed.
func (e *Entry) Validate() error {
	if e.AppID == "" {
		return fmt.Errorf("manifest missing required field: id")
	}
	if e.Kind == "" {
		e.Kind = KindExec
	}

	switch e.Kind {
	case KindExec:
		if e.Exec == "" {
			return fmt.Errorf("exec app %s must specify 'exec'", e.AppID)
		}
	case KindFlatpak:
		// flatpak run takes the app id
	default:
		return fmt.Errorf("unknown app kind: %s", e.Kind)
	}

	for i, ctl := range e.Controls {
		if ctl.Operation == "" {
			return fmt.Errorf("control %d of %s has no operation", i, e.AppID)
		}
	}
	return nil
}

// LoadManifests reads every *.yaml and *.yml file in dir. Bad manifests are
// logged and skipped.
func LoadManifests(dir string, log *zap.Logger) ([]Entry, error) {
	if log == nil {
		log = zap.NewNop()
	}

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read manifest directory: %w", err)
	}

	var names []string
	for _, de := range dirEntries {
		if de.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(de.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, de.Name())
		}
	}
	sort.Strings(names)

	var entries []Entry
	for _, name := range names {
		path := filepath.Join(dir, name)
		e, err := LoadManifest(path)
		if err != nil {
			log.Warn("skipping manifest", zap.String("path", path), zap.Error(err))
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// ImportManifests loads dir and upserts the result. It returns how many
// apps were imported.
func (c *Catalog) ImportManifests(ctx context.Context, dir string) (int, error) {
	entries, err := LoadManifests(dir, c.log)
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}
	if err := c.Upsert(ctx, entries...); err != nil {
		return 0, err
	}
	c.log.Info("imported manifests", zap.String("dir", dir), zap.Int("apps", len(entries)))
	return len(entries), nil
}
