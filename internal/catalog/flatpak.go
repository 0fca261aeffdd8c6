package catalog

import (
	"context"
	"os/exec"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// listFlatpak returns installed Flatpak applications as catalog entries.
// Returns nil if flatpak is not available or the command fails.
func listFlatpak() []Entry {
	out, err := exec.Command("flatpak", "list", "--app", "--columns=application,name").Output()
	if err != nil {
		return nil
	}
	return parseFlatpakList(string(out))
}

// parseFlatpakList parses `flatpak list --columns=application,name` output.
func parseFlatpakList(out string) []Entry {
	var entries []Entry
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// Format: com.example.App\tApp Name
		parts := strings.SplitN(line, "\t", 2)
		e := Entry{AppID: parts[0], Package: parts[0], Kind: KindFlatpak}
		if len(parts) >= 2 && strings.TrimSpace(parts[1]) != "" {
			e.Label = strings.TrimSpace(parts[1])
		} else {
			e.Label = parts[0]
		}
		entries = append(entries, e)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Label < entries[j].Label
	})
	return entries
}

// ImportFlatpak registers every installed Flatpak app. Controls already
// known for an app (e.g. from a manifest) are kept.
func (c *Catalog) ImportFlatpak(ctx context.Context) (int, error) {
	entries := listFlatpak()
	if len(entries) == 0 {
		return 0, nil
	}

	existing, err := c.List(ctx)
	if err != nil {
		return 0, err
	}
	known := make(map[string]Entry, len(existing))
	for _, x := range existing {
		known[x.AppID] = x
	}
	for i, e := range entries {
		if x, ok := known[e.AppID]; ok {
			entries[i].Controls = x.Controls
			entries[i].Icon = x.Icon
		}
	}

	if err := c.Upsert(ctx, entries...); err != nil {
		return 0, err
	}
	c.log.Info("imported flatpak apps", zap.Int("apps", len(entries)))
	return len(entries), nil
}
