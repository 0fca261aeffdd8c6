package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"app-selector/internal/candidate"
)

// Control is one app control an application accepts. Empty MIME or Scheme
// means the request must not carry one; "*" accepts anything.
type Control struct {
	Operation string `yaml:"operation"`
	MIME      string `yaml:"mime"`
	Scheme    string `yaml:"uri"`
}

// Entry is a catalog row with its controls.
type Entry struct {
	AppID    string    `yaml:"id"`
	Package  string    `yaml:"package"`
	Label    string    `yaml:"label"`
	Exec     string    `yaml:"exec"`
	Icon     string    `yaml:"icon"`
	Kind     Kind      `yaml:"kind"`
	Controls []Control `yaml:"controls"`
}

// App converts the entry to a candidate record.
func (e Entry) App() candidate.App {
	return candidate.App{
		PackageName: e.Package,
		DisplayName: e.Label,
		AppID:       e.AppID,
		ExecPath:    e.Exec,
		IconPath:    e.Icon,
	}
}

// Upsert inserts or replaces entries, including their controls.
func (c *Catalog) Upsert(ctx context.Context, entries ...Entry) error {
	return c.withTx(ctx, func(tx *sql.Tx) error {
		for _, e := range entries {
			if e.AppID == "" {
				return fmt.Errorf("upsert: empty app id")
			}
			if e.Kind == "" {
				e.Kind = KindExec
			}
			if e.Package == "" {
				e.Package = e.AppID
			}

			_, err := tx.ExecContext(ctx, `
				INSERT INTO apps (app_id, package, label, exec, icon, kind)
				VALUES (?, ?, ?, ?, ?, ?)
				ON CONFLICT(app_id) DO UPDATE SET
					package = excluded.package,
					label = excluded.label,
					exec = excluded.exec,
					icon = excluded.icon,
					kind = excluded.kind`,
				e.AppID, e.Package, e.Label, e.Exec, e.Icon, string(e.Kind))
			if err != nil {
				return fmt.Errorf("upsert %s: %w", e.AppID, err)
			}

			if _, err := tx.ExecContext(ctx, `DELETE FROM app_controls WHERE app_id = ?`, e.AppID); err != nil {
				return fmt.Errorf("reset controls %s: %w", e.AppID, err)
			}
			for _, ctl := range e.Controls {
				if ctl.Operation == "" {
					continue
				}
				_, err := tx.ExecContext(ctx, `
					INSERT INTO app_controls (app_id, operation, mime, uri_scheme)
					VALUES (?, ?, ?, ?)`,
					e.AppID, ctl.Operation, ctl.MIME, ctl.Scheme)
				if err != nil {
					return fmt.Errorf("insert control %s: %w", e.AppID, err)
				}
			}
			c.log.Debug("catalog upsert",
				zap.String("app_id", e.AppID),
				zap.String("kind", string(e.Kind)),
				zap.Int("controls", len(e.Controls)),
			)
		}
		return nil
	})
}

// Get returns the entry for appID without its controls.
func (c *Catalog) Get(ctx context.Context, appID string) (Entry, error) {
	var e Entry
	var kind string
	err := c.db.QueryRowContext(ctx, `
		SELECT app_id, package, label, exec, icon, kind
		FROM apps WHERE app_id = ?`, appID).
		Scan(&e.AppID, &e.Package, &e.Label, &e.Exec, &e.Icon, &kind)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%s: %w", appID, ErrNotFound)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("get %s: %w", appID, err)
	}
	e.Kind = Kind(kind)
	return e, nil
}

// Lookup implements candidate.MetadataSource.
func (c *Catalog) Lookup(ctx context.Context, appID string) (candidate.App, error) {
	e, err := c.Get(ctx, appID)
	if err != nil {
		return candidate.App{}, err
	}
	return e.App(), nil
}

// List returns every entry with its controls, ordered by label.
func (c *Catalog) List(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT app_id, package, label, exec, icon, kind
		FROM apps ORDER BY label, app_id`)
	if err != nil {
		return nil, fmt.Errorf("list apps: %w", err)
	}

	var entries []Entry
	index := make(map[string]int)
	for rows.Next() {
		var e Entry
		var kind string
		if err := rows.Scan(&e.AppID, &e.Package, &e.Label, &e.Exec, &e.Icon, &kind); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan app: %w", err)
		}
		e.Kind = Kind(kind)
		index[e.AppID] = len(entries)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	ctlRows, err := c.db.QueryContext(ctx, `
		SELECT app_id, operation, mime, uri_scheme FROM app_controls ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list controls: %w", err)
	}
	defer ctlRows.Close()

	for ctlRows.Next() {
		var appID string
		var ctl Control
		if err := ctlRows.Scan(&appID, &ctl.Operation, &ctl.MIME, &ctl.Scheme); err != nil {
			return nil, fmt.Errorf("scan control: %w", err)
		}
		if i, ok := index[appID]; ok {
			entries[i].Controls = append(entries[i].Controls, ctl)
		}
	}
	return entries, ctlRows.Err()
}

// Operations returns the distinct operations any app declares.
func (c *Catalog) Operations(ctx context.Context) ([]string, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT DISTINCT operation FROM app_controls ORDER BY operation`)
	if err != nil {
		return nil, fmt.Errorf("list operations: %w", err)
	}
	defer rows.Close()

	var ops []string
	for rows.Next() {
		var op string
		if err := rows.Scan(&op); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}
