package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"app-selector/internal/candidate"
)

// Discover implements candidate.DiscoverySource. Matching ids are collected
// first and visited after the query is closed, once per app, in catalog
// order.
func (c *Catalog) Discover(ctx context.Context, q candidate.Query, visit func(appID string)) error {
	if c == nil || c.db == nil {
		return candidate.ErrDiscoveryUnavailable
	}

	rows, err := c.db.QueryContext(ctx, `
		SELECT ac.app_id, ac.mime, ac.uri_scheme
		FROM app_controls ac
		JOIN apps a ON a.app_id = ac.app_id
		WHERE ac.operation = ?
		ORDER BY a.rowid, ac.id`, q.Operation)
	if err != nil {
		return fmt.Errorf("discover %s: %w", q.Operation, err)
	}

	var matches []string
	seen := make(map[string]bool)
	for rows.Next() {
		var appID, mime, scheme string
		if err := rows.Scan(&appID, &mime, &scheme); err != nil {
			rows.Close()
			return fmt.Errorf("discover scan: %w", err)
		}
		if seen[appID] {
			continue
		}
		if MatchMIME(mime, q.MIME) && MatchScheme(scheme, q.URI) {
			seen[appID] = true
			matches = append(matches, appID)
		}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("discover rows: %w", err)
	}
	rows.Close()

	c.log.Debug("discovery",
		zap.String("operation", q.Operation),
		zap.String("mime", q.MIME),
		zap.String("uri", q.URI),
		zap.String("window_id", q.WindowID),
		zap.Int("matches", len(matches)),
	)

	for _, id := range matches {
		visit(id)
	}
	return nil
}

// MatchMIME reports whether a control's MIME pattern accepts the requested
// type. Patterns: "" (request must have none), "*" or "*/*" (anything),
// "image/*" (any subtype), or an exact type. Parameters after ';' and case
// are ignored.
func MatchMIME(pattern, mime string) bool {
	pattern = normalizeMIME(pattern)
	mime = normalizeMIME(mime)

	switch pattern {
	case "*", "*/*":
		return true
	case "":
		return mime == ""
	}
	if mime == "" {
		return false
	}
	if pattern == mime {
		return true
	}

	ptype, psub, ok := strings.Cut(pattern, "/")
	if !ok || psub != "*" {
		return false
	}
	mtype, _, _ := strings.Cut(mime, "/")
	return ptype == mtype
}

// MatchScheme reports whether a control's URI scheme accepts the requested
// URI. "" requires no URI, "*" accepts anything, otherwise schemes compare
// case-insensitively. A URI without a scheme is treated as "file".
func MatchScheme(pattern, uri string) bool {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	uri = strings.TrimSpace(uri)

	switch pattern {
	case "*":
		return true
	case "":
		return uri == ""
	}
	if uri == "" {
		return false
	}
	return pattern == uriScheme(uri)
}

func uriScheme(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" {
		return "file"
	}
	return strings.ToLower(u.Scheme)
}

func normalizeMIME(s string) string {
	s, _, _ = strings.Cut(s, ";")
	return strings.ToLower(strings.TrimSpace(s))
}
