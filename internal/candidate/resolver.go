package candidate

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"app-selector/internal/request"
)

// ErrDiscoveryUnavailable means the discovery query could not be issued.
// It fails the resolution pass but not the session.
var ErrDiscoveryUnavailable = errors.New("discovery unavailable")

// Query is what the discovery source matches applications against.
type Query struct {
	Operation string
	URI       string
	MIME      string
	WindowID  string
}

// MetadataSource resolves an application id to its metadata.
type MetadataSource interface {
	Lookup(ctx context.Context, appID string) (App, error)
}

// DiscoverySource enumerates the application ids matching a query. visit is
// called once per match, synchronously, before Discover returns.
type DiscoverySource interface {
	Discover(ctx context.Context, q Query, visit func(appID string)) error
}

// Resolver builds a Store from the explicit list and the discovery source.
type Resolver struct {
	meta      MetadataSource
	discovery DiscoverySource
	log       *zap.Logger
}

// NewResolver returns a resolver. A nil logger discards output.
func NewResolver(meta MetadataSource, discovery DiscoverySource, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{meta: meta, discovery: discovery, log: log}
}

// Resolve clears into and refills it for rc. Lookup failures for single ids
// are skipped. Zero candidates is a successful pass; the error is non-nil only
// when discovery could not run, in which case into keeps the explicit-list
// entries.
func (r *Resolver) Resolve(ctx context.Context, rc request.Context, into *Store) error {
	into.Clear()

	for i, id := range rc.ExplicitIDs {
		r.log.Debug("explicit candidate", zap.Int("index", i), zap.String("app_id", id))
		r.add(ctx, id, into)
	}

	if r.discovery == nil {
		return fmt.Errorf("%w: no discovery source", ErrDiscoveryUnavailable)
	}

	q := Query{
		Operation: rc.Operation,
		URI:       rc.URI,
		MIME:      rc.MIME,
		WindowID:  rc.WindowID,
	}
	err := r.discovery.Discover(ctx, q, func(appID string) {
		r.add(ctx, appID, into)
	})
	if err != nil {
		if errors.Is(err, ErrDiscoveryUnavailable) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrDiscoveryUnavailable, err)
	}

	r.log.Debug("resolved candidates",
		zap.String("operation", rc.Operation),
		zap.Int("count", into.Len()),
	)
	return nil
}

func (r *Resolver) add(ctx context.Context, appID string, into *Store) {
	if r.meta == nil {
		r.log.Warn("no metadata source", zap.String("app_id", appID))
		return
	}
	app, err := r.meta.Lookup(ctx, appID)
	if err != nil {
		r.log.Warn("candidate lookup failed", zap.String("app_id", appID), zap.Error(err))
		return
	}
	if app.AppID == "" {
		app.AppID = appID
	}
	into.Append(app)
}
