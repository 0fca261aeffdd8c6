// Session controller state: the per-process picker session and its teardown.
package main

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"app-selector/internal/candidate"
	"app-selector/internal/launch"
	"app-selector/internal/request"
)

type sessionState int

const (
	stateAwaitingRequest sessionState = iota
	stateResolving
	statePresenting
	stateNoMatchInfo
	stateLaunchRequested
	stateTerminating
	stateTerminated
)

func (s sessionState) String() string {
	switch s {
	case stateAwaitingRequest:
		return "awaiting-request"
	case stateResolving:
		return "resolving"
	case statePresenting:
		return "presenting"
	case stateNoMatchInfo:
		return "no-match-info"
	case stateLaunchRequested:
		return "launch-requested"
	case stateTerminating:
		return "terminating"
	case stateTerminated:
		return "terminated"
	default:
		return "unknown"
	}
}

// resolver fills the store for one request.
type resolver interface {
	Resolve(ctx context.Context, rc request.Context, into *candidate.Store) error
}

// callerNotifier tells the caller how the session ended.
type callerNotifier interface {
	Notify(ctx context.Context, b *request.Bundle) launch.Notification
}

type sessionConfig struct {
	watchdogTimeout time.Duration
	infoDuration    time.Duration
	startupPoll     time.Duration
	pauseTerminate  bool
}

type watchdog struct {
	armed bool
	gen   int
}

// teardownStats counts what the terminate handler released. The counts
// let tests check that each resource is released exactly once.
type teardownStats struct {
	runs              int
	storeClears       int
	presenterReleases int
	watchdogCancels   int
}

// session is the state shared by every copy of the bubbletea model.
type session struct {
	id  string
	ctx context.Context
	log *zap.Logger
	cfg sessionConfig

	resolver resolver
	launcher launch.Launcher
	notifier callerNotifier
	text     *stringTable
	icons    *iconLoader

	state     sessionState
	bundle    *request.Bundle
	req       request.Context
	store     *candidate.Store
	presenter *presenter
	watchdog  watchdog
	infoGen   int

	// initialized is set once the list is first shown. Later requests
	// refresh that list instead of building a new one.
	initialized    bool
	launched       bool
	launchedApp    string
	pauseTerminate bool

	teardown teardownStats
}

func newSession(ctx context.Context, r resolver, l launch.Launcher, n callerNotifier, text *stringTable, cfg sessionConfig, log *zap.Logger) *session {
	if log == nil {
		log = zap.NewNop()
	}
	id := uuid.NewString()
	return &session{
		id:             id,
		ctx:            ctx,
		log:            log.With(zap.String("session", id)),
		cfg:            cfg,
		resolver:       r,
		launcher:       l,
		notifier:       n,
		text:           text,
		icons:          newIconLoader(),
		store:          candidate.NewStore(),
		pauseTerminate: cfg.pauseTerminate,
	}
}

func (s *session) active() bool {
	return s.state != stateTerminating && s.state != stateTerminated
}

func (s *session) armWatchdog() int {
	s.watchdog.gen++
	s.watchdog.armed = true
	return s.watchdog.gen
}

func (s *session) cancelWatchdog() {
	if !s.watchdog.armed {
		return
	}
	s.watchdog.armed = false
	s.watchdog.gen++
	s.teardown.watchdogCancels++
}

// nextInfo invalidates any pending info timer and returns the new generation.
func (s *session) nextInfo() int {
	s.infoGen++
	return s.infoGen
}

// terminate runs the teardown once. Later calls return false and do nothing.
func (s *session) terminate(reason string) bool {
	if !s.active() {
		return false
	}
	from := s.state
	s.state = stateTerminating
	s.teardown.runs++

	s.cancelWatchdog()
	s.nextInfo()

	if s.notifier != nil && s.bundle != nil {
		n := s.notifier.Notify(s.ctx, s.bundle)
		s.log.Info("caller notified", zap.Stringer("notification", n))
	}

	s.store.Clear()
	s.teardown.storeClears++

	if s.presenter != nil {
		s.presenter.dismiss()
		s.presenter = nil
		s.teardown.presenterReleases++
	}

	s.bundle = nil
	s.state = stateTerminated

	s.log.Info("session terminated",
		zap.String("reason", reason),
		zap.Stringer("from", from),
		zap.Bool("launched", s.launched),
		zap.String("app_id", s.launchedApp),
	)
	return true
}
