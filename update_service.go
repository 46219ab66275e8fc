package buildwatch

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/cloudcopper/buildwatch/domain"
	"github.com/cloudcopper/buildwatch/domain/models"
	"github.com/cloudcopper/buildwatch/domain/vo"
	"github.com/cloudcopper/buildwatch/ports"
	"github.com/oklog/ulid/v2"
)

// UpdateService decides whether the app update event
// must be notified and fans it out to every configured target:
//   - untracked apps are filtered
//   - branch build is taken from event or from platform snapshot
//   - build cache de-duplicates already notified builds
//   - every target is dispatched independently
type UpdateService struct {
	log      ports.Logger
	cfg      domain.TrackingConfig
	cache    domain.BuildCache
	notifier ports.Notifier
	platform ports.Platform
	settle   time.Duration

	locksMu sync.Mutex
	locks   map[models.AppID]*sync.Mutex

	timerMu sync.Mutex
	timer   *time.Timer
	closed  bool

	dispatchWg  sync.WaitGroup
	bootstrapWg sync.WaitGroup
}

func NewUpdateService(log ports.Logger, cfg domain.TrackingConfig, cache domain.BuildCache, notifier ports.Notifier, platform ports.Platform, settle time.Duration) *UpdateService {
	log = log.With(slog.String("entity", "UpdateService"))
	s := &UpdateService{
		log:      log,
		cfg:      cfg,
		cache:    cache,
		notifier: notifier,
		platform: platform,
		settle:   settle,
		locks:    make(map[models.AppID]*sync.Mutex),
	}
	log.Info("created", slog.Duration("settle", settle))
	return s
}

// Handlers returns platform callbacks bound to the service
func (s *UpdateService) Handlers() ports.PlatformHandlers {
	return ports.PlatformHandlers{
		OnUpdate: func(event models.UpdateEvent) {
			s.HandleUpdate(event)
		},
		OnError:    s.OnError,
		OnLoggedIn: s.OnLoggedIn,
	}
}

func (s *UpdateService) HandleUpdate(event models.UpdateEvent) vo.UpdateState {
	log := s.log.With(slog.String("appID", event.AppID))

	app, buildID, state := s.check(log, event)
	if state != vo.UpdateReceived {
		log.Debug("update processed", slog.String("state", state.String()))
		return state
	}

	log.Info("build updated, notifying", slog.String("buildID", buildID), slog.Int("targets", len(app.Targets)))
	for _, target := range app.Targets {
		s.dispatch(log, event.AppID, target)
	}
	return vo.UpdateDispatched
}

// check runs the filtering steps under the app lock.
// It returns UpdateReceived when the event must be dispatched.
func (s *UpdateService) check(log ports.Logger, event models.UpdateEvent) (*models.TrackedApp, models.BuildID, vo.UpdateState) {
	lock := s.appLock(event.AppID)
	lock.Lock()
	defer lock.Unlock()

	app, ok := s.cfg.Application(event.AppID)
	if !ok {
		return nil, "", vo.UpdateFilteredUntracked
	}

	branch := app.BranchOrDefault()
	buildID, ok := event.BranchBuilds[branch]
	if !ok {
		buildID, ok = s.platform.BranchBuild(event.AppID, branch)
	}
	if !ok {
		log.Warn("branch is not available", slog.String("branch", branch))
		return app, "", vo.UpdateFilteredBranchUnavailable
	}

	if !s.cache.IsBuildUpdated(event.AppID, buildID) {
		return app, buildID, vo.UpdateCheckedUnchanged
	}
	return app, buildID, vo.UpdateReceived
}

func (s *UpdateService) appLock(appID models.AppID) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	lock, ok := s.locks[appID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[appID] = lock
	}
	return lock
}

func (s *UpdateService) dispatch(log ports.Logger, appID models.AppID, target models.Target) {
	dispatchID := ulid.Make().String()
	log = log.With(slog.String("dispatchID", dispatchID), slog.Any("target", target))
	log.Debug("dispatch started")

	s.dispatchWg.Add(1)
	go func() {
		defer s.dispatchWg.Done()
		err := s.notifier.Send(context.Background(), appID, target)
		s.report(log, err)
	}()
}

// report is the single place of dispatch outcome reporting
func (s *UpdateService) report(log ports.Logger, err error) {
	if err != nil {
		log.Error("dispatch failed", slog.Any("err", err))
		return
	}
	log.Info("dispatch complete")
}

func (s *UpdateService) OnError(err error) {
	s.log.Error("platform error", slog.Any("err", err))
}

// OnLoggedIn schedules the bootstrap pass over all tracked apps
// after the settle delay. Repeated calls reschedule it.
func (s *UpdateService) OnLoggedIn() {
	s.timerMu.Lock()
	defer s.timerMu.Unlock()
	if s.closed {
		return
	}
	if s.timer != nil && s.timer.Stop() {
		s.bootstrapWg.Done()
	}
	s.log.Info("logged in, bootstrap scheduled", slog.Duration("settle", s.settle))
	s.bootstrapWg.Add(1)
	s.timer = time.AfterFunc(s.settle, func() {
		defer s.bootstrapWg.Done()
		s.Bootstrap()
	})
}

// Bootstrap checks every tracked app against the platform snapshot
func (s *UpdateService) Bootstrap() {
	apps := []models.AppID{}
	for appID := range s.cfg.Applications() {
		apps = append(apps, appID)
	}
	sort.Strings(apps)
	s.log.Info("bootstrap started", slog.Int("apps", len(apps)))
	for _, appID := range apps {
		s.HandleUpdate(models.UpdateEvent{AppID: appID})
	}
	s.log.Info("bootstrap complete")
}

// Wait waits for pending bootstrap and all started dispatches
func (s *UpdateService) Wait() {
	s.bootstrapWg.Wait()
	s.dispatchWg.Wait()
}

func (s *UpdateService) Close() {
	s.log.Info("closing")
	s.timerMu.Lock()
	s.closed = true
	if s.timer != nil && s.timer.Stop() {
		s.bootstrapWg.Done()
	}
	s.timerMu.Unlock()
	s.Wait()
}
