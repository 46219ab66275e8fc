package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cloudcopper/buildwatch/domain/errors"
	"github.com/cloudcopper/buildwatch/domain/models"
	"github.com/cloudcopper/buildwatch/lib"
	"github.com/cloudcopper/buildwatch/ports"
	"github.com/google/uuid"
)

const ErrAlreadyLoggedOn = lib.Error("already logged on")
const ErrNoCredentials = lib.Error("no credentials")

type steamCmdBranch struct {
	BuildID     json.Number `json:"buildid"`
	TimeUpdated json.Number `json:"timeupdated"`
}

type steamCmdApp struct {
	ChangeNumber json.Number `json:"_change_number"`
	Depots       struct {
		Branches map[string]steamCmdBranch `json:"branches"`
	} `json:"depots"`
}

type steamCmdResponse struct {
	Status string                 `json:"status"`
	Data   map[string]steamCmdApp `json:"data"`
}

// appInfo is the snapshot entry of one app
type appInfo struct {
	changeNumber string
	builds       models.BranchBuilds
	updated      map[string]time.Time
}

// SteamCmdAdapter is the platform client over the public SteamCMD info api.
// It polls the tracked apps, keeps snapshot of their branches
// and emits update event when the app info changes.
// The very first info of an app only populates the snapshot.
type SteamCmdAdapter struct {
	log       ports.Logger
	client    HTTPClient
	baseURL   string
	interval  time.Duration
	apps      func() []models.AppID
	mu        sync.RWMutex
	handlers  ports.PlatformHandlers
	snapshot  map[models.AppID]*appInfo
	sessionID string
	ctx       context.Context
	cancel    context.CancelFunc
	closeWg   sync.WaitGroup
}

func NewSteamCmdAdapter(log ports.Logger, client HTTPClient, baseURL string, interval time.Duration, apps func() []models.AppID) *SteamCmdAdapter {
	log = log.With(slog.String("entity", "SteamCmdAdapter"))
	ctx, cancel := context.WithCancel(context.Background())
	a := &SteamCmdAdapter{
		log:      log,
		client:   client,
		baseURL:  strings.TrimSuffix(baseURL, "/"),
		interval: interval,
		apps:     apps,
		snapshot: make(map[models.AppID]*appInfo),
		ctx:      ctx,
		cancel:   cancel,
	}
	log.Info("created", slog.String("baseURL", a.baseURL), slog.Duration("interval", interval))
	return a
}

func (a *SteamCmdAdapter) Subscribe(handlers ports.PlatformHandlers) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.handlers = handlers
}

// LogOn starts the session and the polling.
// The info api is public, so credentials are only checked for presence.
func (a *SteamCmdAdapter) LogOn(creds models.Credentials) error {
	if creds.Username == "" || creds.Password == "" {
		return ErrNoCredentials
	}
	a.mu.Lock()
	if a.sessionID != "" {
		a.mu.Unlock()
		return ErrAlreadyLoggedOn
	}
	a.sessionID = uuid.New().String()
	a.mu.Unlock()

	log := a.log.With(slog.String("accountName", creds.Username), slog.String("sessionID", a.SessionID()))
	log.Info("logged on")

	a.closeWg.Add(1)
	go func() {
		defer a.closeWg.Done()
		log.Info("process started")
		defer log.Warn("process complete")
		a.handlersCopy().loggedIn()
		a.background()
	}()
	return nil
}

func (a *SteamCmdAdapter) SessionID() string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.sessionID
}

func (a *SteamCmdAdapter) Close() {
	a.log.Info("closing")
	a.cancel()
	a.closeWg.Wait()
}

func (a *SteamCmdAdapter) background() {
	ticker := time.NewTicker(a.interval)
	defer ticker.Stop()

	a.Poll()
	for {
		select {
		case <-a.ctx.Done():
			return
		case <-ticker.C:
			a.Poll()
		}
	}
}

// Poll fetches info of every tracked app once
func (a *SteamCmdAdapter) Poll() {
	h := a.handlersCopy()
	for _, appID := range a.apps() {
		if a.ctx.Err() != nil {
			return
		}
		info, err := a.fetch(a.ctx, appID)
		if err != nil {
			a.log.Error("unable to fetch app info", slog.String("appID", appID), slog.Any("err", err))
			h.failed(err)
			continue
		}
		if a.store(appID, info) {
			a.log.Info("app has been updated", slog.String("appID", appID), slog.String("changeNumber", info.changeNumber))
			h.updated(models.UpdateEvent{AppID: appID, BranchBuilds: copyBuilds(info.builds)})
		}
	}
}

// store puts info to snapshot and returns true,
// if it replaced different info of the app
func (a *SteamCmdAdapter) store(appID models.AppID, info *appInfo) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	prev, ok := a.snapshot[appID]
	a.snapshot[appID] = info
	if !ok {
		a.log.Debug("app snapshot populated", slog.String("appID", appID), slog.Any("builds", info.builds))
		return false
	}
	if prev.changeNumber != info.changeNumber {
		return true
	}
	if len(prev.builds) != len(info.builds) {
		return true
	}
	for branch, build := range info.builds {
		if prev.builds[branch] != build {
			return true
		}
	}
	return false
}

func (a *SteamCmdAdapter) BranchBuild(appID models.AppID, branch string) (string, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	info, ok := a.snapshot[appID]
	if !ok {
		return "", false
	}
	build, ok := info.builds[branch]
	return build, ok
}

// BranchUpdated returns time the branch got its current build
func (a *SteamCmdAdapter) BranchUpdated(appID models.AppID, branch string) (time.Time, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	info, ok := a.snapshot[appID]
	if !ok {
		return time.Time{}, false
	}
	t, ok := info.updated[branch]
	return t, ok
}

func (a *SteamCmdAdapter) fetch(ctx context.Context, appID models.AppID) (*appInfo, error) {
	url := fmt.Sprintf("%v/info/%v", a.baseURL, appID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrPlatform, err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrPlatform, err)
	}
	defer resp.Body.Close()
	blob, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrPlatform, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %w", errors.ErrPlatform, errors.ErrNonSuccessStatus{StatusCode: resp.StatusCode, URL: url})
	}

	var data steamCmdResponse
	if err := json.Unmarshal(blob, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrPlatform, err)
	}
	if data.Status != "success" {
		return nil, fmt.Errorf("%w: status %q", errors.ErrPlatform, data.Status)
	}
	app, ok := data.Data[appID]
	if !ok {
		return nil, fmt.Errorf("%w: app %v is not available", errors.ErrPlatform, appID)
	}

	info := &appInfo{
		changeNumber: app.ChangeNumber.String(),
		builds:       make(models.BranchBuilds),
		updated:      make(map[string]time.Time),
	}
	for branch, b := range app.Depots.Branches {
		if b.BuildID == "" {
			continue
		}
		info.builds[branch] = b.BuildID.String()
		if sec, err := strconv.ParseInt(b.TimeUpdated.String(), 10, 64); err == nil {
			info.updated[branch] = time.Unix(sec, 0).UTC()
		}
	}
	return info, nil
}

func (a *SteamCmdAdapter) handlersCopy() platformHandlers {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return platformHandlers(a.handlers)
}

type platformHandlers ports.PlatformHandlers

func (h platformHandlers) loggedIn() {
	if h.OnLoggedIn != nil {
		h.OnLoggedIn()
	}
}

func (h platformHandlers) failed(err error) {
	if h.OnError != nil {
		h.OnError(err)
	}
}

func (h platformHandlers) updated(event models.UpdateEvent) {
	if h.OnUpdate != nil {
		h.OnUpdate(event)
	}
}

func copyBuilds(m models.BranchBuilds) models.BranchBuilds {
	c := make(models.BranchBuilds, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
