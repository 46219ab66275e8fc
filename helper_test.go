package buildwatch

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/cloudcopper/buildwatch/adapters"
	"github.com/cloudcopper/buildwatch/domain/models"
	"github.com/cloudcopper/buildwatch/infra/config"
	"github.com/cloudcopper/buildwatch/ports"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
)

const testConfigFileName = "config/config.yaml"
const testCacheFileName = "config/cache.json"

type testFakeAppInternals struct {
	fs       afero.Fs
	store    *config.Store
	cache    *adapters.BuildCacheAdapter
	platform *fakePlatform
	service  *UpdateService
}

// testFakeApp wires the update service over in memory fs
func testFakeApp(t *testing.T, configContent string, notifier ports.Notifier, callback func(*testFakeAppInternals)) {
	assert := require.New(t)
	noErr := func(err error) {
		assert.NoError(err)
		if err != nil {
			t.FailNow()
		}
	}

	log := slog.Default()
	fs := afero.NewMemMapFs()
	noErr(afero.WriteFile(fs, testConfigFileName, []byte(configContent), 0o644))

	store, err := config.NewStore(log, fs, testConfigFileName, nil)
	noErr(err)
	defer store.Close()
	cache, err := adapters.NewBuildCacheAdapter(log, fs, testCacheFileName)
	noErr(err)
	platform := newFakePlatform()
	service := NewUpdateService(log, store, cache, notifier, platform, 0)
	defer service.Close()

	callback(&testFakeAppInternals{
		fs:       fs,
		store:    store,
		cache:    cache,
		platform: platform,
		service:  service,
	})
}

func writeTestConfig(t *testing.T, fs afero.Fs, content string) {
	require.NoError(t, afero.WriteFile(fs, testConfigFileName, []byte(content), 0o644))
}

type notifierFunc func(ctx context.Context, appID models.AppID, target models.Target) error

func (f notifierFunc) Send(ctx context.Context, appID models.AppID, target models.Target) error {
	return f(ctx, appID, target)
}

// sendRecorder records every Send call
type sendRecorder struct {
	mu    sync.Mutex
	sent  []string
	fails map[string]error
}

func (r *sendRecorder) notifier() notifierFunc {
	return func(ctx context.Context, appID models.AppID, target models.Target) error {
		r.mu.Lock()
		defer r.mu.Unlock()
		name := appID + " " + target.(*models.MessageTarget).URL
		r.sent = append(r.sent, name)
		return r.fails[name]
	}
}

func (r *sendRecorder) calls() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.sent...)
}

type fakePlatform struct {
	mu     sync.Mutex
	builds map[models.AppID]models.BranchBuilds
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{builds: map[models.AppID]models.BranchBuilds{}}
}

func (p *fakePlatform) Subscribe(handlers ports.PlatformHandlers) {}

func (p *fakePlatform) BranchBuild(appID models.AppID, branch string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	build, ok := p.builds[appID][branch]
	return build, ok
}

func (p *fakePlatform) set(appID models.AppID, branch, build string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.builds[appID] == nil {
		p.builds[appID] = models.BranchBuilds{}
	}
	p.builds[appID][branch] = build
}

// newWebhookServer counts received requests and replies with status
func newWebhookServer(t *testing.T, status *atomic.Int32) (*httptest.Server, *atomic.Int32) {
	hits := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(int(status.Load()))
	}))
	t.Cleanup(srv.Close)
	return srv, hits
}
