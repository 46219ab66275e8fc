package adapters

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cloudcopper/buildwatch/domain/errors"
	"github.com/cloudcopper/buildwatch/domain/models"
	"github.com/cloudcopper/buildwatch/ports"
	"github.com/stretchr/testify/require"
)

// fakeSteamCmd serves /info/<appid> with the current builds
type fakeSteamCmd struct {
	mu     sync.Mutex
	change map[string]int
	builds map[string]map[string]string
}

func (f *fakeSteamCmd) set(appID, branch, build string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.builds[appID] == nil {
		f.builds[appID] = map[string]string{}
	}
	f.builds[appID][branch] = build
	f.change[appID]++
}

func (f *fakeSteamCmd) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	appID := strings.TrimPrefix(r.URL.Path, "/v1/info/")
	if appID == "500" {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	builds, ok := f.builds[appID]
	if !ok {
		fmt.Fprint(w, `{"data":{},"status":"success"}`)
		return
	}
	branches := []string{}
	for branch, build := range builds {
		branches = append(branches, fmt.Sprintf(`%q:{"buildid":%q,"timeupdated":"1700000000"}`, branch, build))
	}
	fmt.Fprintf(w, `{"data":{%q:{"_change_number":%v,"depots":{"branches":{%v}}}},"status":"success"}`,
		appID, f.change[appID], strings.Join(branches, ","))
}

func newFakeSteamCmd(t *testing.T) (*fakeSteamCmd, *httptest.Server) {
	f := &fakeSteamCmd{change: map[string]int{}, builds: map[string]map[string]string{}}
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)
	return f, srv
}

type platformRecorder struct {
	mu       sync.Mutex
	updates  []models.UpdateEvent
	errs     []error
	loggedIn chan struct{}
}

func (r *platformRecorder) handlers() ports.PlatformHandlers {
	return ports.PlatformHandlers{
		OnUpdate: func(event models.UpdateEvent) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.updates = append(r.updates, event)
		},
		OnError: func(err error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.errs = append(r.errs, err)
		},
		OnLoggedIn: func() { close(r.loggedIn) },
	}
}

func TestSteamCmdAdapterPoll(t *testing.T) {
	assert := require.New(t)
	f, srv := newFakeSteamCmd(t)
	f.set("100", "public", "5")
	f.set("100", "beta", "7")

	apps := []models.AppID{"100", "200", "500"}
	a := NewSteamCmdAdapter(slog.Default(), testHTTPClient(t), srv.URL+"/v1/", time.Hour, func() []models.AppID { return apps })
	defer a.Close()
	rec := &platformRecorder{loggedIn: make(chan struct{})}
	a.Subscribe(rec.handlers())

	// first poll populates snapshot silently
	a.Poll()
	assert.Empty(rec.updates)
	assert.Len(rec.errs, 2)
	assert.ErrorIs(rec.errs[0], errors.ErrPlatform)
	var status errors.ErrNonSuccessStatus
	assert.True(errors.As(rec.errs[1], &status))
	build, ok := a.BranchBuild("100", "public")
	assert.True(ok)
	assert.Equal("5", build)
	_, ok = a.BranchBuild("100", "staging")
	assert.False(ok)
	_, ok = a.BranchBuild("200", "public")
	assert.False(ok)
	updated, ok := a.BranchUpdated("100", "beta")
	assert.True(ok)
	assert.Equal(time.Unix(1700000000, 0).UTC(), updated)

	// nothing changed
	apps = []models.AppID{"100"}
	a.Poll()
	assert.Empty(rec.updates)

	// new build
	f.set("100", "public", "6")
	a.Poll()
	assert.Equal([]models.UpdateEvent{{AppID: "100", BranchBuilds: models.BranchBuilds{"public": "6", "beta": "7"}}}, rec.updates)
	build, _ = a.BranchBuild("100", "public")
	assert.Equal("6", build)
}

func TestSteamCmdAdapterLogOn(t *testing.T) {
	assert := require.New(t)
	f, srv := newFakeSteamCmd(t)
	f.set("100", "public", "5")

	polled := make(chan struct{}, 10)
	a := NewSteamCmdAdapter(slog.Default(), testHTTPClient(t), srv.URL+"/v1", 10*time.Millisecond, func() []models.AppID {
		select {
		case polled <- struct{}{}:
		default:
		}
		return []models.AppID{"100"}
	})
	rec := &platformRecorder{loggedIn: make(chan struct{})}
	a.Subscribe(rec.handlers())

	assert.ErrorIs(a.LogOn(models.Credentials{Username: "bot"}), ErrNoCredentials)
	assert.NoError(a.LogOn(models.Credentials{Username: "bot", Password: "secret"}))
	assert.NotEmpty(a.SessionID())
	assert.ErrorIs(a.LogOn(models.Credentials{Username: "bot", Password: "secret"}), ErrAlreadyLoggedOn)

	select {
	case <-rec.loggedIn:
	case <-time.After(5 * time.Second):
		t.Fatal("not logged in")
	}
	for n := 0; n < 2; n++ {
		select {
		case <-polled:
		case <-time.After(5 * time.Second):
			t.Fatal("not polled")
		}
	}
	a.Close()
	build, ok := a.BranchBuild("100", "public")
	assert.True(ok)
	assert.Equal("5", build)
}
