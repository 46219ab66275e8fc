package config

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cloudcopper/buildwatch/domain/errors"
	"github.com/cloudcopper/buildwatch/domain/models"
	"github.com/cloudcopper/buildwatch/lib"
	"github.com/cloudcopper/buildwatch/ports"
	tpl "github.com/cloudcopper/misc/env/template"
	"github.com/go-playground/validator/v10"
	"github.com/spf13/afero"

	"gopkg.in/yaml.v3"
)

var (
	Listen            = ""
	ConfigFileName    = "config/config.yaml"
	CacheFileName     = "config/cache.json"
	SteamCmdURL       = "https://api.steamcmd.net/v1"
	WorkflowAPIURL    = "https://api.github.com"
	TimerSettleDelay  = 30 * time.Second
	TimerPollInterval = 10 * time.Second
	Debug             = false
)

// Load reads the config file from given fs,
// executes it as env template, unmarshals and validates it.
func Load(log ports.Logger, fs ports.FS, fileName string) (*models.Snapshot, error) {
	log.Info("loading config", slog.String("fileName", fileName))
	blob, err := afero.ReadFile(fs, fileName)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrConfigMissing, err)
	}

	// parse config as template
	t, err := tpl.Parse(string(blob))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrConfigMalformed, err)
	}
	// execute template
	s, err := t.Execute()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrConfigMalformed, err)
	}

	// unmarshal config
	cfg := &models.Snapshot{}
	if err := yaml.Unmarshal([]byte(s), cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrConfigMalformed, err)
	}

	val := lib.NewValidator()
	if err := val.Struct(&cfg.Steam); err != nil {
		log.Error("please fill in steam username and password", slog.String("fileName", fileName))
		return nil, fmt.Errorf("%w: %v", errors.ErrConfigInvalid, err)
	}

	cfg = processApps(log, val, cfg)

	// dump effective config
	for _, s := range strings.Split(String(cfg), "\n") {
		log.Debug(s)
	}
	return cfg, nil
}

// The processApps returns only meaningful apps configuration.
// Bad apps and bad webhooks are dropped with error in log.
func processApps(log ports.Logger, val *validator.Validate, cfg *models.Snapshot) *models.Snapshot {
	ret := &models.Snapshot{
		Steam: cfg.Steam,
		Apps:  make(map[models.AppID]*models.TrackedApp),
	}

	for k, v := range cfg.Apps {
		log := log.With(slog.String("appID", k))

		// Skip IDs starting with _
		// Sort of special meaning
		if lib.IsKeyBlacklisted(k) {
			continue
		}

		if v == nil {
			v = &models.TrackedApp{}
		}
		v.AppID = k
		if err := val.Struct(v); err != nil {
			log.Error("skip - invalid app id", slog.Any("err", err))
			continue
		}

		targets := models.Targets{}
		for n, target := range v.Targets {
			if _, ok := target.(*models.UnknownTarget); !ok {
				if err := val.Struct(target); err != nil {
					log.Error("skip - invalid webhook", slog.Int("n", n), slog.String("type", target.Kind()), slog.Any("err", err))
					continue
				}
			}
			targets = append(targets, target)
		}
		v.Targets = targets
		if len(targets) == 0 {
			log.Warn("app has no webhooks - tracking only")
		}

		ret.Apps[k] = v
	}

	return ret
}

// String returns the snapshot in yaml like form with secrets redacted
func String(cfg *models.Snapshot) string {
	s := "steam:\n"
	for _, kv := range [][2]string{{"username", cfg.Steam.Username}, {"password", cfg.Steam.Password}} {
		k, v := kv[0], kv[1]
		if lib.IsKeyValueBlacklisted(k) {
			v = lib.Redact(v)
		}
		s += fmt.Sprintf("    %v: %v\n", k, v)
	}
	s += "apps:\n"

	keys := make([]string, 0, len(cfg.Apps))
	for k := range cfg.Apps {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		app := cfg.Apps[k]
		s += fmt.Sprintf("    %v:\n", k)
		if app.Branch == "" {
			s += fmt.Sprintf("        #branch: %v\n", app.BranchOrDefault())
		} else {
			s += fmt.Sprintf("        branch: %v\n", app.Branch)
		}
		for _, target := range app.Targets {
			s += fmt.Sprintf("        - %v\n", target)
		}
	}
	return strings.TrimSuffix(s, "\n")
}

// Store owns the current config snapshot.
// The snapshot is replaced only by validated one,
// readers always see either old or new snapshot.
type Store struct {
	log        ports.Logger
	fs         ports.FS
	fileName   string
	bus        ports.EventBus
	current    atomic.Pointer[models.Snapshot]
	snapshots  chan *models.Snapshot
	chModified chan ports.Event
	chRemoved  chan ports.Event
	closeOnce  sync.Once
	closeWg    sync.WaitGroup
}

// NewStore makes initial load of the config.
// The error here is fatal as nothing can run without credentials.
// Later reloads never fail the store.
func NewStore(log ports.Logger, fs ports.FS, fileName string, bus ports.EventBus) (*Store, error) {
	log = log.With(slog.String("entity", "ConfigStore"))
	cfg, err := Load(log, fs, fileName)
	if err != nil {
		return nil, err
	}

	s := &Store{
		log:       log,
		fs:        fs,
		fileName:  fileName,
		bus:       bus,
		snapshots: make(chan *models.Snapshot, 1),
	}
	s.current.Store(cfg)
	log.Info("created", slog.Int("apps", len(cfg.Apps)))

	if bus != nil {
		s.chModified = bus.Sub(ports.TopicConfigFileModified)
		s.chRemoved = bus.Sub(ports.TopicConfigFileRemoved)
		s.closeWg.Add(1)
		go func() {
			defer s.closeWg.Done()
			log.Info("process started")
			defer log.Warn("process complete")
			s.background()
		}()
	}

	return s, nil
}

func (s *Store) Close() {
	s.closeOnce.Do(func() {
		s.log.Info("closing")
		if s.chModified != nil {
			s.bus.Unsub(s.chRemoved)
			s.bus.Unsub(s.chModified)
		}
		s.closeWg.Wait()
	})
}

func (s *Store) background() {
	for {
		select {
		case _, ok := <-s.chModified:
			if !ok {
				return
			}
			s.log.Debug("config file has been updated")
			_ = s.Reload()
		case _, ok := <-s.chRemoved:
			if !ok {
				return
			}
			s.log.Warn("config file has been removed, keep previous")
		}
	}
}

// Reload makes one reload attempt.
// On error the previous snapshot stays current.
func (s *Store) Reload() error {
	log := s.log
	cfg, err := Load(log, s.fs, s.fileName)
	if err != nil {
		log.Error("config reload rejected, keep previous", slog.Any("err", err))
		return err
	}
	if reflect.DeepEqual(cfg, s.current.Load()) {
		log.Debug("config unchanged")
		return nil
	}

	s.current.Store(cfg)
	log.Info("updated config loaded", slog.Int("apps", len(cfg.Apps)))
	s.publish(cfg)
	return nil
}

// publish replaces pending snapshot in single slot channel
func (s *Store) publish(cfg *models.Snapshot) {
	for {
		select {
		case s.snapshots <- cfg:
			return
		default:
		}
		select {
		case <-s.snapshots:
		default:
		}
	}
}

// Snapshots returns single slot channel with latest applied snapshot
func (s *Store) Snapshots() <-chan *models.Snapshot {
	return s.snapshots
}

func (s *Store) Snapshot() *models.Snapshot {
	return s.current.Load()
}

func (s *Store) Applications() map[models.AppID]*models.TrackedApp {
	return s.current.Load().Apps
}

func (s *Store) Application(appID models.AppID) (*models.TrackedApp, bool) {
	return s.current.Load().App(appID)
}

func (s *Store) Credentials() models.Credentials {
	return s.current.Load().Steam
}

// BranchFor returns configured branch or default one.
// It does not tell if the app is tracked.
func (s *Store) BranchFor(appID models.AppID) string {
	app, _ := s.current.Load().App(appID)
	return app.BranchOrDefault()
}
