package buildwatch

import (
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/cloudcopper/buildwatch/adapters"
	"github.com/cloudcopper/buildwatch/adapters/http"
	"github.com/cloudcopper/buildwatch/adapters/http/controllers"
	"github.com/cloudcopper/buildwatch/domain/errors"
	"github.com/cloudcopper/buildwatch/domain/models"
	"github.com/cloudcopper/buildwatch/infra"
	"github.com/cloudcopper/buildwatch/infra/config"
	"github.com/cloudcopper/buildwatch/lib"
	"github.com/cloudcopper/buildwatch/ports"
	"github.com/spf13/afero"
)

// App execute application and returns error, when complete by ctrl-c.
// The application:
//   - loads config and keeps reloading it on file change
//   - loads build cache
//   - logs on the platform and handles app update events
//   - serves status endpoint (optional)
func App(log ports.Logger) error {
	var fs ports.FS = afero.NewOsFs()

	// EventBus
	var bus ports.EventBus = infra.NewEventBus()
	defer bus.Shutdown()

	// Load configuration
	store, err := config.NewStore(log, fs, config.ConfigFileName, bus)
	if err != nil {
		log.Error("unable to load config!!!", slog.Any("err", err), slog.String("fileName", config.ConfigFileName))
		return lib.NewErrorCode(err, errors.RetLoadConfigError)
	}
	defer store.Close()
	// Create filesystem watcher for config file
	configWatcher, err := newConfigWatcher(log, bus, config.ConfigFileName)
	if err != nil {
		log.Error("unable to create config watcher", slog.Any("err", err))
		return lib.NewErrorCode(err, errors.RetCreateConfigWatcherError)
	}
	defer configWatcher.Close()

	// Load build cache
	cache, err := adapters.NewBuildCacheAdapter(log, fs, config.CacheFileName)
	if err != nil {
		log.Error("unable to load cache!!!", slog.Any("err", err), slog.String("fileName", config.CacheFileName))
		return lib.NewErrorCode(err, errors.RetLoadCacheError)
	}

	// Create platform client and webhook notifier
	client, err := adapters.NewHTTPClient()
	if err != nil {
		log.Error("unable to create http client", slog.Any("err", err))
		return lib.NewErrorCode(err, errors.RetCreateHTTPClientError)
	}
	notifier := adapters.NewWebhookAdapter(log, client, config.WorkflowAPIURL)
	apps := func() []models.AppID {
		ret := []models.AppID{}
		for appID := range store.Applications() {
			ret = append(ret, appID)
		}
		return ret
	}
	platform := adapters.NewSteamCmdAdapter(log, client, config.SteamCmdURL, config.TimerPollInterval, apps)

	// Create update service
	// - filters update events by config
	// - de-duplicates builds by cache
	// - dispatches notifications
	updateService := NewUpdateService(log, store, cache, notifier, platform, config.TimerSettleDelay)
	// Stop events first, then wait for dispatches
	defer func() {
		platform.Close()
		updateService.Close()
	}()
	platform.Subscribe(updateService.Handlers())

	// Create status server
	if config.Listen != "" {
		render := infra.NewRender()
		router := http.NewRouter(log)
		statusController := controllers.NewStatusController(log, render, store, cache, platform)
		aboutController := controllers.NewAboutController(log, render)
		http.Mount(router, statusController, aboutController)
		httpServer, err := infra.NewWebServer(log, config.Listen, router)
		if err != nil {
			log.Error("unable create web server", slog.Any("err", err), slog.String("addr", config.Listen))
			return lib.NewErrorCode(err, errors.RetCreateWebServerError)
		}
		defer httpServer.Close()
	}

	// Log on the platform
	if err := startup(log, store, platform); err != nil {
		return err
	}

	// Add ctrl-c shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	log.Info("press ctrl-c to exit")
	watchSnapshots(log, store, c)

	return nil
}

func newConfigWatcher(log ports.Logger, bus ports.EventBus, fileName string) (*infra.WatcherService, error) {
	path, err := filepath.Abs(fileName)
	if err != nil {
		return nil, err
	}
	w, err := infra.NewWatcherService("config", log, bus)
	if err != nil {
		return nil, err
	}
	if err := w.AddFile(path); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}
