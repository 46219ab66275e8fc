package buildwatch

import (
	"log/slog"
	"os"

	"github.com/cloudcopper/buildwatch/domain/errors"
	"github.com/cloudcopper/buildwatch/domain/models"
	"github.com/cloudcopper/buildwatch/infra/config"
	"github.com/cloudcopper/buildwatch/lib"
	"github.com/cloudcopper/buildwatch/ports"
)

type logOner interface {
	LogOn(creds models.Credentials) error
}

func startup(log ports.Logger, store *config.Store, platform logOner) error {
	creds := store.Credentials()
	log = log.With(slog.String("accountName", creds.Username))
	if err := platform.LogOn(creds); err != nil {
		log.Error("unable to log on", slog.Any("err", err))
		return lib.NewErrorCode(err, errors.RetLogOnError)
	}
	return nil
}

// watchSnapshots logs every applied config until signal.
// Credentials are used at log on only, so change of them needs restart.
func watchSnapshots(log ports.Logger, store *config.Store, done <-chan os.Signal) {
	creds := store.Credentials()
	for {
		select {
		case <-done:
			return
		case cfg := <-store.Snapshots():
			log.Info("config applied", slog.Int("apps", len(cfg.Apps)))
			if cfg.Steam != creds {
				log.Warn("credentials changed, restart to apply", slog.String("accountName", cfg.Steam.Username))
			}
			if config.Debug {
				log.Debug("config\n" + config.String(cfg))
			}
		}
	}
}
