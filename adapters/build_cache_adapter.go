package adapters

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/cloudcopper/buildwatch/domain/errors"
	"github.com/cloudcopper/buildwatch/domain/models"
	"github.com/cloudcopper/buildwatch/lib"
	"github.com/cloudcopper/buildwatch/lib/types"
	"github.com/cloudcopper/buildwatch/ports"
	"github.com/spf13/afero"
)

// BuildCacheAdapter keeps last seen build id per app
// and writes whole mapping to the cache file on every change.
type BuildCacheAdapter struct {
	log      ports.Logger
	fs       ports.FS
	fileName string
	mu       sync.Mutex // guards data
	data     *models.CacheData
	writeMu  sync.Mutex // one writer at a time
}

// NewBuildCacheAdapter loads the cache file.
// Missing file is created empty, any other error is returned.
func NewBuildCacheAdapter(log ports.Logger, fs ports.FS, fileName string) (*BuildCacheAdapter, error) {
	log = log.With(slog.String("entity", "BuildCacheAdapter"), slog.String("fileName", fileName))
	c := &BuildCacheAdapter{
		log:      log,
		fs:       fs,
		fileName: fileName,
		data:     models.NewCacheData(),
	}

	blob, err := afero.ReadFile(fs, fileName)
	switch {
	case errors.Is(err, os.ErrNotExist):
		log.Info("cache file not found, creating one")
		_ = c.persist()
		return c, nil
	case err != nil:
		return nil, fmt.Errorf("%w: %v", errors.ErrCacheUnreadable, err)
	}

	if err := json.Unmarshal(blob, c.data); err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrCacheUnreadable, err)
	}
	if c.data.Apps == nil {
		c.data.Apps = make(map[models.AppID]models.CacheEntry)
	}
	log.Info("cache loaded", slog.Int("apps", len(c.data.Apps)), slog.Any("size", types.Size(len(blob))))

	return c, nil
}

// IsBuildUpdated is the only place deciding about notification.
// It records buildID if nothing is stored for the app yet or stored differs.
func (c *BuildCacheAdapter) IsBuildUpdated(appID models.AppID, buildID models.BuildID) bool {
	c.mu.Lock()
	entry, ok := c.data.Apps[appID]
	if ok && entry.BuildID == buildID {
		c.mu.Unlock()
		return false
	}
	c.data.Apps[appID] = models.CacheEntry{BuildID: buildID}
	c.mu.Unlock()

	c.log.Info("build updated", slog.String("appID", appID), slog.String("old", entry.BuildID), slog.String("new", buildID))
	_ = c.persist()
	return true
}

func (c *BuildCacheAdapter) BuildID(appID models.AppID) (models.BuildID, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.data.Apps[appID]
	return entry.BuildID, ok
}

// Entries returns copy of the mapping
func (c *BuildCacheAdapter) Entries() map[models.AppID]models.BuildID {
	c.mu.Lock()
	defer c.mu.Unlock()
	m := make(map[models.AppID]models.BuildID, len(c.data.Apps))
	for k, v := range c.data.Apps {
		m[k] = v.BuildID
	}
	return m
}

// persist writes the whole mapping.
// The mapping is marshaled under the write lock,
// so the file never goes back to older content.
// Error is logged only, memory state is kept.
func (c *BuildCacheAdapter) persist() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.mu.Lock()
	blob, err := json.Marshal(c.data)
	c.mu.Unlock()
	if err == nil {
		err = lib.WriteFileAtomic(c.fs, c.fileName, blob)
	}
	if err != nil {
		err = fmt.Errorf("%w: %v", errors.ErrCacheWriteFailed, err)
		c.log.Error("unable to write cache", slog.Any("err", err))
		return err
	}

	c.log.Debug("cache written", slog.Any("size", types.Size(len(blob))))
	return nil
}
