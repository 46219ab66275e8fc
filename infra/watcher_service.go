package infra

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/cloudcopper/buildwatch/lib"
	"github.com/cloudcopper/buildwatch/ports"
	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"
)

const ErrMustBeAbsPath = lib.Error("must be absolute path")

// WatcherService reports changes of watched files to the bus
// as "<id>-file-modified" and "<id>-file-removed" events.
// Directories of the files are watched, not the files itself,
// as editors and config management replace files by rename,
// which drops the watch of the file.
type WatcherService struct {
	id      string
	log     ports.Logger
	bus     ports.EventBus
	watcher *fsnotify.Watcher
	mu      sync.Mutex
	files   map[string]bool
	dirs    map[string]bool
	closeWg sync.WaitGroup
}

func NewWatcherService(id string, log ports.Logger, bus ports.EventBus) (*WatcherService, error) {
	log = log.With(slog.String("entity", "WatcherService"), slog.String("id", id))
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	s := &WatcherService{
		id:      id,
		log:     log,
		bus:     bus,
		watcher: watcher,
		files:   make(map[string]bool),
		dirs:    make(map[string]bool),
	}
	log.Info("created")

	s.closeWg.Add(1)
	go func() {
		defer s.closeWg.Done()
		log.Info("process started")
		defer log.Warn("process complete")
		s.background()
	}()

	return s, nil
}

func (s *WatcherService) TopicFileModified() ports.Topic {
	return fmt.Sprintf("%v-file-modified", s.id)
}

func (s *WatcherService) TopicFileRemoved() ports.Topic {
	return fmt.Sprintf("%v-file-removed", s.id)
}

func (s *WatcherService) Close() {
	if s == nil {
		return
	}
	if s.watcher == nil {
		return
	}

	s.log.Info("closing")
	s.watcher.Close()
	s.closeWg.Wait()
	s.watcher = nil
}

// AddFile starts watching the file.
// The file does not need to exist, but its directory does.
func (s *WatcherService) AddFile(path string) error {
	log := s.log
	abspath, err := filepath.Abs(path)
	if err != nil {
		log.Error("add file failed!!!", slog.Any("err", err), slog.String("path", path))
		return err
	}
	lib.Assert(lib.IsAbs(abspath))
	dir := filepath.Dir(abspath)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[abspath] = true
	if s.dirs[dir] {
		return nil
	}
	if err := s.addDir(dir); err != nil {
		delete(s.files, abspath)
		return err
	}
	s.dirs[dir] = true
	return nil
}

func (s *WatcherService) addDir(path string) error {
	log := s.log
	if !lib.IsAbs(path) {
		log.Error("add dir failed!!!", slog.String("path", path))
		return ErrMustBeAbsPath
	}
	log.Info("add dir", slog.String("path", path))
	err := s.watcher.Add(path)
	if err != nil {
		log.Error("add dir failed!!!", slog.Any("err", err), slog.String("path", path))
	}
	return err
}

func (s *WatcherService) isWatched(file string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files[file]
}

func (s *WatcherService) background() {
	log, bus, fs := s.log, s.bus, afero.NewOsFs()
	topicFileModified := s.TopicFileModified()
	topicFileRemoved := s.TopicFileRemoved()
	for {
		select {
		case err, ok := <-s.watcher.Errors:
			if err != nil {
				log.Error("watcher error", slog.Any("err", err))
			}
			if !ok {
				return
			}
		case event, ok := <-s.watcher.Events:
			if !ok {
				return
			}
			log.Debug("watcher event", slog.Any("event", event))

			file := event.Name
			if !s.isWatched(file) {
				continue
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) {
				size := lib.FileSize(fs, file)
				log.Debug("file modified", slog.String("file", file), slog.Int64("size", size))
				bus.Pub(topicFileModified, ports.Event{file})
			}
			if event.Has(fsnotify.Rename) || event.Has(fsnotify.Remove) {
				log.Debug("file removed", slog.String("file", file))
				bus.Pub(topicFileRemoved, ports.Event{file})
			}
		}
	}
}
