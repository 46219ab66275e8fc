package models

type Credentials struct {
	Username string `yaml:"username" validate:"required"`
	Password string `yaml:"password" validate:"required"`
}

// Snapshot is the parsed tracking configuration.
// It is immutable once published by the config store.
type Snapshot struct {
	Steam Credentials           `yaml:"steam"`
	Apps  map[AppID]*TrackedApp `yaml:"apps" validate:"-"`
}

func (s *Snapshot) App(appID AppID) (*TrackedApp, bool) {
	if s == nil {
		return nil, false
	}
	app, ok := s.Apps[appID]
	return app, ok && app != nil
}
