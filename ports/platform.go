package ports

import "github.com/cloudcopper/buildwatch/domain/models"

// PlatformHandlers are the callbacks the platform client invokes.
// Any of them may be nil.
type PlatformHandlers struct {
	OnUpdate   func(event models.UpdateEvent)
	OnError    func(err error)
	OnLoggedIn func()
}

// Platform is the distribution platform client.
type Platform interface {
	Subscribe(handlers PlatformHandlers)
	// BranchBuild queries the client own snapshot
	BranchBuild(appID models.AppID, branch string) (string, bool)
}
