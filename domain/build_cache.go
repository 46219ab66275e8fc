package domain

import "github.com/cloudcopper/buildwatch/domain/models"

type BuildCache interface {
	// IsBuildUpdated records buildID and returns true,
	// if it differs from the stored one (or nothing stored yet)
	IsBuildUpdated(appID models.AppID, buildID models.BuildID) bool
	BuildID(appID models.AppID) (models.BuildID, bool)
	Entries() map[models.AppID]models.BuildID
}
