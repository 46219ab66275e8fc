package domain

import "github.com/cloudcopper/buildwatch/domain/models"

// TrackingConfig gives access to the live config snapshot.
// Results must not be kept beyond single detection cycle.
type TrackingConfig interface {
	Applications() map[models.AppID]*models.TrackedApp
	Application(appID models.AppID) (*models.TrackedApp, bool)
	Credentials() models.Credentials
	BranchFor(appID models.AppID) string
}
