package viewmodels

import (
	"fmt"
	"sort"
	"time"

	"github.com/cloudcopper/buildwatch/domain/models"
	"github.com/cloudcopper/buildwatch/lib/types"
)

type App struct {
	AppID           models.AppID   `json:"appId"`
	Branch          string         `json:"branch"`
	Targets         []string       `json:"targets"`
	NotifiedBuildID models.BuildID `json:"notifiedBuildId,omitempty"`
	PlatformBuildID string         `json:"platformBuildId,omitempty"`
	UpdatedAgo      types.Duration `json:"updatedAgo,omitempty"`
}

// NewApp makes view of the tracked app.
// The zero updated time means unknown.
func NewApp(app *models.TrackedApp, notified, platform string, updated time.Time, now time.Time) *App {
	a := &App{
		AppID:           app.AppID,
		Branch:          app.BranchOrDefault(),
		Targets:         []string{},
		NotifiedBuildID: notified,
		PlatformBuildID: platform,
	}
	for _, target := range app.Targets {
		a.Targets = append(a.Targets, fmt.Sprintf("%v", target))
	}
	if !updated.IsZero() {
		a.UpdatedAgo = types.Duration(now.Sub(updated).Truncate(time.Second))
	}
	return a
}

// SortApps orders apps by id
func SortApps(apps []*App) {
	sort.Slice(apps, func(i, j int) bool {
		return apps[i].AppID < apps[j].AppID
	})
}
