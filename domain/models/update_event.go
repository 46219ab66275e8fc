package models

// BranchBuilds maps branch name to its current build id
type BranchBuilds = map[string]BuildID

// UpdateEvent is produced by the platform client for one app.
type UpdateEvent struct {
	AppID        AppID
	BranchBuilds BranchBuilds
}
