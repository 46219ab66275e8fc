package models

type AppID = string

const EmptyAppID = AppID("")

// DefaultBranch is used when an app has no branch configured
const DefaultBranch = "public"

// TrackedApp is one entry of the apps section.
// It belongs to the Snapshot and is never modified after publishing.
type TrackedApp struct {
	AppID   AppID   `yaml:"-" validate:"required,appid"`
	Branch  string  `yaml:"branch"`
	Targets Targets `yaml:"webhooks"`
}

// BranchOrDefault returns configured branch or DefaultBranch
func (a *TrackedApp) BranchOrDefault() string {
	if a == nil || a.Branch == "" {
		return DefaultBranch
	}
	return a.Branch
}
