package vo

// UpdateState is the final state of one update event processing
type UpdateState int

const (
	UpdateReceived                  UpdateState = 0
	UpdateFilteredUntracked         UpdateState = 1
	UpdateFilteredBranchUnavailable UpdateState = 2
	UpdateCheckedUnchanged          UpdateState = 3
	UpdateDispatched                UpdateState = 4
)

func (s UpdateState) String() string {
	switch s {
	case UpdateReceived:
		return "received"
	case UpdateFilteredUntracked:
		return "filtered(untracked)"
	case UpdateFilteredBranchUnavailable:
		return "filtered(branch-unavailable)"
	case UpdateCheckedUnchanged:
		return "checked(unchanged)"
	case UpdateDispatched:
		return "dispatched"
	}
	return "unknown"
}

func (s UpdateState) IsFiltered() bool {
	return s == UpdateFilteredUntracked || s == UpdateFilteredBranchUnavailable
}
