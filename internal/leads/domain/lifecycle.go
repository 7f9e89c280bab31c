// Package domain provides core business rules for the leads bounded context.
package domain

// Warm lead statuses. The lifecycle only moves forward: detected →
// qualified → seized → converted, with cold and unsubscribed as terminal
// exits from any non-terminal state. Profiles are never deleted.
const (
	WarmLeadDetected     = "detected"
	WarmLeadQualified    = "qualified"
	WarmLeadSeized       = "seized"
	WarmLeadConverted    = "converted"
	WarmLeadCold         = "cold"
	WarmLeadUnsubscribed = "unsubscribed"
)

// Seizure action statuses. Forward-only: there is no un-sending.
const (
	ActionPending   = "pending"
	ActionSent      = "sent"
	ActionOpened    = "opened"
	ActionClicked   = "clicked"
	ActionConverted = "converted"
	ActionFailed    = "failed"
	ActionCancelled = "cancelled"
)

var warmLeadRank = map[string]int{
	WarmLeadDetected:  0,
	WarmLeadQualified: 1,
	WarmLeadSeized:    2,
	WarmLeadConverted: 3,
}

var warmLeadTerminal = map[string]bool{
	WarmLeadConverted:    true,
	WarmLeadCold:         true,
	WarmLeadUnsubscribed: true,
}

var actionRank = map[string]int{
	ActionPending:   0,
	ActionSent:      1,
	ActionOpened:    2,
	ActionClicked:   3,
	ActionConverted: 4,
}

var actionTerminal = map[string]bool{
	ActionConverted: true,
	ActionFailed:    true,
	ActionCancelled: true,
}

// IsTerminalWarmLeadStatus reports whether a warm lead can change state again.
func IsTerminalWarmLeadStatus(status string) bool {
	return warmLeadTerminal[status]
}

// CanTransitionWarmLead reports whether a warm lead may move from old to new.
// Forward progression only; cold and unsubscribed are reachable from any
// non-terminal state.
func CanTransitionWarmLead(old, new string) bool {
	if old == new {
		return false
	}
	if warmLeadTerminal[old] {
		return false
	}
	if new == WarmLeadCold || new == WarmLeadUnsubscribed {
		return true
	}

	oldRank, oldOK := warmLeadRank[old]
	newRank, newOK := warmLeadRank[new]
	if !oldOK || !newOK {
		return false
	}
	return newRank > oldRank
}

// IsTerminalActionStatus reports whether an action can change state again.
func IsTerminalActionStatus(status string) bool {
	return actionTerminal[status]
}

// CanTransitionAction reports whether a seizure action may move from old to
// new. Progression is forward-only; failed and cancelled are reachable from
// any non-terminal state.
func CanTransitionAction(old, new string) bool {
	if old == new {
		return false
	}
	if actionTerminal[old] {
		return false
	}
	if new == ActionFailed || new == ActionCancelled {
		return true
	}

	oldRank, oldOK := actionRank[old]
	newRank, newOK := actionRank[new]
	if !oldOK || !newOK {
		return false
	}
	return newRank > oldRank
}

// IsKnownActionStatus reports whether the status is part of the action lifecycle.
func IsKnownActionStatus(status string) bool {
	if _, ok := actionRank[status]; ok {
		return true
	}
	return actionTerminal[status]
}
