package service

import "eventhub/internal/model"

// CanAccess decides whether requesterID may read event. An empty
// requesterID means the request is unauthenticated. The rules are
// evaluated in order, first match wins:
//
//  1. public events are readable by anyone,
//  2. unauthenticated requesters are denied everything else,
//  3. the organizer always reads their own event,
//  4. allow-listed identities read the private event,
//  5. everyone else is denied.
//
// The predicate is pure and must be re-evaluated on every access:
// visibility and the allow-list are mutable, so a cached verdict would
// go stale.
func CanAccess(event *model.Event, requesterID string) bool {
	if event.IsPublic() {
		return true
	}
	if requesterID == "" {
		return false
	}
	if event.IsOwner(requesterID) {
		return true
	}
	return event.InAllowList(requesterID)
}
