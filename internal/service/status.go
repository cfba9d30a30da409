package service

import "github.com/iliyamo/parking-reservation/internal/model"

// transitions lists the statuses reachable from each non-terminal status.
// Rejected, Cancelled and Completed are terminal.
var transitions = map[string][]string{
	model.StatusPending:  {model.StatusApproved, model.StatusRejected, model.StatusCancelled},
	model.StatusApproved: {model.StatusActive, model.StatusCancelled},
	model.StatusActive:   {model.StatusCompleted, model.StatusCancelled},
}

// CanTransition reports whether a reservation may move from one status to
// another. Keeping the current status is always allowed.
func CanTransition(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
