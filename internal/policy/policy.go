// Package policy holds the authorization and task lifecycle rules.
//
// Everything here is a pure predicate. Coarse role gates are evaluated by the
// HTTP layer from token claims alone; the ownership and state checks below need
// the target record and are evaluated by the services once it is loaded. Both
// must pass for an action to proceed.
package policy

import "taskmgmt/internal/models"

// Actor identifies the authenticated caller.
type Actor struct {
	ID   int64
	Role models.Role
}

// IsValidRole reports whether role is one of the registrable roles.
func IsValidRole(role string) bool {
	_, ok := models.ValidRoles[models.Role(role)]
	return ok
}

// HasRole reports whether the actor holds any of the given roles.
func HasRole(actor Actor, roles ...models.Role) bool {
	for _, r := range roles {
		if actor.Role == r {
			return true
		}
	}
	return false
}

// CanViewUser allows managers to read any profile and employees only their own.
func CanViewUser(actor Actor, userID int64) bool {
	if actor.Role == models.RoleManager {
		return true
	}
	return actor.ID == userID
}

// CanViewTask allows managers to see every task and employees only the tasks assigned to them.
func CanViewTask(actor Actor, task models.Task) bool {
	if actor.Role == models.RoleManager {
		return true
	}
	return actor.ID == task.AssignedTo
}

// CanCreateTaskFor allows managers to assign to anyone; employees may only assign to themselves.
func CanCreateTaskFor(actor Actor, assigneeID int64) bool {
	if actor.Role == models.RoleManager {
		return true
	}
	return actor.ID == assigneeID
}

// CanUpdateTaskStatus allows only the assignee to move a task, whatever their role.
func CanUpdateTaskStatus(actorID int64, task models.Task) bool {
	return actorID == task.AssignedTo
}

// IsValidStatus reports an exact, case-sensitive match against the known statuses.
func IsValidStatus(status string) bool {
	_, ok := models.ValidTaskStatuses[status]
	return ok
}

// CanAddUpdate allows only the assignee to post progress notes.
func CanAddUpdate(actorID int64, task models.Task) bool {
	return actorID == task.AssignedTo
}

// CanReview is the review precondition: the task must be Done.
func CanReview(task models.Task) bool {
	return task.Status == models.StatusDone
}

// RatingInRange reports whether rating is within 1..5 inclusive.
func RatingInRange(rating int) bool {
	return rating >= 1 && rating <= 5
}
