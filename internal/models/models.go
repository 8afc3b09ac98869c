package models

import "time"

// Role is the access level a user registers with.
type Role string

const (
	RoleEmployee Role = "Employee"
	RoleManager  Role = "Manager"
)

// Task statuses. Values are case-sensitive.
const (
	StatusPending    = "Pending"
	StatusInProgress = "InProgress"
	StatusDone       = "Done"
)

// ValidRoles enumerates the roles accepted at registration.
var ValidRoles = map[Role]struct{}{
	RoleEmployee: {},
	RoleManager:  {},
}

// ValidTaskStatuses enumerates the statuses a task can move through.
var ValidTaskStatuses = map[string]struct{}{
	StatusPending:    {},
	StatusInProgress: {},
	StatusDone:       {},
}

// User is a registered account. Role never changes after creation.
type User struct {
	ID           int64     `json:"userID"`
	FullName     string    `json:"fullName"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Task is a unit of work created by one user and assigned to another (or the same) user.
// CreatorName and AssignedToName are resolved by join on read and never written.
type Task struct {
	ID             int64      `json:"taskID"`
	Title          string     `json:"title"`
	Description    string     `json:"description"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"createdAt"`
	DueDate        *time.Time `json:"dueDate"`
	CreatedBy      int64      `json:"createdBy"`
	CreatorName    string     `json:"creatorName"`
	AssignedTo     int64      `json:"assignedTo"`
	AssignedToName string     `json:"assignedToName"`
}

// TaskUpdate is a progress note posted by the assignee.
type TaskUpdate struct {
	ID            int64     `json:"updateID"`
	TaskID        int64     `json:"taskID"`
	UpdatedBy     int64     `json:"updatedBy"`
	UpdatedByName string    `json:"updatedByName"`
	Text          string    `json:"update_text"`
	AttachmentURL *string   `json:"attachmentURL"`
	CreatedAt     time.Time `json:"updateDate"`
}

// TaskReview is a manager's rating of a completed task.
type TaskReview struct {
	ID           int64     `json:"reviewID"`
	TaskID       int64     `json:"taskID"`
	ReviewedBy   int64     `json:"reviewedBy"`
	ReviewerName string    `json:"reviewerName"`
	Comments     string    `json:"comments"`
	Rating       int       `json:"rating"`
	CreatedAt    time.Time `json:"reviewDate"`
}
