// Package models defines the core data structures for users and tasks.
package models

import (
	"time"
)

// User represents an application user with credentials.
type User struct {
	// ID is the unique identifier for the user.
	ID string `json:"id"`
	// Username is the login name chosen by the user.
	Username string `json:"username"`
	// PasswordHash is the salted hash of the user's password.
	PasswordHash []byte `json:"-"`
	// Salt is the per-user random value mixed into PasswordHash.
	Salt []byte `json:"-"`
	// CreatedAt is the account creation timestamp (UTC).
	CreatedAt time.Time `json:"createdAt"`
}

// TaskStatus is the lifecycle state of a task.
type TaskStatus string

const (
	// StatusOpen is the status every new task starts with.
	StatusOpen TaskStatus = "OPEN"
	// StatusInProgress marks a task that is being worked on.
	StatusInProgress TaskStatus = "IN_PROGRESS"
	// StatusDone marks a finished task.
	StatusDone TaskStatus = "DONE"
)

// Valid reports whether s is one of the known statuses.
func (s TaskStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// Task is a unit of work owned by exactly one user.
type Task struct {
	// ID is the unique identifier for the task.
	ID string `json:"id"`
	// Title is a short non-empty summary.
	Title string `json:"title"`
	// Description is the non-empty body of the task.
	Description string `json:"description"`
	// Status is the current lifecycle state.
	Status TaskStatus `json:"status"`
	// UserID references the owning user. It is never exposed to clients.
	UserID string `json:"-"`
	// CreatedAt is the creation timestamp (UTC).
	CreatedAt time.Time `json:"createdAt"`
	// UpdatedAt is the time of the last status change (UTC).
	UpdatedAt time.Time `json:"updatedAt"`
}

// TaskFilter narrows a task listing. UserID is mandatory; the other
// fields are optional and combined with AND.
type TaskFilter struct {
	UserID string
	// Status restricts results to an exact status when non-empty.
	Status TaskStatus
	// Search restricts results to tasks whose title or description
	// contains the text when non-empty.
	Search string
}
