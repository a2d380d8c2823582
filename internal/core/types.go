package core

import (
	"time"
)

// Task kind constants
const (
	KindChore   = "chore"
	KindRoutine = "routine"
)

// Recurrence pattern constants
const (
	RecurrenceDaily    = "DAILY"
	RecurrenceWeekdays = "WEEKDAYS"
	RecurrenceWeekends = "WEEKENDS"
	RecurrenceWeekly   = "WEEKLY"
	RecurrenceBiweekly = "BIWEEKLY"
	RecurrenceMonthly  = "MONTHLY"
	RecurrenceCustom   = "CUSTOM"
	RecurrenceOnce     = "ONCE"
)

var validRecurrences = map[string]bool{
	RecurrenceDaily:    true,
	RecurrenceWeekdays: true,
	RecurrenceWeekends: true,
	RecurrenceWeekly:   true,
	RecurrenceBiweekly: true,
	RecurrenceMonthly:  true,
	RecurrenceCustom:   true,
	RecurrenceOnce:     true,
}

// Status state constants
const (
	StatusInactive    = "inactive"
	StatusOverdue     = "overdue"
	StatusDueToday    = "due_today"
	StatusDueTomorrow = "due_tomorrow"
	StatusUpcoming    = "upcoming"
	StatusCompleted   = "completed"
)

// Status is a task's display status for a given day. Date carries the next
// occurrence for upcoming and due_tomorrow states.
type Status struct {
	State string     `json:"state"`
	Date  *time.Time `json:"date,omitempty"`
}

// FamilyMember represents a person in a household
type FamilyMember struct {
	ID        string    `json:"id"`
	AccountID string    `json:"account_id"`
	Name      string    `json:"name"`
	ColorTag  string    `json:"color_tag,omitempty"`
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Assignment links a chore to a family member. Unique per (task, member).
type Assignment struct {
	ID             string `json:"id"`
	TaskID         string `json:"task_id"`
	FamilyMemberID string `json:"family_member_id"`
}

// RoutineStep is one ordered sub-step of a routine. Position is always a
// dense 0..n-1 sequence derived from the input order at write time.
type RoutineStep struct {
	ID               string `json:"id"`
	TaskID           string `json:"task_id"`
	Position         int    `json:"position"`
	Description      string `json:"description"`
	EstimatedMinutes int    `json:"estimated_minutes"`
}

// Task is the unified recurring-task entity. Kind selects the child
// collection: chores carry Assignments, routines carry Steps.
type Task struct {
	ID                   string        `json:"id"`
	AccountID            string        `json:"account_id"`
	Kind                 string        `json:"kind"`
	Name                 string        `json:"name"`
	Description          string        `json:"description,omitempty"`
	Recurrence           string        `json:"recurrence"`
	CustomRecurrenceExpr string        `json:"custom_recurrence_expr,omitempty"`
	StartDate            time.Time     `json:"start_date"`
	EndDate              *time.Time    `json:"end_date,omitempty"`
	EstimatedMinutes     int           `json:"estimated_minutes"`
	Priority             *int          `json:"priority,omitempty"`
	IsActive             bool          `json:"is_active"`
	Assignments          []Assignment  `json:"assignments,omitempty"`
	Steps                []RoutineStep `json:"steps,omitempty"`
	CreatedAt            time.Time     `json:"created_at"`
	UpdatedAt            time.Time     `json:"updated_at"`
}

// AnnotatedTask is a task plus its status computed at call time
type AnnotatedTask struct {
	Task
	Status Status `json:"status"`
}

// Completion records that a family member completed a task. Completions are
// append-only and survive deletion of the task they reference.
type Completion struct {
	ID             string    `json:"id"`
	TaskID         string    `json:"task_id"`
	FamilyMemberID string    `json:"family_member_id"`
	CompletedAt    time.Time `json:"completed_at"`
	Notes          string    `json:"notes,omitempty"`
}

// StepDefinition is a caller-supplied routine step. ID may reference an
// existing step so its identity is preserved across a replace.
type StepDefinition struct {
	ID               string `json:"id,omitempty"`
	Description      string `json:"description"`
	EstimatedMinutes int    `json:"estimated_minutes"`
}

// TaskDefinition is the payload for creating or updating a task. The child
// collection is always replaced wholesale, never patched.
type TaskDefinition struct {
	Kind                 string           `json:"kind"`
	Name                 string           `json:"name"`
	Description          string           `json:"description,omitempty"`
	Recurrence           string           `json:"recurrence"`
	CustomRecurrenceExpr string           `json:"custom_recurrence_expr,omitempty"`
	StartDate            time.Time        `json:"start_date"`
	EndDate              *time.Time       `json:"end_date,omitempty"`
	EstimatedMinutes     int              `json:"estimated_minutes"`
	Priority             *int             `json:"priority,omitempty"`
	IsActive             bool             `json:"is_active"`
	FamilyMemberIDs      []string         `json:"family_member_ids,omitempty"`
	Steps                []StepDefinition `json:"steps,omitempty"`
}

// TaskFilter narrows ListTasks results
type TaskFilter struct {
	IsActive       *bool
	FamilyMemberID string
}

// CompletionFilter narrows ListCompletions results
type CompletionFilter struct {
	TaskID         string
	FamilyMemberID string
	From           *time.Time
	To             *time.Time
}
