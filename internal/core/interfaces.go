package core

import (
	"context"
	"time"
)

// Storage persists tasks, family members, and completions.
// Implementations: storage.Store (SQLite)
//
// CreateTask and UpdateTask receive a fully normalized task (deduplicated
// assignments, densely numbered steps) and must replace the child collection
// and upsert the task row inside one atomic unit, returning the hydrated
// result. A reader must never observe a task with a partially replaced
// child set.
type Storage interface {
	CreateTask(ctx context.Context, task *Task) (*Task, error)
	UpdateTask(ctx context.Context, task *Task) (*Task, error)
	GetTask(ctx context.Context, accountID, id string) (*Task, error)
	ListTasks(ctx context.Context, accountID string, filter TaskFilter) ([]*Task, error)
	DeleteTask(ctx context.Context, accountID, id string) error

	CreateFamilyMember(ctx context.Context, member *FamilyMember) error
	UpdateFamilyMember(ctx context.Context, member *FamilyMember) error
	GetFamilyMember(ctx context.Context, accountID, id string) (*FamilyMember, error)
	ListFamilyMembers(ctx context.Context, accountID string) ([]*FamilyMember, error)
	DeleteFamilyMember(ctx context.Context, accountID, id string) error

	InsertCompletion(ctx context.Context, accountID string, completion *Completion) error
	MostRecentCompletion(ctx context.Context, taskID string) (*Completion, error)
	ListCompletions(ctx context.Context, accountID string, filter CompletionFilter) ([]*Completion, error)
	DeleteCompletion(ctx context.Context, accountID, id string) error

	Close() error
}

// Clock supplies "now" so status computation and completion timestamps are
// replayable in tests.
// Implementations: realClock, tests supply fixed clocks
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

// NewClock returns the wall clock
func NewClock() Clock {
	return realClock{}
}
