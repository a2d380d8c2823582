package core

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Engine orchestrates task writes, completion tracking, and status
// annotation. Every operation is a synchronous request/response unit; the
// atomic-unit guarantee for multi-row writes lives in the Storage
// implementation.
type Engine struct {
	store Storage
	clock Clock
}

// NewEngine creates an engine over the given storage and clock
func NewEngine(store Storage, clock Clock) *Engine {
	if clock == nil {
		clock = NewClock()
	}
	return &Engine{store: store, clock: clock}
}

// Close releases storage resources
func (e *Engine) Close() error {
	return e.store.Close()
}

// CreateTask validates the definition and persists the task together with
// its child collection in one atomic unit.
func (e *Engine) CreateTask(ctx context.Context, accountID string, def TaskDefinition) (*Task, error) {
	if err := ValidateDefinition(&def); err != nil {
		return nil, err
	}

	now := e.clock.Now()
	task := e.buildTask(accountID, uuid.NewString(), &def)
	task.CreatedAt = now
	task.UpdatedAt = now

	return e.store.CreateTask(ctx, task)
}

// UpdateTask validates the definition and replaces the stored task and its
// child collection. The task's kind is fixed at creation.
func (e *Engine) UpdateTask(ctx context.Context, accountID, id string, def TaskDefinition) (*Task, error) {
	existing, err := e.store.GetTask(ctx, accountID, id)
	if err != nil {
		return nil, err
	}
	if def.Kind == "" {
		def.Kind = existing.Kind
	}
	if def.Kind != existing.Kind {
		ve := NewValidationError()
		ve.Add("kind", "kind cannot change after creation")
		return nil, ve
	}
	if err := ValidateDefinition(&def); err != nil {
		return nil, err
	}

	task := e.buildTask(accountID, id, &def)
	task.CreatedAt = existing.CreatedAt
	task.UpdatedAt = e.clock.Now()

	return e.store.UpdateTask(ctx, task)
}

// GetTask returns a single task annotated with its current status
func (e *Engine) GetTask(ctx context.Context, accountID, id string) (*AnnotatedTask, error) {
	task, err := e.store.GetTask(ctx, accountID, id)
	if err != nil {
		return nil, err
	}
	return e.annotate(ctx, task)
}

// ListTasks returns the account's tasks, each annotated with the status
// computed for today.
func (e *Engine) ListTasks(ctx context.Context, accountID string, filter TaskFilter) ([]*AnnotatedTask, error) {
	tasks, err := e.store.ListTasks(ctx, accountID, filter)
	if err != nil {
		return nil, err
	}

	annotated := make([]*AnnotatedTask, 0, len(tasks))
	for _, task := range tasks {
		at, err := e.annotate(ctx, task)
		if err != nil {
			return nil, err
		}
		annotated = append(annotated, at)
	}
	return annotated, nil
}

// DeleteTask removes the task and its children. Completions are kept on
// purpose: they reference history, not live state.
func (e *Engine) DeleteTask(ctx context.Context, accountID, id string) error {
	return e.store.DeleteTask(ctx, accountID, id)
}

// RecordCompletion appends a completion for the task. CompletedAt defaults
// to now. Recording is deliberately not idempotent: two calls produce two
// rows, because a task may legitimately be completed more than once inside
// one window.
func (e *Engine) RecordCompletion(ctx context.Context, accountID, taskID, familyMemberID string, completedAt *time.Time, notes string) (*Completion, error) {
	if _, err := e.store.GetTask(ctx, accountID, taskID); err != nil {
		return nil, err
	}
	if _, err := e.store.GetFamilyMember(ctx, accountID, familyMemberID); err != nil {
		// The member either does not exist or belongs to another account;
		// both read as a bad reference from this task's point of view.
		return nil, fmt.Errorf("family member %s: %w", familyMemberID, ErrInvalidReference)
	}

	when := e.clock.Now()
	if completedAt != nil {
		when = *completedAt
	}

	completion := &Completion{
		ID:             uuid.NewString(),
		TaskID:         taskID,
		FamilyMemberID: familyMemberID,
		CompletedAt:    when,
		Notes:          notes,
	}
	if err := e.store.InsertCompletion(ctx, accountID, completion); err != nil {
		return nil, err
	}
	return completion, nil
}

// ListCompletions returns completions matching the filter
func (e *Engine) ListCompletions(ctx context.Context, accountID string, filter CompletionFilter) ([]*Completion, error) {
	return e.store.ListCompletions(ctx, accountID, filter)
}

// DeleteCompletion removes a single completion row. This is an explicit
// operator action; the engine itself never deletes completions.
func (e *Engine) DeleteCompletion(ctx context.Context, accountID, id string) error {
	return e.store.DeleteCompletion(ctx, accountID, id)
}

// CreateFamilyMember adds a member to the household. The first member of an
// account always becomes the default.
func (e *Engine) CreateFamilyMember(ctx context.Context, accountID, name, colorTag string, isDefault bool) (*FamilyMember, error) {
	if name == "" {
		ve := NewValidationError()
		ve.Add("name", "name is required")
		return nil, ve
	}

	now := e.clock.Now()
	member := &FamilyMember{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Name:      name,
		ColorTag:  colorTag,
		IsDefault: isDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := e.store.CreateFamilyMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// UpdateFamilyMember renames or recolors a member, or marks it the default
func (e *Engine) UpdateFamilyMember(ctx context.Context, accountID, id, name, colorTag string, isDefault bool) (*FamilyMember, error) {
	member, err := e.store.GetFamilyMember(ctx, accountID, id)
	if err != nil {
		return nil, err
	}
	if name == "" {
		ve := NewValidationError()
		ve.Add("name", "name is required")
		return nil, ve
	}

	member.Name = name
	member.ColorTag = colorTag
	member.IsDefault = isDefault
	member.UpdatedAt = e.clock.Now()

	if err := e.store.UpdateFamilyMember(ctx, member); err != nil {
		return nil, err
	}
	return member, nil
}

// ListFamilyMembers returns the household's members
func (e *Engine) ListFamilyMembers(ctx context.Context, accountID string) ([]*FamilyMember, error) {
	return e.store.ListFamilyMembers(ctx, accountID)
}

// DeleteFamilyMember removes a member. The last member of an account cannot
// be deleted, and deleting the default promotes the oldest remaining member.
func (e *Engine) DeleteFamilyMember(ctx context.Context, accountID, id string) error {
	return e.store.DeleteFamilyMember(ctx, accountID, id)
}

// buildTask assembles a Task from a validated definition, normalizing the
// child collection for the storage layer.
func (e *Engine) buildTask(accountID, id string, def *TaskDefinition) *Task {
	task := &Task{
		ID:                   id,
		AccountID:            accountID,
		Kind:                 def.Kind,
		Name:                 def.Name,
		Description:          def.Description,
		Recurrence:           def.Recurrence,
		CustomRecurrenceExpr: def.CustomRecurrenceExpr,
		StartDate:            DateOnly(def.StartDate),
		EstimatedMinutes:     def.EstimatedMinutes,
		Priority:             def.Priority,
		IsActive:             def.IsActive,
	}
	if def.EndDate != nil {
		end := DateOnly(*def.EndDate)
		task.EndDate = &end
	}

	switch def.Kind {
	case KindChore:
		for _, memberID := range NormalizeAssignees(def.FamilyMemberIDs) {
			task.Assignments = append(task.Assignments, Assignment{
				TaskID:         id,
				FamilyMemberID: memberID,
			})
		}
	case KindRoutine:
		task.Steps = NormalizeSteps(id, def.Steps)
	}
	return task
}

func (e *Engine) annotate(ctx context.Context, task *Task) (*AnnotatedTask, error) {
	mostRecent, err := e.store.MostRecentCompletion(ctx, task.ID)
	if err != nil {
		return nil, err
	}
	return &AnnotatedTask{
		Task:   *task,
		Status: ComputeStatus(task, mostRecent, e.clock.Now()),
	}, nil
}
