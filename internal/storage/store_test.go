package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/PrinceLenny001/KitchenHelper-sub000/internal/core"
)

const testAccount = "acct-1"

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(filepath.Join(t.TempDir(), "kitchenhelper.db"))
	if err != nil {
		t.Fatalf("failed to create test store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func addMember(t *testing.T, store *Store, accountID, name string, isDefault bool, createdAt time.Time) *core.FamilyMember {
	t.Helper()
	member := &core.FamilyMember{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Name:      name,
		IsDefault: isDefault,
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}
	if err := store.CreateFamilyMember(context.Background(), member); err != nil {
		t.Fatalf("failed to create member %s: %v", name, err)
	}
	return member
}

func choreTask(accountID, name string, memberIDs []string, createdAt time.Time) *core.Task {
	task := &core.Task{
		ID:         uuid.NewString(),
		AccountID:  accountID,
		Kind:       core.KindChore,
		Name:       name,
		Recurrence: core.RecurrenceDaily,
		StartDate:  time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		IsActive:   true,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	for _, id := range memberIDs {
		task.Assignments = append(task.Assignments, core.Assignment{
			TaskID:         task.ID,
			FamilyMemberID: id,
		})
	}
	return task
}

func routineTask(accountID, name string, descriptions []string, createdAt time.Time) *core.Task {
	task := &core.Task{
		ID:         uuid.NewString(),
		AccountID:  accountID,
		Kind:       core.KindRoutine,
		Name:       name,
		Recurrence: core.RecurrenceWeekdays,
		StartDate:  time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		IsActive:   true,
		CreatedAt:  createdAt,
		UpdatedAt:  createdAt,
	}
	for i, desc := range descriptions {
		task.Steps = append(task.Steps, core.RoutineStep{
			TaskID:      task.ID,
			Position:    i,
			Description: desc,
		})
	}
	return task
}

func TestCreateTask_ChoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

	member := addMember(t, store, testAccount, "Sam", true, now)
	task := choreTask(testAccount, "Dishes", []string{member.ID}, now)

	created, err := store.CreateTask(ctx, task)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if len(created.Assignments) != 1 {
		t.Fatalf("expected 1 assignment, got %d", len(created.Assignments))
	}
	if created.Assignments[0].ID == "" {
		t.Error("expected assignment id to be generated")
	}
	if created.Assignments[0].FamilyMemberID != member.ID {
		t.Errorf("assignment member = %s, want %s", created.Assignments[0].FamilyMemberID, member.ID)
	}

	got, err := store.GetTask(ctx, testAccount, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Name != "Dishes" || got.Kind != core.KindChore {
		t.Errorf("unexpected task: %+v", got)
	}
}

func TestCreateTask_BadAssigneeRollsBack(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

	task := choreTask(testAccount, "Dishes", []string{"no-such-member"}, now)
	_, err := store.CreateTask(ctx, task)
	if !errors.Is(err, core.ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}

	// The task row must not survive the failed transaction.
	if _, err := store.GetTask(ctx, testAccount, task.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound after rollback, got %v", err)
	}
}

func TestCreateTask_MemberFromOtherAccountRejected(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

	other := addMember(t, store, "acct-2", "Alex", true, now)
	task := choreTask(testAccount, "Dishes", []string{other.ID}, now)

	if _, err := store.CreateTask(ctx, task); !errors.Is(err, core.ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}
}

func TestUpdateTask_BadAssigneeKeepsPriorState(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

	member := addMember(t, store, testAccount, "Sam", true, now)
	task := choreTask(testAccount, "Dishes", []string{member.ID}, now)
	if _, err := store.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	bad := choreTask(testAccount, "Dishes renamed", []string{"no-such-member"}, now)
	bad.ID = task.ID
	if _, err := store.UpdateTask(ctx, bad); !errors.Is(err, core.ErrInvalidReference) {
		t.Fatalf("expected ErrInvalidReference, got %v", err)
	}

	got, err := store.GetTask(ctx, testAccount, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if got.Name != "Dishes" {
		t.Errorf("name = %q, rename should have rolled back", got.Name)
	}
	if len(got.Assignments) != 1 || got.Assignments[0].FamilyMemberID != member.ID {
		t.Errorf("assignments changed by failed update: %+v", got.Assignments)
	}
}

func TestUpdateTask_NotFound(t *testing.T) {
	store := newTestStore(t)
	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

	task := choreTask(testAccount, "Dishes", nil, now)
	if _, err := store.UpdateTask(context.Background(), task); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestReplaceSteps(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

	task := routineTask(testAccount, "Morning routine", []string{"wake up", "brush teeth", "get dressed"}, now)
	created, err := store.CreateTask(ctx, task)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if len(created.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(created.Steps))
	}
	keptID := created.Steps[1].ID
	droppedID := created.Steps[0].ID

	// Keep "brush teeth" first, drop "wake up", add a new step.
	update := routineTask(testAccount, "Morning routine", nil, now)
	update.ID = task.ID
	update.Steps = []core.RoutineStep{
		{ID: keptID, TaskID: task.ID, Position: 0, Description: "brush teeth"},
		{TaskID: task.ID, Position: 1, Description: "get dressed"},
		{TaskID: task.ID, Position: 2, Description: "make bed"},
	}

	updated, err := store.UpdateTask(ctx, update)
	if err != nil {
		t.Fatalf("UpdateTask: %v", err)
	}
	if len(updated.Steps) != 3 {
		t.Fatalf("expected 3 steps, got %d", len(updated.Steps))
	}
	for i, step := range updated.Steps {
		if step.Position != i {
			t.Errorf("step %d position = %d", i, step.Position)
		}
	}
	if updated.Steps[0].ID != keptID {
		t.Errorf("expected step identity preserved, got %s", updated.Steps[0].ID)
	}
	for _, step := range updated.Steps {
		if step.ID == droppedID {
			t.Errorf("dropped step %s still present", droppedID)
		}
	}
}

func TestListTasks(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

	sam := addMember(t, store, testAccount, "Sam", true, base)
	alex := addMember(t, store, testAccount, "Alex", false, base)

	dishes := choreTask(testAccount, "Dishes", []string{sam.ID}, base)
	laundry := choreTask(testAccount, "Laundry", []string{alex.ID}, base.Add(time.Hour))
	laundry.IsActive = false
	foreign := choreTask("acct-2", "Other household", nil, base)
	foreign.Assignments = nil

	for _, task := range []*core.Task{dishes, laundry, foreign} {
		if _, err := store.CreateTask(ctx, task); err != nil {
			t.Fatalf("CreateTask %s: %v", task.Name, err)
		}
	}

	t.Run("scoped to account, newest first", func(t *testing.T) {
		tasks, err := store.ListTasks(ctx, testAccount, core.TaskFilter{})
		if err != nil {
			t.Fatalf("ListTasks: %v", err)
		}
		if len(tasks) != 2 {
			t.Fatalf("expected 2 tasks, got %d", len(tasks))
		}
		if tasks[0].Name != "Laundry" || tasks[1].Name != "Dishes" {
			t.Errorf("unexpected order: %s, %s", tasks[0].Name, tasks[1].Name)
		}
	})

	t.Run("active filter", func(t *testing.T) {
		active := true
		tasks, err := store.ListTasks(ctx, testAccount, core.TaskFilter{IsActive: &active})
		if err != nil {
			t.Fatalf("ListTasks: %v", err)
		}
		if len(tasks) != 1 || tasks[0].Name != "Dishes" {
			t.Errorf("expected only Dishes, got %d tasks", len(tasks))
		}
	})

	t.Run("member filter", func(t *testing.T) {
		tasks, err := store.ListTasks(ctx, testAccount, core.TaskFilter{FamilyMemberID: alex.ID})
		if err != nil {
			t.Fatalf("ListTasks: %v", err)
		}
		if len(tasks) != 1 || tasks[0].Name != "Laundry" {
			t.Errorf("expected only Laundry, got %d tasks", len(tasks))
		}
	})
}

func TestDeleteTask_KeepsCompletions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

	member := addMember(t, store, testAccount, "Sam", true, now)
	task := choreTask(testAccount, "Dishes", []string{member.ID}, now)
	if _, err := store.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	completion := &core.Completion{
		ID:             uuid.NewString(),
		TaskID:         task.ID,
		FamilyMemberID: member.ID,
		CompletedAt:    now,
	}
	if err := store.InsertCompletion(ctx, testAccount, completion); err != nil {
		t.Fatalf("InsertCompletion: %v", err)
	}

	if err := store.DeleteTask(ctx, testAccount, task.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}
	if _, err := store.GetTask(ctx, testAccount, task.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	completions, err := store.ListCompletions(ctx, testAccount, core.CompletionFilter{TaskID: task.ID})
	if err != nil {
		t.Fatalf("ListCompletions: %v", err)
	}
	if len(completions) != 1 {
		t.Errorf("expected completion history retained, got %d rows", len(completions))
	}

	if err := store.DeleteTask(ctx, testAccount, task.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestFamilyMembers_DefaultRules(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

	// First member becomes default even when not asked for.
	first := addMember(t, store, testAccount, "Sam", false, base)
	got, err := store.GetFamilyMember(ctx, testAccount, first.ID)
	if err != nil {
		t.Fatalf("GetFamilyMember: %v", err)
	}
	if !got.IsDefault {
		t.Error("first member should be forced default")
	}

	// A later default demotes the current one.
	second := addMember(t, store, testAccount, "Alex", true, base.Add(time.Minute))
	got, err = store.GetFamilyMember(ctx, testAccount, first.ID)
	if err != nil {
		t.Fatalf("GetFamilyMember: %v", err)
	}
	if got.IsDefault {
		t.Error("first member should have been demoted")
	}

	// Deleting the default promotes the oldest remaining member.
	third := addMember(t, store, testAccount, "Bailey", false, base.Add(2*time.Minute))
	if err := store.DeleteFamilyMember(ctx, testAccount, second.ID); err != nil {
		t.Fatalf("DeleteFamilyMember: %v", err)
	}
	got, err = store.GetFamilyMember(ctx, testAccount, first.ID)
	if err != nil {
		t.Fatalf("GetFamilyMember: %v", err)
	}
	if !got.IsDefault {
		t.Error("oldest remaining member should have been promoted")
	}

	// The last member of an account cannot be deleted.
	if err := store.DeleteFamilyMember(ctx, testAccount, third.ID); err != nil {
		t.Fatalf("DeleteFamilyMember: %v", err)
	}
	err = store.DeleteFamilyMember(ctx, testAccount, first.ID)
	if core.AsValidation(err) == nil {
		t.Errorf("expected ValidationError deleting last member, got %v", err)
	}
}

func TestDeleteFamilyMember_CascadesAssignments(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

	sam := addMember(t, store, testAccount, "Sam", true, now)
	alex := addMember(t, store, testAccount, "Alex", false, now.Add(time.Minute))

	task := choreTask(testAccount, "Dishes", []string{sam.ID, alex.ID}, now)
	if _, err := store.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if err := store.DeleteFamilyMember(ctx, testAccount, alex.ID); err != nil {
		t.Fatalf("DeleteFamilyMember: %v", err)
	}

	got, err := store.GetTask(ctx, testAccount, task.ID)
	if err != nil {
		t.Fatalf("GetTask: %v", err)
	}
	if len(got.Assignments) != 1 || got.Assignments[0].FamilyMemberID != sam.ID {
		t.Errorf("expected only Sam's assignment to survive, got %+v", got.Assignments)
	}
}

func TestCompletions(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)

	member := addMember(t, store, testAccount, "Sam", true, base)
	task := choreTask(testAccount, "Dishes", []string{member.ID}, base)
	if _, err := store.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	t.Run("most recent of none", func(t *testing.T) {
		c, err := store.MostRecentCompletion(ctx, task.ID)
		if err != nil {
			t.Fatalf("MostRecentCompletion: %v", err)
		}
		if c != nil {
			t.Errorf("expected nil completion, got %+v", c)
		}
	})

	var ids []string
	for i := 0; i < 3; i++ {
		c := &core.Completion{
			ID:             uuid.NewString(),
			TaskID:         task.ID,
			FamilyMemberID: member.ID,
			CompletedAt:    base.Add(time.Duration(i) * time.Hour),
		}
		if err := store.InsertCompletion(ctx, testAccount, c); err != nil {
			t.Fatalf("InsertCompletion: %v", err)
		}
		ids = append(ids, c.ID)
	}

	t.Run("most recent wins", func(t *testing.T) {
		c, err := store.MostRecentCompletion(ctx, task.ID)
		if err != nil {
			t.Fatalf("MostRecentCompletion: %v", err)
		}
		if c == nil || c.ID != ids[2] {
			t.Errorf("expected latest completion %s, got %+v", ids[2], c)
		}
	})

	t.Run("list newest first", func(t *testing.T) {
		completions, err := store.ListCompletions(ctx, testAccount, core.CompletionFilter{TaskID: task.ID})
		if err != nil {
			t.Fatalf("ListCompletions: %v", err)
		}
		if len(completions) != 3 {
			t.Fatalf("expected 3 completions, got %d", len(completions))
		}
		if completions[0].ID != ids[2] || completions[2].ID != ids[0] {
			t.Error("completions not in newest-first order")
		}
	})

	t.Run("date range filter", func(t *testing.T) {
		from := base.Add(30 * time.Minute)
		to := base.Add(90 * time.Minute)
		completions, err := store.ListCompletions(ctx, testAccount, core.CompletionFilter{From: &from, To: &to})
		if err != nil {
			t.Fatalf("ListCompletions: %v", err)
		}
		if len(completions) != 1 || completions[0].ID != ids[1] {
			t.Errorf("expected only the middle completion, got %d rows", len(completions))
		}
	})

	t.Run("other account sees nothing", func(t *testing.T) {
		completions, err := store.ListCompletions(ctx, "acct-2", core.CompletionFilter{})
		if err != nil {
			t.Fatalf("ListCompletions: %v", err)
		}
		if len(completions) != 0 {
			t.Errorf("expected no completions, got %d", len(completions))
		}
	})

	t.Run("delete", func(t *testing.T) {
		if err := store.DeleteCompletion(ctx, testAccount, ids[0]); err != nil {
			t.Fatalf("DeleteCompletion: %v", err)
		}
		if err := store.DeleteCompletion(ctx, testAccount, ids[0]); !errors.Is(err, core.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestGetTask_AccountScoping(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	now := time.Date(2024, time.March, 1, 9, 0, 0, 0, time.UTC)

	task := choreTask(testAccount, "Dishes", nil, now)
	if _, err := store.CreateTask(ctx, task); err != nil {
		t.Fatalf("CreateTask: %v", err)
	}

	if _, err := store.GetTask(ctx, "acct-2", task.ID); !errors.Is(err, core.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign account, got %v", err)
	}
}
