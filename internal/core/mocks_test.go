package core

import (
	"context"
	"fmt"
	"sort"
	"time"
)

// fixedClock pins "now" for deterministic status computation
type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

// MockStorage implements Storage in memory for engine tests
type MockStorage struct {
	Tasks       map[string]*Task
	Members     map[string]*FamilyMember
	Completions []*Completion

	CreateTaskErr error
	UpdateTaskErr error
}

func NewMockStorage() *MockStorage {
	return &MockStorage{
		Tasks:   make(map[string]*Task),
		Members: make(map[string]*FamilyMember),
	}
}

func (m *MockStorage) CreateTask(ctx context.Context, task *Task) (*Task, error) {
	if m.CreateTaskErr != nil {
		return nil, m.CreateTaskErr
	}
	m.Tasks[task.ID] = task
	return task, nil
}

func (m *MockStorage) UpdateTask(ctx context.Context, task *Task) (*Task, error) {
	if m.UpdateTaskErr != nil {
		return nil, m.UpdateTaskErr
	}
	if _, ok := m.Tasks[task.ID]; !ok {
		return nil, fmt.Errorf("task %s: %w", task.ID, ErrNotFound)
	}
	m.Tasks[task.ID] = task
	return task, nil
}

func (m *MockStorage) GetTask(ctx context.Context, accountID, id string) (*Task, error) {
	task, ok := m.Tasks[id]
	if !ok || task.AccountID != accountID {
		return nil, fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	return task, nil
}

func (m *MockStorage) ListTasks(ctx context.Context, accountID string, filter TaskFilter) ([]*Task, error) {
	var out []*Task
	for _, task := range m.Tasks {
		if task.AccountID != accountID {
			continue
		}
		if filter.IsActive != nil && task.IsActive != *filter.IsActive {
			continue
		}
		out = append(out, task)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockStorage) DeleteTask(ctx context.Context, accountID, id string) error {
	task, ok := m.Tasks[id]
	if !ok || task.AccountID != accountID {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	delete(m.Tasks, id)
	return nil
}

func (m *MockStorage) CreateFamilyMember(ctx context.Context, member *FamilyMember) error {
	m.Members[member.ID] = member
	return nil
}

func (m *MockStorage) UpdateFamilyMember(ctx context.Context, member *FamilyMember) error {
	if _, ok := m.Members[member.ID]; !ok {
		return fmt.Errorf("family member %s: %w", member.ID, ErrNotFound)
	}
	m.Members[member.ID] = member
	return nil
}

func (m *MockStorage) GetFamilyMember(ctx context.Context, accountID, id string) (*FamilyMember, error) {
	member, ok := m.Members[id]
	if !ok || member.AccountID != accountID {
		return nil, fmt.Errorf("family member %s: %w", id, ErrNotFound)
	}
	return member, nil
}

func (m *MockStorage) ListFamilyMembers(ctx context.Context, accountID string) ([]*FamilyMember, error) {
	var out []*FamilyMember
	for _, member := range m.Members {
		if member.AccountID == accountID {
			out = append(out, member)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *MockStorage) DeleteFamilyMember(ctx context.Context, accountID, id string) error {
	member, ok := m.Members[id]
	if !ok || member.AccountID != accountID {
		return fmt.Errorf("family member %s: %w", id, ErrNotFound)
	}
	delete(m.Members, id)
	return nil
}

func (m *MockStorage) InsertCompletion(ctx context.Context, accountID string, completion *Completion) error {
	m.Completions = append(m.Completions, completion)
	return nil
}

func (m *MockStorage) MostRecentCompletion(ctx context.Context, taskID string) (*Completion, error) {
	var latest *Completion
	for _, c := range m.Completions {
		if c.TaskID != taskID {
			continue
		}
		if latest == nil || c.CompletedAt.After(latest.CompletedAt) {
			latest = c
		}
	}
	return latest, nil
}

func (m *MockStorage) ListCompletions(ctx context.Context, accountID string, filter CompletionFilter) ([]*Completion, error) {
	var out []*Completion
	for _, c := range m.Completions {
		if filter.TaskID != "" && c.TaskID != filter.TaskID {
			continue
		}
		if filter.FamilyMemberID != "" && c.FamilyMemberID != filter.FamilyMemberID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *MockStorage) DeleteCompletion(ctx context.Context, accountID, id string) error {
	for i, c := range m.Completions {
		if c.ID == id {
			m.Completions = append(m.Completions[:i], m.Completions[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("completion %s: %w", id, ErrNotFound)
}

func (m *MockStorage) Close() error { return nil }
