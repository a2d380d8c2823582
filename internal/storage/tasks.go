package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/PrinceLenny001/KitchenHelper-sub000/internal/core"
)

// CreateTask inserts the task row and its child collection atomically and
// returns the hydrated result.
func (s *Store) CreateTask(ctx context.Context, task *core.Task) (*core.Task, error) {
	var created *core.Task
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO tasks (id, account_id, kind, name, description, recurrence,
				custom_recurrence_expr, start_date, end_date, estimated_minutes,
				priority, is_active, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, task.ID, task.AccountID, task.Kind, task.Name, task.Description,
			task.Recurrence, task.CustomRecurrenceExpr, task.StartDate,
			nullableTime(task.EndDate), task.EstimatedMinutes,
			nullableInt(task.Priority), task.IsActive, task.CreatedAt, task.UpdatedAt); err != nil {
			return fmt.Errorf("insert task: %w", err)
		}

		if err := s.replaceChildrenTx(ctx, tx, task); err != nil {
			return err
		}

		hydrated, err := s.getTaskTx(ctx, tx, task.AccountID, task.ID)
		if err != nil {
			return err
		}
		created = hydrated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// UpdateTask replaces the task row and its child collection atomically and
// returns the hydrated result. Fails with core.ErrNotFound when the id is
// absent or owned by another account.
func (s *Store) UpdateTask(ctx context.Context, task *core.Task) (*core.Task, error) {
	var updated *core.Task
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `
			UPDATE tasks
			SET name = ?, description = ?, recurrence = ?, custom_recurrence_expr = ?,
				start_date = ?, end_date = ?, estimated_minutes = ?, priority = ?,
				is_active = ?, updated_at = ?
			WHERE id = ? AND account_id = ?
		`, task.Name, task.Description, task.Recurrence, task.CustomRecurrenceExpr,
			task.StartDate, nullableTime(task.EndDate), task.EstimatedMinutes,
			nullableInt(task.Priority), task.IsActive, task.UpdatedAt,
			task.ID, task.AccountID)
		if err != nil {
			return fmt.Errorf("update task: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return fmt.Errorf("task %s: %w", task.ID, core.ErrNotFound)
		}

		if err := s.replaceChildrenTx(ctx, tx, task); err != nil {
			return err
		}

		hydrated, err := s.getTaskTx(ctx, tx, task.AccountID, task.ID)
		if err != nil {
			return err
		}
		updated = hydrated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// GetTask returns the hydrated task, or core.ErrNotFound
func (s *Store) GetTask(ctx context.Context, accountID, id string) (*core.Task, error) {
	return s.getTaskTx(ctx, nil, accountID, id)
}

// ListTasks returns the account's hydrated tasks, newest first
func (s *Store) ListTasks(ctx context.Context, accountID string, filter core.TaskFilter) ([]*core.Task, error) {
	query := `
		SELECT id, account_id, kind, name, description, recurrence,
			custom_recurrence_expr, start_date, end_date, estimated_minutes,
			priority, is_active, created_at, updated_at
		FROM tasks
		WHERE account_id = ?
	`
	args := []any{accountID}

	if filter.IsActive != nil {
		query += " AND is_active = ?"
		args = append(args, *filter.IsActive)
	}
	if filter.FamilyMemberID != "" {
		query += " AND EXISTS (SELECT 1 FROM assignments a WHERE a.task_id = tasks.id AND a.family_member_id = ?)"
		args = append(args, filter.FamilyMemberID)
	}
	query += " ORDER BY created_at DESC, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []*core.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, task := range tasks {
		if err := s.loadChildren(ctx, nil, task); err != nil {
			return nil, err
		}
	}
	return tasks, nil
}

// DeleteTask removes the task and its children. Completions referencing the
// task are retained on purpose.
func (s *Store) DeleteTask(ctx context.Context, accountID, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM assignments WHERE task_id = ?`, id); err != nil {
			return fmt.Errorf("delete assignments: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM routine_steps WHERE task_id = ?`, id); err != nil {
			return fmt.Errorf("delete steps: %w", err)
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ? AND account_id = ?`, id, accountID)
		if err != nil {
			return fmt.Errorf("delete task: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return fmt.Errorf("task %s: %w", id, core.ErrNotFound)
		}
		return nil
	})
}

// replaceChildrenTx swaps in the task's new child collection. Assignments
// are validated against the account before anything is deleted so a bad
// reference leaves prior state untouched.
func (s *Store) replaceChildrenTx(ctx context.Context, tx *sql.Tx, task *core.Task) error {
	switch task.Kind {
	case core.KindChore:
		return s.replaceAssignmentsTx(ctx, tx, task)
	case core.KindRoutine:
		return s.replaceStepsTx(ctx, tx, task)
	}
	return nil
}

func (s *Store) replaceAssignmentsTx(ctx context.Context, tx *sql.Tx, task *core.Task) error {
	for _, a := range task.Assignments {
		var n int
		err := tx.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM family_members WHERE id = ? AND account_id = ?`,
			a.FamilyMemberID, task.AccountID).Scan(&n)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("family member %s: %w", a.FamilyMemberID, core.ErrInvalidReference)
		}
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM assignments WHERE task_id = ?`, task.ID); err != nil {
		return fmt.Errorf("clear assignments: %w", err)
	}
	for _, a := range task.Assignments {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO assignments (id, task_id, family_member_id) VALUES (?, ?, ?)
		`, uuid.NewString(), task.ID, a.FamilyMemberID); err != nil {
			return fmt.Errorf("insert assignment: %w", err)
		}
	}
	return nil
}

// replaceStepsTx re-numbers steps densely in input order. Steps whose id
// matches an existing row keep their identity; rows absent from the input
// are deleted.
func (s *Store) replaceStepsTx(ctx context.Context, tx *sql.Tx, task *core.Task) error {
	rows, err := tx.QueryContext(ctx, `SELECT id FROM routine_steps WHERE task_id = ?`, task.ID)
	if err != nil {
		return err
	}
	existing := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return err
		}
		existing[id] = true
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return err
	}

	kept := make(map[string]bool, len(task.Steps))
	for _, step := range task.Steps {
		if step.ID != "" && existing[step.ID] {
			kept[step.ID] = true
			if _, err := tx.ExecContext(ctx, `
				UPDATE routine_steps SET position = ?, description = ?, estimated_minutes = ?
				WHERE id = ?
			`, step.Position, step.Description, step.EstimatedMinutes, step.ID); err != nil {
				return fmt.Errorf("update step: %w", err)
			}
			continue
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO routine_steps (id, task_id, position, description, estimated_minutes)
			VALUES (?, ?, ?, ?, ?)
		`, uuid.NewString(), task.ID, step.Position, step.Description, step.EstimatedMinutes); err != nil {
			return fmt.Errorf("insert step: %w", err)
		}
	}

	for id := range existing {
		if !kept[id] {
			if _, err := tx.ExecContext(ctx, `DELETE FROM routine_steps WHERE id = ?`, id); err != nil {
				return fmt.Errorf("delete step: %w", err)
			}
		}
	}
	return nil
}

// querier lets the hydration helpers run either inside or outside a tx
type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (s *Store) q(tx *sql.Tx) querier {
	if tx != nil {
		return tx
	}
	return s.db
}

func (s *Store) getTaskTx(ctx context.Context, tx *sql.Tx, accountID, id string) (*core.Task, error) {
	row := s.q(tx).QueryRowContext(ctx, `
		SELECT id, account_id, kind, name, description, recurrence,
			custom_recurrence_expr, start_date, end_date, estimated_minutes,
			priority, is_active, created_at, updated_at
		FROM tasks WHERE id = ? AND account_id = ?
	`, id, accountID)

	task, err := scanTask(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("task %s: %w", id, core.ErrNotFound)
		}
		return nil, err
	}
	if err := s.loadChildren(ctx, tx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Store) loadChildren(ctx context.Context, tx *sql.Tx, task *core.Task) error {
	switch task.Kind {
	case core.KindChore:
		rows, err := s.q(tx).QueryContext(ctx, `
			SELECT id, task_id, family_member_id FROM assignments
			WHERE task_id = ? ORDER BY id
		`, task.ID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var a core.Assignment
			if err := rows.Scan(&a.ID, &a.TaskID, &a.FamilyMemberID); err != nil {
				return err
			}
			task.Assignments = append(task.Assignments, a)
		}
		return rows.Err()
	case core.KindRoutine:
		rows, err := s.q(tx).QueryContext(ctx, `
			SELECT id, task_id, position, description, estimated_minutes
			FROM routine_steps WHERE task_id = ? ORDER BY position
		`, task.ID)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var step core.RoutineStep
			if err := rows.Scan(&step.ID, &step.TaskID, &step.Position, &step.Description, &step.EstimatedMinutes); err != nil {
				return err
			}
			task.Steps = append(task.Steps, step)
		}
		return rows.Err()
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*core.Task, error) {
	var task core.Task
	var description, customExpr sql.NullString
	var endDate sql.NullTime
	var priority sql.NullInt64

	err := row.Scan(&task.ID, &task.AccountID, &task.Kind, &task.Name,
		&description, &task.Recurrence, &customExpr, &task.StartDate,
		&endDate, &task.EstimatedMinutes, &priority, &task.IsActive,
		&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return nil, err
	}

	task.Description = description.String
	task.CustomRecurrenceExpr = customExpr.String
	if endDate.Valid {
		end := endDate.Time.UTC()
		task.EndDate = &end
	}
	if priority.Valid {
		p := int(priority.Int64)
		task.Priority = &p
	}
	task.StartDate = task.StartDate.UTC()
	return &task, nil
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func nullableInt(n *int) any {
	if n == nil {
		return nil
	}
	return *n
}
