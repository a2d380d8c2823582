package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/PrinceLenny001/KitchenHelper-sub000/internal/core"
)

// InsertCompletion appends a completion row. Appending is safe under
// arbitrary concurrency; nothing else is read or written.
func (s *Store) InsertCompletion(ctx context.Context, accountID string, completion *core.Completion) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO completions (id, account_id, task_id, family_member_id, completed_at, notes)
		VALUES (?, ?, ?, ?, ?, ?)
	`, completion.ID, accountID, completion.TaskID, completion.FamilyMemberID,
		completion.CompletedAt, completion.Notes)
	if err != nil {
		return fmt.Errorf("insert completion: %w", err)
	}
	return nil
}

// MostRecentCompletion returns the latest completion for the task by
// completed_at, or nil when the task has never been completed.
func (s *Store) MostRecentCompletion(ctx context.Context, taskID string) (*core.Completion, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, task_id, family_member_id, completed_at, notes
		FROM completions WHERE task_id = ?
		ORDER BY completed_at DESC, id DESC LIMIT 1
	`, taskID)

	completion, err := scanCompletion(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return completion, nil
}

// ListCompletions returns the account's completions matching the filter,
// newest first.
func (s *Store) ListCompletions(ctx context.Context, accountID string, filter core.CompletionFilter) ([]*core.Completion, error) {
	query := `
		SELECT id, task_id, family_member_id, completed_at, notes
		FROM completions WHERE account_id = ?
	`
	args := []any{accountID}

	if filter.TaskID != "" {
		query += " AND task_id = ?"
		args = append(args, filter.TaskID)
	}
	if filter.FamilyMemberID != "" {
		query += " AND family_member_id = ?"
		args = append(args, filter.FamilyMemberID)
	}
	if filter.From != nil {
		query += " AND completed_at >= ?"
		args = append(args, *filter.From)
	}
	if filter.To != nil {
		query += " AND completed_at <= ?"
		args = append(args, *filter.To)
	}
	query += " ORDER BY completed_at DESC, id DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var completions []*core.Completion
	for rows.Next() {
		completion, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		completions = append(completions, completion)
	}
	return completions, rows.Err()
}

// DeleteCompletion removes a single completion row, or core.ErrNotFound
func (s *Store) DeleteCompletion(ctx context.Context, accountID, id string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM completions WHERE id = ? AND account_id = ?`, id, accountID)
	if err != nil {
		return fmt.Errorf("delete completion: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return err
	} else if n == 0 {
		return fmt.Errorf("completion %s: %w", id, core.ErrNotFound)
	}
	return nil
}

func scanCompletion(row rowScanner) (*core.Completion, error) {
	var completion core.Completion
	var notes sql.NullString

	err := row.Scan(&completion.ID, &completion.TaskID, &completion.FamilyMemberID,
		&completion.CompletedAt, &notes)
	if err != nil {
		return nil, err
	}
	completion.Notes = notes.String
	completion.CompletedAt = completion.CompletedAt.UTC()
	return &completion, nil
}
