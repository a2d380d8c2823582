package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/PrinceLenny001/KitchenHelper-sub000/internal/core"
)

// CreateFamilyMember inserts a member. The first member of an account is
// always the default; marking a later member default demotes the current
// one in the same transaction.
func (s *Store) CreateFamilyMember(ctx context.Context, member *core.FamilyMember) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var n int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM family_members WHERE account_id = ?`,
			member.AccountID).Scan(&n); err != nil {
			return err
		}
		if n == 0 {
			member.IsDefault = true
		} else if member.IsDefault {
			if _, err := tx.ExecContext(ctx,
				`UPDATE family_members SET is_default = 0 WHERE account_id = ?`,
				member.AccountID); err != nil {
				return fmt.Errorf("demote default member: %w", err)
			}
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO family_members (id, account_id, name, color_tag, is_default, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, member.ID, member.AccountID, member.Name, member.ColorTag,
			member.IsDefault, member.CreatedAt, member.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert family member: %w", err)
		}
		return nil
	})
}

// UpdateFamilyMember saves the member's fields, demoting the previous
// default when this one takes over.
func (s *Store) UpdateFamilyMember(ctx context.Context, member *core.FamilyMember) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if member.IsDefault {
			if _, err := tx.ExecContext(ctx,
				`UPDATE family_members SET is_default = 0 WHERE account_id = ? AND id != ?`,
				member.AccountID, member.ID); err != nil {
				return fmt.Errorf("demote default member: %w", err)
			}
		}

		res, err := tx.ExecContext(ctx, `
			UPDATE family_members
			SET name = ?, color_tag = ?, is_default = ?, updated_at = ?
			WHERE id = ? AND account_id = ?
		`, member.Name, member.ColorTag, member.IsDefault, member.UpdatedAt,
			member.ID, member.AccountID)
		if err != nil {
			return fmt.Errorf("update family member: %w", err)
		}
		if n, err := res.RowsAffected(); err != nil {
			return err
		} else if n == 0 {
			return fmt.Errorf("family member %s: %w", member.ID, core.ErrNotFound)
		}
		return nil
	})
}

// GetFamilyMember returns the member, or core.ErrNotFound
func (s *Store) GetFamilyMember(ctx context.Context, accountID, id string) (*core.FamilyMember, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, account_id, name, color_tag, is_default, created_at, updated_at
		FROM family_members WHERE id = ? AND account_id = ?
	`, id, accountID)

	member, err := scanMember(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("family member %s: %w", id, core.ErrNotFound)
		}
		return nil, err
	}
	return member, nil
}

// ListFamilyMembers returns the account's members, oldest first
func (s *Store) ListFamilyMembers(ctx context.Context, accountID string) ([]*core.FamilyMember, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, account_id, name, color_tag, is_default, created_at, updated_at
		FROM family_members WHERE account_id = ?
		ORDER BY created_at, id
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*core.FamilyMember
	for rows.Next() {
		member, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, member)
	}
	return members, rows.Err()
}

// DeleteFamilyMember removes the member and their assignments. Deleting the
// last member of an account is rejected; deleting the default promotes the
// oldest remaining member. Completions recorded by the member are retained.
func (s *Store) DeleteFamilyMember(ctx context.Context, accountID, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		var isDefault bool
		err := tx.QueryRowContext(ctx,
			`SELECT is_default FROM family_members WHERE id = ? AND account_id = ?`,
			id, accountID).Scan(&isDefault)
		if err == sql.ErrNoRows {
			return fmt.Errorf("family member %s: %w", id, core.ErrNotFound)
		}
		if err != nil {
			return err
		}

		var n int
		if err := tx.QueryRowContext(ctx,
			`SELECT COUNT(1) FROM family_members WHERE account_id = ?`,
			accountID).Scan(&n); err != nil {
			return err
		}
		if n <= 1 {
			ve := core.NewValidationError()
			ve.Add("id", "cannot delete the last family member")
			return ve
		}

		if _, err := tx.ExecContext(ctx,
			`DELETE FROM assignments WHERE family_member_id = ?`, id); err != nil {
			return fmt.Errorf("delete member assignments: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM family_members WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete family member: %w", err)
		}

		if isDefault {
			// Promote the oldest remaining member.
			if _, err := tx.ExecContext(ctx, `
				UPDATE family_members SET is_default = 1
				WHERE id = (
					SELECT id FROM family_members WHERE account_id = ?
					ORDER BY created_at, id LIMIT 1
				)
			`, accountID); err != nil {
				return fmt.Errorf("promote default member: %w", err)
			}
		}
		return nil
	})
}

func scanMember(row rowScanner) (*core.FamilyMember, error) {
	var member core.FamilyMember
	var colorTag sql.NullString

	err := row.Scan(&member.ID, &member.AccountID, &member.Name, &colorTag,
		&member.IsDefault, &member.CreatedAt, &member.UpdatedAt)
	if err != nil {
		return nil, err
	}
	member.ColorTag = colorTag.String
	return &member, nil
}
