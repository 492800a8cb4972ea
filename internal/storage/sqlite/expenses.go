package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"iter"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/lock"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
)

// AppendExpense records the expense produced by build. The roster is read and
// the expense written while the group's append lock is held.
func (s *SQLiteStore) AppendExpense(ctx context.Context, groupID string, build storage.BuildFunc) (*models.Expense, error) {
	var recorded *models.Expense

	err := s.locker.WithLock(ctx, lock.GroupKey(groupID), func(ctx context.Context) error {
		members, err := s.ListMembers(ctx, groupID)
		if err != nil {
			return err
		}

		expense, err := build(members)
		if err != nil {
			return err
		}
		expense.GroupID = groupID
		if expense.ID == "" {
			expense.ID = uuid.New().String()
		}
		if expense.CreatedAt == 0 {
			expense.CreatedAt = s.now().Unix()
		}

		if err := s.insertExpense(ctx, expense); err != nil {
			return err
		}
		recorded = expense
		return nil
	})
	if err != nil {
		return nil, err
	}

	return recorded, nil
}

func (s *SQLiteStore) insertExpense(ctx context.Context, expense *models.Expense) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO expenses (id, group_id, description, amount_cents, payer_id, split_type, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		expense.ID, expense.GroupID, expense.Description, expense.Amount,
		expense.PayerID, string(expense.SplitType), expense.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert expense: %w", err)
	}

	for i, split := range expense.Splits {
		var percentage sql.NullString
		if split.Percentage != nil {
			percentage = sql.NullString{String: split.Percentage.String(), Valid: true}
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO expense_splits (expense_id, position, user_id, amount_cents, percentage)
			VALUES (?, ?, ?, ?, ?)`,
			expense.ID, i, split.UserID, split.Amount, percentage,
		)
		if err != nil {
			return fmt.Errorf("failed to insert expense split: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// ListExpenses streams the group's expenses in append order. Rows are read
// lazily; each range over the sequence runs a fresh query.
func (s *SQLiteStore) ListExpenses(ctx context.Context, groupID string) iter.Seq2[*models.Expense, error] {
	return func(yield func(*models.Expense, error) bool) {
		if err := s.groupExists(ctx, groupID); err != nil {
			yield(nil, err)
			return
		}

		rows, err := s.db.QueryContext(ctx, `
			SELECT e.id, e.group_id, e.description, e.amount_cents, e.payer_id, e.split_type, e.created_at,
			       s.user_id, s.amount_cents, s.percentage
			FROM expenses e
			LEFT JOIN expense_splits s ON s.expense_id = e.id
			WHERE e.group_id = ?
			ORDER BY e.seq, s.position`,
			groupID,
		)
		if err != nil {
			yield(nil, fmt.Errorf("failed to list expenses: %w", err))
			return
		}
		defer rows.Close()

		var current *models.Expense
		for rows.Next() {
			var (
				e          models.Expense
				splitType  string
				userID     sql.NullString
				cents      sql.NullInt64
				percentage sql.NullString
			)
			if err := rows.Scan(
				&e.ID, &e.GroupID, &e.Description, &e.Amount, &e.PayerID, &splitType, &e.CreatedAt,
				&userID, &cents, &percentage,
			); err != nil {
				yield(nil, fmt.Errorf("failed to scan expense: %w", err))
				return
			}

			if current == nil || current.ID != e.ID {
				if current != nil && !yield(current, nil) {
					return
				}
				e.SplitType = models.SplitType(splitType)
				current = &e
			}

			if !userID.Valid {
				continue
			}
			split := models.Split{UserID: userID.String, Amount: money.FromCents(cents.Int64)}
			if percentage.Valid {
				p, err := decimal.NewFromString(percentage.String)
				if err != nil {
					yield(nil, fmt.Errorf("failed to parse split percentage: %w", err))
					return
				}
				split.Percentage = &p
			}
			current.Splits = append(current.Splits, split)
		}
		if err := rows.Err(); err != nil {
			yield(nil, fmt.Errorf("error iterating expenses: %w", err))
			return
		}

		if current != nil {
			yield(current, nil)
		}
	}
}
