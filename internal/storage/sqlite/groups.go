package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/common"
	"github.com/mmynk/splitledger/internal/models"
)

// CreateGroup inserts a group and its roster in a single transaction.
func (s *SQLiteStore) CreateGroup(ctx context.Context, group *models.Group) error {
	if strings.TrimSpace(group.Name) == "" {
		return common.InvalidInput("name", "name is required")
	}
	if len(group.Members) == 0 {
		return common.InvalidInput("members", "group needs at least one member")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	roster := make([]models.User, 0, len(group.Members))
	seen := make(map[string]bool, len(group.Members))
	for _, m := range group.Members {
		if seen[m.ID] {
			continue
		}
		var user models.User
		err := tx.QueryRowContext(ctx,
			"SELECT id, name, created_at FROM users WHERE id = ?",
			m.ID,
		).Scan(&user.ID, &user.Name, &user.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			return common.UserNotFound(m.ID)
		}
		if err != nil {
			return fmt.Errorf("failed to look up member: %w", err)
		}
		seen[m.ID] = true
		roster = append(roster, user)
	}

	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = s.now().Unix()
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO groups (id, name, created_at) VALUES (?, ?, ?)",
		group.ID, group.Name, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert group: %w", err)
	}

	for i, member := range roster {
		_, err = tx.ExecContext(ctx,
			"INSERT INTO group_members (group_id, user_id, position) VALUES (?, ?, ?)",
			group.ID, member.ID, i,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	group.Members = roster
	return nil
}

// GetGroup retrieves a group with its roster.
func (s *SQLiteStore) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	group := &models.Group{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, name, created_at FROM groups WHERE id = ?",
		groupID,
	).Scan(&group.ID, &group.Name, &group.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.GroupNotFound(groupID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get group: %w", err)
	}

	members, err := s.loadMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	group.Members = members

	return group, nil
}

// ListGroups returns all groups in creation order.
func (s *SQLiteStore) ListGroups(ctx context.Context) ([]*models.Group, error) {
	return s.queryGroups(ctx,
		"SELECT id, name, created_at FROM groups ORDER BY created_at, rowid",
	)
}

// ListGroupsForUser returns the groups a user belongs to, in creation order.
func (s *SQLiteStore) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	return s.queryGroups(ctx, `
		SELECT g.id, g.name, g.created_at
		FROM groups g
		JOIN group_members gm ON gm.group_id = g.id
		WHERE gm.user_id = ?
		ORDER BY g.created_at, g.rowid`,
		userID,
	)
}

// ListMembers returns the group's roster in display order.
func (s *SQLiteStore) ListMembers(ctx context.Context, groupID string) ([]models.User, error) {
	if err := s.groupExists(ctx, groupID); err != nil {
		return nil, err
	}
	return s.loadMembers(ctx, groupID)
}

func (s *SQLiteStore) groupExists(ctx context.Context, groupID string) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM groups WHERE id = ?",
		groupID,
	).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return common.GroupNotFound(groupID)
	}
	if err != nil {
		return fmt.Errorf("failed to get group: %w", err)
	}
	return nil
}

func (s *SQLiteStore) queryGroups(ctx context.Context, query string, args ...any) ([]*models.Group, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	var groups []*models.Group
	for rows.Next() {
		group := &models.Group{}
		if err := rows.Scan(&group.ID, &group.Name, &group.CreatedAt); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("error iterating groups: %w", err)
	}
	rows.Close()

	// Load rosters after the group cursor is released
	for _, group := range groups {
		members, err := s.loadMembers(ctx, group.ID)
		if err != nil {
			return nil, err
		}
		group.Members = members
	}

	return groups, nil
}

func (s *SQLiteStore) loadMembers(ctx context.Context, groupID string) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.name, u.created_at
		FROM group_members gm
		JOIN users u ON u.id = gm.user_id
		WHERE gm.group_id = ?
		ORDER BY gm.position`,
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get group members: %w", err)
	}
	defer rows.Close()

	var members []models.User
	for rows.Next() {
		var user models.User
		if err := rows.Scan(&user.ID, &user.Name, &user.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan group member: %w", err)
		}
		members = append(members, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group members: %w", err)
	}

	return members, nil
}
