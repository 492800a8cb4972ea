// Package memory provides an in-process implementation of storage.Store.
// Data lives for the life of the process; it backs tests and the
// "memory" database driver.
package memory

import (
	"context"
	"iter"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/splitledger/internal/common"
	"github.com/mmynk/splitledger/internal/lock"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store keeps users, groups and expense logs in maps guarded by an RWMutex.
type Store struct {
	mu     sync.RWMutex
	locker lock.Locker

	users      map[string]*models.User
	userOrder  []string
	groups     map[string]*models.Group
	groupOrder []string
	expenses   map[string][]*models.Expense

	now func() time.Time
}

// New creates an empty store. Appends are serialized per group with locker.
func New(locker lock.Locker) *Store {
	return &Store{
		locker:   locker,
		users:    make(map[string]*models.User),
		groups:   make(map[string]*models.Group),
		expenses: make(map[string][]*models.Expense),
		now:      time.Now,
	}
}

// Close is a no-op.
func (s *Store) Close() error { return nil }

// CreateUser implements storage.Directory.
func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if strings.TrimSpace(user.Name) == "" {
		return common.InvalidInput("name", "name is required")
	}
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = s.now().Unix()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.ID]; exists {
		return common.InvalidInput("id", "user %q already exists", user.ID)
	}
	stored := *user
	s.users[user.ID] = &stored
	s.userOrder = append(s.userOrder, user.ID)
	return nil
}

// GetUser implements storage.Directory.
func (s *Store) GetUser(ctx context.Context, userID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, common.UserNotFound(userID)
	}
	out := *user
	return &out, nil
}

// ListUsers implements storage.Directory.
func (s *Store) ListUsers(ctx context.Context) ([]*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*models.User, 0, len(s.userOrder))
	for _, id := range s.userOrder {
		u := *s.users[id]
		users = append(users, &u)
	}
	return users, nil
}

// CreateGroup implements storage.Directory.
func (s *Store) CreateGroup(ctx context.Context, group *models.Group) error {
	if strings.TrimSpace(group.Name) == "" {
		return common.InvalidInput("name", "name is required")
	}
	if len(group.Members) == 0 {
		return common.InvalidInput("members", "group needs at least one member")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	roster := make([]models.User, 0, len(group.Members))
	seen := make(map[string]bool, len(group.Members))
	for _, m := range group.Members {
		if seen[m.ID] {
			continue
		}
		user, ok := s.users[m.ID]
		if !ok {
			return common.UserNotFound(m.ID)
		}
		seen[m.ID] = true
		roster = append(roster, *user)
	}

	if group.ID == "" {
		group.ID = uuid.New().String()
	}
	if group.CreatedAt == 0 {
		group.CreatedAt = s.now().Unix()
	}
	if _, exists := s.groups[group.ID]; exists {
		return common.InvalidInput("id", "group %q already exists", group.ID)
	}
	group.Members = roster

	stored := *group
	stored.Members = append([]models.User(nil), roster...)
	s.groups[group.ID] = &stored
	s.groupOrder = append(s.groupOrder, group.ID)
	return nil
}

// GetGroup implements storage.Directory.
func (s *Store) GetGroup(ctx context.Context, groupID string) (*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	group, ok := s.groups[groupID]
	if !ok {
		return nil, common.GroupNotFound(groupID)
	}
	return copyGroup(group), nil
}

// ListGroups implements storage.Directory.
func (s *Store) ListGroups(ctx context.Context) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	groups := make([]*models.Group, 0, len(s.groupOrder))
	for _, id := range s.groupOrder {
		groups = append(groups, copyGroup(s.groups[id]))
	}
	return groups, nil
}

// ListGroupsForUser implements storage.Directory.
func (s *Store) ListGroupsForUser(ctx context.Context, userID string) ([]*models.Group, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var groups []*models.Group
	for _, id := range s.groupOrder {
		g := s.groups[id]
		if g.HasMember(userID) {
			groups = append(groups, copyGroup(g))
		}
	}
	return groups, nil
}

// ListMembers implements storage.ExpenseStore.
func (s *Store) ListMembers(ctx context.Context, groupID string) ([]models.User, error) {
	group, err := s.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return group.Members, nil
}

// AppendExpense implements storage.ExpenseStore.
func (s *Store) AppendExpense(ctx context.Context, groupID string, build storage.BuildFunc) (*models.Expense, error) {
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

		s.mu.Lock()
		s.expenses[groupID] = append(s.expenses[groupID], copyExpense(expense))
		s.mu.Unlock()

		recorded = expense
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recorded, nil
}

// ListExpenses implements storage.ExpenseStore. Each pass iterates over the
// log as it was when the pass started.
func (s *Store) ListExpenses(ctx context.Context, groupID string) iter.Seq2[*models.Expense, error] {
	return func(yield func(*models.Expense, error) bool) {
		s.mu.RLock()
		_, ok := s.groups[groupID]
		log := s.expenses[groupID]
		s.mu.RUnlock()

		if !ok {
			yield(nil, common.GroupNotFound(groupID))
			return
		}
		for _, e := range log {
			if err := ctx.Err(); err != nil {
				yield(nil, err)
				return
			}
			if !yield(copyExpense(e), nil) {
				return
			}
		}
	}
}

func copyGroup(g *models.Group) *models.Group {
	out := *g
	out.Members = append([]models.User(nil), g.Members...)
	return &out
}

func copyExpense(e *models.Expense) *models.Expense {
	out := *e
	out.Splits = append([]models.Split(nil), e.Splits...)
	return &out
}
