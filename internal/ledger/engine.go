// Package ledger turns a group's expense history into net balances.
//
// The Engine holds no balances of its own: every query replays the history
// from the store, and every append goes through the store's per-group lock.
package ledger

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/common"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage"
)

// maxConcurrentGroups bounds the fan-out of UserBalances.
const maxConcurrentGroups = 8

// ExpenseInput is a request to record one expense.
type ExpenseInput struct {
	GroupID     string
	Description string
	Amount      money.Money
	PayerID     string
	SplitType   models.SplitType

	// Participants are the users sharing the expense, in the order remainder
	// cents are handed out.
	Participants []calculator.Participant
}

// Engine implements expense creation and the balance views.
type Engine struct {
	store   storage.Store
	metrics *metrics.Recorder
}

// New creates an Engine. recorder may be nil.
func New(store storage.Store, recorder *metrics.Recorder) *Engine {
	return &Engine{store: store, metrics: recorder}
}

// CreateExpense validates in against the group's roster, computes the splits
// and appends the expense. Nothing is written when an error is returned.
func (e *Engine) CreateExpense(ctx context.Context, in ExpenseInput) (*models.Expense, error) {
	expense, err := e.createExpense(ctx, in)
	if err != nil {
		e.metrics.ExpenseRejected(err)
		return nil, err
	}

	e.metrics.ExpenseCreated(string(expense.SplitType))
	slog.Debug("expense recorded",
		"expense_id", expense.ID,
		"group_id", expense.GroupID,
		"amount", expense.Amount.String(),
		"split_type", expense.SplitType,
		"splits", len(expense.Splits),
	)
	return expense, nil
}

func (e *Engine) createExpense(ctx context.Context, in ExpenseInput) (*models.Expense, error) {
	if in.GroupID == "" {
		return nil, common.InvalidInput("group_id", "group_id is required")
	}
	if in.PayerID == "" {
		return nil, common.InvalidInput("payer_id", "payer_id is required")
	}

	policy, err := calculator.PolicyFor(in.SplitType)
	if err != nil {
		return nil, err
	}
	splits, err := policy.Compute(in.Amount, in.Participants)
	if err != nil {
		return nil, err
	}

	return e.store.AppendExpense(ctx, in.GroupID, func(members []models.User) (*models.Expense, error) {
		roster := make(map[string]models.User, len(members))
		for _, m := range members {
			roster[m.ID] = m
		}

		if _, ok := roster[in.PayerID]; !ok {
			return nil, common.NotMember("payer_id", in.PayerID, in.GroupID)
		}

		names := make([]string, 0, len(in.Participants))
		for i, p := range in.Participants {
			user, ok := roster[p.UserID]
			if !ok {
				return nil, common.NotMember(fmt.Sprintf("splits[%d].user_id", i), p.UserID, in.GroupID)
			}
			names = append(names, user.Name)
		}

		description := strings.TrimSpace(in.Description)
		if description == "" {
			description = describe(names)
		}

		return &models.Expense{
			Description: description,
			Amount:      in.Amount,
			PayerID:     in.PayerID,
			SplitType:   policy.Type(),
			Splits:      splits,
		}, nil
	})
}

// ListExpenses returns the group's history in append order.
func (e *Engine) ListExpenses(ctx context.Context, groupID string) ([]*models.Expense, error) {
	var expenses []*models.Expense
	for expense, err := range e.store.ListExpenses(ctx, groupID) {
		if err != nil {
			return nil, err
		}
		expenses = append(expenses, expense)
	}
	return expenses, nil
}

// GroupBalances replays the group's history into its balance view.
func (e *Engine) GroupBalances(ctx context.Context, groupID string) (*models.GroupBalanceView, error) {
	start := time.Now()
	defer func() { e.metrics.BalanceComputed(metrics.ViewGroup, time.Since(start)) }()

	group, err := e.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	return e.groupView(ctx, group, "")
}

// UserBalances returns one view per group the user belongs to, in group
// creation order, each keeping only the balances the user is part of.
func (e *Engine) UserBalances(ctx context.Context, userID string) ([]models.GroupBalanceView, error) {
	start := time.Now()
	defer func() { e.metrics.BalanceComputed(metrics.ViewUser, time.Since(start)) }()

	if _, err := e.store.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	groups, err := e.store.ListGroupsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	views := make([]models.GroupBalanceView, len(groups))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentGroups)
	for i, group := range groups {
		g.Go(func() error {
			view, err := e.groupView(gctx, group, userID)
			if err != nil {
				return err
			}
			views[i] = *view
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return views, nil
}

// groupView builds the view for group. A non-empty only keeps the balances
// involving that user.
func (e *Engine) groupView(ctx context.Context, group *models.Group, only string) (*models.GroupBalanceView, error) {
	ledger, err := calculator.Accumulate(e.store.ListExpenses(ctx, group.ID))
	if err != nil {
		return nil, err
	}

	debts := calculator.Resolve(ledger.Obligations)
	if only != "" {
		debts = calculator.Involving(debts, only)
	}

	balances, err := e.resolveUsers(ctx, group, debts)
	if err != nil {
		return nil, err
	}

	return &models.GroupBalanceView{
		Group:         *group,
		TotalExpenses: ledger.Total,
		ExpenseCount:  ledger.Expenses,
		Balances:      balances,
	}, nil
}

// resolveUsers attaches user records to debts, from the roster when possible.
func (e *Engine) resolveUsers(ctx context.Context, group *models.Group, debts []calculator.Debt) ([]models.NetBalance, error) {
	known := make(map[string]models.User, len(group.Members))
	for _, m := range group.Members {
		known[m.ID] = m
	}

	lookup := func(id string) (models.User, error) {
		if u, ok := known[id]; ok {
			return u, nil
		}
		u, err := e.store.GetUser(ctx, id)
		if err != nil {
			return models.User{}, fmt.Errorf("failed to resolve user %q: %w", id, err)
		}
		known[id] = *u
		return *u, nil
	}

	balances := make([]models.NetBalance, 0, len(debts))
	for _, d := range debts {
		debtor, err := lookup(d.Debtor)
		if err != nil {
			return nil, err
		}
		creditor, err := lookup(d.Creditor)
		if err != nil {
			return nil, err
		}
		balances = append(balances, models.NetBalance{Debtor: debtor, Creditor: creditor, Amount: d.Amount})
	}
	return balances, nil
}

// describe generates a description from participant names.
func describe(names []string) string {
	if len(names) == 0 {
		return "Shared expense"
	}
	if len(names) <= 3 {
		return fmt.Sprintf("Split with %s", strings.Join(names, ", "))
	}
	return fmt.Sprintf("Split with %s and %d others",
		strings.Join(names[:2], ", "),
		len(names)-2,
	)
}
