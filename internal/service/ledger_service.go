package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/common"
	"github.com/mmynk/splitledger/internal/ledger"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/pkg/api"
)

// LedgerService implements the Connect LedgerService
type LedgerService struct {
	api.UnimplementedLedgerServiceHandler
	engine *ledger.Engine
}

// NewLedgerService creates a new LedgerService backed by engine.
func NewLedgerService(engine *ledger.Engine) *LedgerService {
	return &LedgerService{engine: engine}
}

// CreateExpense records an expense and its computed splits.
func (s *LedgerService) CreateExpense(ctx context.Context, req *connect.Request[api.CreateExpenseRequest]) (*connect.Response[api.CreateExpenseResponse], error) {
	slog.Info("CreateExpense request received",
		"group_id", req.Msg.GroupID,
		"amount", req.Msg.Amount,
		"payer_id", req.Msg.PayerID,
		"split_type", req.Msg.SplitType,
		"participants", len(req.Msg.Splits),
	)

	input, err := expenseInput(req.Msg)
	if err != nil {
		logFailure("CreateExpense rejected", err)
		return nil, toConnectError(err)
	}

	expense, err := s.engine.CreateExpense(ctx, input)
	if err != nil {
		logFailure("CreateExpense failed", err, "group_id", req.Msg.GroupID)
		return nil, toConnectError(err)
	}

	slog.Info("Expense created", "expense_id", expense.ID, "group_id", expense.GroupID)

	return connect.NewResponse(&api.CreateExpenseResponse{Expense: expenseToAPI(expense)}), nil
}

// ListExpenses returns a group's expense history.
func (s *LedgerService) ListExpenses(ctx context.Context, req *connect.Request[api.ListExpensesRequest]) (*connect.Response[api.ListExpensesResponse], error) {
	slog.Info("ListExpenses request received", "group_id", req.Msg.GroupID)

	expenses, err := s.engine.ListExpenses(ctx, req.Msg.GroupID)
	if err != nil {
		logFailure("ListExpenses failed", err, "group_id", req.Msg.GroupID)
		return nil, toConnectError(err)
	}

	out := make([]api.Expense, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, expenseToAPI(e))
	}

	return connect.NewResponse(&api.ListExpensesResponse{Expenses: out}), nil
}

// GetGroupBalances returns who owes whom within a group.
func (s *LedgerService) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	slog.Info("GetGroupBalances request received", "group_id", req.Msg.GroupID)

	view, err := s.engine.GroupBalances(ctx, req.Msg.GroupID)
	if err != nil {
		logFailure("GetGroupBalances failed", err, "group_id", req.Msg.GroupID)
		return nil, toConnectError(err)
	}

	slog.Info("GetGroupBalances successful",
		"group_id", view.Group.ID,
		"expenses", view.ExpenseCount,
		"balances", len(view.Balances),
	)

	return connect.NewResponse(&api.GetGroupBalancesResponse{Balance: groupBalanceToAPI(view)}), nil
}

// GetUserBalances returns the user's balances in every group they belong to.
func (s *LedgerService) GetUserBalances(ctx context.Context, req *connect.Request[api.GetUserBalancesRequest]) (*connect.Response[api.GetUserBalancesResponse], error) {
	slog.Info("GetUserBalances request received", "user_id", req.Msg.UserID)

	views, err := s.engine.UserBalances(ctx, req.Msg.UserID)
	if err != nil {
		logFailure("GetUserBalances failed", err, "user_id", req.Msg.UserID)
		return nil, toConnectError(err)
	}

	out := make([]api.GroupBalance, 0, len(views))
	for i := range views {
		out = append(out, groupBalanceToAPI(&views[i]))
	}

	return connect.NewResponse(&api.GetUserBalancesResponse{Groups: out}), nil
}

// expenseInput validates the wire request into an engine input.
func expenseInput(msg *api.CreateExpenseRequest) (ledger.ExpenseInput, error) {
	amount, err := money.Parse(msg.Amount)
	if err != nil {
		return ledger.ExpenseInput{}, common.InvalidSplit("amount", "%v", err)
	}

	participants := make([]calculator.Participant, 0, len(msg.Splits))
	for _, s := range msg.Splits {
		participants = append(participants, calculator.Participant{
			UserID: s.UserID,
			Weight: s.Percentage,
		})
	}

	return ledger.ExpenseInput{
		GroupID:      msg.GroupID,
		Description:  msg.Description,
		Amount:       amount,
		PayerID:      msg.PayerID,
		SplitType:    models.SplitType(msg.SplitType),
		Participants: participants,
	}, nil
}
