package service

import (
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/pkg/api"
)

func userToAPI(u models.User) api.User {
	return api.User{ID: u.ID, Name: u.Name, CreatedAt: u.CreatedAt}
}

func groupToAPI(g *models.Group) api.Group {
	members := make([]api.User, 0, len(g.Members))
	for _, m := range g.Members {
		members = append(members, userToAPI(m))
	}
	return api.Group{ID: g.ID, Name: g.Name, Members: members, CreatedAt: g.CreatedAt}
}

func expenseToAPI(e *models.Expense) api.Expense {
	splits := make([]api.Split, 0, len(e.Splits))
	for _, s := range e.Splits {
		splits = append(splits, api.Split{
			UserID:     s.UserID,
			Amount:     s.Amount.String(),
			Percentage: s.Percentage,
		})
	}
	return api.Expense{
		ID:          e.ID,
		GroupID:     e.GroupID,
		Description: e.Description,
		Amount:      e.Amount.String(),
		PayerID:     e.PayerID,
		SplitType:   string(e.SplitType),
		Splits:      splits,
		CreatedAt:   e.CreatedAt,
	}
}

func groupBalanceToAPI(v *models.GroupBalanceView) api.GroupBalance {
	balances := make([]api.Balance, 0, len(v.Balances))
	for _, b := range v.Balances {
		balances = append(balances, api.Balance{
			UserOwes: userToAPI(b.Debtor),
			UserOwed: userToAPI(b.Creditor),
			Amount:   b.Amount.String(),
		})
	}
	return api.GroupBalance{
		Group:         groupToAPI(&v.Group),
		TotalExpenses: v.TotalExpenses.String(),
		ExpenseCount:  v.ExpenseCount,
		Balances:      balances,
	}
}
