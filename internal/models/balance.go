package models

import "github.com/mmynk/splitledger/internal/money"

// NetBalance says Debtor owes Creditor Amount after opposing obligations
// between the two have been cancelled. Amount is always positive.
type NetBalance struct {
	Debtor   User
	Creditor User
	Amount   money.Money
}

// GroupBalanceView is the presentation of one group's ledger.
type GroupBalanceView struct {
	Group Group

	// TotalExpenses is the sum of every expense amount recorded in the group.
	TotalExpenses money.Money

	// ExpenseCount is the number of expenses folded into the view.
	ExpenseCount int

	Balances []NetBalance
}
