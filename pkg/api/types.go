// Package api defines the Connect services exposed by the split ledger
// server: the wire messages, procedure names, typed clients and handler
// constructors.
//
// Messages are plain Go structs encoded as JSON. Money amounts travel as
// strings with exactly two decimal places ("12.50"); percentages are
// decimals and may be sent as numbers or strings.
package api

import "github.com/shopspring/decimal"

// Split types accepted by CreateExpense.
const (
	SplitEqual      = "equal"
	SplitPercentage = "percentage"
)

type User struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
}

type Group struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Members   []User `json:"members"`
	CreatedAt int64  `json:"created_at"`
}

type Split struct {
	UserID     string           `json:"user_id"`
	Amount     string           `json:"amount"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
}

type Expense struct {
	ID          string  `json:"id"`
	GroupID     string  `json:"group_id"`
	Description string  `json:"description"`
	Amount      string  `json:"amount"`
	PayerID     string  `json:"payer_id"`
	SplitType   string  `json:"split_type"`
	Splits      []Split `json:"splits"`
	CreatedAt   int64   `json:"created_at"`
}

// Balance says UserOwes owes UserOwed Amount.
type Balance struct {
	UserOwes User   `json:"user_owes"`
	UserOwed User   `json:"user_owed"`
	Amount   string `json:"amount"`
}

type GroupBalance struct {
	Group         Group     `json:"group"`
	TotalExpenses string    `json:"total_expenses"`
	ExpenseCount  int       `json:"expense_count"`
	Balances      []Balance `json:"balances"`
}

// DirectoryService messages.

type CreateUserRequest struct {
	Name string `json:"name"`
}

type CreateUserResponse struct {
	User User `json:"user"`
}

type GetUserRequest struct {
	UserID string `json:"user_id"`
}

type GetUserResponse struct {
	User User `json:"user"`
}

type ListUsersRequest struct{}

type ListUsersResponse struct {
	Users []User `json:"users"`
}

type CreateGroupRequest struct {
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids"`
}

type CreateGroupResponse struct {
	Group Group `json:"group"`
}

type GetGroupRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupResponse struct {
	Group Group `json:"group"`
}

type ListGroupsRequest struct{}

type ListGroupsResponse struct {
	Groups []Group `json:"groups"`
}

// LedgerService messages.

// SplitInput names one participant of a new expense. Percentage is required
// for percentage splits and must be omitted for equal splits.
type SplitInput struct {
	UserID     string           `json:"user_id"`
	Percentage *decimal.Decimal `json:"percentage,omitempty"`
}

type CreateExpenseRequest struct {
	GroupID     string       `json:"group_id"`
	Description string       `json:"description"`
	Amount      string       `json:"amount"`
	PayerID     string       `json:"payer_id"`
	SplitType   string       `json:"split_type"`
	Splits      []SplitInput `json:"splits"`
}

type CreateExpenseResponse struct {
	Expense Expense `json:"expense"`
}

type ListExpensesRequest struct {
	GroupID string `json:"group_id"`
}

type ListExpensesResponse struct {
	Expenses []Expense `json:"expenses"`
}

type GetGroupBalancesRequest struct {
	GroupID string `json:"group_id"`
}

type GetGroupBalancesResponse struct {
	Balance GroupBalance `json:"balance"`
}

type GetUserBalancesRequest struct {
	UserID string `json:"user_id"`
}

type GetUserBalancesResponse struct {
	Groups []GroupBalance `json:"groups"`
}
