package models

import (
	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/money"
)

// SplitType selects how an expense total is divided among participants.
type SplitType string

const (
	// SplitEqual divides the total evenly, handing remainder cents out in
	// participant order.
	SplitEqual SplitType = "equal"

	// SplitPercentage divides the total by per-participant percentages.
	SplitPercentage SplitType = "percentage"
)

// Expense is one payment made by a group member on behalf of the group.
type Expense struct {
	// ID is the unique identifier for the expense (UUID format).
	ID string

	// GroupID is the group that owns this expense.
	GroupID string

	Description string

	// Amount is the total paid; always positive.
	Amount money.Money

	// PayerID is the member who paid.
	PayerID string

	SplitType SplitType

	// Splits hold each participant's owed share. They sum to Amount exactly.
	Splits []Split

	// CreatedAt is the Unix timestamp when the expense was recorded.
	CreatedAt int64
}

// Split is one participant's owed share of an expense.
type Split struct {
	UserID string

	// Amount is the owed share; never negative.
	Amount money.Money

	// Percentage is set for percentage splits only.
	Percentage *decimal.Decimal
}
