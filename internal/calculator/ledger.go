package calculator

import (
	"fmt"
	"iter"

	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

// Pair is a directed (debtor, creditor) key.
type Pair struct {
	Debtor   string
	Creditor string
}

// Ledger is the fold of a group's expense history.
type Ledger struct {
	// Obligations holds raw directed amounts: Obligations[{A, B}] is what A
	// owes B summed over every expense B paid. Pairs that never transacted
	// are absent.
	Obligations map[Pair]money.Money

	// Total is the sum of all expense amounts.
	Total money.Money

	// Expenses is the number of expenses folded.
	Expenses int
}

// Accumulate folds an expense history into raw pairwise obligations.
//
// For each expense, every split whose participant is not the payer and whose
// amount is positive adds to Obligations[{participant, payer}]. The fold is
// commutative, so delivery order of the history does not matter. A history
// whose sums leave the int64 range fails with money.ErrOverflow.
func Accumulate(expenses iter.Seq2[*models.Expense, error]) (*Ledger, error) {
	ledger := &Ledger{Obligations: make(map[Pair]money.Money)}

	for expense, err := range expenses {
		if err != nil {
			return nil, fmt.Errorf("failed to read expense history: %w", err)
		}
		if err := ledger.Add(expense); err != nil {
			return nil, err
		}
	}

	return ledger, nil
}

// Add folds a single expense into the ledger. On error the ledger is left
// unchanged.
func (l *Ledger) Add(expense *models.Expense) error {
	total, err := l.Total.CheckedAdd(expense.Amount)
	if err != nil {
		return fmt.Errorf("expense %s: total: %w", expense.ID, err)
	}

	updates := make(map[Pair]money.Money, len(expense.Splits))
	for _, split := range expense.Splits {
		// A payer never owes themselves
		if split.UserID == expense.PayerID || !split.Amount.IsPositive() {
			continue
		}
		key := Pair{Debtor: split.UserID, Creditor: expense.PayerID}
		current, ok := updates[key]
		if !ok {
			current = l.Obligations[key]
		}
		next, err := current.CheckedAdd(split.Amount)
		if err != nil {
			return fmt.Errorf("expense %s: %s owes %s: %w", expense.ID, key.Debtor, key.Creditor, err)
		}
		updates[key] = next
	}

	l.Total = total
	l.Expenses++
	for key, amount := range updates {
		l.Obligations[key] = amount
	}
	return nil
}
