package calculator

import (
	"sort"

	"github.com/mmynk/splitledger/internal/money"
)

// Debt is a net directed amount between two users. Amount is positive.
type Debt struct {
	Debtor   string
	Creditor string
	Amount   money.Money
}

// Resolve nets raw obligations per unordered pair.
//
// For each pair {A, B} with at least one directed entry, the larger
// direction wins and the difference is emitted as a single Debt. Pairs that
// cancel exactly are settled and produce nothing. The result is sorted by
// debtor then creditor so identical inputs give identical output.
func Resolve(obligations map[Pair]money.Money) []Debt {
	seen := make(map[Pair]bool, len(obligations))
	var debts []Debt

	for pair := range obligations {
		key := unordered(pair)
		if seen[key] {
			continue
		}
		seen[key] = true

		forward := obligations[Pair{Debtor: key.Debtor, Creditor: key.Creditor}]
		backward := obligations[Pair{Debtor: key.Creditor, Creditor: key.Debtor}]
		net := forward.Sub(backward)

		switch {
		case net.IsPositive():
			debts = append(debts, Debt{Debtor: key.Debtor, Creditor: key.Creditor, Amount: net})
		case net.IsNegative():
			debts = append(debts, Debt{Debtor: key.Creditor, Creditor: key.Debtor, Amount: net.Abs()})
		}
	}

	sort.Slice(debts, func(i, j int) bool {
		if debts[i].Debtor != debts[j].Debtor {
			return debts[i].Debtor < debts[j].Debtor
		}
		return debts[i].Creditor < debts[j].Creditor
	})
	return debts
}

// Involving keeps the debts where userID is debtor or creditor.
func Involving(debts []Debt, userID string) []Debt {
	var out []Debt
	for _, d := range debts {
		if d.Debtor == userID || d.Creditor == userID {
			out = append(out, d)
		}
	}
	return out
}

// unordered normalizes a pair so that {A,B} and {B,A} share a key.
func unordered(p Pair) Pair {
	if p.Debtor > p.Creditor {
		return Pair{Debtor: p.Creditor, Creditor: p.Debtor}
	}
	return p
}
