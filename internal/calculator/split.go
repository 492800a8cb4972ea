package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mmynk/splitledger/internal/common"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
)

var (
	hundred           = decimal.NewFromInt(100)
	percentageEpsilon = decimal.RequireFromString("0.01")
	minPercentage     = decimal.Zero
	maxPercentage     = hundred
)

// Participant is one entry of a split request. Weight is the percentage for
// percentage splits and must be nil for equal splits.
type Participant struct {
	UserID string
	Weight *decimal.Decimal
}

// Policy divides an expense total among participants.
// Implementations are pure and safe for concurrent use.
type Policy interface {
	Type() models.SplitType

	// Compute returns one split per participant with a non-zero share, in
	// participant order. The amounts sum to total exactly.
	Compute(total money.Money, participants []Participant) ([]models.Split, error)
}

// PolicyFor returns the policy for a split type received at the boundary.
func PolicyFor(t models.SplitType) (Policy, error) {
	switch t {
	case models.SplitEqual:
		return Equal{}, nil
	case models.SplitPercentage:
		return Percentage{}, nil
	default:
		return nil, common.InvalidSplit("split_type", "unknown split type %q", t)
	}
}

// Equal splits the total evenly. Remainder cents go one each to the first
// participants in the given order.
type Equal struct{}

func (Equal) Type() models.SplitType { return models.SplitEqual }

func (Equal) Compute(total money.Money, participants []Participant) ([]models.Split, error) {
	if err := validateCommon(total, participants); err != nil {
		return nil, err
	}
	for i, p := range participants {
		if p.Weight != nil {
			return nil, common.InvalidSplit(fmt.Sprintf("splits[%d].percentage", i), "percentage not allowed for equal split (user %q)", p.UserID)
		}
	}

	n := int64(len(participants))
	share := total.Cents() / n
	remainder := total.Cents() % n

	splits := make([]models.Split, 0, len(participants))
	for i, p := range participants {
		cents := share
		if int64(i) < remainder {
			cents++
		}
		splits = append(splits, models.Split{UserID: p.UserID, Amount: money.FromCents(cents)})
	}
	return splits, nil
}

// Percentage splits the total by per-participant percentages. Each share is
// rounded half-to-even to the cent and the rounding residual is absorbed by
// the participant with the largest weight (first one on ties).
type Percentage struct{}

func (Percentage) Type() models.SplitType { return models.SplitPercentage }

func (Percentage) Compute(total money.Money, participants []Participant) ([]models.Split, error) {
	if err := validateCommon(total, participants); err != nil {
		return nil, err
	}

	sum := decimal.Zero
	largest := -1
	for i, p := range participants {
		field := fmt.Sprintf("splits[%d].percentage", i)
		if p.Weight == nil {
			return nil, common.InvalidSplit(field, "percentage required for user %q", p.UserID)
		}
		w := *p.Weight
		if w.LessThan(minPercentage) || w.GreaterThan(maxPercentage) {
			return nil, common.InvalidSplit(field, "percentage %s for user %q outside 0-100", w.String(), p.UserID)
		}
		sum = sum.Add(w)
		if largest < 0 || w.GreaterThan(*participants[largest].Weight) {
			largest = i
		}
	}
	if sum.Sub(hundred).Abs().GreaterThan(percentageEpsilon) {
		return nil, common.InvalidSplit("splits", "percentages sum to %s, want 100", sum.String())
	}

	amounts := make([]money.Money, len(participants))
	allocated := money.Zero
	for i, p := range participants {
		raw := total.Decimal().Mul(*p.Weight).Div(hundred).RoundBank(money.Places)
		m, err := money.FromDecimal(raw)
		if err != nil {
			return nil, common.InvalidSplit(fmt.Sprintf("splits[%d]", i), "%v", err)
		}
		amounts[i] = m
		allocated = allocated.Add(m)
	}

	amounts[largest] = amounts[largest].Add(total.Sub(allocated))
	if amounts[largest].IsNegative() {
		return nil, common.InvalidSplit("splits", "rounding residual exceeds share of user %q", participants[largest].UserID)
	}

	splits := make([]models.Split, 0, len(participants))
	for i, p := range participants {
		if p.Weight.IsZero() && amounts[i].IsZero() {
			continue
		}
		w := *p.Weight
		splits = append(splits, models.Split{UserID: p.UserID, Amount: amounts[i], Percentage: &w})
	}
	return splits, nil
}

func validateCommon(total money.Money, participants []Participant) error {
	if !total.IsPositive() {
		return common.InvalidSplit("amount", "amount must be positive, got %s", total)
	}
	if total.Cmp(money.Max) > 0 {
		return common.InvalidSplit("amount", "amount %s exceeds maximum %s", total, money.Max)
	}
	if len(participants) == 0 {
		return common.InvalidSplit("splits", "must have at least one participant")
	}
	seen := make(map[string]bool, len(participants))
	for i, p := range participants {
		field := fmt.Sprintf("splits[%d].user_id", i)
		if p.UserID == "" {
			return common.InvalidSplit(field, "user_id required")
		}
		if seen[p.UserID] {
			return common.InvalidSplit(field, "user %q listed more than once", p.UserID)
		}
		seen[p.UserID] = true
	}
	return nil
}

// SumSplits adds the amounts of all splits.
func SumSplits(splits []models.Split) money.Money {
	total := money.Zero
	for _, s := range splits {
		total = total.Add(s.Amount)
	}
	return total
}
