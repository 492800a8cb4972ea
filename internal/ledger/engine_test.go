package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/calculator"
	"github.com/mmynk/splitledger/internal/common"
	"github.com/mmynk/splitledger/internal/lock"
	"github.com/mmynk/splitledger/internal/metrics"
	"github.com/mmynk/splitledger/internal/models"
	"github.com/mmynk/splitledger/internal/money"
	"github.com/mmynk/splitledger/internal/storage/memory"
)

type fixture struct {
	engine *Engine
	store  *memory.Store
	reg    *prometheus.Registry
	group  *models.Group
}

// newFixture creates users a, b, c (Alice, Bob, Carol) and group g1 with all three.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	store := memory.New(lock.NewLocal())
	for _, u := range []models.User{{ID: "a", Name: "Alice"}, {ID: "b", Name: "Bob"}, {ID: "c", Name: "Carol"}} {
		require.NoError(t, store.CreateUser(ctx, &u))
	}
	group := &models.Group{ID: "g1", Name: "Trip", Members: []models.User{{ID: "a"}, {ID: "b"}, {ID: "c"}}}
	require.NoError(t, store.CreateGroup(ctx, group))

	reg := prometheus.NewRegistry()
	return &fixture{
		engine: New(store, metrics.New(reg)),
		store:  store,
		reg:    reg,
		group:  group,
	}
}

func equal(ids ...string) []calculator.Participant {
	out := make([]calculator.Participant, len(ids))
	for i, id := range ids {
		out[i] = calculator.Participant{UserID: id}
	}
	return out
}

func pct(id, weight string) calculator.Participant {
	w := decimal.RequireFromString(weight)
	return calculator.Participant{UserID: id, Weight: &w}
}

func balance(debtor, creditor, amount string) [3]string {
	return [3]string{debtor, creditor, amount}
}

func flatten(balances []models.NetBalance) [][3]string {
	out := make([][3]string, 0, len(balances))
	for _, b := range balances {
		out = append(out, balance(b.Debtor.ID, b.Creditor.ID, b.Amount.String()))
	}
	return out
}

func TestEngine_GroupBalancesScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.engine.CreateExpense(ctx, ExpenseInput{
		GroupID:      "g1",
		Description:  "Dinner",
		Amount:       money.MustParse("30.00"),
		PayerID:      "a",
		SplitType:    models.SplitEqual,
		Participants: equal("a", "b", "c"),
	})
	require.NoError(t, err)

	view, err := f.engine.GroupBalances(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, [][3]string{
		balance("b", "a", "10.00"),
		balance("c", "a", "10.00"),
	}, flatten(view.Balances))

	_, err = f.engine.CreateExpense(ctx, ExpenseInput{
		GroupID:      "g1",
		Description:  "Taxi",
		Amount:       money.MustParse("20.00"),
		PayerID:      "b",
		SplitType:    models.SplitEqual,
		Participants: equal("a", "b", "c"),
	})
	require.NoError(t, err)

	view, err = f.engine.GroupBalances(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, [][3]string{
		balance("b", "a", "3.33"),
		balance("c", "a", "10.00"),
		balance("c", "b", "6.66"),
	}, flatten(view.Balances))
	assert.Equal(t, money.MustParse("50.00"), view.TotalExpenses)
	assert.Equal(t, 2, view.ExpenseCount)
	assert.Equal(t, []string{"a", "b", "c"}, view.Group.MemberIDs())
	assert.Equal(t, "Bob", view.Balances[0].Debtor.Name)

	again, err := f.engine.GroupBalances(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, view, again)

	count, err := testutil.GatherAndCount(f.reg, "splitledger_balance_computation_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestEngine_PercentageFullyPaidByPayer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	expense, err := f.engine.CreateExpense(ctx, ExpenseInput{
		GroupID:      "g1",
		Amount:       money.MustParse("80.00"),
		PayerID:      "a",
		SplitType:    models.SplitPercentage,
		Participants: []calculator.Participant{pct("a", "100"), pct("b", "0")},
	})
	require.NoError(t, err)
	require.Len(t, expense.Splits, 1)

	view, err := f.engine.GroupBalances(ctx, "g1")
	require.NoError(t, err)
	assert.Empty(t, view.Balances)
	assert.Equal(t, money.MustParse("80.00"), view.TotalExpenses)
}

func TestEngine_CreateExpense(t *testing.T) {
	ctx := context.Background()

	t.Run("generated description", func(t *testing.T) {
		f := newFixture(t)
		expense, err := f.engine.CreateExpense(ctx, ExpenseInput{
			GroupID:      "g1",
			Description:  "   ",
			Amount:       money.MustParse("10.00"),
			PayerID:      "c",
			SplitType:    models.SplitEqual,
			Participants: equal("a", "b", "c"),
		})
		require.NoError(t, err)
		assert.Equal(t, "Split with Alice, Bob, Carol", expense.Description)
		assert.Equal(t, "g1", expense.GroupID)
		assert.NotEmpty(t, expense.ID)

		got := make([]string, 0, len(expense.Splits))
		for _, s := range expense.Splits {
			got = append(got, s.Amount.String())
		}
		assert.Equal(t, []string{"3.34", "3.33", "3.33"}, got)
	})

	t.Run("payer need not participate", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.engine.CreateExpense(ctx, ExpenseInput{
			GroupID:      "g1",
			Amount:       money.MustParse("9.00"),
			PayerID:      "c",
			SplitType:    models.SplitEqual,
			Participants: equal("a", "b"),
		})
		require.NoError(t, err)

		view, err := f.engine.GroupBalances(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, [][3]string{
			balance("a", "c", "4.50"),
			balance("b", "c", "4.50"),
		}, flatten(view.Balances))
	})

	tests := []struct {
		name      string
		input     ExpenseInput
		wantErr   error
		wantField string
	}{
		{
			name:      "payer not a member",
			input:     ExpenseInput{GroupID: "g1", Amount: money.MustParse("5.00"), PayerID: "zed", SplitType: models.SplitEqual, Participants: equal("a")},
			wantErr:   common.ErrUserNotMember,
			wantField: "payer_id",
		},
		{
			name:      "participant not a member",
			input:     ExpenseInput{GroupID: "g1", Amount: money.MustParse("5.00"), PayerID: "a", SplitType: models.SplitEqual, Participants: equal("a", "zed")},
			wantErr:   common.ErrUserNotMember,
			wantField: "splits[1].user_id",
		},
		{
			name:      "unknown group",
			input:     ExpenseInput{GroupID: "nope", Amount: money.MustParse("5.00"), PayerID: "a", SplitType: models.SplitEqual, Participants: equal("a")},
			wantErr:   common.ErrGroupNotFound,
			wantField: "group_id",
		},
		{
			name:      "non-positive amount",
			input:     ExpenseInput{GroupID: "g1", Amount: money.Zero, PayerID: "a", SplitType: models.SplitEqual, Participants: equal("a")},
			wantErr:   common.ErrInvalidSplit,
			wantField: "amount",
		},
		{
			name:      "amount above maximum",
			input:     ExpenseInput{GroupID: "g1", Amount: money.FromCents(math.MaxInt64), PayerID: "a", SplitType: models.SplitEqual, Participants: equal("a", "b")},
			wantErr:   common.ErrInvalidSplit,
			wantField: "amount",
		},
		{
			name:      "no participants",
			input:     ExpenseInput{GroupID: "g1", Amount: money.MustParse("5.00"), PayerID: "a", SplitType: models.SplitEqual},
			wantErr:   common.ErrInvalidSplit,
			wantField: "splits",
		},
		{
			name:      "percentages do not sum to 100",
			input:     ExpenseInput{GroupID: "g1", Amount: money.MustParse("5.00"), PayerID: "a", SplitType: models.SplitPercentage, Participants: []calculator.Participant{pct("a", "50"), pct("b", "49")}},
			wantErr:   common.ErrInvalidSplit,
			wantField: "splits",
		},
		{
			name:      "unknown split type",
			input:     ExpenseInput{GroupID: "g1", Amount: money.MustParse("5.00"), PayerID: "a", SplitType: "shares", Participants: equal("a")},
			wantErr:   common.ErrInvalidSplit,
			wantField: "split_type",
		},
		{
			name:      "missing payer",
			input:     ExpenseInput{GroupID: "g1", Amount: money.MustParse("5.00"), SplitType: models.SplitEqual, Participants: equal("a")},
			wantErr:   common.ErrInvalidInput,
			wantField: "payer_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			_, err := f.engine.CreateExpense(ctx, tt.input)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)

			var detail *common.DetailError
			require.True(t, errors.As(err, &detail))
			assert.Equal(t, tt.wantField, detail.Field)

			expenses, err := f.engine.ListExpenses(ctx, "g1")
			require.NoError(t, err)
			assert.Empty(t, expenses)

			expected := fmt.Sprintf(`
# HELP splitledger_expense_rejections_total Expense creations rejected before anything was written, by reason.
# TYPE splitledger_expense_rejections_total counter
splitledger_expense_rejections_total{reason=%q} 1
`, metrics.Reason(tt.wantErr))
			assert.NoError(t, testutil.GatherAndCompare(f.reg, strings.NewReader(expected), "splitledger_expense_rejections_total"))
		})
	}
}

func TestEngine_UserBalances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	second := &models.Group{ID: "g2", Name: "Flat", Members: []models.User{{ID: "b"}, {ID: "c"}}}
	require.NoError(t, f.store.CreateGroup(ctx, second))

	_, err := f.engine.CreateExpense(ctx, ExpenseInput{
		GroupID: "g1", Amount: money.MustParse("30.00"), PayerID: "a",
		SplitType: models.SplitEqual, Participants: equal("a", "b", "c"),
	})
	require.NoError(t, err)
	_, err = f.engine.CreateExpense(ctx, ExpenseInput{
		GroupID: "g2", Amount: money.MustParse("12.00"), PayerID: "c",
		SplitType: models.SplitEqual, Participants: equal("b", "c"),
	})
	require.NoError(t, err)

	t.Run("member of both groups", func(t *testing.T) {
		views, err := f.engine.UserBalances(ctx, "b")
		require.NoError(t, err)
		require.Len(t, views, 2)

		assert.Equal(t, "g1", views[0].Group.ID)
		assert.Equal(t, [][3]string{balance("b", "a", "10.00")}, flatten(views[0].Balances))
		assert.Equal(t, money.MustParse("30.00"), views[0].TotalExpenses)

		assert.Equal(t, "g2", views[1].Group.ID)
		assert.Equal(t, [][3]string{balance("b", "c", "6.00")}, flatten(views[1].Balances))
	})

	t.Run("keeps both directions", func(t *testing.T) {
		views, err := f.engine.UserBalances(ctx, "a")
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, [][3]string{
			balance("b", "a", "10.00"),
			balance("c", "a", "10.00"),
		}, flatten(views[0].Balances))
	})

	t.Run("user without groups", func(t *testing.T) {
		require.NoError(t, f.store.CreateUser(ctx, &models.User{ID: "d", Name: "Dan"}))
		views, err := f.engine.UserBalances(ctx, "d")
		require.NoError(t, err)
		assert.Empty(t, views)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := f.engine.UserBalances(ctx, "ghost")
		assert.ErrorIs(t, err, common.ErrUserNotFound)
	})
}

func TestEngine_LargeAmountsStayExact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for range 2 {
		_, err := f.engine.CreateExpense(ctx, ExpenseInput{
			GroupID: "g1", Amount: money.Max, PayerID: "a",
			SplitType: models.SplitEqual, Participants: equal("a", "b"),
		})
		require.NoError(t, err)
	}

	view, err := f.engine.GroupBalances(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "200000000000.00", view.TotalExpenses.String())
	assert.Equal(t, [][3]string{balance("b", "a", "100000000000.00")}, flatten(view.Balances))
}

func TestEngine_GroupBalancesOverflowingHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	huge := func([]models.User) (*models.Expense, error) {
		return &models.Expense{
			Amount:    money.FromCents(math.MaxInt64),
			PayerID:   "a",
			SplitType: models.SplitEqual,
			Splits: []models.Split{
				{UserID: "a", Amount: money.FromCents(math.MaxInt64 / 2)},
				{UserID: "b", Amount: money.FromCents(math.MaxInt64/2 + 1)},
			},
		}, nil
	}
	for range 2 {
		_, err := f.store.AppendExpense(ctx, "g1", huge)
		require.NoError(t, err)
	}

	_, err := f.engine.GroupBalances(ctx, "g1")
	assert.ErrorIs(t, err, money.ErrOverflow)
}

func TestEngine_GroupBalancesNotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.engine.GroupBalances(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrGroupNotFound)

	_, err = f.engine.ListExpenses(context.Background(), "nope")
	assert.ErrorIs(t, err, common.ErrGroupNotFound)
}

func TestEngine_ConcurrentCreates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const writers = 30
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.engine.CreateExpense(ctx, ExpenseInput{
				GroupID: "g1", Amount: money.MustParse("3.00"), PayerID: "a",
				SplitType: models.SplitEqual, Participants: equal("a", "b", "c"),
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	view, err := f.engine.GroupBalances(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, writers, view.ExpenseCount)
	assert.Equal(t, money.MustParse("90.00"), view.TotalExpenses)
	assert.Equal(t, [][3]string{
		balance("b", "a", "30.00"),
		balance("c", "a", "30.00"),
	}, flatten(view.Balances))
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		names []string
		want  string
	}{
		{nil, "Shared expense"},
		{[]string{"Alice"}, "Split with Alice"},
		{[]string{"Alice", "Bob", "Carol"}, "Split with Alice, Bob, Carol"},
		{[]string{"Alice", "Bob", "Carol", "Dan", "Eve"}, "Split with Alice, Bob and 3 others"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, describe(tt.names))
		})
	}
}
