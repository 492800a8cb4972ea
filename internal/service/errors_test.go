package service

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/splitledger/internal/common"
	"github.com/mmynk/splitledger/pkg/api"
)

// captureLogs routes the default logger into a buffer for the rest of the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func TestToConnectError(t *testing.T) {
	tests := []struct {
		err  error
		want connect.Code
	}{
		{common.InvalidSplit("amount", "bad"), connect.CodeInvalidArgument},
		{common.NotMember("payer_id", "u", "g"), connect.CodeInvalidArgument},
		{common.InvalidInput("name", "required"), connect.CodeInvalidArgument},
		{common.GroupNotFound("g"), connect.CodeNotFound},
		{common.UserNotFound("u"), connect.CodeNotFound},
		{errors.New("disk full"), connect.CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			assert.Equal(t, tt.want, connect.CodeOf(toConnectError(tt.err)))
		})
	}
}

func TestLogFailure_Levels(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"invalid split", common.InvalidSplit("amount", "bad"), "level=WARN"},
		{"not a member", common.NotMember("payer_id", "u", "g"), "level=WARN"},
		{"group not found", common.GroupNotFound("g"), "level=WARN"},
		{"internal", errors.New("disk full"), "level=ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLogs(t)
			logFailure("Op failed", tt.err, "group_id", "g")

			out := buf.String()
			assert.Contains(t, out, tt.want)
			assert.Contains(t, out, "group_id=g")
			assert.Contains(t, out, "error=")
		})
	}
}

func TestLedger_RejectionsLogAtWarn(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()

	alice := createUser(t, c, "Alice")
	bob := createUser(t, c, "Bob")
	outsider := createUser(t, c, "Mallory")
	group := createGroup(t, c, "Pair", alice, bob)

	buf := captureLogs(t)

	_, err := c.ledger.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
		GroupID: group.ID, Amount: "10.00", PayerID: outsider.ID, SplitType: api.SplitEqual, Splits: equalSplits(alice),
	}))
	require.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = c.ledger.CreateExpense(ctx, connect.NewRequest(&api.CreateExpenseRequest{
		GroupID: group.ID, Amount: "92233720368547758.07", PayerID: alice.ID, SplitType: api.SplitEqual, Splits: equalSplits(alice, bob),
	}))
	require.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = c.ledger.GetGroupBalances(ctx, connect.NewRequest(&api.GetGroupBalancesRequest{GroupID: "nope"}))
	require.Equal(t, connect.CodeNotFound, connect.CodeOf(err))

	out := buf.String()
	assert.Contains(t, out, "level=WARN")
	assert.NotContains(t, out, "level=ERROR")
}
