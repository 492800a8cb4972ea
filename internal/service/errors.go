package service

import (
	"errors"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/splitledger/internal/common"
)

// toConnectError maps domain errors onto Connect codes. The message keeps
// the offending field so clients can report it.
func toConnectError(err error) error {
	switch {
	case isInvalid(err):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case isNotFound(err):
		return connect.NewError(connect.CodeNotFound, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}

func isInvalid(err error) bool {
	return errors.Is(err, common.ErrInvalidSplit) ||
		errors.Is(err, common.ErrUserNotMember) ||
		errors.Is(err, common.ErrInvalidInput)
}

func isNotFound(err error) bool {
	return errors.Is(err, common.ErrGroupNotFound) ||
		errors.Is(err, common.ErrUserNotFound)
}

// logFailure logs a failed request. Rejections caused by the caller are
// warnings; anything else is an error.
func logFailure(msg string, err error, args ...any) {
	args = append(args, "error", err)
	if isInvalid(err) || isNotFound(err) {
		slog.Warn(msg, args...)
		return
	}
	slog.Error(msg, args...)
}
