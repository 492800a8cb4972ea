// Package common defines the error taxonomy shared by the ledger engine,
// the stores and the transport layer. Callers match with errors.Is against
// the sentinel values; the concrete *DetailError carries the field and a
// human-readable message describing which constraint failed.
package common

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSplit means split policy inputs are malformed: non-positive
	// amount, empty or duplicated participants, weights not summing to 100.
	ErrInvalidSplit = errors.New("invalid split")

	// ErrUserNotMember means the payer or a split participant is not a member
	// of the expense's group.
	ErrUserNotMember = errors.New("user not member of group")

	// ErrGroupNotFound means the group id does not resolve.
	ErrGroupNotFound = errors.New("group not found")

	// ErrUserNotFound means the user id does not resolve.
	ErrUserNotFound = errors.New("user not found")

	// ErrInvalidInput covers directory validation (blank names, empty member lists).
	ErrInvalidInput = errors.New("invalid input")
)

// DetailError is a classified error with the offending field.
type DetailError struct {
	Kind    error
	Field   string
	Message string
}

func (e *DetailError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	}
	return fmt.Sprintf("%s: %s (%s)", e.Kind, e.Message, e.Field)
}

// Unwrap exposes the sentinel for errors.Is.
func (e *DetailError) Unwrap() error {
	return e.Kind
}

// InvalidSplit builds an ErrInvalidSplit detail error.
func InvalidSplit(field, format string, args ...any) error {
	return &DetailError{Kind: ErrInvalidSplit, Field: field, Message: fmt.Sprintf(format, args...)}
}

// InvalidInput builds an ErrInvalidInput detail error.
func InvalidInput(field, format string, args ...any) error {
	return &DetailError{Kind: ErrInvalidInput, Field: field, Message: fmt.Sprintf(format, args...)}
}

// NotMember reports that userID does not belong to groupID. field names the
// request slot the user came from (payer_id, splits[2].user_id, ...).
func NotMember(field, userID, groupID string) error {
	return &DetailError{
		Kind:    ErrUserNotMember,
		Field:   field,
		Message: fmt.Sprintf("user %q is not a member of group %q", userID, groupID),
	}
}

// GroupNotFound reports an unknown group id.
func GroupNotFound(groupID string) error {
	return &DetailError{Kind: ErrGroupNotFound, Field: "group_id", Message: fmt.Sprintf("no group with id %q", groupID)}
}

// UserNotFound reports an unknown user id.
func UserNotFound(userID string) error {
	return &DetailError{Kind: ErrUserNotFound, Field: "user_id", Message: fmt.Sprintf("no user with id %q", userID)}
}
